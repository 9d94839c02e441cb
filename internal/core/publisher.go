package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/proto"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

// MessageAppender persists chat messages.
type MessageAppender interface {
	AppendMessage(ctx context.Context, roomID, senderID int64, content string, imageURL *string) (*store.Message, error)
}

// Broadcaster fans a payload out to a room.
type Broadcaster interface {
	Broadcast(ctx context.Context, roomID int64, payload any) int
}

// MessageInput is a message about to be published.
type MessageInput struct {
	RoomID   int64
	SenderID int64
	Content  string
	ImageURL *string
}

// Publisher stores a message and then broadcasts the stored record.
type Publisher struct {
	messages    MessageAppender
	broadcaster Broadcaster
	log         *zerolog.Logger
}

// NewPublisher creates a publisher.
func NewPublisher(messages MessageAppender, broadcaster Broadcaster, logger *zerolog.Logger) *Publisher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Publisher{messages: messages, broadcaster: broadcaster, log: logger}
}

// Publish appends the message and broadcasts it to the room.
// Nothing is broadcast unless the append succeeded.
func (p *Publisher) Publish(ctx context.Context, in MessageInput) (*store.Message, error) {
	msg, err := p.messages.AppendMessage(ctx, in.RoomID, in.SenderID, in.Content, in.ImageURL)
	if err != nil {
		p.log.Error().Err(err).Int64("room_id", in.RoomID).Int64("user_id", in.SenderID).Msg("failed to store message")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	delivered := p.broadcaster.Broadcast(ctx, in.RoomID, proto.ChatEventFromMessage(msg))
	p.log.Debug().
		Int64("room_id", in.RoomID).
		Int64("message_id", msg.ID).
		Int("delivered", delivered).
		Msg("message published")
	return msg, nil
}
