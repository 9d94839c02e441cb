package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

// RoomSummary is a room as listed for one of its participants.
type RoomSummary struct {
	Room  *store.Room
	Other *store.User
}

// Conversation is a room opened by a participant, with its full history.
type Conversation struct {
	Room     *store.Room
	Other    *store.User
	Messages []*store.Message
}

// Service provides direct-chat business logic.
type Service struct {
	store     store.Store
	directory *Directory
	publisher *core.Publisher
	media     *media.Storage
	log       *zerolog.Logger
}

// NewService creates a chat service.
func NewService(st store.Store, directory *Directory, publisher *core.Publisher, storage *media.Storage, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store:     st,
		directory: directory,
		publisher: publisher,
		media:     storage,
		log:       logger,
	}
}

// Start returns the room between me and other, creating it if needed.
func (s *Service) Start(ctx context.Context, me, other int64) (*store.Room, error) {
	return s.directory.GetOrCreate(ctx, me, other)
}

// ListRooms lists the rooms of a user, newest first.
func (s *Service) ListRooms(ctx context.Context, me int64) ([]RoomSummary, error) {
	rooms, err := s.store.ListRoomsForUser(ctx, me)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		other, err := s.store.GetUserByID(ctx, room.Other(me))
		if err != nil {
			return nil, fmt.Errorf("lookup participant: %w", err)
		}
		out = append(out, RoomSummary{Room: room, Other: other})
	}
	return out, nil
}

// Authorize checks that me may use the room and returns it.
func (s *Service) Authorize(ctx context.Context, roomID, me int64) (*store.Room, error) {
	room, err := s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, core.ErrRoomNotFound
		}
		return nil, fmt.Errorf("lookup room: %w", err)
	}
	if !room.HasParticipant(me) {
		return nil, core.ErrNotParticipant
	}
	return room, nil
}

// Open returns the room with the other participant and the full message history.
func (s *Service) Open(ctx context.Context, roomID, me int64) (*Conversation, error) {
	room, err := s.Authorize(ctx, roomID, me)
	if err != nil {
		return nil, err
	}

	other, err := s.store.GetUserByID(ctx, room.Other(me))
	if err != nil {
		return nil, fmt.Errorf("lookup participant: %w", err)
	}

	messages, err := s.store.ListMessages(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return &Conversation{Room: room, Other: other, Messages: messages}, nil
}

// SendImage stores an uploaded image and publishes it to the room as an image message.
func (s *Service) SendImage(ctx context.Context, roomID, me int64, filename string, r io.Reader) (*store.Message, error) {
	room, err := s.Authorize(ctx, roomID, me)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Save(ctx, media.CategoryChat, filename, r)
	if err != nil {
		return nil, err
	}

	return s.publisher.Publish(ctx, core.MessageInput{
		RoomID:   room.ID,
		SenderID: me,
		ImageURL: &url,
	})
}
