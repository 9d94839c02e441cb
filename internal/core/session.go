package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/proto"
)

// SessionState is the lifecycle stage of a room session.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateOpen
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// SessionConfig tunes a room session.
type SessionConfig struct {
	// IdleTimeout bounds each read. Zero disables it.
	IdleTimeout time.Duration
	// WriteTimeout bounds error frames sent back to the client.
	WriteTimeout time.Duration
	// RateLimit is the number of frames allowed per minute. Zero disables it.
	RateLimit int
	// EnforceSender rejects frames whose sender_id is not the authenticated user.
	EnforceSender bool
}

// Session serves one connection joined to one room: it reads frames,
// publishes valid messages and reports rejected frames back to the sender.
type Session struct {
	roomID    int64
	userID    int64
	conn      Conn
	registry  *Registry
	publisher *Publisher
	cfg       SessionConfig
	log       zerolog.Logger

	state     atomic.Int32
	closeOnce sync.Once
}

// NewSession creates a session for an accepted connection of an authorized user.
func NewSession(roomID, userID int64, conn Conn, registry *Registry, publisher *Publisher, cfg SessionConfig, logger *zerolog.Logger) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	return &Session{
		roomID:    roomID,
		userID:    userID,
		conn:      conn,
		registry:  registry,
		publisher: publisher,
		cfg:       cfg,
		log: logger.With().
			Int64("room_id", roomID).
			Int64("user_id", userID).
			Str("conn_id", conn.ID()).
			Logger(),
	}
}

// State returns the current lifecycle stage.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Run joins the room and processes frames until the connection fails or ctx ends.
// The connection is always removed from the room before Run returns.
func (s *Session) Run(ctx context.Context) error {
	s.registry.Connect(s.roomID, s.conn)
	s.state.Store(int32(StateOpen))
	defer s.leave()
	s.log.Debug().Msg("session open")

	limiter := newRateLimiter(s.cfg.RateLimit)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	for {
		data, err := s.read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			if err := s.sendError(ctx, coreError(ErrCodeRateLimited, "rate limit exceeded")); err != nil {
				return err
			}
			continue
		}

		in, cerr := s.parse(data)
		if cerr != nil {
			s.log.Debug().Str("code", cerr.Code).Msg(cerr.Message)
			if err := s.sendError(ctx, cerr); err != nil {
				return err
			}
			continue
		}

		if _, err := s.publisher.Publish(ctx, in); err != nil {
			if err := s.sendError(ctx, coreError(ErrorCode(err), ErrPersistence.Error())); err != nil {
				return err
			}
		}
	}
}

func (s *Session) read(ctx context.Context) ([]byte, error) {
	if s.cfg.IdleTimeout <= 0 {
		return s.conn.Read(ctx)
	}
	readCtx, cancel := context.WithTimeout(ctx, s.cfg.IdleTimeout)
	defer cancel()
	return s.conn.Read(readCtx)
}

func (s *Session) leave() {
	s.closeOnce.Do(func() {
		s.registry.Disconnect(s.roomID, s.conn)
		s.state.Store(int32(StateClosed))
		s.log.Debug().Msg("session closed")
	})
}

func (s *Session) parse(data []byte) (MessageInput, *CoreError) {
	var frame proto.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return MessageInput{}, coreError(ErrCodeProtocol, "invalid json")
	}
	if frame.SenderID == nil {
		return MessageInput{}, coreError(ErrCodeProtocol, "sender_id is required")
	}
	if strings.TrimSpace(frame.Content) == "" && frame.ImageURL == "" {
		return MessageInput{}, coreError(ErrCodeProtocol, "message is empty")
	}
	if s.cfg.EnforceSender && *frame.SenderID != s.userID {
		return MessageInput{}, coreError(ErrCodeProtocol, "sender_id does not match the authenticated user")
	}

	in := MessageInput{
		RoomID:   s.roomID,
		SenderID: *frame.SenderID,
		Content:  frame.Content,
	}
	if frame.ImageURL != "" {
		url := frame.ImageURL
		in.ImageURL = &url
	}
	return in, nil
}

func (s *Session) sendError(ctx context.Context, cerr *CoreError) error {
	data, err := json.Marshal(proto.NewErrorFrame(cerr.Code, cerr.Message))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	if err := s.conn.Write(ctx, data); err != nil {
		s.log.Warn().Err(err).Msg("write error frame")
		return err
	}
	return nil
}
