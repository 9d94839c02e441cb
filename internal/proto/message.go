package proto

import (
	"time"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

const (
	EventTypeText  = "text"
	EventTypeImage = "image"
	EventTypeError = "error"
)

// InboundFrame is a chat message sent by a client over the room socket.
// SenderID is a pointer so a missing field can be told apart from zero.
type InboundFrame struct {
	SenderID *int64 `json:"sender_id"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
}

// ChatEvent is broadcast to every connection of a room after a message is stored.
type ChatEvent struct {
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	SenderID  int64  `json:"sender_id"`
	Content   string `json:"content,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ChatEventFromMessage renders a stored message as it goes over the wire.
func ChatEventFromMessage(m *store.Message) ChatEvent {
	ev := ChatEvent{
		Type:      EventTypeText,
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: FormatTime(m.CreatedAt),
	}
	if m.ImageURL != nil && *m.ImageURL != "" {
		ev.Type = EventTypeImage
		ev.ImageURL = *m.ImageURL
	}
	return ev
}

// FormatTime is the single timestamp format used on the wire.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ErrorFrame is sent to a single connection when its frame was rejected.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error *Error `json:"error"`
}

// NewErrorFrame builds an error frame.
func NewErrorFrame(code, msg string) ErrorFrame {
	return ErrorFrame{Type: EventTypeError, Error: &Error{Code: code, Msg: msg}}
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
