package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/sweatmarket-server/internal/proto"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

var errConnClosed = errors.New("connection closed")

// fakeConn is an in-memory Conn. Frames pushed with send are returned by Read;
// everything written is recorded and forwarded to the written channel.
type fakeConn struct {
	id      string
	inbound chan []byte
	written chan []byte
	closed  chan struct{}

	mu        sync.Mutex
	failWrite bool
	closeOnce sync.Once
	reason    string
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{
		id:      id,
		inbound: make(chan []byte, 16),
		written: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.closed:
		return nil, errConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Write(ctx context.Context, data []byte) error {
	c.mu.Lock()
	fail := c.failWrite
	c.mu.Unlock()
	if fail {
		return errors.New("broken pipe")
	}
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	select {
	case c.written <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) Close(reason string) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.reason = reason
		c.mu.Unlock()
		close(c.closed)
	})
	return nil
}

func (c *fakeConn) breakWrites() {
	c.mu.Lock()
	c.failWrite = true
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) send(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	c.inbound <- data
}

// next waits for the next written frame and decodes it into a generic map.
func (c *fakeConn) next(t *testing.T) map[string]any {
	t.Helper()
	select {
	case data := <-c.written:
		var out map[string]any
		require.NoError(t, json.Unmarshal(data, &out))
		return out
	case <-time.After(2 * time.Second):
		t.Fatalf("conn %s: no frame written", c.id)
		return nil
	}
}

func (c *fakeConn) nextEvent(t *testing.T) proto.ChatEvent {
	t.Helper()
	select {
	case data := <-c.written:
		var ev proto.ChatEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("conn %s: no event written", c.id)
		return proto.ChatEvent{}
	}
}

func (c *fakeConn) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case data := <-c.written:
		t.Fatalf("conn %s: unexpected frame %s", c.id, data)
	case <-time.After(50 * time.Millisecond):
	}
}

// memMessages is a MessageAppender backed by a slice.
type memMessages struct {
	mu   sync.Mutex
	next int64
	msgs []*store.Message
	err  error
}

func (m *memMessages) AppendMessage(_ context.Context, roomID, senderID int64, content string, imageURL *string) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.next++
	msg := &store.Message{
		ID:        m.next,
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}
	m.msgs = append(m.msgs, msg)
	return msg, nil
}

func (m *memMessages) all() []*store.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*store.Message(nil), m.msgs...)
}

func (m *memMessages) fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

type chatFrame struct {
	SenderID *int64 `json:"sender_id,omitempty"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
}

func textFrame(sender int64, content string) chatFrame {
	return chatFrame{SenderID: &sender, Content: content}
}

// runSession starts a session in the background and waits until it has joined the room.
func runSession(t *testing.T, ctx context.Context, reg *Registry, s *Session, roomID int64, want int) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	require.Eventually(t, func() bool { return reg.Count(roomID) >= want }, 2*time.Second, 5*time.Millisecond)
	return done
}
