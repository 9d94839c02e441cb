package core

import "context"

// Conn is one live client connection as seen by the core layer.
// Write and Close may be called concurrently with Read and with each other.
type Conn interface {
	// ID is unique per connection for its whole lifetime.
	ID() string
	// Read blocks until the next frame arrives.
	Read(ctx context.Context) ([]byte, error)
	// Write delivers one frame.
	Write(ctx context.Context, data []byte) error
	// Close terminates the connection with a reason for the peer.
	Close(reason string) error
}
