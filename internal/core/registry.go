package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultWriteTimeout = 5 * time.Second

// Registry tracks the live connections of every chat room.
// Construct one per process with NewRegistry and share it by reference.
type Registry struct {
	mu           sync.Mutex
	rooms        map[int64]*Room
	writeTimeout time.Duration
	log          *zerolog.Logger
}

// NewRegistry creates an empty registry. writeTimeout bounds each delivery.
func NewRegistry(logger *zerolog.Logger, writeTimeout time.Duration) *Registry {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Registry{
		rooms:        make(map[int64]*Room),
		writeTimeout: writeTimeout,
		log:          logger,
	}
}

// Connect adds an already accepted connection to a room. Adding twice is a no-op.
func (r *Registry) Connect(roomID int64, c Conn) {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		room = NewRoom(roomID)
		r.rooms[roomID] = room
	}
	added := room.AddConn(c)
	size := room.Len()
	r.mu.Unlock()

	if added {
		r.log.Debug().Int64("room_id", roomID).Str("conn_id", c.ID()).Int("members", size).Msg("connection joined room")
	}
}

// Disconnect removes a connection from a room and drops the room once empty.
// Unknown rooms or connections are ignored.
func (r *Registry) Disconnect(roomID int64, c Conn) {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return
	}
	removed := room.RemoveConn(c)
	if room.Empty() {
		delete(r.rooms, roomID)
	}
	r.mu.Unlock()

	if removed {
		r.log.Debug().Int64("room_id", roomID).Str("conn_id", c.ID()).Msg("connection left room")
	}
}

// Broadcast delivers payload to every connection currently in the room and
// returns how many deliveries succeeded. Deliveries run outside the lock on a
// context detached from ctx's cancellation. A connection whose delivery fails
// is closed and disconnected; the remaining deliveries are unaffected.
func (r *Registry) Broadcast(ctx context.Context, roomID int64, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Int64("room_id", roomID).Msg("marshal broadcast payload")
		return 0
	}

	members := r.snapshot(roomID)
	if len(members) == 0 {
		return 0
	}

	deliverCtx := context.WithoutCancel(ctx)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
	)
	for _, c := range members {
		wg.Add(1)
		go func(c Conn) {
			defer wg.Done()
			if err := r.deliver(deliverCtx, c, data); err != nil {
				r.log.Warn().Err(err).Int64("room_id", roomID).Str("conn_id", c.ID()).Msg("drop unreachable connection")
				r.Disconnect(roomID, c)
				go c.Close("write failed")
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	return delivered
}

func (r *Registry) deliver(ctx context.Context, c Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()
	return c.Write(ctx, data)
}

func (r *Registry) snapshot(roomID int64) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return room.Snapshot()
}

// Count returns the number of live connections in a room.
func (r *Registry) Count(roomID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		return room.Len()
	}
	return 0
}

// RoomCount returns the number of rooms with at least one connection.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// CloseAll closes every live connection and empties the registry.
func (r *Registry) CloseAll(reason string) {
	r.mu.Lock()
	var conns []Conn
	for _, room := range r.rooms {
		conns = append(conns, room.Snapshot()...)
	}
	r.rooms = make(map[int64]*Room)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c Conn) {
			defer wg.Done()
			if err := c.Close(reason); err != nil {
				r.log.Debug().Err(err).Str("conn_id", c.ID()).Msg("close connection")
			}
		}(c)
	}
	wg.Wait()
	r.log.Info().Int("connections", len(conns)).Msg("registry closed")
}
