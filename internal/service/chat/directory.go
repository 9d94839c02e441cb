package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

// Directory resolves the single room shared by a pair of users, creating it on first use.
type Directory struct {
	users store.UserStore
	rooms store.RoomStore
	group singleflight.Group
	log   *zerolog.Logger
}

// NewDirectory creates a room directory.
func NewDirectory(users store.UserStore, rooms store.RoomStore, logger *zerolog.Logger) *Directory {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Directory{users: users, rooms: rooms, log: logger}
}

// Canonical orders a pair so the smaller id comes first.
func Canonical(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// GetOrCreate returns the room of users a and b, in either order.
// Concurrent callers for one pair always observe the same room.
func (d *Directory) GetOrCreate(ctx context.Context, a, b int64) (*store.Room, error) {
	if a == b {
		return nil, core.ErrSelfRoom
	}
	for _, id := range []int64{a, b} {
		if _, err := d.users.GetUserByID(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, core.ErrUserNotFound
			}
			return nil, fmt.Errorf("lookup user %d: %w", id, err)
		}
	}

	u1, u2 := Canonical(a, b)
	key := fmt.Sprintf("%d:%d", u1, u2)
	v, err, _ := d.group.Do(key, func() (any, error) {
		return d.getOrCreate(ctx, u1, u2)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Room), nil
}

func (d *Directory) getOrCreate(ctx context.Context, u1, u2 int64) (*store.Room, error) {
	room, err := d.rooms.GetRoomByPair(ctx, u1, u2)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup room: %w", err)
	}

	room, err = d.rooms.CreateRoom(ctx, u1, u2)
	if errors.Is(err, store.ErrConflict) {
		// Another writer created it first.
		room, err = d.rooms.GetRoomByPair(ctx, u1, u2)
	}
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	d.log.Info().Int64("room_id", room.ID).Int64("user1_id", u1).Int64("user2_id", u2).Msg("room created")
	return room, nil
}
