package chat

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustUser(t *testing.T, st store.Store, username string) *store.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), username, nil, "hash")
	require.NoError(t, err)
	return u
}

func newTestService(t *testing.T, st store.Store) (*Service, *core.Registry) {
	t.Helper()
	reg := core.NewRegistry(nil, time.Second)
	pub := core.NewPublisher(st, reg, nil)
	storage := media.New(t.TempDir(), "/static", 1<<20, nil)
	return NewService(st, NewDirectory(st, st, nil), pub, storage, nil), reg
}

func TestCanonical(t *testing.T) {
	a, b := Canonical(9, 3)
	require.EqualValues(t, 3, a)
	require.EqualValues(t, 9, b)
	a, b = Canonical(3, 9)
	require.EqualValues(t, 3, a)
	require.EqualValues(t, 9, b)
}

func TestDirectoryCanonicalPairing(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, st, "alice_1")
	bob := mustUser(t, st, "bobby_1")
	dir := NewDirectory(st, st, nil)

	ab, err := dir.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ba, err := dir.GetOrCreate(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.Equal(t, ab.ID, ba.ID)
	require.Less(t, ab.User1ID, ab.User2ID)
}

func TestDirectoryRejectsSelfAndUnknown(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, st, "alice_1")
	dir := NewDirectory(st, st, nil)

	_, err := dir.GetOrCreate(ctx, alice.ID, alice.ID)
	require.ErrorIs(t, err, core.ErrSelfRoom)

	_, err = dir.GetOrCreate(ctx, alice.ID, 404)
	require.ErrorIs(t, err, core.ErrUserNotFound)

	rooms, err := st.ListRoomsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, rooms)
}

func TestDirectoryAtMostOneRoomUnderConcurrency(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, st, "alice_1")
	bob := mustUser(t, st, "bobby_1")

	// Two directories share one store, like two server processes would.
	dirs := []*Directory{NewDirectory(st, st, nil), NewDirectory(st, st, nil)}

	const workers = 32
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := alice.ID, bob.ID
			if i%2 == 1 {
				a, b = b, a
			}
			room, err := dirs[i%len(dirs)].GetOrCreate(ctx, a, b)
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			ids <- room.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]struct{}{}
	for id := range ids {
		seen[id] = struct{}{}
	}
	require.Len(t, seen, 1)

	rooms, err := st.ListRoomsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
}

func TestServiceOpenAndList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, st, "alice_1")
	bob := mustUser(t, st, "bobby_1")
	eve := mustUser(t, st, "eve_123")
	svc, _ := newTestService(t, st)

	room, err := svc.Start(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = st.AppendMessage(ctx, room.ID, alice.ID, "hello", nil)
	require.NoError(t, err)

	conv, err := svc.Open(ctx, room.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, conv.Other.ID)
	require.Len(t, conv.Messages, 1)
	require.Equal(t, "hello", conv.Messages[0].Content)

	_, err = svc.Open(ctx, room.ID, eve.ID)
	require.ErrorIs(t, err, core.ErrNotParticipant)
	_, err = svc.Open(ctx, 999, alice.ID)
	require.ErrorIs(t, err, core.ErrRoomNotFound)

	list, err := svc.ListRooms(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, alice.Username, list[0].Other.Username)
}

func TestServiceSendImageBroadcasts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, st, "alice_1")
	bob := mustUser(t, st, "bobby_1")
	svc, _ := newTestService(t, st)

	room, err := svc.Start(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	msg, err := svc.SendImage(ctx, room.ID, alice.ID, "pic.png", bytes.NewReader(png))
	require.NoError(t, err)
	require.NotNil(t, msg.ImageURL)
	require.Empty(t, msg.Content)

	history, err := st.ListMessages(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, *msg.ImageURL, *history[0].ImageURL)

	_, err = svc.SendImage(ctx, room.ID, alice.ID, "notes.txt", bytes.NewReader([]byte("plain text")))
	require.ErrorIs(t, err, media.ErrUnsupportedType)
}
