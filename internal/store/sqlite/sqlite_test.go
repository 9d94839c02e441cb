package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustUser(t *testing.T, s *SQLiteStore, username string) *store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), username, nil, "hash")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return u
}

func TestMigrateAddsProfileColumns(t *testing.T) {
	// Setup in-memory DB with a pre-profile users table
	s, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(`
		CREATE TABLE users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT UNIQUE,
			password_hash TEXT NOT NULL,
			coins         INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	// Second run must be a no-op.
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	u, err := s.CreateUser(ctx, "runner_1", nil, "hash")
	if err != nil {
		t.Fatalf("CreateUser after migrate failed: %v", err)
	}
	if !u.IsActive || u.EmailConfirmedAt == nil {
		t.Fatalf("expected active confirmed user, got %+v", u)
	}
	if u.Nickname != nil {
		t.Fatalf("expected empty profile, got nickname %q", *u.Nickname)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	email := "lifter@example.com"
	u, err := s.CreateUser(ctx, "lifter_1", &email, "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := s.CreateUser(ctx, "lifter_1", nil, "hash"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}
	if _, err := s.CreateUser(ctx, "lifter_2", &email, "hash"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	byName, err := s.GetUserByUsername(ctx, "lifter_1")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("GetUserByUsername: got %+v, %v", byName, err)
	}
	byEmail, err := s.GetUserByEmail(ctx, email)
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetUserByEmail: got %+v, %v", byEmail, err)
	}
	if _, err := s.GetUserByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	avatar := "/static/avatars/a.png"
	region := "Seoul"
	birth := time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)
	err = s.UpdateProfile(ctx, u.ID, store.Profile{
		Nickname:  "Lifty",
		BirthDate: birth,
		Gender:    "female",
		Sport:     "gym",
		Region:    &region,
		AvatarURL: &avatar,
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	// A nil avatar keeps the stored one.
	err = s.UpdateProfile(ctx, u.ID, store.Profile{
		Nickname:  "Lifty2",
		BirthDate: birth,
		Gender:    "female",
		Sport:     "running",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Nickname == nil || *got.Nickname != "Lifty2" {
		t.Fatalf("nickname not updated: %+v", got.Nickname)
	}
	if got.AvatarURL == nil || *got.AvatarURL != avatar {
		t.Fatalf("avatar lost: %+v", got.AvatarURL)
	}
	if got.Region != nil {
		t.Fatalf("expected region cleared, got %q", *got.Region)
	}
	if got.BirthDate == nil || !got.BirthDate.Equal(birth) {
		t.Fatalf("birth date mismatch: %v", got.BirthDate)
	}

	if err := s.UpdateProfile(ctx, 999, store.Profile{Nickname: "ghost"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestRooms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustUser(t, s, "alice_1")
	b := mustUser(t, s, "bobby_1")
	c := mustUser(t, s, "carol_1")

	ab, err := s.CreateRoom(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if _, err := s.CreateRoom(ctx, a.ID, b.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate pair, got %v", err)
	}
	if _, err := s.CreateRoom(ctx, b.ID, a.ID); err == nil {
		t.Fatal("expected error for non-canonical pair")
	}

	byPair, err := s.GetRoomByPair(ctx, a.ID, b.ID)
	if err != nil || byPair.ID != ab.ID {
		t.Fatalf("GetRoomByPair: got %+v, %v", byPair, err)
	}
	if _, err := s.GetRoomByPair(ctx, a.ID, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ac, err := s.CreateRoom(ctx, a.ID, c.ID)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	rooms, err := s.ListRoomsForUser(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListRoomsForUser failed: %v", err)
	}
	if len(rooms) != 2 || rooms[0].ID != ac.ID || rooms[1].ID != ab.ID {
		t.Fatalf("expected newest first [%d %d], got %+v", ac.ID, ab.ID, rooms)
	}

	rooms, err = s.ListRoomsForUser(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListRoomsForUser failed: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Other(b.ID) != a.ID {
		t.Fatalf("unexpected rooms for b: %+v", rooms)
	}
}

func TestMessagesHistoryOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustUser(t, s, "alice_1")
	b := mustUser(t, s, "bobby_1")
	room, err := s.CreateRoom(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	// Two messages share a timestamp; id breaks the tie.
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base, base.Add(time.Second)}
	var mu sync.Mutex
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := clock[0]
		clock = clock[1:]
		return now
	}

	image := "/static/chat/x.png"
	first, err := s.AppendMessage(ctx, room.ID, a.ID, "hello", nil)
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	second, err := s.AppendMessage(ctx, room.ID, b.ID, "hi", nil)
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	third, err := s.AppendMessage(ctx, room.ID, a.ID, "", &image)
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	history, err := s.ListMessages(ctx, room.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	want := []*store.Message{first, second, third}
	if len(history) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(history))
	}
	for i, m := range history {
		w := want[i]
		if m.ID != w.ID || m.SenderID != w.SenderID || m.Content != w.Content || !m.CreatedAt.Equal(w.CreatedAt) {
			t.Fatalf("message %d: got %+v, want %+v", i, m, w)
		}
	}
	if history[2].ImageURL == nil || *history[2].ImageURL != image {
		t.Fatalf("image url not persisted: %+v", history[2].ImageURL)
	}

	empty, err := s.ListMessages(ctx, 999)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %d", len(empty))
	}
}

func TestPostsAndComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice_1")

	p1, err := s.CreatePost(ctx, a.ID, "leg day", nil)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	img := "/static/posts/p.png"
	p2, err := s.CreatePost(ctx, a.ID, "run club", &img)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != p2.ID || posts[1].ID != p1.ID {
		t.Fatalf("expected newest first, got %+v", posts)
	}

	if _, err := s.CreateComment(ctx, p1.ID, a.ID, "nice"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if _, err := s.CreateComment(ctx, p1.ID, a.ID, "again"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	comments, err := s.ListComments(ctx, p1.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 || comments[0].Content != "nice" || comments[1].Content != "again" {
		t.Fatalf("unexpected comments: %+v", comments)
	}

	if _, err := s.GetPost(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWallet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice_1")

	if _, err := s.AddTx(ctx, a.ID, 100, "reward", "signup bonus"); err != nil {
		t.Fatalf("AddTx failed: %v", err)
	}
	if _, err := s.AddTx(ctx, a.ID, -30, "spend", ""); err != nil {
		t.Fatalf("AddTx failed: %v", err)
	}
	if _, err := s.AddTx(ctx, 999, 10, "reward", ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}

	u, err := s.GetUserByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if u.Coins != 70 {
		t.Fatalf("expected 70 coins, got %d", u.Coins)
	}

	txs, err := s.ListTxs(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListTxs failed: %v", err)
	}
	if len(txs) != 2 || txs[0].Amount != -30 {
		t.Fatalf("expected newest first, got %+v", txs)
	}

	for _, price := range []int64{98, 101, 96} {
		if _, err := s.CreateOrder(ctx, a.ID, store.OrderSideBuy, price, 5); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
	}
	for _, price := range []int64{108, 104} {
		if _, err := s.CreateOrder(ctx, a.ID, store.OrderSideSell, price, 5); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
	}

	buys, err := s.ListOrders(ctx, store.OrderSideBuy)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(buys) != 3 || buys[0].Price != 101 || buys[2].Price != 96 {
		t.Fatalf("expected bids highest first, got %+v", buys)
	}
	sells, err := s.ListOrders(ctx, store.OrderSideSell)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(sells) != 2 || sells[0].Price != 104 {
		t.Fatalf("expected asks lowest first, got %+v", sells)
	}
}
