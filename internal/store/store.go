package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// User represents a user in the system.
type User struct {
	ID               int64
	Username         string
	Email            *string
	PasswordHash     string
	Coins            int64
	Nickname         *string
	BirthDate        *time.Time
	Gender           *string
	AvatarURL        *string
	Sport            *string
	TimeWindow       *string
	Region           *string
	Goal             *string
	IsActive         bool
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

// Profile holds the editable part of a user.
type Profile struct {
	Nickname   string
	BirthDate  time.Time
	Gender     string
	Sport      string
	TimeWindow *string
	Region     *string
	Goal       *string
	// AvatarURL is only written when non-nil.
	AvatarURL *string
}

// Room is a direct chat between exactly two users.
// User1ID is always the smaller id of the pair.
type Room struct {
	ID        int64
	User1ID   int64
	User2ID   int64
	CreatedAt time.Time
}

// Other returns the participant that is not userID.
func (r *Room) Other(userID int64) int64 {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// HasParticipant reports whether userID is one of the two room members.
func (r *Room) HasParticipant(userID int64) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// Message represents a persisted chat message.
type Message struct {
	ID        int64
	RoomID    int64
	SenderID  int64
	Content   string
	ImageURL  *string
	CreatedAt time.Time
}

// Post is a community feed entry.
type Post struct {
	ID        int64
	AuthorID  int64
	ImageURL  *string
	Caption   string
	CreatedAt time.Time
}

// Comment belongs to a post.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Content   string
	CreatedAt time.Time
}

// Tx is a wallet ledger entry.
type Tx struct {
	ID        int64
	UserID    int64
	Amount    int64
	Kind      string
	Note      string
	CreatedAt time.Time
}

// OrderSide is either buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is a resting order on the DEX book.
type Order struct {
	ID        int64
	UserID    int64
	Side      OrderSide
	Price     int64
	Amount    int64
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new active user with a hashed password.
	CreateUser(ctx context.Context, username string, email *string, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateProfile overwrites the profile fields of a user.
	UpdateProfile(ctx context.Context, userID int64, p Profile) error
}

// RoomStore handles direct chat room persistence.
type RoomStore interface {
	// CreateRoom inserts a room for an already canonical pair.
	// Returns ErrConflict if the pair already has a room.
	CreateRoom(ctx context.Context, user1ID, user2ID int64) (*Room, error)

	// GetRoomByID retrieves a room by ID.
	GetRoomByID(ctx context.Context, id int64) (*Room, error)

	// GetRoomByPair retrieves the room of a canonical pair.
	GetRoomByPair(ctx context.Context, user1ID, user2ID int64) (*Room, error)

	// ListRoomsForUser lists rooms the user participates in, newest first.
	ListRoomsForUser(ctx context.Context, userID int64) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage persists a message and returns it with its assigned id and timestamp.
	AppendMessage(ctx context.Context, roomID, senderID int64, content string, imageURL *string) (*Message, error)

	// ListMessages returns the full history of a room in creation order.
	ListMessages(ctx context.Context, roomID int64) ([]*Message, error)
}

// PostStore handles feed persistence.
type PostStore interface {
	CreatePost(ctx context.Context, authorID int64, caption string, imageURL *string) (*Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context) ([]*Post, error)
	CreateComment(ctx context.Context, postID, authorID int64, content string) (*Comment, error)
	// ListComments returns comments of a post oldest first.
	ListComments(ctx context.Context, postID int64) ([]*Comment, error)
}

// WalletStore handles wallet ledger and DEX orders.
type WalletStore interface {
	// AddTx records a ledger entry and applies amount to the user's coins atomically.
	AddTx(ctx context.Context, userID, amount int64, kind, note string) (*Tx, error)
	// ListTxs returns ledger entries newest first.
	ListTxs(ctx context.Context, userID int64) ([]*Tx, error)
	CreateOrder(ctx context.Context, userID int64, side OrderSide, price, amount int64) (*Order, error)
	// ListOrders returns orders of one side, best price first.
	ListOrders(ctx context.Context, side OrderSide) ([]*Order, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore
	PostStore
	WalletStore

	// Migrate applies the schema. Safe to run repeatedly.
	Migrate(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}
