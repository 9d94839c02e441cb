package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

// ==== RoomStore implementation ====

func scanRoom(row rowScanner) (*store.Room, error) {
	var room store.Room
	if err := row.Scan(&room.ID, &room.User1ID, &room.User2ID, &room.CreatedAt); err != nil {
		return nil, err
	}
	room.CreatedAt = room.CreatedAt.UTC()
	return &room, nil
}

// CreateRoom inserts a room for a canonical pair (user1ID < user2ID).
// A second insert for the same pair fails with store.ErrConflict.
func (s *SQLiteStore) CreateRoom(ctx context.Context, user1ID, user2ID int64) (*store.Room, error) {
	if user1ID >= user2ID {
		return nil, fmt.Errorf("create room: pair (%d, %d) is not canonical", user1ID, user2ID)
	}

	query := `
		INSERT INTO chat_rooms (user1_id, user2_id, created_at)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, user1ID, user2ID, s.timestamp())
	if err != nil {
		return nil, mapError(err, "insert room")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetRoomByID(ctx, id)
}

// GetRoomByID retrieves a room by ID.
func (s *SQLiteStore) GetRoomByID(ctx context.Context, id int64) (*store.Room, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM chat_rooms
		WHERE id = ?
	`
	room, err := scanRoom(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "query room")
	}
	return room, nil
}

// GetRoomByPair retrieves the room of a canonical pair.
func (s *SQLiteStore) GetRoomByPair(ctx context.Context, user1ID, user2ID int64) (*store.Room, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM chat_rooms
		WHERE user1_id = ? AND user2_id = ?
	`
	room, err := scanRoom(s.db.QueryRowContext(ctx, query, user1ID, user2ID))
	if err != nil {
		return nil, mapError(err, "query room by pair")
	}
	return room, nil
}

// ListRoomsForUser lists rooms the user participates in, newest first.
func (s *SQLiteStore) ListRoomsForUser(ctx context.Context, userID int64) ([]*store.Room, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM chat_rooms
		WHERE user1_id = ? OR user2_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*store.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// ==== MessageStore implementation ====

// AppendMessage persists a message. The returned record carries the id and
// timestamp assigned here and is exactly what a later ListMessages yields.
func (s *SQLiteStore) AppendMessage(ctx context.Context, roomID, senderID int64, content string, imageURL *string) (*store.Message, error) {
	query := `
		INSERT INTO messages (room_id, sender_id, content, image_url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	createdAt := s.timestamp()
	result, err := s.db.ExecContext(ctx, query, roomID, senderID, content, imageURL, createdAt)
	if err != nil {
		return nil, mapError(err, "insert message")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	msg := &store.Message{
		ID:        id,
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: createdAt,
	}
	if imageURL != nil {
		v := *imageURL
		msg.ImageURL = &v
	}
	return msg, nil
}

// ListMessages returns the full history of a room in creation order.
func (s *SQLiteStore) ListMessages(ctx context.Context, roomID int64) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, image_url, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var (
			msg      store.Message
			imageURL sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &imageURL, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.ImageURL = nullString(imageURL)
		msg.CreatedAt = msg.CreatedAt.UTC()
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}
