package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

const userColumns = `
	id, username, email, password_hash, coins, nickname, birth_date, gender, avatar_url,
	sport, time_window, region, goal, is_active, email_confirmed_at, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*store.User, error) {
	var (
		user             store.User
		email            sql.NullString
		nickname         sql.NullString
		birthDate        sql.NullTime
		gender           sql.NullString
		avatarURL        sql.NullString
		sport            sql.NullString
		timeWindow       sql.NullString
		region           sql.NullString
		goal             sql.NullString
		emailConfirmedAt sql.NullTime
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.PasswordHash,
		&user.Coins,
		&nickname,
		&birthDate,
		&gender,
		&avatarURL,
		&sport,
		&timeWindow,
		&region,
		&goal,
		&user.IsActive,
		&emailConfirmedAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Email = nullString(email)
	user.Nickname = nullString(nickname)
	user.BirthDate = nullTime(birthDate)
	user.Gender = nullString(gender)
	user.AvatarURL = nullString(avatarURL)
	user.Sport = nullString(sport)
	user.TimeWindow = nullString(timeWindow)
	user.Region = nullString(region)
	user.Goal = nullString(goal)
	user.EmailConfirmedAt = nullTime(emailConfirmedAt)
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

// CreateUser creates a new active user with a hashed password.
// Accounts are confirmed on creation; there is no email verification step.
func (s *SQLiteStore) CreateUser(ctx context.Context, username string, email *string, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, is_active, email_confirmed_at, created_at)
		VALUES (?, ?, ?, 1, ?, ?)
	`
	now := s.timestamp()
	result, err := s.db.ExecContext(ctx, query, username, email, passwordHash, now, now)
	if err != nil {
		return nil, mapError(err, "insert user")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "query user")
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, mapError(err, "query user by username")
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "query user by email")
	}
	return user, nil
}

// UpdateProfile overwrites the profile fields of a user.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, userID int64, p store.Profile) error {
	query := `
		UPDATE users
		SET nickname = ?, birth_date = ?, gender = ?, sport = ?,
		    time_window = ?, region = ?, goal = ?,
		    avatar_url = COALESCE(?, avatar_url)
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		p.Nickname, p.BirthDate.UTC(), p.Gender, p.Sport,
		p.TimeWindow, p.Region, p.Goal,
		p.AvatarURL,
		userID,
	)
	if err != nil {
		return mapError(err, "update profile")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update profile: %w", store.ErrNotFound)
	}
	return nil
}
