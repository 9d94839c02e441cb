package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

// ==== PostStore implementation ====

func scanPost(row rowScanner) (*store.Post, error) {
	var (
		post     store.Post
		imageURL sql.NullString
	)
	if err := row.Scan(&post.ID, &post.AuthorID, &imageURL, &post.Caption, &post.CreatedAt); err != nil {
		return nil, err
	}
	post.ImageURL = nullString(imageURL)
	post.CreatedAt = post.CreatedAt.UTC()
	return &post, nil
}

// CreatePost inserts a feed post.
func (s *SQLiteStore) CreatePost(ctx context.Context, authorID int64, caption string, imageURL *string) (*store.Post, error) {
	query := `
		INSERT INTO posts (author_id, image_url, caption, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, authorID, imageURL, caption, s.timestamp())
	if err != nil {
		return nil, mapError(err, "insert post")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.GetPost(ctx, id)
}

// GetPost retrieves a post by ID.
func (s *SQLiteStore) GetPost(ctx context.Context, id int64) (*store.Post, error) {
	query := `
		SELECT id, author_id, image_url, caption, created_at
		FROM posts
		WHERE id = ?
	`
	post, err := scanPost(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "query post")
	}
	return post, nil
}

// ListPosts returns posts newest first.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]*store.Post, error) {
	query := `
		SELECT id, author_id, image_url, caption, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*store.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// CreateComment adds a comment to a post.
func (s *SQLiteStore) CreateComment(ctx context.Context, postID, authorID int64, content string) (*store.Comment, error) {
	query := `
		INSERT INTO comments (post_id, author_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`
	createdAt := s.timestamp()
	result, err := s.db.ExecContext(ctx, query, postID, authorID, content, createdAt)
	if err != nil {
		return nil, mapError(err, "insert comment")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// ListComments returns comments of a post oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, postID int64) ([]*store.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*store.Comment, 0)
	for rows.Next() {
		var c store.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
