package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/validation"
)

// ErrPostNotFound is returned when a post does not exist.
var ErrPostNotFound = errors.New("post not found")

type captionInput struct {
	Caption string `json:"caption" validate:"required,max=2000"`
}

type commentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// Entry is a feed post with its author.
type Entry struct {
	Post   *store.Post
	Author *store.User
}

// CommentEntry is a comment with its author.
type CommentEntry struct {
	Comment *store.Comment
	Author  *store.User
}

// Detail is a post with its author and comments, oldest comment first.
type Detail struct {
	Entry
	Comments []CommentEntry
}

// Service provides the community feed.
type Service struct {
	store store.Store
	media *media.Storage
	log   *zerolog.Logger
}

// NewService creates a feed service.
func NewService(st store.Store, storage *media.Storage, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{store: st, media: storage, log: logger}
}

// Create publishes a post. image is optional.
func (s *Service) Create(ctx context.Context, authorID int64, caption string, image *media.Upload) (*store.Post, error) {
	in := captionInput{Caption: strings.TrimSpace(caption)}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var imageURL *string
	if image != nil {
		url, err := s.media.Save(ctx, media.CategoryPosts, image.Filename, image.Reader)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	post, err := s.store.CreatePost(ctx, authorID, in.Caption, imageURL)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.log.Info().Int64("post_id", post.ID).Int64("user_id", authorID).Msg("post created")
	return post, nil
}

// List returns the feed, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	authors, err := s.authors(ctx, lo.Map(posts, func(p *store.Post, _ int) int64 { return p.AuthorID }))
	if err != nil {
		return nil, err
	}

	return lo.Map(posts, func(p *store.Post, _ int) Entry {
		return Entry{Post: p, Author: authors[p.AuthorID]}
	}), nil
}

// Get returns one post with its comments.
func (s *Service) Get(ctx context.Context, postID int64) (*Detail, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	ids := append(lo.Map(comments, func(c *store.Comment, _ int) int64 { return c.AuthorID }), post.AuthorID)
	authors, err := s.authors(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Entry: Entry{Post: post, Author: authors[post.AuthorID]},
		Comments: lo.Map(comments, func(c *store.Comment, _ int) CommentEntry {
			return CommentEntry{Comment: c, Author: authors[c.AuthorID]}
		}),
	}, nil
}

// Comment adds a comment to an existing post.
func (s *Service) Comment(ctx context.Context, postID, authorID int64, content string) (*store.Comment, error) {
	in := commentInput{Content: strings.TrimSpace(content)}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	comment, err := s.store.CreateComment(ctx, postID, authorID, in.Content)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *Service) authors(ctx context.Context, ids []int64) (map[int64]*store.User, error) {
	out := make(map[int64]*store.User)
	for _, id := range lo.Uniq(ids) {
		u, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get author %d: %w", id, err)
		}
		out[id] = u
	}
	return out, nil
}
