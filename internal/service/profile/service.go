package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/validation"
)

// ErrUserNotFound is returned when the profile owner does not exist.
var ErrUserNotFound = errors.New("user not found")

// Input is an edit of the profile form.
type Input struct {
	Nickname   string `json:"nickname" form:"nickname" validate:"required,min=3,max=12"`
	BirthDate  string `json:"birth_date" form:"birth_date" validate:"required,date"`
	Gender     string `json:"gender" form:"gender" validate:"required,oneof=male female prefer_not_to_answer"`
	Sport      string `json:"sport" form:"sport" validate:"required,oneof=gym soccer running others"`
	TimeWindow string `json:"time_window" form:"time_window" validate:"max=64"`
	Region     string `json:"region" form:"region" validate:"max=64"`
	Goal       string `json:"goal" form:"goal" validate:"max=280"`
}

// Service manages user profiles.
type Service struct {
	users store.UserStore
	media *media.Storage
	log   *zerolog.Logger
}

// NewService creates a profile service.
func NewService(users store.UserStore, storage *media.Storage, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{users: users, media: storage, log: logger}
}

// Get returns the user owning the profile.
func (s *Service) Get(ctx context.Context, userID int64) (*store.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Complete reports whether the user has filled in the required profile fields.
func Complete(u *store.User) bool {
	return u.Nickname != nil && u.BirthDate != nil && u.Gender != nil && u.Sport != nil
}

// Update validates and stores a profile edit. avatar is optional.
func (s *Service) Update(ctx context.Context, userID int64, in Input, avatar *media.Upload) (*store.User, error) {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.TimeWindow = strings.TrimSpace(in.TimeWindow)
	in.Region = strings.TrimSpace(in.Region)
	in.Goal = strings.TrimSpace(in.Goal)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	birth, err := time.Parse(validation.DateLayout, in.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("%w: birth_date: %v", validation.ErrInvalid, err)
	}

	p := store.Profile{
		Nickname:   in.Nickname,
		BirthDate:  birth,
		Gender:     in.Gender,
		Sport:      in.Sport,
		TimeWindow: optional(in.TimeWindow),
		Region:     optional(in.Region),
		Goal:       optional(in.Goal),
	}

	if avatar != nil {
		url, err := s.media.Save(ctx, media.CategoryAvatars, avatar.Filename, avatar.Reader)
		if err != nil {
			return nil, err
		}
		p.AvatarURL = &url
	}

	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.Info().Int64("user_id", userID).Bool("avatar", avatar != nil).Msg("profile updated")
	return s.Get(ctx, userID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
