package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Categories of stored media. Each maps to a sub-directory of the upload dir.
const (
	CategoryAvatars = "avatars"
	CategoryPosts   = "posts"
	CategoryChat    = "chat"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUnknownCategory = errors.New("unknown media category")
)

var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

var categories = map[string]struct{}{
	CategoryAvatars: {},
	CategoryPosts:   {},
	CategoryChat:    {},
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// Storage saves uploaded images on local disk and hands out their public URLs.
type Storage struct {
	dir      string
	prefix   string
	maxBytes int64
	log      *zerolog.Logger
}

// New creates a storage rooted at dir whose files are served under publicPrefix.
func New(dir, publicPrefix string, maxBytes int64, logger *zerolog.Logger) *Storage {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Storage{dir: dir, prefix: publicPrefix, maxBytes: maxBytes, log: logger}
}

// Dir is the directory uploaded files live in.
func (s *Storage) Dir() string {
	return s.dir
}

// Save stores one image under category and returns its public URL.
// The stored name is random; filename only serves logging.
func (s *Storage) Save(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	if _, ok := categories[category]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name := uuid.NewString() + mt.Extension()
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return "", err
	}

	s.log.Debug().
		Str("category", category).
		Str("original", filename).
		Str("stored", name).
		Str("mime", mt.String()).
		Int("bytes", len(data)).
		Msg("media stored")

	return path.Join(s.prefix, category, name), nil
}

func writeFile(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(name)
		return fmt.Errorf("write media file: %w", err)
	}
	return f.Close()
}
