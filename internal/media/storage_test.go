package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

func TestSaveStoresImage(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "/static", 1<<20, nil)

	url, err := s.Save(context.Background(), CategoryChat, "me.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/static/chat/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	stored, err := os.ReadFile(filepath.Join(dir, CategoryChat, filepath.Base(url)))
	require.NoError(t, err)
	require.Equal(t, pngHeader, stored)

	other, err := s.Save(context.Background(), CategoryAvatars, "anim.gif", bytes.NewReader(gifHeader))
	require.NoError(t, err)
	require.NotEqual(t, url, other)
	require.True(t, strings.HasSuffix(other, ".gif"), other)
}

func TestSaveRejectsBadUploads(t *testing.T) {
	s := New(t.TempDir(), "/static", 16, nil)
	ctx := context.Background()

	_, err := s.Save(ctx, CategoryPosts, "empty.png", bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrEmptyFile)

	_, err = s.Save(ctx, CategoryPosts, "big.png", bytes.NewReader(pngHeader))
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = s.Save(ctx, CategoryPosts, "notes.png", strings.NewReader("just text"))
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(ctx, "../etc", "x.png", bytes.NewReader(gifHeader))
	require.ErrorIs(t, err, ErrUnknownCategory)
}
