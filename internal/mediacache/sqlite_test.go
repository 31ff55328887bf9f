package mediacache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/notetoken/internal/content"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "media.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStorePutGet(t *testing.T) {
	s, _ := openTemp(t)

	_, ok := s.Get("https://example.com/a")
	assert.False(t, ok)

	s.Put("https://example.com/a", content.MediaVideo)
	s.Put("https://example.com/a", content.MediaAudio)
	s.Put("https://example.com/b", content.MediaNone)

	kind, ok := s.Get("https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, content.MediaAudio, kind)

	_, ok = s.Get("https://example.com/b")
	assert.False(t, ok)

	n, err := s.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	s.Put("https://example.com/img", content.MediaImage)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	kind, ok := reopened.Get("https://example.com/img")
	require.True(t, ok)
	assert.Equal(t, content.MediaImage, kind)
}
