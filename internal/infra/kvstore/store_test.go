package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStore_GetPutDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("likedSongs")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, s.Put("likedSongs", []byte(`[1]`)))
			got, err := s.Get("likedSongs")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[1]`), got)

			require.NoError(t, s.Put("likedSongs", []byte(`[2,3]`)))
			got, err = s.Get("likedSongs")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[2,3]`), got)

			require.NoError(t, s.Delete("likedSongs"))
			_, err = s.Get("likedSongs")
			assert.True(t, errors.Is(err, ErrNotFound))

			assert.NoError(t, s.Delete("likedSongs"))
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put("k", buf))
	buf[0] = 'x'

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _ := s.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put("playlists", []byte(`[]`)))

	data, err := os.ReadFile(filepath.Join(dir, "playlists.json"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStore_InvalidKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", "with space"} {
		t.Run(key, func(t *testing.T) {
			assert.Error(t, s.Put(key, []byte("x")))
			_, err := s.Get(key)
			assert.Error(t, err)
			assert.False(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in       string
		expected string
	}{
		{in: "~", expected: home},
		{in: "~/.hearo", expected: filepath.Join(home, ".hearo")},
		{in: "/var/lib/hearo", expected: "/var/lib/hearo"},
		{in: "relative/dir", expected: "relative/dir"},
		{in: "~other", expected: "~other"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := expandHome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := New("memory", nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("file with dir", func(t *testing.T) {
		dir := t.TempDir()
		s, err := New("file", map[string]any{"dir": dir})
		require.NoError(t, err)
		fs, ok := s.(*FileStore)
		require.True(t, ok)
		assert.Equal(t, dir, fs.Dir())
	})

	t.Run("bad settings type", func(t *testing.T) {
		_, err := New("file", map[string]any{"dir": []int{1}})
		assert.Error(t, err)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := New("sqlite", nil)
		assert.Error(t, err)
	})
}
