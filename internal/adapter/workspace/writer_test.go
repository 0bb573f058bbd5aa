package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWriter(t *testing.T, deny ...string) *Writer {
	t.Helper()
	w, err := Open(t.TempDir(), deny)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWriteFileRoundTrip(t *testing.T) {
	w := openWriter(t)

	require.NoError(t, w.WriteFile("a.py", "print(1)"))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "print(1)", string(data))
}

func TestWriteFileOverwrites(t *testing.T) {
	w := openWriter(t)

	require.NoError(t, w.WriteFile("notes.txt", "a much longer first version"))
	require.NoError(t, w.WriteFile("notes.txt", "short"))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestWriteFileIdempotent(t *testing.T) {
	w := openWriter(t)

	require.NoError(t, w.WriteFile("same.txt", "content\n"))
	once, err := os.ReadFile(filepath.Join(w.Dir(), "same.txt"))
	require.NoError(t, err)

	require.NoError(t, w.WriteFile("same.txt", "content\n"))
	twice, err := os.ReadFile(filepath.Join(w.Dir(), "same.txt"))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestWriteFileCreatesParents(t *testing.T) {
	w := openWriter(t)

	require.NoError(t, w.WriteFile("pkg/sub/mod.py", "x = 1"))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "pkg", "sub", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1", string(data))
}

func TestWriteFileRejectsOutsidePaths(t *testing.T) {
	w := openWriter(t, ".env", "**/.git/**")

	tests := []struct {
		name string
		file string
	}{
		{"empty", "  "},
		{"absolute", "/tmp/evil.py"},
		{"parent escape", "../evil.py"},
		{"nested escape", "a/../../evil.py"},
		{"denied base name", "config/.env"},
		{"denied directory", ".git/config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.WriteFile(tt.file, "x")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPathNotAllowed), "got %v", err)
		})
	}
}

func TestWriteFileRejectsSymlinkEscape(t *testing.T) {
	w := openWriter(t)
	outside := t.TempDir()

	if err := os.Symlink(outside, filepath.Join(w.Dir(), "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := w.WriteFile("link/escape.txt", "x")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(outside, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpenRejectsInvalidPattern(t *testing.T) {
	_, err := Open(t.TempDir(), []string{"[unclosed"})
	assert.Error(t, err)
}
