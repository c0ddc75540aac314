package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := UserHomeDir()
	assert.Equal(t, filepath.Join(home, "x", "y.db"), ExpandPath("~/x/y.db"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "a/b", ExpandPath("a/./b"))
	assert.Empty(t, ExpandPath(""))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.py")

	require.NoError(t, WriteFileAtomic(path, []byte("print(1)\n"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("print(2)\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print(2)\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
