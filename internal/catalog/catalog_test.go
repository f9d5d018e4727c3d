package catalog

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestListCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pdfs")

	require.Empty(t, New(dir).List())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	// idempotent
	require.Empty(t, New(dir).List())
}

func TestListSortedRegularFilesOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "A.pdf", "a.pdf", "my file #1.pdf"} {
		writeFile(t, dir, name, "x")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	got := New(dir).List()

	require.Equal(t, []string{"A.pdf", "a.pdf", "b.pdf", "my file #1.pdf"}, got)
}

func TestListUnreadablePathReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	writeFile(t, dir, "file", "x")

	require.Empty(t, New(filepath.Join(blocker, "pdfs")).List())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", "hello")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	c := New(dir)

	f, err := c.Open("a.pdf")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "a.pdf", f.Name)
	assert.Equal(t, int64(5), f.Size)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	_, err = c.Open("missing.pdf")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Open("sub")
	require.ErrorIs(t, err, ErrNotFound)

	for _, name := range []string{"", ".", "..", "../a.pdf", "sub/a.pdf", `..\a.pdf`} {
		_, err = c.Open(name)
		require.ErrorIs(t, err, ErrInvalidName, name)
	}
}
