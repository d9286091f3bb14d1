package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AbsentFileCreatesEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped.txt")

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	assert.Equal(t, 0, st.Len())
	assert.False(t, st.Contains("https://example.com/q/a"))

	// First open must create the backing file.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestStore_CommitAndResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped.txt")

	st, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, st.Commit("https://example.com/q/a"))
	require.NoError(t, st.Commit("https://example.com/q/b"))
	assert.True(t, st.Contains("https://example.com/q/a"))
	require.NoError(t, st.Close())

	// A later run sees both identifiers.
	st2, err := Open(path)
	require.NoError(t, err)
	defer st2.Close() //nolint:errcheck

	assert.Equal(t, 2, st2.Len())
	assert.True(t, st2.Contains("https://example.com/q/a"))
	assert.True(t, st2.Contains("https://example.com/q/b"))
	assert.False(t, st2.Contains("https://example.com/q/c"))
}

func TestStore_CommitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped.txt")

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.Commit("https://example.com/q/a"))
	require.NoError(t, st.Commit("https://example.com/q/a"))
	assert.Equal(t, 1, st.Len())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/q/a\n", string(raw))
}

func TestOpen_ToleratesBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://example.com/q/a\n\n  \nhttps://example.com/q/b\n"), 0o644))

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	assert.Equal(t, 2, st.Len())
	assert.True(t, st.Contains("https://example.com/q/a"))
	assert.True(t, st.Contains("https://example.com/q/b"))
}

func TestStore_AppendPreservesExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://example.com/q/a\n"), 0o644))

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Commit("https://example.com/q/b"))
	require.NoError(t, st.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/q/a\nhttps://example.com/q/b\n", string(raw))
}
