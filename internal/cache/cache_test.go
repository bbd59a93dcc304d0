package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "rtinit-cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// Idempotent: reopening an existing database applies the schema again
	// without error.
	c, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

func TestRecordRunAndLookup(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	run, err := c.RecordRun(ctx, "decls/app.rtinit", "in-digest-1", "out-digest-1")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := c.Lookup(ctx, "in-digest-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "decls/app.rtinit", got.SourcePath)
	assert.Equal(t, "out-digest-1", got.OutputDigest)
	assert.Equal(t, run.CreatedAt, got.CreatedAt)
}

func TestLookup_UnknownDigest(t *testing.T) {
	c := openTestCache(t)

	got, err := c.Lookup(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookup_ReturnsNewestRun(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	_, err := c.RecordRun(ctx, "a.rtinit", "same-digest", "out-1")
	require.NoError(t, err)
	second, err := c.RecordRun(ctx, "a.rtinit", "same-digest", "out-2")
	require.NoError(t, err)

	got, err := c.Lookup(ctx, "same-digest")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestHistory(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	first, err := c.RecordRun(ctx, "a.rtinit", "d1", "o1")
	require.NoError(t, err)
	second, err := c.RecordRun(ctx, "a.rtinit", "d2", "o2")
	require.NoError(t, err)
	_, err = c.RecordRun(ctx, "b.rtinit", "d3", "o3")
	require.NoError(t, err)

	runs, err := c.History(ctx, "a.rtinit")
	require.NoError(t, err)
	require.Len(t, runs, 2, "history must filter by source path")

	// Newest first.
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestHistory_Empty(t *testing.T) {
	c := openTestCache(t)

	runs, err := c.History(context.Background(), "missing.rtinit")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestKey(t *testing.T) {
	base := Key("file-digest", "config", "", "")

	assert.Equal(t, base, Key("file-digest", "config", "", ""))
	assert.NotEqual(t, base, Key("other-digest", "config", "", ""))
	assert.NotEqual(t, base, Key("file-digest", "other", "", ""))
	assert.NotEqual(t, base, Key("file-digest", "config", "example.com/lazy", ""))
	assert.NotEqual(t, base, Key("file-digest", "config", "", "header"))

	// Null separators: shifting text between parts must change the key.
	assert.NotEqual(t, Key("ab", "c", "", ""), Key("a", "bc", "", ""))
}

func TestOutputDigest(t *testing.T) {
	a := OutputDigest([]byte("package config\n"))
	b := OutputDigest([]byte("package config\n"))
	other := OutputDigest([]byte("package other\n"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.Len(t, a, 64) // hex-encoded SHA-256
}
