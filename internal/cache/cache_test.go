package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, dir string) *Cache {
	t.Helper()
	c, err := New(dir)
	require.NoError(t, err)
	return c
}

func TestKey(t *testing.T) {
	key1, err := Key("openai", "gpt-4o-mini", "prompt text")
	require.NoError(t, err)
	assert.Len(t, key1, 64) // SHA256 hex is 64 chars

	key2, err := Key("openai", "gpt-4o-mini", "prompt text")
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	key3, err := Key("anthropic", "gpt-4o-mini", "prompt text")
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3)
}

func TestKey_NoHashCollision(t *testing.T) {
	a, err := Key("ab", "c")
	require.NoError(t, err)
	b, err := Key("a", "bc")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCache_GetPut(t *testing.T) {
	c := newCache(t, t.TempDir())

	_, ok := c.Get("missing")
	assert.False(t, ok)

	value := []byte(`{"text": "{\"label\": \"Pass\"}", "tokens": 42}`)
	require.NoError(t, c.Put("k1", value))

	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, value, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EntriesAreCompressed(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir)

	value := []byte(fmt.Sprintf("%0512d", 0))
	require.NoError(t, c.Put("k", value))

	raw, err := os.ReadFile(filepath.Join(dir, "k.zst"))
	require.NoError(t, err)
	assert.Less(t, len(raw), len(value))
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.zst"), []byte("not zstd"), 0644))

	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := newCache(t, dir)
	require.NoError(t, c.Put("a", []byte("1")))
	require.NoError(t, c.Put("b", []byte("2")))

	require.NoError(t, c.Clear())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// clearing a missing directory is fine
	require.NoError(t, c.Clear())
}

func TestCache_Clear_SafetyChecks(t *testing.T) {
	t.Run("refuses non-cache files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep me"), 0644))

		err := newCache(t, dir).Clear()
		require.ErrorContains(t, err, "non-cache files")
		assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	})

	t.Run("refuses subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

		err := newCache(t, dir).Clear()
		require.ErrorContains(t, err, "subdirectories")
	})
}

func TestCache_EmptyDir(t *testing.T) {
	c := newCache(t, "")

	require.NoError(t, c.Put("k", []byte("v")))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	require.NoError(t, c.Clear())
}

func TestCache_ConcurrentOperations(t *testing.T) {
	c := newCache(t, t.TempDir())

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			assert.NoError(t, c.Put(key, []byte(key)))
			if got, ok := c.Get(key); ok {
				assert.Equal(t, key, string(got))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
}
