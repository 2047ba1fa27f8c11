package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const entryExt = ".zst"

// Cache stores zstd-compressed judge responses on disk, keyed by a hash of
// everything that determines the response.
type Cache struct {
	dir string
	mu  sync.Mutex

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a new cache instance with the specified directory. An empty
// dir disables caching.
func New(dir string) (*Cache, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Cache{dir: dir, encoder: enc, decoder: dec}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key hashes parts into a cache key. Parts are delimited, so ("ab", "c")
// and ("a", "bc") give different keys.
func Key(parts ...string) (string, error) {
	h := sha256.New()
	for _, p := range parts {
		if err := writeString(h, p); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached bytes for key. Unreadable or corrupt entries are
// a miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return nil, false
	}
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, false
	}
	return out, true
}

// Put stores value under key.
func (c *Cache) Put(key string, value []byte) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	compressed := c.encoder.EncodeAll(value, nil)
	if err := os.WriteFile(c.cachePath(key), compressed, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Clear removes all cached entries. It refuses to delete a directory that
// holds anything other than cache entries.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != entryExt {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c.dir == "" {
		return 0
	}
	matches, _ := filepath.Glob(filepath.Join(c.dir, "*"+entryExt))
	return len(matches)
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+entryExt)
}

func writeString(w io.Writer, s string) error {
	// null byte delimiter prevents collisions between adjacent parts
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
