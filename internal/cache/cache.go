// Package cache stores inference responses on disk, zstd-compressed and
// addressed by a hash of (model, prompt).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const fileExt = ".json.zst"

// Entry is one cached response.
type Entry struct {
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache provides caching for inference responses
type Cache struct {
	dir string
	mu  sync.Mutex

	codecOnce sync.Once
	codecErr  error
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

// New creates a new cache instance with the specified directory. An empty
// directory disables caching.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Key generates the cache key for a model's response to prompt.
func Key(model, prompt string) string {
	h := sha256.New()
	writeString(h, model)
	writeString(h, prompt)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) codec() error {
	c.codecOnce.Do(func() {
		c.enc, c.codecErr = zstd.NewWriter(nil)
		if c.codecErr != nil {
			return
		}
		c.dec, c.codecErr = zstd.NewReader(nil)
	})
	return c.codecErr
}

// Get retrieves a cached entry if it exists. Unreadable entries are misses.
func (c *Cache) Get(key string) (Entry, bool) {
	if c.dir == "" {
		return Entry{}, false
	}
	if err := c.codec(); err != nil {
		return Entry{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	compressed, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return Entry{}, false
	}
	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

// Put stores an entry under key.
func (c *Cache) Put(key string, e Entry) error {
	if c.dir == "" {
		return nil
	}
	if err := c.codec(); err != nil {
		return fmt.Errorf("initializing zstd: %w", err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}
	compressed := c.enc.EncodeAll(data, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.cachePath(key), compressed, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c.dir == "" {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileExt) {
			n++
		}
	}
	return n
}

// Clear removes all cached responses. It refuses to delete a directory that
// holds anything other than cache files.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !strings.HasSuffix(entry.Name(), fileExt) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

func writeString(w io.Writer, s string) {
	// null byte delimiter prevents ("ab","c") colliding with ("a","bc")
	_, _ = w.Write([]byte(s + "\x00"))
}
