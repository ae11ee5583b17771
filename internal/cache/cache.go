// package cache persists HTTP responses for conditional catalog requests.
//
// Entries are keyed by a hash of the request URL and hold the validators (ETag,
// Last-Modified) needed to revalidate them, plus the body served on a 304.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/moviex/internal/shared"
	bolt "go.etcd.io/bbolt"
)

// MaxEntryBytes bounds a single cached body.
const MaxEntryBytes = 5 * 1024 * 1024

var bucketResponses = []byte("responses")

// Entry is one cached response.
type Entry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Body         []byte    `json:"body"`
	StoredAt     time.Time `json:"stored_at"`
}

// Validated reports whether the entry can be revalidated with a conditional request.
func (e *Entry) Validated() bool {
	return e.ETag != "" || e.LastModified != ""
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

// ResponseCache stores [Entry] values in a bbolt file.
//
// An empty path gives a memory-only cache that is lost on Close.
type ResponseCache struct {
	db  *bolt.DB
	mu  sync.RWMutex
	mem map[string][]byte
}

// Open opens or creates the cache file at path.
func Open(path string) (*ResponseCache, error) {
	if path == "" {
		return &ResponseCache{mem: make(map[string][]byte)}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCacheUnavailable, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResponses)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &ResponseCache{db: db}, nil
}

// Key derives the storage key for a request URL.
func Key(rawURL string) string {
	normalized := strings.TrimRight(rawURL, "/")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the entry stored for rawURL, or nil when there is none.
func (c *ResponseCache) Get(rawURL string) (*Entry, error) {
	data, err := c.read(Key(rawURL))
	if err != nil || data == nil {
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &e, nil
}

// Put stores e under its URL. Bodies larger than [MaxEntryBytes] are rejected.
func (c *ResponseCache) Put(e *Entry) error {
	if len(e.Body) > MaxEntryBytes {
		return fmt.Errorf("%w: body of %d bytes exceeds %d", shared.ErrInvalidArgument, len(e.Body), MaxEntryBytes)
	}
	if e.StoredAt.IsZero() {
		e.StoredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return c.write(Key(e.URL), data)
}

// Delete removes the entry for rawURL if present.
func (c *ResponseCache) Delete(rawURL string) error {
	key := Key(rawURL)
	if c.db == nil {
		c.mu.Lock()
		delete(c.mem, key)
		c.mu.Unlock()
		return nil
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Delete([]byte(key))
	})
}

// Clear removes every entry.
func (c *ResponseCache) Clear() error {
	if c.db == nil {
		c.mu.Lock()
		c.mem = make(map[string][]byte)
		c.mu.Unlock()
		return nil
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketResponses); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketResponses)
		return err
	})
}

// Stats counts entries and their encoded size.
func (c *ResponseCache) Stats() (Stats, error) {
	var s Stats
	if c.db == nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
		for _, v := range c.mem {
			s.Entries++
			s.Bytes += int64(len(v))
		}
		return s, nil
	}

	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).ForEach(func(_, v []byte) error {
			s.Entries++
			s.Bytes += int64(len(v))
			return nil
		})
	})
	return s, err
}

// Close releases the underlying file.
func (c *ResponseCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *ResponseCache) read(key string) ([]byte, error) {
	if c.db == nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.mem[key], nil
	}

	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketResponses).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	return data, err
}

func (c *ResponseCache) write(key string, data []byte) error {
	if c.db == nil {
		c.mu.Lock()
		c.mem[key] = data
		c.mu.Unlock()
		return nil
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Put([]byte(key), data)
	})
}
