package extracthtml

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultCacheMaxAge is how long a cached page stays fresh.
const DefaultCacheMaxAge = 72 * time.Hour

// DiskCache stores fetched documents as files and expires them by mtime.
type DiskCache struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

// NewDiskCache returns a cache rooted at dir. maxAge <= 0 selects
// DefaultCacheMaxAge.
func NewDiskCache(dir string, maxAge time.Duration) *DiskCache {
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}
	return &DiskCache{dir: dir, maxAge: maxAge, now: time.Now}
}

// Path returns the file backing key.
func (c *DiskCache) Path(key string) string {
	return filepath.Join(c.dir, key+".html")
}

// Get returns the cached body for key if it exists and is younger than maxAge.
func (c *DiskCache) Get(key string) (string, bool) {
	p := c.Path(key)
	st, err := os.Stat(p)
	if err != nil {
		return "", false
	}
	if c.now().Sub(st.ModTime()) >= c.maxAge {
		return "", false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Put writes body for key atomically: temp file in the same directory, then rename.
func (c *DiskCache) Put(key, body string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".cache-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.WriteString(body)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, c.Path(key)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Remove deletes the entry for key. A missing entry is not an error.
func (c *DiskCache) Remove(key string) error {
	err := os.Remove(c.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// CachedFetcher serves Fetch from a DiskCache and fills it on miss.
type CachedFetcher struct {
	Next  Fetcher
	Cache *DiskCache

	// Key maps a URL to a cache key. Nil uses HashKey.
	Key func(url string) string
}

// Fetch implements Fetcher.
func (f *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	key := HashKey(url)
	if f.Key != nil {
		key = f.Key(url)
	}

	if body, ok := f.Cache.Get(key); ok {
		return body, nil
	}

	body, err := f.Next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := f.Cache.Put(key, body); err != nil {
		return "", fmt.Errorf("cache %s: %w", url, err)
	}
	return body, nil
}

// HashKey is the default cache key: hex SHA-1 of s.
func HashKey(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
