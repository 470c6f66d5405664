package search

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cacheFileName = "search_cache.gob"

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

// CacheEntry holds the matches found in one file for one expression.
type CacheEntry struct {
	Metadata  fileMetadata
	Matches   []Match
	CreatedAt time.Time
}

// Cache stores search results on disk so that unchanged files are not
// searched again by later runs with the same expression.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.RWMutex
	maxAge   time.Duration
	dirty    bool
}

// NewCache opens the cache kept in cacheDir, creating the directory when
// needed.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		maxAge:   24 * time.Hour,
	}
	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return cache, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.CacheDir, cacheFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the cache to disk if anything changed since it was loaded.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}
	file, err := os.Create(filepath.Join(c.CacheDir, cacheFileName))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	c.dirty = false
	return nil
}

// SetMaxAge sets how long entries stay valid.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.maxAge = duration
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]CacheEntry)
	c.dirty = true
}

func (c *Cache) set(key, filename string, matches []Match) error {
	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = CacheEntry{
		Metadata:  metadata,
		Matches:   matches,
		CreatedAt: time.Now(),
	}
	c.dirty = true
	return nil
}

func (c *Cache) get(key, filename string) ([]Match, bool) {
	c.mutex.RLock()
	entry, exists := c.entries[key]
	maxAge := c.maxAge
	c.mutex.RUnlock()
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(filename, entry, maxAge) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.dirty = true
		c.mutex.Unlock()
		return nil, false
	}
	return entry.Matches, true
}

func (c *Cache) isEntryInvalid(filename string, entry CacheEntry, maxAge time.Duration) bool {
	if maxAge > 0 && time.Since(entry.CreatedAt) > maxAge {
		return true
	}
	current, err := getFileMetadata(filename)
	return err != nil || !current.LastModified.Equal(entry.Metadata.LastModified) || current.Hash != entry.Metadata.Hash
}

// Cached wraps searcher so that results are served from cache while a
// file is unchanged. expr identifies what searcher looks for; entries
// recorded for another expression are never returned.
func Cached(searcher FileSearcher, cache *Cache, expr string) FileSearcher {
	return &cachedSearcher{searcher: searcher, cache: cache, expr: expr}
}

type cachedSearcher struct {
	searcher FileSearcher
	cache    *Cache
	expr     string
}

func (s *cachedSearcher) SearchFile(path string) ([]Match, error) {
	key := s.expr + "\x00" + path
	if matches, ok := s.cache.get(key, path); ok {
		return matches, nil
	}

	matches, err := s.searcher.SearchFile(path)
	if err != nil {
		return matches, err
	}
	if err := s.cache.set(key, path, matches); err != nil {
		return matches, err
	}
	return matches, nil
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}
