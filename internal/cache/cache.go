// Package cache stores fetched article documents so repeated runs do not refetch them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/ppiankov/marketpulse/internal/model"
)

const keyPrefix = "marketpulse-doc-v1-"

// Cache defines the interface for byte caches
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a filesystem-safe cache key from a URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: nothing when disabled, memory only
// without a directory, memory over disk otherwise.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return NopCache{}
	}
	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	if cfg.Dir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(filepath.Clean(cfg.Dir), cfg.DiskTTL))
}

// GetDocument loads a cached document for url
func GetDocument(c Cache, url string) (model.Document, bool) {
	data, ok := c.Get(CacheKey(url))
	if !ok {
		return model.Document{}, false
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		_ = c.Delete(CacheKey(url))
		return model.Document{}, false
	}
	return doc, true
}

// SetDocument stores doc under url using the cache's default TTL
func SetDocument(c Cache, url string, doc model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.Set(CacheKey(url), data, 0)
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(string) ([]byte, bool)               { return nil, false }
func (NopCache) Set(string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(string) error                     { return nil }
func (NopCache) Clear() error                            { return nil }
