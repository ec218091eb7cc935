// Package cache provides the response cache behind the HTTP layer. The
// analytics core itself never caches; memoization is strictly a transport
// concern.
//
// Two backends exist: an in-process LRU (default) and Redis for
// multi-replica deployments.
package cache

import (
	"errors"

	lru "github.com/hashicorp/golang-lru"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// ResponseCache stores serialized HTTP response bodies by key.
type ResponseCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// LRUCache is an in-memory ResponseCache with least-recently-used
// eviction.
type LRUCache struct {
	inner *lru.Cache
}

// NewLRU creates an LRUCache holding at most size entries.
func NewLRU(size int) (*LRUCache, error) {
	inner, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{inner: inner}, nil
}

func (c *LRUCache) Get(key string) ([]byte, error) {
	v, ok := c.inner.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v.([]byte), nil
}

func (c *LRUCache) Set(key string, value []byte) error {
	c.inner.Add(key, value)
	return nil
}

var _ ResponseCache = (*LRUCache)(nil)
