package blockstore

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore wraps a Store with an LRU read cache keyed by height.
// Writes go straight through; reads fill the cache.
type CachedStore struct {
	inner Store
	cache *lru.Cache[uint64, blockEntry]
}

// NewCachedStore wraps inner with a cache holding up to size blocks.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[uint64, blockEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{
		inner: inner,
		cache: cache,
	}, nil
}

// SaveBlock persists a block and caches it.
func (c *CachedStore) SaveBlock(height uint64, hash, data []byte) error {
	if err := c.inner.SaveBlock(height, hash, data); err != nil {
		return err
	}
	c.cache.Add(height, blockEntry{
		hash: append([]byte(nil), hash...),
		data: append([]byte(nil), data...),
	})
	return nil
}

// LoadBlock retrieves a block by height, serving from the cache when warm.
func (c *CachedStore) LoadBlock(height uint64) (hash, data []byte, err error) {
	if entry, ok := c.cache.Get(height); ok {
		return append([]byte(nil), entry.hash...), append([]byte(nil), entry.data...), nil
	}

	hash, data, err = c.inner.LoadBlock(height)
	if err != nil {
		return nil, nil, err
	}
	c.cache.Add(height, blockEntry{
		hash: append([]byte(nil), hash...),
		data: append([]byte(nil), data...),
	})
	return hash, data, nil
}

// LoadBlockByHash retrieves a block by its hash from the inner store.
func (c *CachedStore) LoadBlockByHash(hash []byte) (uint64, []byte, error) {
	return c.inner.LoadBlockByHash(hash)
}

// HasBlock checks if a block exists at the given height.
func (c *CachedStore) HasBlock(height uint64) bool {
	if c.cache.Contains(height) {
		return true
	}
	return c.inner.HasBlock(height)
}

// Height returns the greatest stored height.
func (c *CachedStore) Height() uint64 {
	return c.inner.Height()
}

// Base returns the earliest stored height.
func (c *CachedStore) Base() uint64 {
	return c.inner.Base()
}

// Close purges the cache and closes the inner store.
func (c *CachedStore) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}

var _ Store = (*CachedStore)(nil)
