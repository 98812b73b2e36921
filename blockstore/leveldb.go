package blockstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Key prefixes for LevelDB storage.
var (
	prefixHeight  = []byte("H:") // Height -> Hash mapping
	prefixBlock   = []byte("B:") // Hash -> (Height, Block data) mapping
	keyMetaHeight = []byte("M:height")
	keyMetaBase   = []byte("M:base")
)

// LevelDBStore implements Store using LevelDB.
type LevelDBStore struct {
	mu     sync.RWMutex
	db     *leveldb.DB
	path   string
	height uint64
	base   uint64
	hasAny bool
}

// NewLevelDBStore creates a new LevelDB-backed block store.
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		NoSync: false, // Ensure durability
	})
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}

	store := &LevelDBStore{
		db:   db,
		path: path,
	}

	if err := store.loadMetadata(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	return store, nil
}

// loadMetadata loads the stored height and base from the database.
func (s *LevelDBStore) loadMetadata() error {
	data, err := s.db.Get(keyMetaHeight, nil)
	if err == nil {
		s.height = decodeUint64(data)
		s.hasAny = true
	} else if err != leveldb.ErrNotFound {
		return err
	}

	data, err = s.db.Get(keyMetaBase, nil)
	if err == nil {
		s.base = decodeUint64(data)
	} else if err != leveldb.ErrNotFound {
		return err
	}
	return nil
}

// SaveBlock persists a block at the given height.
func (s *LevelDBStore) SaveBlock(height uint64, hash []byte, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	heightKey := makeHeightKey(height)
	exists, err := s.db.Has(heightKey, nil)
	if err != nil {
		return fmt.Errorf("checking block existence: %w", err)
	}
	if exists {
		return ErrExists
	}

	// Batch keeps height index, hash index, and metadata atomic.
	batch := new(leveldb.Batch)
	batch.Put(heightKey, hash)
	batch.Put(makeBlockKey(hash), makeBlockValue(height, data))
	if !s.hasAny || height > s.height {
		batch.Put(keyMetaHeight, encodeUint64(height))
	}
	if !s.hasAny || height < s.base {
		batch.Put(keyMetaBase, encodeUint64(height))
	}

	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("writing block: %w", err)
	}

	if !s.hasAny || height > s.height {
		s.height = height
	}
	if !s.hasAny || height < s.base {
		s.base = height
	}
	s.hasAny = true
	return nil
}

// LoadBlock retrieves a block by height.
func (s *LevelDBStore) LoadBlock(height uint64) ([]byte, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, err := s.db.Get(makeHeightKey(height), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("getting hash for height %d: %w", height, err)
	}

	blockValue, err := s.db.Get(makeBlockKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("getting block data: %w", err)
	}

	_, data := parseBlockValue(blockValue)
	return hash, data, nil
}

// LoadBlockByHash retrieves a block by its hash.
func (s *LevelDBStore) LoadBlockByHash(hash []byte) (uint64, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blockValue, err := s.db.Get(makeBlockKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return 0, nil, ErrNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("getting block by hash: %w", err)
	}

	height, data := parseBlockValue(blockValue)
	return height, data, nil
}

// HasBlock checks if a block exists at the given height.
func (s *LevelDBStore) HasBlock(height uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, _ := s.db.Has(makeHeightKey(height), nil)
	return exists
}

// Height returns the greatest stored height.
func (s *LevelDBStore) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// Base returns the earliest stored height.
func (s *LevelDBStore) Base() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

// Close closes the database.
func (s *LevelDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Key encoding helpers. Heights use big-endian so LevelDB iterates in order.

func makeHeightKey(height uint64) []byte {
	key := make([]byte, len(prefixHeight)+8)
	copy(key, prefixHeight)
	binary.BigEndian.PutUint64(key[len(prefixHeight):], height)
	return key
}

func makeBlockKey(hash []byte) []byte {
	key := make([]byte, len(prefixBlock)+len(hash))
	copy(key, prefixBlock)
	copy(key[len(prefixBlock):], hash)
	return key
}

func makeBlockValue(height uint64, data []byte) []byte {
	value := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(value[:8], height)
	copy(value[8:], data)
	return value
}

func parseBlockValue(value []byte) (height uint64, data []byte) {
	if len(value) < 8 {
		return 0, nil
	}
	return decodeUint64(value[:8]), value[8:]
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(data []byte) uint64 {
	if len(data) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

var _ Store = (*LevelDBStore)(nil)
