package blockstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store using BadgerDB.
// It shares the key scheme of the LevelDB backend.
type BadgerStore struct {
	mu     sync.RWMutex
	db     *badger.DB
	path   string
	height uint64
	base   uint64
	hasAny bool
}

// NewBadgerStore creates a new BadgerDB-backed block store.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badgerdb: %w", err)
	}

	store := &BadgerStore{
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
func (s *BadgerStore) loadMetadata() error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyMetaHeight)
		if err == nil {
			if err := item.Value(func(val []byte) error {
				s.height = decodeUint64(val)
				s.hasAny = true
				return nil
			}); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		item, err = txn.Get(keyMetaBase)
		if err == nil {
			return item.Value(func(val []byte) error {
				s.base = decodeUint64(val)
				return nil
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// SaveBlock persists a block at the given height.
func (s *BadgerStore) SaveBlock(height uint64, hash []byte, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		heightKey := makeHeightKey(height)
		if _, err := txn.Get(heightKey); err == nil {
			return ErrExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("checking block existence: %w", err)
		}

		if err := txn.Set(heightKey, hash); err != nil {
			return err
		}
		if err := txn.Set(makeBlockKey(hash), makeBlockValue(height, data)); err != nil {
			return err
		}
		if !s.hasAny || height > s.height {
			if err := txn.Set(keyMetaHeight, encodeUint64(height)); err != nil {
				return err
			}
		}
		if !s.hasAny || height < s.base {
			if err := txn.Set(keyMetaBase, encodeUint64(height)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
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
func (s *BadgerStore) LoadBlock(height uint64) (hash, data []byte, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeHeightKey(height))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting hash for height %d: %w", height, err)
		}
		if hash, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get(makeBlockKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting block data: %w", err)
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		_, data = parseBlockValue(value)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return hash, data, nil
}

// LoadBlockByHash retrieves a block by its hash.
func (s *BadgerStore) LoadBlockByHash(hash []byte) (height uint64, data []byte, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeBlockKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting block by hash: %w", err)
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		height, data = parseBlockValue(value)
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return height, data, nil
}

// HasBlock checks if a block exists at the given height.
func (s *BadgerStore) HasBlock(height uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(makeHeightKey(height))
		return err
	})
	return err == nil
}

// Height returns the greatest stored height.
func (s *BadgerStore) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// Base returns the earliest stored height.
func (s *BadgerStore) Base() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
