package statestore

import (
	"sort"
	"sync"

	"github.com/Tiramisu-Cake/cakechain/types"
)

// MemStore implements Store with plain maps. Entries whose value is set to 0
// are removed, so the representation never distinguishes an explicit zero
// from an absent account.
type MemStore struct {
	mu       sync.RWMutex
	balances map[types.Address]uint64
	nonces   map[types.Address]uint64
}

// NewMemStore creates an empty state.
func NewMemStore() *MemStore {
	return &MemStore{
		balances: make(map[types.Address]uint64),
		nonces:   make(map[types.Address]uint64),
	}
}

// FromAllocation creates a state holding the given balances with all nonces
// zero. Zero-valued allocations are dropped.
func FromAllocation(alloc map[types.Address]uint64) *MemStore {
	s := NewMemStore()
	for addr, amount := range alloc {
		s.SetBalance(addr, amount)
	}
	return s
}

// Balance returns the balance of addr, 0 if absent.
func (s *MemStore) Balance(addr types.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[addr]
}

// Nonce returns the account nonce of addr, 0 if absent.
func (s *MemStore) Nonce(addr types.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nonces[addr]
}

// SetBalance overwrites the balance of addr. Setting 0 removes the entry.
func (s *MemStore) SetBalance(addr types.Address, v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == 0 {
		delete(s.balances, addr)
		return
	}
	s.balances[addr] = v
}

// SetNonce overwrites the account nonce of addr. Setting 0 removes the entry.
func (s *MemStore) SetNonce(addr types.Address, v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == 0 {
		delete(s.nonces, addr)
		return
	}
	s.nonces[addr] = v
}

// Root returns the SHA-256 of the canonical state serialization:
//
//	"STATEv1" || count_le || per address in ascending byte order:
//	    address(32) || balance_le || nonce_le
//
// over the set of addresses with a non-zero balance or nonce.
func (s *MemStore) Root() types.Hash {
	return rootOf(s.snapshot())
}

// Clone returns a deep copy of the state.
func (s *MemStore) Clone() Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &MemStore{
		balances: make(map[types.Address]uint64, len(s.balances)),
		nonces:   make(map[types.Address]uint64, len(s.nonces)),
	}
	for addr, v := range s.balances {
		c.balances[addr] = v
	}
	for addr, v := range s.nonces {
		c.nonces[addr] = v
	}
	return c
}

// Len returns the number of accounts with a non-zero balance or nonce.
func (s *MemStore) Len() int {
	return len(s.snapshot())
}

// Accounts returns all non-zero accounts sorted by ascending address bytes.
func (s *MemStore) Accounts() []Account {
	return s.snapshot()
}

// snapshot collects the non-zero accounts in canonical order.
func (s *MemStore) snapshot() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[types.Address]struct{}, len(s.balances)+len(s.nonces))
	accounts := make([]Account, 0, len(s.balances)+len(s.nonces))
	for addr := range s.balances {
		seen[addr] = struct{}{}
	}
	for addr := range s.nonces {
		seen[addr] = struct{}{}
	}
	for addr := range seen {
		acct := Account{
			Address: addr,
			Balance: s.balances[addr],
			Nonce:   s.nonces[addr],
		}
		if acct.Balance == 0 && acct.Nonce == 0 {
			continue
		}
		accounts = append(accounts, acct)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Address.Less(accounts[j].Address)
	})
	return accounts
}

var _ Store = (*MemStore)(nil)
