// Package statestore provides the in-memory ledger state and its
// deterministic root computation.
package statestore

import (
	"github.com/Tiramisu-Cake/cakechain/types"
)

// Store is the ledger state a chain engine owns: two total mappings from
// address to balance and nonce with default zero. Implementations must be
// safe for concurrent use.
type Store interface {
	types.StateWriter

	// Root returns the deterministic SHA-256 root of the entire state.
	// A stored zero entry and an absent entry yield identical roots.
	Root() types.Hash

	// Clone returns a deep copy sharing nothing with the receiver.
	// Block validation runs against a clone and commits by swapping.
	Clone() Store

	// Len returns the number of accounts with a non-zero balance or nonce.
	Len() int

	// Accounts returns a snapshot of all non-zero accounts sorted by
	// ascending address byte order.
	Accounts() []Account
}

// Account is one ledger entry in a state snapshot.
type Account struct {
	Address types.Address
	Balance uint64
	Nonce   uint64
}
