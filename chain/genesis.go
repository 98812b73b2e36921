package chain

import (
	"github.com/Tiramisu-Cake/cakechain/statestore"
	"github.com/Tiramisu-Cake/cakechain/types"
)

// GenesisHeight is the height of the genesis block.
const GenesisHeight uint64 = 0

// GenesisBlock forms the genesis block over the given initial state: height
// 0, an all-zero parent hash, no transactions, and the root of the initial
// allocation as state root. All nodes of a chain must agree on the
// allocation; the genesis hash commits to it.
func GenesisBlock(initial statestore.Store) types.Block {
	return types.Block{
		ParentHash: types.ZeroHash,
		Height:     GenesisHeight,
		Txs:        nil,
		StateRoot:  initial.Root(),
	}
}
