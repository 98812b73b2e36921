// Package chain implements the cakechain chain engine: tip tracking, block
// acceptance, and genesis initialization over a pure in-memory state.
package chain

import (
	"errors"
	"sync"
	"time"

	"github.com/Tiramisu-Cake/cakechain/blockstore"
	"github.com/Tiramisu-Cake/cakechain/logging"
	"github.com/Tiramisu-Cake/cakechain/metrics"
	"github.com/Tiramisu-Cake/cakechain/statestore"
	"github.com/Tiramisu-Cake/cakechain/types"
)

// Engine owns the chain tip and the current ledger state. Exactly one tip
// exists at any time; only blocks extending it are accepted. Validation runs
// against a working clone of the state and commits atomically, so a rejected
// block leaves the engine exactly as it was.
//
// The engine serializes SubmitBlock internally; embedders that need a
// different concurrency regime put their own coordination in front.
type Engine struct {
	mu sync.RWMutex

	chainID     types.ChainID
	genesisHash types.Hash
	tipHash     types.Hash
	tipHeight   uint64
	state       statestore.Store

	log     *logging.Logger
	metrics metrics.Metrics
	archive blockstore.Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithChainID sets the chain identifier mixed into transaction signing
// bytes. Defaults to types.DefaultChainID.
func WithChainID(id types.ChainID) Option {
	return func(e *Engine) { e.chainID = id }
}

// WithLogger sets the engine's logger. Defaults to a nop logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics sets the engine's metrics sink. Defaults to nop metrics.
func WithMetrics(m metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithBlockStore attaches an archive that receives the canonical bytes of
// every accepted block, genesis included. Archive failures are logged and
// never affect acceptance.
func WithBlockStore(s blockstore.Store) Option {
	return func(e *Engine) { e.archive = s }
}

// New constructs an engine at genesis from the initial allocation. The
// allocation maps addresses to starting balances; all nonces start at zero
// and a nil or empty allocation yields the empty state.
func New(alloc map[types.Address]uint64, opts ...Option) *Engine {
	e := &Engine{
		chainID: types.DefaultChainID,
		state:   statestore.FromAllocation(alloc),
		log:     logging.NewNopLogger(),
		metrics: metrics.NewNopMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("chain")

	genesis := GenesisBlock(e.state)
	e.genesisHash = genesis.Hash()
	e.tipHash = e.genesisHash
	e.tipHeight = GenesisHeight

	e.metrics.SetTipHeight(e.tipHeight)
	e.metrics.SetAccountCount(e.state.Len())
	e.archiveBlock(&genesis)

	e.log.Info("chain initialized",
		logging.ChainID(e.chainID),
		logging.BlockHash(e.genesisHash.Bytes()),
		logging.StateRoot(genesis.StateRoot.Bytes()),
		logging.Count(e.state.Len()))

	return e
}

// ChainID returns the engine's chain identifier.
func (e *Engine) ChainID() types.ChainID {
	return e.chainID
}

// GenesisHash returns the hash of the genesis block.
func (e *Engine) GenesisHash() types.Hash {
	return e.genesisHash
}

// TipHash returns the hash of the most recently accepted block.
func (e *Engine) TipHash() types.Hash {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tipHash
}

// TipHeight returns the height of the most recently accepted block.
func (e *Engine) TipHeight() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tipHeight
}

// StateRoot returns the root of the current state.
func (e *Engine) StateRoot() types.Hash {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Root()
}

// Balance returns the balance of addr in the current state, 0 if absent.
func (e *Engine) Balance(addr types.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Balance(addr)
}

// Nonce returns the account nonce of addr in the current state, 0 if absent.
func (e *Engine) Nonce(addr types.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Nonce(addr)
}

// Accounts returns a snapshot of all non-zero accounts in canonical order.
func (e *Engine) Accounts() []statestore.Account {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Accounts()
}

// SubmitBlock validates b against the current tip and state. On success the
// tip advances and the post-state replaces the current state; on any failure
// the engine is unchanged and the rejection cause is returned.
func (e *Engine) SubmitBlock(b *types.Block) error {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		e.metrics.ObserveSubmitDuration(time.Since(start))
	}()

	if b.ParentHash != e.tipHash {
		return e.reject(b, &types.BadParentError{Expected: e.tipHash, Got: b.ParentHash})
	}
	if want := e.tipHeight + 1; b.Height != want {
		return e.reject(b, &types.BadHeightError{Expected: want, Got: b.Height})
	}

	// Apply transactions in block order against a working copy. The first
	// invalid transaction rejects the whole block; nothing is retained.
	working := e.state.Clone()
	for i := range b.Txs {
		if err := types.ApplyTx(working, &b.Txs[i], e.chainID); err != nil {
			return e.reject(b, &types.TxInvalidError{Index: i, Cause: err})
		}
	}

	if computed := working.Root(); computed != b.StateRoot {
		return e.reject(b, &types.BadStateRootError{Expected: b.StateRoot, Computed: computed})
	}

	// Commit: swap state and advance the tip.
	hash := b.Hash()
	e.state = working
	e.tipHash = hash
	e.tipHeight = b.Height

	e.metrics.IncBlocksAccepted()
	e.metrics.SetTipHeight(e.tipHeight)
	e.metrics.AddTxsApplied(len(b.Txs))
	e.metrics.SetAccountCount(e.state.Len())
	e.archiveBlock(b)

	e.log.Info("block accepted",
		logging.Height(b.Height),
		logging.BlockHash(hash.Bytes()),
		logging.Count(len(b.Txs)),
		logging.Duration(time.Since(start)))

	return nil
}

// reject records a block rejection. The engine state is untouched.
func (e *Engine) reject(b *types.Block, err error) error {
	reason := types.RejectReason(err)
	e.metrics.IncBlocksRejected(reason)
	var txInvalid *types.TxInvalidError
	if errors.As(err, &txInvalid) {
		e.metrics.IncTxsRejected(types.RejectReason(txInvalid.Cause))
	}

	e.log.Info("block rejected",
		logging.Height(b.Height),
		logging.Reason(reason),
		logging.Error(err))
	return err
}

// archiveBlock records an accepted block's canonical size and saves its
// canonical bytes to the attached archive, if any.
func (e *Engine) archiveBlock(b *types.Block) {
	data := b.CanonicalBytes()
	e.metrics.SetBlockSize(len(data))
	if e.archive == nil {
		return
	}
	hash := b.Hash()
	if err := e.archive.SaveBlock(b.Height, hash.Bytes(), data); err != nil {
		e.log.Warn("archiving block failed",
			logging.Height(b.Height),
			logging.BlockHash(hash.Bytes()),
			logging.Error(err))
	}
}
