package chain

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tiramisu-Cake/cakechain/blockstore"
	"github.com/Tiramisu-Cake/cakechain/statestore"
	"github.com/Tiramisu-Cake/cakechain/types"
)

// testAccount derives a deterministic Ed25519 keypair from a one-byte seed.
func testAccount(t *testing.T, seed byte) (types.Address, ed25519.PrivateKey) {
	t.Helper()
	var s [ed25519.SeedSize]byte
	s[0] = seed
	priv := ed25519.NewKeyFromSeed(s[:])
	addr, err := types.AddressFromBytes(priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return addr, priv
}

// signedTx builds a correctly signed transfer.
func signedTx(t *testing.T, priv ed25519.PrivateKey, from, to types.Address, amount, nonce uint64, chainID types.ChainID) types.Transaction {
	t.Helper()
	tx := types.Transaction{From: from, To: to, Amount: amount, Nonce: nonce}
	sig, err := types.SignatureFromBytes(ed25519.Sign(priv, tx.SigningBytes(chainID)))
	require.NoError(t, err)
	tx.Signature = sig
	return tx
}

// nextBlock builds a block extending the engine's tip whose state root is
// the correct post-state root for the given transactions.
func nextBlock(t *testing.T, e *Engine, txs []types.Transaction) *types.Block {
	t.Helper()
	work := statestore.NewMemStore()
	for _, acct := range e.Accounts() {
		work.SetBalance(acct.Address, acct.Balance)
		work.SetNonce(acct.Address, acct.Nonce)
	}
	for i := range txs {
		require.NoError(t, types.ApplyTx(work, &txs[i], e.ChainID()))
	}
	return &types.Block{
		ParentHash: e.TipHash(),
		Height:     e.TipHeight() + 1,
		Txs:        txs,
		StateRoot:  work.Root(),
	}
}

func TestGenesisDeterminism(t *testing.T) {
	e := New(nil)

	require.Equal(t, uint64(0), e.TipHeight())
	require.Equal(t, e.GenesisHash(), e.TipHash())

	// Root of the empty allocation: sha256("STATEv1" || zero count).
	expectedRoot := sha256.Sum256(append([]byte("STATEv1"), make([]byte, 8)...))
	require.Equal(t, types.Hash(expectedRoot), e.StateRoot())

	// The genesis hash is the block hash of the canonical genesis block.
	genesis := types.Block{
		ParentHash: types.ZeroHash,
		Height:     0,
		StateRoot:  types.Hash(expectedRoot),
	}
	require.Equal(t, genesis.Hash(), e.GenesisHash())

	// Two engines from the same allocation agree on everything.
	other := New(nil)
	require.Equal(t, e.GenesisHash(), other.GenesisHash())
	require.Equal(t, e.StateRoot(), other.StateRoot())
}

func TestGenesisAllocation(t *testing.T) {
	a, _ := testAccount(t, 1)
	e := New(map[types.Address]uint64{a: 100})

	require.Equal(t, uint64(100), e.Balance(a))
	require.Equal(t, uint64(0), e.Nonce(a))
	require.Len(t, e.Accounts(), 1)

	// A different allocation yields a different genesis hash.
	other := New(map[types.Address]uint64{a: 101})
	require.NotEqual(t, e.GenesisHash(), other.GenesisHash())
}

func TestSingleTransfer(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 100})

	tx := signedTx(t, privA, a, b, 40, 0, e.ChainID())
	block := nextBlock(t, e, []types.Transaction{tx})

	require.NoError(t, e.SubmitBlock(block))
	require.Equal(t, uint64(1), e.TipHeight())
	require.Equal(t, block.Hash(), e.TipHash())
	require.Equal(t, uint64(60), e.Balance(a))
	require.Equal(t, uint64(40), e.Balance(b))
	require.Equal(t, uint64(1), e.Nonce(a))
	require.Equal(t, uint64(0), e.Nonce(b))
	require.Equal(t, block.StateRoot, e.StateRoot())
}

func TestWrongNonceRejection(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 100})
	tipHash, tipRoot := e.TipHash(), e.StateRoot()

	tx := signedTx(t, privA, a, b, 40, 1, e.ChainID())
	block := nextBlock(t, e, nil)
	block.Txs = []types.Transaction{tx}

	err := e.SubmitBlock(block)
	var txInvalid *types.TxInvalidError
	require.ErrorAs(t, err, &txInvalid)
	require.Equal(t, 0, txInvalid.Index)

	var wrongNonce *types.WrongNonceError
	require.ErrorAs(t, txInvalid.Cause, &wrongNonce)
	require.Equal(t, uint64(0), wrongNonce.Expected)
	require.Equal(t, uint64(1), wrongNonce.Got)

	// Tip and state unchanged.
	require.Equal(t, uint64(0), e.TipHeight())
	require.Equal(t, tipHash, e.TipHash())
	require.Equal(t, tipRoot, e.StateRoot())
}

func TestInsufficientFunds(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 10})

	tx := signedTx(t, privA, a, b, 20, 0, e.ChainID())
	block := nextBlock(t, e, nil)
	block.Txs = []types.Transaction{tx}

	err := e.SubmitBlock(block)
	var insufficient *types.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, uint64(10), insufficient.Have)
	require.Equal(t, uint64(20), insufficient.Need)
	require.Equal(t, uint64(10), e.Balance(a))
}

func TestBalanceOverflow(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 1, b: math.MaxUint64})

	tx := signedTx(t, privA, a, b, 1, 0, e.ChainID())
	block := nextBlock(t, e, nil)
	block.Txs = []types.Transaction{tx}

	err := e.SubmitBlock(block)
	require.ErrorIs(t, err, types.ErrBalanceOverflow)
	require.Equal(t, uint64(1), e.Balance(a))
	require.Equal(t, uint64(math.MaxUint64), e.Balance(b))
}

func TestReorgRejection(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	c, _ := testAccount(t, 3)
	e := New(map[types.Address]uint64{a: 100})
	genesisHash := e.GenesisHash()

	block1 := nextBlock(t, e, []types.Transaction{signedTx(t, privA, a, b, 40, 0, e.ChainID())})
	require.NoError(t, e.SubmitBlock(block1))

	// An alternative block 1 off genesis must not replace the tip.
	alt := &types.Block{
		ParentHash: genesisHash,
		Height:     1,
		Txs:        []types.Transaction{signedTx(t, privA, a, c, 40, 0, e.ChainID())},
	}

	err := e.SubmitBlock(alt)
	var badParent *types.BadParentError
	require.ErrorAs(t, err, &badParent)
	require.Equal(t, block1.Hash(), badParent.Expected)
	require.Equal(t, genesisHash, badParent.Got)

	require.Equal(t, block1.Hash(), e.TipHash())
	require.Equal(t, uint64(1), e.TipHeight())
	require.Equal(t, uint64(40), e.Balance(b))
	require.Equal(t, uint64(0), e.Balance(c))
}

func TestBadHeight(t *testing.T) {
	e := New(nil)

	block := nextBlock(t, e, nil)
	block.Height = 2

	err := e.SubmitBlock(block)
	var badHeight *types.BadHeightError
	require.ErrorAs(t, err, &badHeight)
	require.Equal(t, uint64(1), badHeight.Expected)
	require.Equal(t, uint64(2), badHeight.Got)
	require.Equal(t, uint64(0), e.TipHeight())
}

func TestBadStateRoot(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 100})
	tipRoot := e.StateRoot()

	block := nextBlock(t, e, []types.Transaction{signedTx(t, privA, a, b, 40, 0, e.ChainID())})
	claimed := types.Sum256([]byte("wrong"))
	block.StateRoot = claimed

	err := e.SubmitBlock(block)
	var badRoot *types.BadStateRootError
	require.ErrorAs(t, err, &badRoot)
	require.Equal(t, claimed, badRoot.Expected)
	require.NotEqual(t, claimed, badRoot.Computed)

	require.Equal(t, tipRoot, e.StateRoot())
	require.Equal(t, uint64(100), e.Balance(a))
}

func TestEmptyBlock(t *testing.T) {
	e := New(nil)
	rootBefore := e.StateRoot()

	block := &types.Block{
		ParentHash: e.TipHash(),
		Height:     1,
		StateRoot:  rootBefore,
	}
	require.NoError(t, e.SubmitBlock(block))
	require.Equal(t, uint64(1), e.TipHeight())
	require.Equal(t, block.Hash(), e.TipHash())
	require.Equal(t, rootBefore, e.StateRoot())
}

func TestNoPartialApplication(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 100})

	good := signedTx(t, privA, a, b, 40, 0, e.ChainID())
	bad := signedTx(t, privA, a, b, 1000, 1, e.ChainID())

	block := nextBlock(t, e, []types.Transaction{good})
	block.Txs = []types.Transaction{good, bad}

	err := e.SubmitBlock(block)
	var txInvalid *types.TxInvalidError
	require.ErrorAs(t, err, &txInvalid)
	require.Equal(t, 1, txInvalid.Index)

	// The valid first transaction must not have leaked into state.
	require.Equal(t, uint64(100), e.Balance(a))
	require.Equal(t, uint64(0), e.Balance(b))
	require.Equal(t, uint64(0), e.Nonce(a))
}

func TestSequentialNoncesWithinBlock(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 100})

	txs := []types.Transaction{
		signedTx(t, privA, a, b, 10, 0, e.ChainID()),
		signedTx(t, privA, a, b, 10, 1, e.ChainID()),
		signedTx(t, privA, a, b, 10, 2, e.ChainID()),
	}
	require.NoError(t, e.SubmitBlock(nextBlock(t, e, txs)))
	require.Equal(t, uint64(3), e.Nonce(a))
	require.Equal(t, uint64(30), e.Balance(b))
}

func TestDeterminism(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, privB := testAccount(t, 2)
	alloc := map[types.Address]uint64{a: 100, b: 50}

	run := func() (*Engine, []types.Hash) {
		e := New(alloc)
		var roots []types.Hash
		blocks := [][]types.Transaction{
			{signedTx(t, privA, a, b, 30, 0, e.ChainID())},
			nil,
			{signedTx(t, privB, b, a, 80, 0, e.ChainID()), signedTx(t, privA, a, b, 1, 1, e.ChainID())},
		}
		for _, txs := range blocks {
			require.NoError(t, e.SubmitBlock(nextBlock(t, e, txs)))
			roots = append(roots, e.StateRoot())
		}
		return e, roots
	}

	e1, roots1 := run()
	e2, roots2 := run()
	require.Equal(t, roots1, roots2)
	require.Equal(t, e1.TipHash(), e2.TipHash())
}

func TestBalanceConservation(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, privB := testAccount(t, 2)
	c, _ := testAccount(t, 3)
	e := New(map[types.Address]uint64{a: 100, b: 50})

	total := func() uint64 {
		var sum uint64
		for _, acct := range e.Accounts() {
			sum += acct.Balance
		}
		return sum
	}
	require.Equal(t, uint64(150), total())

	require.NoError(t, e.SubmitBlock(nextBlock(t, e, []types.Transaction{
		signedTx(t, privA, a, c, 70, 0, e.ChainID()),
		signedTx(t, privB, b, c, 50, 0, e.ChainID()),
	})))
	require.Equal(t, uint64(150), total())
	require.Equal(t, uint64(120), e.Balance(c))

	// b is drained but its nonce keeps the account alive.
	require.Equal(t, uint64(0), e.Balance(b))
	require.Equal(t, uint64(1), e.Nonce(b))
}

func TestArchive(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	store := blockstore.NewMemStore()
	e := New(map[types.Address]uint64{a: 100}, WithBlockStore(store))

	// Genesis is archived at height 0.
	hash, data, err := store.LoadBlock(0)
	require.NoError(t, err)
	require.Equal(t, e.GenesisHash().Bytes(), hash)
	genesis, err := types.DecodeBlock(data)
	require.NoError(t, err)
	require.Equal(t, types.ZeroHash, genesis.ParentHash)

	block := nextBlock(t, e, []types.Transaction{signedTx(t, privA, a, b, 40, 0, e.ChainID())})
	require.NoError(t, e.SubmitBlock(block))

	hash, data, err = store.LoadBlock(1)
	require.NoError(t, err)
	require.Equal(t, block.Hash().Bytes(), hash)
	require.Equal(t, block.CanonicalBytes(), data)

	// Rejected blocks are never archived.
	bad := nextBlock(t, e, nil)
	bad.Height = 9
	require.Error(t, e.SubmitBlock(bad))
	require.False(t, store.HasBlock(2))
	require.Equal(t, uint64(1), store.Height())
}

func TestCustomChainID(t *testing.T) {
	a, privA := testAccount(t, 1)
	b, _ := testAccount(t, 2)
	e := New(map[types.Address]uint64{a: 100}, WithChainID(7))
	require.Equal(t, uint64(7), e.ChainID())

	// A signature under the default chain ID must not verify on chain 7.
	tx := signedTx(t, privA, a, b, 40, 0, types.DefaultChainID)
	block := nextBlock(t, e, nil)
	block.Txs = []types.Transaction{tx}

	err := e.SubmitBlock(block)
	require.ErrorIs(t, err, types.ErrInvalidSignature)
}
