package types

import "fmt"

// Block is a batch of transactions extending the chain at a given height.
// Transaction order is significant. StateRoot is the root the block claims
// for the state after applying its transactions; it is carried verbatim in
// the canonical bytes, never recomputed while hashing.
type Block struct {
	ParentHash Hash
	Height     uint64
	Txs        []Transaction
	StateRoot  Hash
}

// CanonicalBytes returns the canonical block encoding:
//
//	"BLOCKv1" || parent_hash(32) || height_le || tx_count_le ||
//	  tx_0 || tx_1 || … || state_root(32)
//
// where each transaction uses its 144-byte canonical encoding.
func (b *Block) CanonicalBytes() []byte {
	out := make([]byte, 0, BlockFixedBytesLen+len(b.Txs)*TxCanonicalBytesLen)
	out = append(out, BlockDomainTag...)
	out = append(out, b.ParentHash[:]...)
	out = appendUint64(out, b.Height)
	out = appendUint64(out, uint64(len(b.Txs)))
	for i := range b.Txs {
		out = b.Txs[i].appendCanonical(out)
	}
	out = append(out, b.StateRoot[:]...)
	return out
}

// Hash returns the SHA-256 of the canonical block bytes.
func (b *Block) Hash() Hash {
	return Sum256(b.CanonicalBytes())
}

// DecodeBlock parses a canonical block encoding. The declared transaction
// count must match the buffer exactly; short, oversized, and mistagged inputs
// are rejected.
func DecodeBlock(data []byte) (Block, error) {
	r := &reader{buf: data}

	tag, err := r.take(len(BlockDomainTag))
	if err != nil {
		return Block{}, err
	}
	if string(tag) != BlockDomainTag {
		return Block{}, fmt.Errorf("%w: %q", ErrBadDomainTag, tag)
	}

	var b Block
	if b.ParentHash, err = r.hash(); err != nil {
		return Block{}, err
	}
	if b.Height, err = r.uint64(); err != nil {
		return Block{}, err
	}

	count, err := r.uint64()
	if err != nil {
		return Block{}, err
	}
	// The remaining bytes must hold exactly count transactions plus the state
	// root; checking count against the buffer first keeps the length
	// arithmetic in range and bounds the allocation below.
	if count > uint64(r.remaining())/TxCanonicalBytesLen ||
		uint64(r.remaining()) != count*TxCanonicalBytesLen+HashSize {
		return Block{}, fmt.Errorf("%w: tx count %d does not match %d remaining bytes",
			ErrShortBuffer, count, r.remaining())
	}

	if count > 0 {
		b.Txs = make([]Transaction, count)
		for i := range b.Txs {
			if b.Txs[i], err = decodeTransaction(r); err != nil {
				return Block{}, fmt.Errorf("transaction %d: %w", i, err)
			}
		}
	}

	if b.StateRoot, err = r.hash(); err != nil {
		return Block{}, err
	}
	if err := r.done(); err != nil {
		return Block{}, err
	}
	return b, nil
}
