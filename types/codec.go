package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Domain tags are raw ASCII prefixes that keep the hash inputs of different
// structures disjoint. They carry no terminator; their byte lengths are part
// of the canonical layouts.
const (
	// TxDomainTag prefixes transaction signing bytes.
	TxDomainTag = "TXv1"

	// StateDomainTag prefixes the state-root preimage.
	StateDomainTag = "STATEv1"

	// BlockDomainTag prefixes canonical block bytes.
	BlockDomainTag = "BLOCKv1"
)

// Canonical byte lengths. Every u64 occupies exactly 8 bytes little-endian;
// fixed-width arrays are emitted verbatim.
const (
	// TxSigningBytesLen is len("TXv1") + chain_id + from + to + amount + nonce.
	TxSigningBytesLen = len(TxDomainTag) + 8 + AddressSize + AddressSize + 8 + 8

	// TxCanonicalBytesLen is from + to + amount + nonce + signature.
	TxCanonicalBytesLen = AddressSize + AddressSize + 8 + 8 + SignatureSize

	// BlockFixedBytesLen is the canonical block length excluding transactions:
	// len("BLOCKv1") + parent_hash + height + tx_count + state_root.
	BlockFixedBytesLen = len(BlockDomainTag) + HashSize + 8 + 8 + HashSize
)

// Decode errors.
var (
	// ErrShortBuffer is returned when the input ends before a complete value.
	// DecodeBlock also returns it when the declared transaction count does not
	// match the input length, including when bytes follow the state root.
	ErrShortBuffer = errors.New("canonical decode: short buffer")

	// ErrTrailingBytes is returned when the input continues past the value.
	ErrTrailingBytes = errors.New("canonical decode: trailing bytes")

	// ErrBadDomainTag is returned when a domain tag does not match.
	ErrBadDomainTag = errors.New("canonical decode: bad domain tag")
)

// appendUint64 appends v as exactly 8 little-endian bytes.
func appendUint64(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

// reader consumes canonical bytes front to back.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

// take returns the next n bytes without copying.
func (r *reader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrShortBuffer, n, r.off, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) address() (Address, error) {
	var a Address
	b, err := r.take(AddressSize)
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}

func (r *reader) hash() (Hash, error) {
	var h Hash
	b, err := r.take(HashSize)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (r *reader) signature() (Signature, error) {
	var s Signature
	b, err := r.take(SignatureSize)
	if err != nil {
		return s, err
	}
	copy(s[:], b)
	return s, nil
}

// done fails unless the whole buffer has been consumed.
func (r *reader) done() error {
	if r.remaining() != 0 {
		return fmt.Errorf("%w: %d bytes after value", ErrTrailingBytes, r.remaining())
	}
	return nil
}
