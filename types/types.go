// Package types provides the primitive types, canonical encodings, and
// state-transition rules of the cakechain protocol.
package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

const (
	// AddressSize is the size of an account address in bytes.
	// Addresses are raw Ed25519 public keys.
	AddressSize = 32

	// SignatureSize is the size of an Ed25519 signature in bytes.
	SignatureSize = 64

	// HashSize is the size of a SHA-256 hash in bytes.
	HashSize = 32
)

// ChainID identifies a chain instance. It is mixed into transaction signing
// bytes so signatures cannot be replayed across chains.
type ChainID = uint64

// DefaultChainID is the chain identifier of the canonical cakechain network.
const DefaultChainID ChainID = 1

// Address is a 32-byte account identifier, interpreted as an Ed25519 public
// key. Equality is byte-wise.
type Address [AddressSize]byte

// Hash is an opaque 32-byte SHA-256 digest.
type Hash [HashSize]byte

// Signature is a 64-byte Ed25519 signature.
type Signature [SignatureSize]byte

// ZeroHash is the all-zero hash. It is the parent hash of the genesis block.
var ZeroHash Hash

// String returns the address as a hexadecimal string.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns the raw bytes of the address.
func (a Address) Bytes() []byte {
	return a[:]
}

// Less reports whether a sorts before other in lexicographic byte order.
// This is the ordering used by the state-root serialization.
func (a Address) Less(other Address) bool {
	return bytes.Compare(a[:], other[:]) < 0
}

// AddressFromBytes converts a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, fmt.Errorf("invalid address length: %d != %d", len(b), AddressSize)
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromHex parses a 64-character hexadecimal string into an Address.
func AddressFromHex(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("invalid hex string: %w", err)
	}
	return AddressFromBytes(b)
}

// String returns the hash as a hexadecimal string.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the raw bytes of the hash.
func (h Hash) Bytes() []byte {
	return h[:]
}

// IsZero returns true if the hash is all zero bytes.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// HashFromBytes converts a 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("invalid hash length: %d != %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex parses a 64-character hexadecimal string into a Hash.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hex string: %w", err)
	}
	return HashFromBytes(b)
}

// String returns the signature as a hexadecimal string.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// Bytes returns the raw bytes of the signature.
func (s Signature) Bytes() []byte {
	return s[:]
}

// SignatureFromBytes converts a 64-byte slice into a Signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, fmt.Errorf("invalid signature length: %d != %d", len(b), SignatureSize)
	}
	copy(s[:], b)
	return s, nil
}
