package types

import (
	"crypto/ed25519"
	"crypto/sha256"
)

// Sum256 computes the SHA-256 hash of arbitrary bytes.
func Sum256(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

// VerifySignature checks an Ed25519 signature over msg against the public key
// encoded in addr. It returns false for any malformed input and never panics;
// verification failures of any kind are indistinguishable from a bad
// signature.
func VerifySignature(addr Address, msg []byte, sig Signature) bool {
	pub := ed25519.PublicKey(addr[:])
	return ed25519.Verify(pub, msg, sig[:])
}
