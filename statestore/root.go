package statestore

import (
	"encoding/binary"

	"github.com/Tiramisu-Cake/cakechain/types"
)

// rootOf hashes the canonical serialization of a sorted account snapshot.
func rootOf(accounts []Account) types.Hash {
	return types.Sum256(canonicalBytes(accounts))
}

// canonicalBytes serializes a sorted snapshot as the state-root preimage:
// the "STATEv1" tag, the account count as u64 LE, then for each account its
// 32 address bytes, balance, and nonce, both u64 LE.
func canonicalBytes(accounts []Account) []byte {
	entryLen := types.AddressSize + 8 + 8
	out := make([]byte, 0, len(types.StateDomainTag)+8+len(accounts)*entryLen)
	out = append(out, types.StateDomainTag...)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(accounts)))
	for _, acct := range accounts {
		out = append(out, acct.Address[:]...)
		out = binary.LittleEndian.AppendUint64(out, acct.Balance)
		out = binary.LittleEndian.AppendUint64(out, acct.Nonce)
	}
	return out
}
