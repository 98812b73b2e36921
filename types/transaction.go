package types

// Transaction is a signed transfer of amount from one account to another.
// The nonce must equal the sender's current account nonce; the signature
// covers the signing bytes, not the canonical bytes.
type Transaction struct {
	From      Address
	To        Address
	Amount    uint64
	Nonce     uint64
	Signature Signature
}

// SigningBytes returns the 92-byte message an external signer signs:
//
//	"TXv1" || chain_id_le || from(32) || to(32) || amount_le || nonce_le
//
// The signature field is excluded.
func (tx *Transaction) SigningBytes(chainID ChainID) []byte {
	out := make([]byte, 0, TxSigningBytesLen)
	out = append(out, TxDomainTag...)
	out = appendUint64(out, chainID)
	out = append(out, tx.From[:]...)
	out = append(out, tx.To[:]...)
	out = appendUint64(out, tx.Amount)
	out = appendUint64(out, tx.Nonce)
	return out
}

// CanonicalBytes returns the 144-byte canonical encoding used inside block
// bytes:
//
//	from(32) || to(32) || amount_le || nonce_le || signature(64)
func (tx *Transaction) CanonicalBytes() []byte {
	out := make([]byte, 0, TxCanonicalBytesLen)
	return tx.appendCanonical(out)
}

// appendCanonical appends the canonical encoding to out.
func (tx *Transaction) appendCanonical(out []byte) []byte {
	out = append(out, tx.From[:]...)
	out = append(out, tx.To[:]...)
	out = appendUint64(out, tx.Amount)
	out = appendUint64(out, tx.Nonce)
	out = append(out, tx.Signature[:]...)
	return out
}

// DecodeTransaction parses a 144-byte canonical transaction encoding.
// The input must be consumed exactly.
func DecodeTransaction(data []byte) (Transaction, error) {
	r := &reader{buf: data}
	tx, err := decodeTransaction(r)
	if err != nil {
		return Transaction{}, err
	}
	if err := r.done(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func decodeTransaction(r *reader) (Transaction, error) {
	var (
		tx  Transaction
		err error
	)
	if tx.From, err = r.address(); err != nil {
		return tx, err
	}
	if tx.To, err = r.address(); err != nil {
		return tx, err
	}
	if tx.Amount, err = r.uint64(); err != nil {
		return tx, err
	}
	if tx.Nonce, err = r.uint64(); err != nil {
		return tx, err
	}
	if tx.Signature, err = r.signature(); err != nil {
		return tx, err
	}
	return tx, nil
}

// VerifySignature checks the transaction's Ed25519 signature over its signing
// bytes under chainID.
func (tx *Transaction) VerifySignature(chainID ChainID) bool {
	return VerifySignature(tx.From, tx.SigningBytes(chainID), tx.Signature)
}
