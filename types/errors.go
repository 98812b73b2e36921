package types

import (
	"errors"
	"fmt"
)

// Transaction validation errors. The order in which the checks run is part of
// the protocol: a conforming validator reports the first failing condition in
// the sequence AmountZero, SelfTransfer, InvalidSignature, WrongNonce,
// InsufficientBalance, BalanceOverflow.
var (
	// ErrAmountZero is returned for transactions transferring nothing.
	ErrAmountZero = errors.New("transaction amount is zero")

	// ErrSelfTransfer is returned when sender and recipient are the same.
	ErrSelfTransfer = errors.New("sender and recipient are the same address")

	// ErrInvalidSignature is returned when Ed25519 verification fails.
	// Unexpected crypto failures (malformed keys) classify here as well.
	ErrInvalidSignature = errors.New("invalid transaction signature")

	// ErrBalanceOverflow is returned when crediting the recipient would
	// exceed the u64 range. ApplyTx also returns it when the sender's nonce is
	// already the u64 maximum. Arithmetic never wraps or saturates.
	ErrBalanceOverflow = errors.New("recipient balance would overflow")
)

// WrongNonceError is returned when a transaction's nonce does not match the
// sender's current account nonce.
type WrongNonceError struct {
	Expected uint64
	Got      uint64
}

func (e *WrongNonceError) Error() string {
	return fmt.Sprintf("wrong nonce: expected %d, got %d", e.Expected, e.Got)
}

// InsufficientBalanceError is returned when the sender cannot cover the
// transfer amount.
type InsufficientBalanceError struct {
	Have uint64
	Need uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Have, e.Need)
}

// BadParentError is returned when a block does not extend the current tip.
type BadParentError struct {
	Expected Hash
	Got      Hash
}

func (e *BadParentError) Error() string {
	return fmt.Sprintf("bad parent: expected %s, got %s", e.Expected, e.Got)
}

// BadHeightError is returned when a block's height is not tip height + 1.
type BadHeightError struct {
	Expected uint64
	Got      uint64
}

func (e *BadHeightError) Error() string {
	return fmt.Sprintf("bad height: expected %d, got %d", e.Expected, e.Got)
}

// TxInvalidError rejects a whole block because of one invalid transaction.
// Index is the position of the first failing transaction in block order and
// Cause its underlying transaction error.
type TxInvalidError struct {
	Index int
	Cause error
}

func (e *TxInvalidError) Error() string {
	return fmt.Sprintf("invalid transaction at index %d: %v", e.Index, e.Cause)
}

// Unwrap exposes the underlying transaction error to errors.Is and errors.As.
func (e *TxInvalidError) Unwrap() error {
	return e.Cause
}

// BadStateRootError is returned when the state root recomputed after applying
// a block's transactions does not match the root the block claims.
type BadStateRootError struct {
	Expected Hash
	Computed Hash
}

func (e *BadStateRootError) Error() string {
	return fmt.Sprintf("bad state root: block claims %s, computed %s", e.Expected, e.Computed)
}

// RejectReason maps a transaction or block rejection to a short stable label,
// suitable for metrics and log fields.
func RejectReason(err error) string {
	var (
		wrongNonce   *WrongNonceError
		insufficient *InsufficientBalanceError
		badParent    *BadParentError
		badHeight    *BadHeightError
		txInvalid    *TxInvalidError
		badRoot      *BadStateRootError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &badParent):
		return "bad_parent"
	case errors.As(err, &badHeight):
		return "bad_height"
	case errors.As(err, &badRoot):
		return "bad_state_root"
	case errors.As(err, &txInvalid):
		return "tx_" + RejectReason(txInvalid.Cause)
	case errors.Is(err, ErrAmountZero):
		return "amount_zero"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.As(err, &wrongNonce):
		return "wrong_nonce"
	case errors.As(err, &insufficient):
		return "insufficient_balance"
	case errors.Is(err, ErrBalanceOverflow):
		return "balance_overflow"
	default:
		return "other"
	}
}
