package port

import "errors"

// Sentinel errors for the allocation engine and wallet ledger. Match with
// errors.Is; repositories translate storage-level failures into these so the
// usecase layer never inspects driver errors.
var (
	// ErrInsufficientFunds means a debit exceeded the wallet balance. It is a
	// normal business outcome ("not billed"), not a system fault.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrencyConflict means the conditional wallet update found the
	// balance changed since it was read. The caller may retry with a fresh read.
	ErrConcurrencyConflict = errors.New("wallet concurrency conflict")

	// ErrDuplicateClick means a click event with the same click id already
	// exists. Billing recovers by compensating the debit just made.
	ErrDuplicateClick = errors.New("duplicate click")

	// ErrInvalidAmount means a ledger operation was called with a non-positive
	// amount, or an adjustment that would drive the balance negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrWalletNotFound means a conditional update targeted a wallet row that
	// does not exist yet.
	ErrWalletNotFound = errors.New("wallet not found")
)
