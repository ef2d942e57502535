package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and ledger implementations
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: entity already exists or a uniqueness rule was hit
// - ErrExhausted: a pool has no entries left to hand out
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrInsufficientFunds: an account cannot cover a transfer
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrExhausted         = errors.New("exhausted")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnavailable       = errors.New("unavailable")
)
