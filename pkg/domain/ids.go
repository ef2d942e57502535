package domain

import (
	"strconv"
	"strings"

	dErrors "meterai/pkg/domain-errors"
)

// TokenID identifies a single stamp token. IDs are assigned sequentially at
// mint time, dense from 0, and never reused.
type TokenID uint64

// ParseTokenID constructs a TokenID from external input (URL params, JSON).
//
// Errors: returns CodeInvalidInput when the value is empty, signed, or not a
// base-10 integer. Range checks against the minted supply happen in the
// service, not here.
func ParseTokenID(s string) (TokenID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token id cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token id must be a non-negative integer")
	}
	return TokenID(n), nil
}

func (t TokenID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// Identity is a stable caller identity supplied by the platform. The service
// treats it as opaque; equality is the only operation it relies on.
type Identity string

// ParseIdentity constructs an Identity from external input.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	return Identity(s), nil
}

func (i Identity) IsZero() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}

// Amount is a native-currency amount in indivisible base units. Prices and
// payments are compared for exact equality, so no fractional representation
// is needed.
type Amount uint64

// ParseAmount constructs an Amount from external input.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "amount must be a non-negative integer")
	}
	return Amount(n), nil
}

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}
