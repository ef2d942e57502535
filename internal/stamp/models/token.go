package models

import (
	"time"

	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
)

// Token is the aggregate root for a single-use stamp certificate.
//
// Invariants:
//   - ID is assigned sequentially at mint, dense from 0, immutable
//   - Price is fixed at mint and immutable thereafter
//   - Status only ever moves Available → Paid → Bound, never backward,
//     never skipping Paid; Bound is terminal
//   - Document and Password are empty until the token is Bound
//   - Owner always equals the ownership ledger's holder for this ID; the
//     service updates both inside a single write boundary
//
// A token is never deleted. The seller of record for the primary sale is
// always the minting authority, regardless of the current owner.
type Token struct {
	ID        id.TokenID  `json:"id"`
	Status    Status      `json:"status"`
	Price     id.Amount   `json:"price"`
	Document  string      `json:"document"`
	Password  string      `json:"-"`
	Owner     id.Identity `json:"owner"`
	MintedAt  time.Time   `json:"minted_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewToken constructs a freshly minted token owned by the minting authority.
// The ID is assigned by the registry store at insert time.
func NewToken(price id.Amount, authority id.Identity, now time.Time) *Token {
	return &Token{
		Status:    StatusAvailable,
		Price:     price,
		Owner:     authority,
		MintedAt:  now,
		UpdatedAt: now,
	}
}

// CanPurchase checks that the token is still in the availability pool.
// Use with ApplyPurchase in Execute callbacks so the check and the mutation
// happen under the same write boundary.
func (t *Token) CanPurchase() error {
	if !t.Status.CanTransitionTo(StatusPaid) {
		return dErrors.New(dErrors.CodeInvariantViolation, "token is not available")
	}
	return nil
}

// ApplyPurchase transitions the token to Paid and hands it to the buyer.
// Call CanPurchase first to validate the transition.
func (t *Token) ApplyPurchase(buyer id.Identity, now time.Time) {
	t.Status = StatusPaid
	t.Owner = buyer
	t.UpdatedAt = now
}

// CanBind checks that the token has been bought and not yet used. The same
// check covers "not yet bought" and "already bound" since Bound is terminal.
func (t *Token) CanBind() error {
	if !t.Status.CanTransitionTo(StatusBound) {
		return dErrors.New(dErrors.CodeInvariantViolation, "token is not paid")
	}
	return nil
}

// ApplyBind writes the document reference and password and seals the token.
// Call CanBind first to validate the transition.
func (t *Token) ApplyBind(document, password string, now time.Time) {
	t.Status = StatusBound
	t.Document = document
	t.Password = password
	t.UpdatedAt = now
}

// IsOwnedBy reports whether the given identity currently holds the token.
func (t *Token) IsOwnedBy(caller id.Identity) bool {
	return t.Owner == caller
}

// Clone returns an independent copy so stores can hand out snapshots without
// exposing internal state to mutation.
func (t *Token) Clone() *Token {
	clone := *t
	return &clone
}
