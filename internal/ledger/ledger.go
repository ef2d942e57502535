// Package ledger abstracts the platform capabilities the stamp service
// consumes rather than reimplements: an identity→token ownership primitive
// and an atomic native-currency transfer primitive.
//
// The service only ever calls through these narrow interfaces, so tests run
// against the in-memory implementations and a deployment can substitute an
// external ledger without touching domain logic.
package ledger

import (
	"context"

	id "meterai/pkg/domain"
)

// Ownership is the token ownership primitive. Register is called once per
// token at mint; Transfer moves a token between identities.
type Ownership interface {
	// Register records the initial holder of a newly minted token.
	// Returns sentinel.ErrConflict if the token is already registered.
	Register(ctx context.Context, tokenID id.TokenID, owner id.Identity) error

	// Transfer moves a token from its current holder to another identity.
	// Returns sentinel.ErrNotFound for unregistered tokens and
	// sentinel.ErrInvalidState when from is not the current holder.
	Transfer(ctx context.Context, tokenID id.TokenID, from, to id.Identity) error

	// OwnerOf reports the current holder. Returns sentinel.ErrNotFound for
	// unregistered tokens.
	OwnerOf(ctx context.Context, tokenID id.TokenID) (id.Identity, error)

	// Holdings reports how many tokens an identity currently holds.
	Holdings(ctx context.Context, owner id.Identity) (int, error)
}

// Bank is the atomic value-transfer primitive. A Transfer either moves the
// full amount or fails with no effect.
type Bank interface {
	// Transfer moves amount from one account to another. Returns
	// sentinel.ErrInsufficientFunds when the source cannot cover it.
	Transfer(ctx context.Context, from, to id.Identity, amount id.Amount) error

	// BalanceOf reports an account balance. Unknown accounts hold zero.
	BalanceOf(ctx context.Context, who id.Identity) (id.Amount, error)
}
