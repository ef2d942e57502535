package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"meterai/internal/audit"
	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
	"meterai/pkg/platform/sentinel"
	"meterai/pkg/requestcontext"
)

// Mint creates count tokens at the same fixed price, owned by the minting
// authority and queued in the availability index in id order.
//
// Only the authority may mint. The whole batch commits as one unit.
func (s *Service) Mint(ctx context.Context, caller id.Identity, count int, price id.Amount) ([]id.TokenID, error) {
	if caller != s.authority {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the minting authority may mint")
	}
	if count < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "mint count must be at least 1")
	}

	now := requestcontext.Now(ctx)
	var tokenIDs []id.TokenID
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		tokenIDs = make([]id.TokenID, 0, count)
		for i := 0; i < count; i++ {
			t := models.NewToken(price, s.authority, now)
			tokenID, err := s.tokens.Insert(txCtx, t)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint token")
			}
			tokenIDs = append(tokenIDs, tokenID)
		}
		// Ledger registrations follow the registry inserts so a mid-batch
		// insert failure rolls back without leaving registered ids behind.
		for _, tokenID := range tokenIDs {
			if err := s.ownership.Register(txCtx, tokenID, s.authority); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register token ownership")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "minted stamp tokens",
		"request_id", requestcontext.RequestID(ctx),
		"count", count,
		"price", price,
		"first_id", tokenIDs[0],
	)
	s.metrics.RecordMint(count)
	s.emitAudit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionMinted,
		Actor:     caller,
		TokenIDs:  tokenIDs,
		Amount:    price,
		RequestID: requestcontext.RequestID(ctx),
	})
	return tokenIDs, nil
}

// Buy sells an Available token to the caller for exactly its price. The
// token may be any Available id, not just the FIFO head; callers that want
// strict mint order fetch the head via GetAvailableToken first.
//
// Preconditions, checked in order before any mutation: the id exists, the
// token is Available, the attached payment equals the price exactly, and the
// caller can cover it. On success the token becomes Paid, the payment moves
// caller → authority, and the ownership ledger and owner index move the
// token to the caller.
func (s *Service) Buy(ctx context.Context, caller id.Identity, tokenID id.TokenID, payment id.Amount) (*models.Receipt, error) {
	now := requestcontext.Now(ctx)
	var receipt *models.Receipt
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.tokens.FindByID(txCtx, tokenID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "token not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
		}
		if err := t.CanPurchase(); err != nil {
			return dErrors.New(dErrors.CodeInvalidStatus, "token is not available for sale")
		}
		if payment != t.Price {
			return dErrors.New(dErrors.CodeInvalidPayment, "payment must equal the token price exactly")
		}
		balance, err := s.bank.BalanceOf(txCtx, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check caller balance")
		}
		if balance < payment {
			return dErrors.New(dErrors.CodeInvalidPayment, "caller cannot cover the token price")
		}

		// The registry write is the only fallible mutation; it goes first so
		// a failure rolls back with the transaction before the ledgers are
		// touched. The runner's exclusion plus the checks above guarantee
		// the ledger transfers below cannot fail.
		seller := t.Owner
		updated, err := s.tokens.Execute(txCtx, tokenID,
			func(t *models.Token) error {
				if err := t.CanPurchase(); err != nil {
					return dErrors.New(dErrors.CodeInvalidStatus, "token is not available for sale")
				}
				return nil
			},
			func(t *models.Token) {
				t.ApplyPurchase(caller, now)
			},
		)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "token not found")
			}
			if dErrors.HasCode(err, dErrors.CodeInvalidStatus) {
				return err
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record purchase")
		}
		if err := s.bank.Transfer(txCtx, caller, s.authority, payment); err != nil {
			if errors.Is(err, sentinel.ErrInsufficientFunds) {
				return dErrors.New(dErrors.CodeInvalidPayment, "caller cannot cover the token price")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "payment transfer failed")
		}
		if err := s.ownership.Transfer(txCtx, tokenID, seller, caller); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "ownership transfer failed")
		}

		receipt = &models.Receipt{
			ReceiptID: uuid.New(),
			TokenID:   updated.ID,
			Price:     updated.Price,
			Buyer:     caller,
			PaidAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "stamp token sold",
		"request_id", requestcontext.RequestID(ctx),
		"token_id", tokenID,
		"buyer", caller,
		"price", receipt.Price,
	)
	s.metrics.RecordSale(float64(receipt.Price))
	s.emitAudit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionBought,
		Actor:     caller,
		TokenIDs:  []id.TokenID{tokenID},
		Amount:    receipt.Price,
		RequestID: requestcontext.RequestID(ctx),
	})
	return receipt, nil
}
