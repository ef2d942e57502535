package service

import (
	"context"
	"errors"

	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
	"meterai/pkg/platform/sentinel"
)

// GetToken returns a snapshot of a token. While a token is Available or Paid
// it carries no confidential payload and the view is open to any caller.
// Once Bound, the view (including the document reference) is restricted to
// the owner and the token's allow-list.
func (s *Service) GetToken(ctx context.Context, caller id.Identity, tokenID id.TokenID) (*models.Token, error) {
	t, err := s.findToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.StatusBound {
		if err := s.requireReadAccess(ctx, caller, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// GetPassword returns the stored password for a token. Restricted to the
// owner and the allow-list regardless of status; before binding the stored
// password is empty.
func (s *Service) GetPassword(ctx context.Context, caller id.Identity, tokenID id.TokenID) (string, error) {
	t, err := s.findToken(ctx, tokenID)
	if err != nil {
		return "", err
	}
	if err := s.requireReadAccess(ctx, caller, t); err != nil {
		return "", err
	}
	return t.Password, nil
}

// GetAvailableToken reports the FIFO head of the availability pool with its
// price. Read-only: the same token is consumed by the next purchase if no
// other purchase intervenes.
func (s *Service) GetAvailableToken(ctx context.Context) (*models.Offer, error) {
	tokenID, err := s.tokens.PeekAvailable(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrExhausted) {
			return nil, dErrors.New(dErrors.CodeExhausted, "no available token remains")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to inspect availability pool")
	}
	t, err := s.findToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &models.Offer{TokenID: t.ID, Price: t.Price}, nil
}

// Stats returns the total supply and the per-status totals.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	total, err := s.tokens.TotalSupply(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read total supply")
	}
	stats := &models.Stats{TotalSupply: total}
	for _, status := range models.Statuses() {
		n, err := s.tokens.CountByStatus(ctx, status)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read status counters")
		}
		switch status {
		case models.StatusAvailable:
			stats.Available = n
		case models.StatusPaid:
			stats.Paid = n
		case models.StatusBound:
			stats.Bound = n
		}
	}
	return stats, nil
}

// CountByStatus returns the exact number of tokens in the given status.
func (s *Service) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	if !status.IsValid() {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "unsupported status %q", status)
	}
	n, err := s.tokens.CountByStatus(ctx, status)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read status counter")
	}
	return n, nil
}

// TotalSupply returns the number of tokens ever minted.
func (s *Service) TotalSupply(ctx context.Context) (uint64, error) {
	total, err := s.tokens.TotalSupply(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read total supply")
	}
	return total, nil
}

// TokensOf lists the ids currently held by owner, oldest acquisition first.
func (s *Service) TokensOf(ctx context.Context, owner id.Identity) ([]id.TokenID, error) {
	ids, err := s.tokens.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list owned tokens")
	}
	return ids, nil
}

func (s *Service) findToken(ctx context.Context, tokenID id.TokenID) (*models.Token, error) {
	t, err := s.tokens.FindByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
	}
	return t, nil
}

// requireReadAccess enforces the owner-or-listed rule that gates document
// and password reads.
func (s *Service) requireReadAccess(ctx context.Context, caller id.Identity, t *models.Token) error {
	if t.IsOwnedBy(caller) {
		return nil
	}
	granted, err := s.acl.IsGranted(ctx, t.ID, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check access list")
	}
	if !granted {
		return dErrors.New(dErrors.CodeAccessDenied, "caller is not allowed to read this token")
	}
	return nil
}
