package service

import (
	"context"
	"errors"

	"meterai/internal/audit"
	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
	"meterai/pkg/platform/sentinel"
	"meterai/pkg/requestcontext"
)

// Bind seals a Paid token to a document reference and stores its password.
// Only the current owner may bind, and only once: the token becomes Bound,
// which is terminal. The password is optional; an empty password binds
// normally and stays empty.
func (s *Service) Bind(ctx context.Context, caller id.Identity, tokenID id.TokenID, document, password string) error {
	if document == "" {
		return dErrors.New(dErrors.CodeValidation, "document reference is required")
	}

	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.tokens.Execute(txCtx, tokenID,
			func(t *models.Token) error {
				if !t.IsOwnedBy(caller) {
					return dErrors.New(dErrors.CodeForbidden, "only the token owner may bind")
				}
				if err := t.CanBind(); err != nil {
					return dErrors.New(dErrors.CodeInvalidStatus, "token is not in paid status")
				}
				return nil
			},
			func(t *models.Token) {
				t.ApplyBind(document, password, now)
			},
		)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "token not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "stamp token bound",
		"request_id", requestcontext.RequestID(ctx),
		"token_id", tokenID,
		"owner", caller,
	)
	s.metrics.RecordBind()
	s.emitAudit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionBound,
		Actor:     caller,
		TokenIDs:  []id.TokenID{tokenID},
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// GrantAccess adds a grantee to a token's read allow-list. Owner only and
// idempotent: granting an identity twice is a no-op.
func (s *Service) GrantAccess(ctx context.Context, caller id.Identity, tokenID id.TokenID, grantee id.Identity) error {
	if grantee.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "grantee identity is required")
	}
	if err := s.mutateACL(ctx, caller, tokenID, grantee, s.acl.Grant); err != nil {
		return err
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionAccessGranted,
		Actor:     caller,
		TokenIDs:  []id.TokenID{tokenID},
		Grantee:   grantee,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// RevokeAccess removes a grantee from a token's read allow-list. Owner only
// and idempotent: revoking an absent grantee is a no-op.
func (s *Service) RevokeAccess(ctx context.Context, caller id.Identity, tokenID id.TokenID, grantee id.Identity) error {
	if grantee.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "grantee identity is required")
	}
	if err := s.mutateACL(ctx, caller, tokenID, grantee, s.acl.Revoke); err != nil {
		return err
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionAccessRevoked,
		Actor:     caller,
		TokenIDs:  []id.TokenID{tokenID},
		Grantee:   grantee,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

func (s *Service) mutateACL(
	ctx context.Context,
	caller id.Identity,
	tokenID id.TokenID,
	grantee id.Identity,
	mutate func(ctx context.Context, tokenID id.TokenID, grantee id.Identity) error,
) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.tokens.FindByID(txCtx, tokenID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "token not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
		}
		if !t.IsOwnedBy(caller) {
			return dErrors.New(dErrors.CodeForbidden, "only the token owner may change access")
		}
		if err := mutate(txCtx, tokenID, grantee); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update access list")
		}
		return nil
	})
}
