// Package service orchestrates the stamp token lifecycle: minting, primary
// sale, document binding, and access-controlled reads.
//
// Every state-changing operation validates all of its preconditions before
// applying any mutation, and runs inside the configured tx.Runner so its
// effects commit as one unit. Read-only operations never mutate and reflect
// the most recently committed state.
package service

import (
	"context"
	"log/slog"

	"meterai/internal/audit"
	"meterai/internal/ledger"
	stampmetrics "meterai/internal/stamp/metrics"
	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
	"meterai/pkg/platform/tx"
)

// TokenStore is the certificate registry together with its indexes: the
// availability FIFO, the per-status counters, and the owner index. Every
// implementation keeps all four consistent inside Execute.
type TokenStore interface {
	Insert(ctx context.Context, t *models.Token) (id.TokenID, error)
	FindByID(ctx context.Context, tokenID id.TokenID) (*models.Token, error)
	Execute(ctx context.Context, tokenID id.TokenID, validate func(t *models.Token) error, apply func(t *models.Token)) (*models.Token, error)
	PeekAvailable(ctx context.Context) (id.TokenID, error)
	TotalSupply(ctx context.Context) (uint64, error)
	CountByStatus(ctx context.Context, status models.Status) (int, error)
	ListByOwner(ctx context.Context, owner id.Identity) ([]id.TokenID, error)
}

// ACLStore holds the per-token allow-lists that gate reads of a bound
// token's document and password. Grant and Revoke are idempotent.
type ACLStore interface {
	Grant(ctx context.Context, tokenID id.TokenID, grantee id.Identity) error
	Revoke(ctx context.Context, tokenID id.TokenID, grantee id.Identity) error
	IsGranted(ctx context.Context, tokenID id.TokenID, grantee id.Identity) (bool, error)
}

// AuditPublisher receives committed lifecycle transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the stamp lifecycle. The minting authority is an
// explicit configuration value; every role check compares against it.
type Service struct {
	tokens    TokenStore
	acl       ACLStore
	ownership ledger.Ownership
	bank      ledger.Bank
	authority id.Identity

	logger  *slog.Logger
	auditor AuditPublisher
	metrics *stampmetrics.Metrics
	tx      tx.Runner
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *stampmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner overrides the write boundary. The default serializes writers
// behind a single mutex; Postgres deployments pass a tx.SQLRunner instead.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// New constructs a Service. tokens, acl, ownership, bank, and a non-zero
// authority are required.
func New(
	tokens TokenStore,
	acl ACLStore,
	ownership ledger.Ownership,
	bank ledger.Bank,
	authority id.Identity,
	opts ...Option,
) (*Service, error) {
	if tokens == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token store is required")
	}
	if acl == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "acl store is required")
	}
	if ownership == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ownership ledger is required")
	}
	if bank == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "bank is required")
	}
	if authority.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "minting authority is required")
	}

	s := &Service{
		tokens:    tokens,
		acl:       acl,
		ownership: ownership,
		bank:      bank,
		authority: authority,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tx == nil {
		s.tx = tx.NewSerialRunner()
	}
	return s, nil
}

// Authority returns the configured minting authority identity.
func (s *Service) Authority() id.Identity {
	return s.authority
}

// emitAudit reports a committed transition. The audit stream carries no
// consistency obligation, so failures are logged and not surfaced.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
