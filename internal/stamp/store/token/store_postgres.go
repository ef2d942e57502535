package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	"meterai/pkg/platform/sentinel"
	txcontext "meterai/pkg/platform/tx"
)

// Schema creates the registry tables. Applied by deployment tooling and by
// the integration tests.
const Schema = `
CREATE SEQUENCE IF NOT EXISTS stamp_acquired_seq;

CREATE TABLE IF NOT EXISTS stamp_tokens (
	id           BIGINT PRIMARY KEY,
	status       TEXT NOT NULL,
	price        BIGINT NOT NULL,
	document     TEXT NOT NULL DEFAULT '',
	password     TEXT NOT NULL DEFAULT '',
	owner        TEXT NOT NULL,
	acquired_seq BIGINT NOT NULL,
	minted_at    TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS stamp_tokens_status_idx ON stamp_tokens (status, id);
CREATE INDEX IF NOT EXISTS stamp_tokens_owner_idx ON stamp_tokens (owner, acquired_seq);

CREATE TABLE IF NOT EXISTS stamp_status_counts (
	status TEXT PRIMARY KEY,
	total  BIGINT NOT NULL
);
`

// PostgresStore persists the token registry in PostgreSQL. The availability
// index is the (status, id) btree, so the FIFO head is an index-ordered point
// lookup rather than a scan; the per-status counters live in their own table
// and are maintained in the same transaction as every transition.
//
// Writers must run inside a transaction supplied via pkg/platform/tx so a
// purchase's row update and counter updates commit together.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if dbTx, ok := txcontext.From(ctx); ok {
		return dbTx
	}
	return s.db
}

func (s *PostgresStore) Insert(ctx context.Context, t *models.Token) (id.TokenID, error) {
	if t.Status != models.StatusAvailable {
		return 0, sentinel.ErrInvalidState
	}
	execer := s.execer(ctx)

	query := `
		INSERT INTO stamp_tokens (id, status, price, document, password, owner, acquired_seq, minted_at, updated_at)
		VALUES (
			(SELECT COALESCE(MAX(id) + 1, 0) FROM stamp_tokens),
			$1, $2, $3, $4, $5, nextval('stamp_acquired_seq'), $6, $7
		)
		RETURNING id
	`
	var assigned int64
	err := execer.QueryRowContext(ctx, query,
		string(t.Status), int64(t.Price), t.Document, t.Password, t.Owner.String(),
		t.MintedAt, t.UpdatedAt,
	).Scan(&assigned)
	if err != nil {
		return 0, fmt.Errorf("insert token: %w", err)
	}
	t.ID = id.TokenID(assigned)

	if err := s.bumpCount(ctx, models.StatusAvailable, 1); err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tokenID id.TokenID) (*models.Token, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, status, price, document, password, owner, minted_at, updated_at
		FROM stamp_tokens WHERE id = $1
	`, int64(tokenID))
	return scanToken(row)
}

// Execute validates and mutates one token while holding a FOR UPDATE row
// lock, then reconciles the status counters. Must run inside a transaction;
// without one the row lock would be released between validate and apply.
func (s *PostgresStore) Execute(
	ctx context.Context,
	tokenID id.TokenID,
	validate func(t *models.Token) error,
	apply func(t *models.Token),
) (*models.Token, error) {
	execer, ok := txcontext.From(ctx)
	if !ok {
		return nil, fmt.Errorf("token execute requires a transaction")
	}

	row := execer.QueryRowContext(ctx, `
		SELECT id, status, price, document, password, owner, minted_at, updated_at
		FROM stamp_tokens WHERE id = $1
		FOR UPDATE
	`, int64(tokenID))
	t, err := scanToken(row)
	if err != nil {
		return nil, err
	}

	if err := validate(t); err != nil {
		return nil, err
	}

	prevStatus, prevOwner := t.Status, t.Owner
	apply(t)

	if t.Owner != prevOwner {
		_, err = execer.ExecContext(ctx, `
			UPDATE stamp_tokens
			SET status = $2, document = $3, password = $4, owner = $5,
			    acquired_seq = nextval('stamp_acquired_seq'), updated_at = $6
			WHERE id = $1
		`, int64(t.ID), string(t.Status), t.Document, t.Password, t.Owner.String(), t.UpdatedAt)
	} else {
		_, err = execer.ExecContext(ctx, `
			UPDATE stamp_tokens
			SET status = $2, document = $3, password = $4, updated_at = $5
			WHERE id = $1
		`, int64(t.ID), string(t.Status), t.Document, t.Password, t.UpdatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("update token: %w", err)
	}

	if t.Status != prevStatus {
		if err := s.bumpCount(ctx, prevStatus, -1); err != nil {
			return nil, err
		}
		if err := s.bumpCount(ctx, t.Status, 1); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (s *PostgresStore) PeekAvailable(ctx context.Context) (id.TokenID, error) {
	var tokenID int64
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id FROM stamp_tokens WHERE status = $1 ORDER BY id LIMIT 1
	`, string(models.StatusAvailable)).Scan(&tokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrExhausted
	}
	if err != nil {
		return 0, fmt.Errorf("peek available: %w", err)
	}
	return id.TokenID(tokenID), nil
}

func (s *PostgresStore) TotalSupply(ctx context.Context) (uint64, error) {
	var total int64
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM stamp_tokens`).Scan(&total); err != nil {
		return 0, fmt.Errorf("total supply: %w", err)
	}
	return uint64(total), nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var total int64
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT total FROM stamp_status_counts WHERE status = $1
	`, string(status)).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return int(total), nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.Identity) ([]id.TokenID, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id FROM stamp_tokens WHERE owner = $1 ORDER BY acquired_seq
	`, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}
	defer rows.Close()

	var ids []id.TokenID
	for rows.Next() {
		var tokenID int64
		if err := rows.Scan(&tokenID); err != nil {
			return nil, fmt.Errorf("scan token id: %w", err)
		}
		ids = append(ids, id.TokenID(tokenID))
	}
	return ids, rows.Err()
}

func (s *PostgresStore) bumpCount(ctx context.Context, status models.Status, delta int) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO stamp_status_counts (status, total) VALUES ($1, $2)
		ON CONFLICT (status) DO UPDATE SET total = stamp_status_counts.total + $2
	`, string(status), delta)
	if err != nil {
		return fmt.Errorf("bump status count: %w", err)
	}
	return nil
}

func scanToken(row *sql.Row) (*models.Token, error) {
	var (
		t       models.Token
		tokenID int64
		status  string
		price   int64
		owner   string
	)
	err := row.Scan(&tokenID, &status, &price, &t.Document, &t.Password, &owner, &t.MintedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan token: %w", err)
	}
	t.ID = id.TokenID(tokenID)
	t.Status = models.Status(status)
	t.Price = id.Amount(price)
	t.Owner = id.Identity(owner)
	return &t, nil
}
