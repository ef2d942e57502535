package tx

import (
	"context"
	"database/sql"
	"sync"
)

// Runner executes a state-changing call as a single indivisible unit. The
// platform the stamp ledger was designed for serializes calls and applies
// their effects all-or-nothing; implementations of Runner reproduce that
// boundary for the chosen persistence backend.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SerialRunner serializes writers behind a single mutex. Combined with
// validate-before-mutate services and infallible in-memory applies, this
// yields the same atomicity as the platform's call serialization.
type SerialRunner struct {
	mu sync.Mutex
}

func NewSerialRunner() *SerialRunner {
	return &SerialRunner{}
}

func (r *SerialRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

// ExclusiveRunner serializes writers behind a mutex before delegating to an
// inner Runner. Deployments that pair a transactional token store with
// in-memory ledgers wrap SQLRunner in it so preconditions validated inside
// fn still hold when effects land on stores the transaction cannot roll
// back.
type ExclusiveRunner struct {
	mu    sync.Mutex
	inner Runner
}

func NewExclusiveRunner(inner Runner) *ExclusiveRunner {
	return &ExclusiveRunner{inner: inner}
}

func (r *ExclusiveRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.RunInTx(ctx, fn)
}

// SQLRunner wraps fn in a database transaction and stores the *sql.Tx in the
// context so stores pick it up via From. Rollback on error, commit on success.
type SQLRunner struct {
	db *sql.DB
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(WithTx(ctx, dbTx)); err != nil {
		_ = dbTx.Rollback()
		return err
	}
	return dbTx.Commit()
}
