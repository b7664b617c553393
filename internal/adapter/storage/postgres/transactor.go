package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor on the connection pool. Every
// mutating core operation opens exactly one transaction here; the donation
// atomicity contract rests on that single boundary.
type Transactor struct {
	pool Pool
}

// NewTransactor wraps the pool as a transaction source.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a database transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
