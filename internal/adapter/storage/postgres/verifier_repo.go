package postgres

import (
	"context"
	"errors"
	"fmt"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// VerifierRepo implements ports.VerifierRepository.
type VerifierRepo struct {
	pool Pool
}

// NewVerifierRepo creates a new VerifierRepo.
func NewVerifierRepo(pool Pool) *VerifierRepo {
	return &VerifierRepo{pool: pool}
}

// Add grants verifier privilege to an identity.
func (r *VerifierRepo) Add(ctx context.Context, identity domain.Identity) error {
	query := `INSERT INTO verifiers (identity, added_at) VALUES ($1, NOW())`

	_, err := r.pool.Exec(ctx, query, identity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateIdentity
		}
		return fmt.Errorf("insert verifier: %w", err)
	}
	return nil
}

// Remove revokes verifier privilege. Reports whether the identity was present.
func (r *VerifierRepo) Remove(ctx context.Context, identity domain.Identity) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM verifiers WHERE identity = $1`, identity)
	if err != nil {
		return false, fmt.Errorf("delete verifier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports explicit verifier-set membership.
func (r *VerifierRepo) Exists(ctx context.Context, identity domain.Identity) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM verifiers WHERE identity = $1)`, identity,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check verifier: %w", err)
	}
	return exists, nil
}
