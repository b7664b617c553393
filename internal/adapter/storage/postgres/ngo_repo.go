package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// NGORepo implements ports.NGORepository.
type NGORepo struct {
	pool Pool
}

// NewNGORepo creates a new NGORepo.
func NewNGORepo(pool Pool) *NGORepo {
	return &NGORepo{pool: pool}
}

const ngoColumns = `identity, name, description, email, wallet_identity, total_donations, status, registered_at, updated_at`

// Create inserts a new organization within a transaction. Unique violations
// on identity or email are translated into domain sentinels.
func (r *NGORepo) Create(ctx context.Context, tx pgx.Tx, n *domain.NGO) error {
	query := `INSERT INTO ngos (identity, name, description, email, wallet_identity, total_donations, status, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		n.Identity, n.Name, n.Description, n.Email, n.WalletIdentity,
		n.TotalDonations, n.Status, n.RegisteredAt, n.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return domain.ErrDuplicateEmail
			}
			return domain.ErrDuplicateIdentity
		}
		return fmt.Errorf("insert ngo: %w", err)
	}
	return nil
}

// GetByIdentity fetches an organization by identity (non-locking read).
func (r *NGORepo) GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.NGO, error) {
	query := `SELECT ` + ngoColumns + ` FROM ngos WHERE identity = $1`
	return scanNGO(r.pool.QueryRow(ctx, query, identity), "get ngo by identity")
}

// GetByEmail fetches an organization through the email index.
func (r *NGORepo) GetByEmail(ctx context.Context, email string) (*domain.NGO, error) {
	query := `SELECT ` + ngoColumns + ` FROM ngos WHERE email = $1`
	return scanNGO(r.pool.QueryRow(ctx, query, email), "get ngo by email")
}

// GetByIdentityForUpdate fetches an organization with pessimistic locking.
// This MUST be called within a transaction.
func (r *NGORepo) GetByIdentityForUpdate(ctx context.Context, tx pgx.Tx, identity domain.Identity) (*domain.NGO, error) {
	query := `SELECT ` + ngoColumns + ` FROM ngos WHERE identity = $1 FOR UPDATE`
	return scanNGO(tx.QueryRow(ctx, query, identity), "get ngo for update")
}

// UpdateStatus moves an organization to a new lifecycle state within a
// transaction. The caller has already validated the transition.
func (r *NGORepo) UpdateStatus(ctx context.Context, tx pgx.Tx, identity domain.Identity, status domain.NGOStatus) error {
	query := `UPDATE ngos SET status = $1, updated_at = NOW() WHERE identity = $2`

	tag, err := tx.Exec(ctx, query, status, identity)
	if err != nil {
		return fmt.Errorf("update ngo status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ngo not found: %s", identity)
	}
	return nil
}

// AddToDonationTotal accumulates received value on the organization row
// within a transaction.
func (r *NGORepo) AddToDonationTotal(ctx context.Context, tx pgx.Tx, identity domain.Identity, amount int64) error {
	query := `UPDATE ngos SET total_donations = total_donations + $1, updated_at = NOW() WHERE identity = $2`

	tag, err := tx.Exec(ctx, query, amount, identity)
	if err != nil {
		return fmt.Errorf("add to donation total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ngo not found: %s", identity)
	}
	return nil
}

// Count returns the registry cardinality.
func (r *NGORepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ngos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ngos: %w", err)
	}
	return count, nil
}

func scanNGO(row pgx.Row, op string) (*domain.NGO, error) {
	n := &domain.NGO{}
	err := row.Scan(
		&n.Identity, &n.Name, &n.Description, &n.Email, &n.WalletIdentity,
		&n.TotalDonations, &n.Status, &n.RegisteredAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
