package postgres

import (
	"context"
	"errors"
	"fmt"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// DonationRepo implements ports.DonationRepository.
type DonationRepo struct {
	pool Pool
}

// NewDonationRepo creates a new DonationRepo.
func NewDonationRepo(pool Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

// NextID allocates the next sequential donation id inside a transaction.
// The counter row is locked by the UPDATE, so concurrent donations serialize
// on it and a rollback returns the id: committed ids start at 0 with no gaps.
func (r *DonationRepo) NextID(ctx context.Context, tx pgx.Tx) (int64, error) {
	var next int64
	err := tx.QueryRow(ctx,
		`UPDATE counters SET value = value + 1 WHERE name = 'donation_id' RETURNING value - 1`,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocate donation id: %w", err)
	}
	return next, nil
}

// Create appends an immutable donation record within a transaction.
func (r *DonationRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Donation) error {
	query := `INSERT INTO donations (id, donor, ngo, amount, project_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, d.ID, d.Donor, d.NGO, d.Amount, d.ProjectID, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// GetByID fetches a donation record by its ledger id.
func (r *DonationRepo) GetByID(ctx context.Context, id int64) (*domain.Donation, error) {
	query := `SELECT id, donor, ngo, amount, project_id, created_at FROM donations WHERE id = $1`

	d := &domain.Donation{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Donor, &d.NGO, &d.Amount, &d.ProjectID, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get donation by id: %w", err)
	}
	return d, nil
}

// Count returns the ledger cardinality.
func (r *DonationRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return count, nil
}
