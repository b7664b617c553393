package postgres

import (
	"context"
	"errors"
	"fmt"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new login account.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (identity, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, a.Identity, a.Username, a.PasswordHash, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByUsername fetches an account by its login name.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT identity, username, password_hash, created_at FROM accounts WHERE username = $1`
	return r.scan(r.pool.QueryRow(ctx, query, username), "get account by username")
}

// GetByIdentity fetches an account by its bound identity.
func (r *AccountRepo) GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Account, error) {
	query := `SELECT identity, username, password_hash, created_at FROM accounts WHERE identity = $1`
	return r.scan(r.pool.QueryRow(ctx, query, identity), "get account by identity")
}

func (r *AccountRepo) scan(row pgx.Row, op string) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.Identity, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}
