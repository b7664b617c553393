package postgres

import (
	"context"
	"errors"
	"fmt"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `identity, balance, created_at, updated_at`

// Create inserts a new wallet outside any transaction.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (identity, balance, created_at, updated_at) VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, w.Identity, w.Balance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// CreateTx inserts a new wallet within a transaction.
func (r *WalletRepo) CreateTx(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (identity, balance, created_at, updated_at) VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query, w.Identity, w.Balance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByIdentity fetches a wallet (non-locking read).
func (r *WalletRepo) GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE identity = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, identity).Scan(&w.Identity, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by identity: %w", err)
	}
	return w, nil
}

// GetByIdentityForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIdentityForUpdate(ctx context.Context, tx pgx.Tx, identity domain.Identity) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE identity = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, identity).Scan(&w.Identity, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, identity domain.Identity, newBalance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE identity = $2`

	tag, err := tx.Exec(ctx, query, newBalance, identity)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", identity)
	}
	return nil
}
