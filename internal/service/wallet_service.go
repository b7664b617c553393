package service

import (
	"context"
	"fmt"

	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(walletRepo ports.WalletRepository, transactor ports.DBTransactor, log zerolog.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
	}
}

// Deposit credits amount to the identity's wallet and returns the new balance.
func (s *WalletServiceImpl) Deposit(ctx context.Context, identity domain.Identity, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer dbTx.Rollback(ctx)

	wallet, err := s.walletRepo.GetByIdentityForUpdate(ctx, dbTx, identity)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}

	newBalance := wallet.Balance + amount
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, identity, newBalance); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.log.Info().
		Str("identity", identity.String()).
		Int64("amount", amount).
		Int64("balance", newBalance).
		Msg("wallet deposit")
	return newBalance, nil
}

// GetBalance returns the identity's current wallet balance.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, identity domain.Identity) (int64, error) {
	wallet, err := s.walletRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return 0, apperror.InternalError(err)
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}
	return wallet.Balance, nil
}
