package service

import (
	"context"
	"fmt"
	"time"

	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"
	"ngo-donation-ledger/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// DonationServiceImpl implements ports.DonationService. Donate is the only
// writer of ledger rows: it moves value and appends the record in one
// transaction, so a donation exists in the ledger exactly when its transfer
// committed. Committed ids are dense because the id allocation rolls back
// with everything else.
type DonationServiceImpl struct {
	donationRepo ports.DonationRepository
	ngoRepo      ports.NGORepository
	walletRepo   ports.WalletRepository
	transactor   ports.DBTransactor
	notifier     ports.Notifier
	metrics      *metrics.Metrics
	log          zerolog.Logger
}

// NewDonationService creates a new DonationServiceImpl.
func NewDonationService(
	donationRepo ports.DonationRepository,
	ngoRepo ports.NGORepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	m *metrics.Metrics,
	log zerolog.Logger,
) *DonationServiceImpl {
	return &DonationServiceImpl{
		donationRepo: donationRepo,
		ngoRepo:      ngoRepo,
		walletRepo:   walletRepo,
		transactor:   transactor,
		notifier:     notifier,
		metrics:      m,
		log:          log,
	}
}

// Donate transfers amount from the donor's wallet to the organization's
// wallet and appends the donation record, atomically. Lock order: NGO row
// first, then wallets by ascending identity, so concurrent crossing
// donations cannot deadlock.
func (s *DonationServiceImpl) Donate(ctx context.Context, req ports.DonateRequest) (*domain.Donation, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer dbTx.Rollback(ctx)

	ngo, err := s.ngoRepo.GetByIdentityForUpdate(ctx, dbTx, req.NGO)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock organization: %w", err))
	}
	if ngo == nil {
		s.metrics.FailedDonations.Inc()
		return nil, apperror.ErrNotFound("organization")
	}
	if !ngo.IsVerified() {
		s.metrics.FailedDonations.Inc()
		return nil, apperror.ErrNotVerified()
	}

	id, err := s.donationRepo.NextID(ctx, dbTx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("allocate donation id: %w", err))
	}

	donorWallet, ngoWallet, err := s.lockWallets(ctx, dbTx, req.Donor, ngo.WalletIdentity)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if donorWallet == nil || !donorWallet.CanDebit(req.Amount) {
		s.metrics.FailedDonations.Inc()
		return nil, apperror.ErrTransferFailed()
	}
	if ngoWallet == nil {
		s.metrics.FailedDonations.Inc()
		return nil, apperror.ErrTransferFailed()
	}

	// On a self-donation the debit and credit cancel, so the balance stands.
	if donorWallet.Identity != ngoWallet.Identity {
		if err := s.walletRepo.UpdateBalance(ctx, dbTx, donorWallet.Identity, donorWallet.Balance-req.Amount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("debit donor wallet: %w", err))
		}
		if err := s.walletRepo.UpdateBalance(ctx, dbTx, ngoWallet.Identity, ngoWallet.Balance+req.Amount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit organization wallet: %w", err))
		}
	}

	donation := &domain.Donation{
		ID:        id,
		Donor:     req.Donor,
		NGO:       req.NGO,
		Amount:    req.Amount,
		ProjectID: req.ProjectID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.donationRepo.Create(ctx, dbTx, donation); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append donation: %w", err))
	}

	if err := s.ngoRepo.AddToDonationTotal(ctx, dbTx, req.NGO, req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update donation total: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	ev := domain.NewEvent(domain.EventDonationReceived)
	ev.Actor = req.Donor
	ev.Donor = req.Donor
	ev.NGO = req.NGO
	ev.DonationID = &donation.ID
	ev.Amount = req.Amount
	ev.ProjectID = req.ProjectID
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("failed to publish event")
	}
	s.metrics.Donations.Inc()
	s.metrics.DonatedAmount.Add(float64(req.Amount))

	s.log.Info().
		Int64("donation_id", donation.ID).
		Str("donor", req.Donor.String()).
		Str("ngo", req.NGO.String()).
		Int64("amount", req.Amount).
		Msg("donation recorded")
	return donation, nil
}

// lockWallets acquires FOR UPDATE locks on both wallets in ascending
// identity order and returns them as (donor, ngo).
func (s *DonationServiceImpl) lockWallets(ctx context.Context, tx pgx.Tx, donor, ngoWallet domain.Identity) (*domain.Wallet, *domain.Wallet, error) {
	if donor == ngoWallet {
		w, err := s.walletRepo.GetByIdentityForUpdate(ctx, tx, donor)
		if err != nil {
			return nil, nil, fmt.Errorf("lock wallet: %w", err)
		}
		return w, w, nil
	}

	first, second := donor, ngoWallet
	if second < first {
		first, second = second, first
	}
	fw, err := s.walletRepo.GetByIdentityForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, fmt.Errorf("lock wallet: %w", err)
	}
	sw, err := s.walletRepo.GetByIdentityForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, fmt.Errorf("lock wallet: %w", err)
	}
	if first == donor {
		return fw, sw, nil
	}
	return sw, fw, nil
}

// GetDonation returns the ledger record for id.
func (s *DonationServiceImpl) GetDonation(ctx context.Context, id int64) (*domain.Donation, error) {
	if id < 0 {
		return nil, apperror.ErrOutOfRange()
	}
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if donation == nil {
		return nil, apperror.ErrOutOfRange()
	}
	return donation, nil
}
