package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"
	"ngo-donation-ledger/pkg/metrics"

	"github.com/rs/zerolog"
)

// RegistryServiceImpl implements ports.RegistryService. It exclusively owns
// organization rows and the email uniqueness index; every mutation runs in a
// single transaction so registry state never half-commits.
type RegistryServiceImpl struct {
	ngoRepo    ports.NGORepository
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	policy     ports.VerifierService
	notifier   ports.Notifier
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewRegistryService creates a new RegistryServiceImpl.
func NewRegistryService(
	ngoRepo ports.NGORepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	policy ports.VerifierService,
	notifier ports.Notifier,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		ngoRepo:    ngoRepo,
		walletRepo: walletRepo,
		transactor: transactor,
		policy:     policy,
		notifier:   notifier,
		metrics:    m,
		log:        log,
	}
}

// Register creates the caller's organization record in Pending status. The
// caller identity is the registry key: one organization per identity, one
// identity per email. A wallet is provisioned for the identity if it does not
// already have one.
func (s *RegistryServiceImpl) Register(ctx context.Context, caller domain.Identity, req ports.RegisterNGORequest) (*domain.NGO, error) {
	existing, err := s.ngoRepo.GetByIdentity(ctx, caller)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check existing organization: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrAlreadyRegistered()
	}

	byEmail, err := s.ngoRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email index: %w", err))
	}
	if byEmail != nil {
		return nil, apperror.ErrEmailTaken()
	}

	now := time.Now().UTC()
	ngo := &domain.NGO{
		Identity:       caller,
		Name:           req.Name,
		Description:    req.Description,
		Email:          req.Email,
		WalletIdentity: caller,
		Status:         domain.NGOStatusPending,
		RegisteredAt:   now,
		UpdatedAt:      now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer dbTx.Rollback(ctx)

	if err := s.ngoRepo.Create(ctx, dbTx, ngo); err != nil {
		// The unique constraints are the backstop for races past the
		// pre-checks above.
		switch {
		case errors.Is(err, domain.ErrDuplicateIdentity):
			return nil, apperror.ErrAlreadyRegistered()
		case errors.Is(err, domain.ErrDuplicateEmail):
			return nil, apperror.ErrEmailTaken()
		}
		return nil, apperror.InternalError(fmt.Errorf("insert organization: %w", err))
	}

	wallet, err := s.walletRepo.GetByIdentity(ctx, caller)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check wallet: %w", err))
	}
	if wallet == nil {
		w := &domain.Wallet{Identity: caller, Balance: 0, CreatedAt: now, UpdatedAt: now}
		if err := s.walletRepo.CreateTx(ctx, dbTx, w); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("provision wallet: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	ev := domain.NewEvent(domain.EventNGORegistered)
	ev.Actor = caller
	ev.NGO = caller
	s.emit(ctx, ev)
	s.metrics.NGOsRegistered.Inc()

	s.log.Info().
		Str("ngo", caller.String()).
		Str("email", req.Email).
		Msg("organization registered")
	return ngo, nil
}

// Verify moves target from Pending to Verified. Requires verifier privilege.
func (s *RegistryServiceImpl) Verify(ctx context.Context, caller, target domain.Identity) error {
	if err := s.transition(ctx, caller, target, domain.NGOStatusVerified); err != nil {
		return err
	}

	ev := domain.NewEvent(domain.EventNGOVerified)
	ev.Actor = caller
	ev.NGO = target
	s.emit(ctx, ev)
	s.metrics.NGOsVerified.Inc()

	s.log.Info().
		Str("ngo", target.String()).
		Str("verifier", caller.String()).
		Msg("organization verified")
	return nil
}

// Suspend moves target from Verified to Suspended. Requires verifier
// privilege. Suspension is terminal: there is no reinstatement transition.
func (s *RegistryServiceImpl) Suspend(ctx context.Context, caller, target domain.Identity) error {
	if err := s.transition(ctx, caller, target, domain.NGOStatusSuspended); err != nil {
		return err
	}

	ev := domain.NewEvent(domain.EventNGOSuspended)
	ev.Actor = caller
	ev.NGO = target
	s.emit(ctx, ev)
	s.metrics.NGOsSuspended.Inc()

	s.log.Info().
		Str("ngo", target.String()).
		Str("verifier", caller.String()).
		Msg("organization suspended")
	return nil
}

// transition applies a status change under a row lock, enforcing the
// lifecycle's legal edges.
func (s *RegistryServiceImpl) transition(ctx context.Context, caller, target domain.Identity, to domain.NGOStatus) error {
	allowed, err := s.policy.IsVerifierOrOwner(ctx, caller)
	if err != nil {
		return apperror.InternalError(err)
	}
	if !allowed {
		return apperror.ErrUnauthorized()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer dbTx.Rollback(ctx)

	ngo, err := s.ngoRepo.GetByIdentityForUpdate(ctx, dbTx, target)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock organization: %w", err))
	}
	if ngo == nil {
		return apperror.ErrNotFound("organization")
	}
	if !domain.CanTransition(ngo.Status, to) {
		return apperror.ErrInvalidState()
	}

	if err := s.ngoRepo.UpdateStatus(ctx, dbTx, target, to); err != nil {
		return apperror.InternalError(fmt.Errorf("update status: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// GetNGO returns the organization registered under target.
func (s *RegistryServiceImpl) GetNGO(ctx context.Context, target domain.Identity) (*domain.NGO, error) {
	ngo, err := s.ngoRepo.GetByIdentity(ctx, target)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if ngo == nil {
		return nil, apperror.ErrNotFound("organization")
	}
	return ngo, nil
}

// GetNGOByEmail resolves an email to its organization through the email index.
func (s *RegistryServiceImpl) GetNGOByEmail(ctx context.Context, email string) (*domain.NGO, error) {
	ngo, err := s.ngoRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if ngo == nil {
		return nil, apperror.ErrNotFound("organization")
	}
	return ngo, nil
}

func (s *RegistryServiceImpl) emit(ctx context.Context, ev domain.Event) {
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("failed to publish event")
	}
}
