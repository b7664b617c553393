package service

import (
	"context"
	"errors"
	"fmt"

	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"
	"ngo-donation-ledger/pkg/metrics"

	"github.com/rs/zerolog"
)

// VerifierServiceImpl implements ports.VerifierService. It owns the explicit
// verifier set and the two authorization predicates. The owner identity is
// bound once at construction and is immutable for the process lifetime.
type VerifierServiceImpl struct {
	verifierRepo ports.VerifierRepository
	notifier     ports.Notifier
	metrics      *metrics.Metrics
	owner        domain.Identity
	log          zerolog.Logger
}

// NewVerifierService creates a new VerifierServiceImpl.
func NewVerifierService(
	verifierRepo ports.VerifierRepository,
	notifier ports.Notifier,
	m *metrics.Metrics,
	owner domain.Identity,
	log zerolog.Logger,
) *VerifierServiceImpl {
	return &VerifierServiceImpl{
		verifierRepo: verifierRepo,
		notifier:     notifier,
		metrics:      m,
		owner:        owner,
		log:          log,
	}
}

// IsOwner reports whether the identity is the process owner.
func (s *VerifierServiceImpl) IsOwner(identity domain.Identity) bool {
	return identity == s.owner
}

// IsVerifierOrOwner reports whether the identity holds verifier privilege.
// The owner is implicitly privileged without verifier-set membership.
func (s *VerifierServiceImpl) IsVerifierOrOwner(ctx context.Context, identity domain.Identity) (bool, error) {
	if s.IsOwner(identity) {
		return true, nil
	}
	exists, err := s.verifierRepo.Exists(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("check verifier set: %w", err)
	}
	return exists, nil
}

// IsVerifier reports explicit verifier-set membership only. The owner's
// implicit privilege is not reflected here.
func (s *VerifierServiceImpl) IsVerifier(ctx context.Context, target domain.Identity) (bool, error) {
	exists, err := s.verifierRepo.Exists(ctx, target)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	return exists, nil
}

// AddVerifier grants verifier privilege to target. Owner-only.
func (s *VerifierServiceImpl) AddVerifier(ctx context.Context, caller, target domain.Identity) error {
	if !s.IsOwner(caller) {
		return apperror.ErrUnauthorized()
	}

	if err := s.verifierRepo.Add(ctx, target); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return apperror.ErrAlreadyVerifier()
		}
		return apperror.InternalError(err)
	}

	ev := domain.NewEvent(domain.EventVerifierAdded)
	ev.Actor = caller
	ev.Verifier = target
	s.emit(ctx, ev)
	s.metrics.VerifierChanges.WithLabelValues("add").Inc()

	s.log.Info().
		Str("verifier", target.String()).
		Msg("verifier added")
	return nil
}

// RemoveVerifier revokes verifier privilege from target. Owner-only. The
// owner can never be removed from the privileged set, whoever asks.
func (s *VerifierServiceImpl) RemoveVerifier(ctx context.Context, caller, target domain.Identity) error {
	if target == s.owner {
		return apperror.ErrCannotRemoveOwner()
	}
	if !s.IsOwner(caller) {
		return apperror.ErrUnauthorized()
	}

	removed, err := s.verifierRepo.Remove(ctx, target)
	if err != nil {
		return apperror.InternalError(err)
	}
	if !removed {
		return apperror.ErrNotVerifier()
	}

	ev := domain.NewEvent(domain.EventVerifierRemoved)
	ev.Actor = caller
	ev.Verifier = target
	s.emit(ctx, ev)
	s.metrics.VerifierChanges.WithLabelValues("remove").Inc()

	s.log.Info().
		Str("verifier", target.String()).
		Msg("verifier removed")
	return nil
}

// emit publishes a commit notification, best-effort.
func (s *VerifierServiceImpl) emit(ctx context.Context, ev domain.Event) {
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("failed to publish event")
	}
}
