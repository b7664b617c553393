package ports

import (
	"context"
	"time"

	"ngo-donation-ledger/internal/core/domain"
)

// RegistryService owns the organization lifecycle.
type RegistryService interface {
	Register(ctx context.Context, caller domain.Identity, req RegisterNGORequest) (*domain.NGO, error)
	Verify(ctx context.Context, caller, target domain.Identity) error
	Suspend(ctx context.Context, caller, target domain.Identity) error
	GetNGO(ctx context.Context, target domain.Identity) (*domain.NGO, error)
	GetNGOByEmail(ctx context.Context, email string) (*domain.NGO, error)
}

// RegisterNGORequest holds validated input for organization registration.
type RegisterNGORequest struct {
	Name        string
	Description string
	Email       string
}

// DonationService owns the append-only donation ledger and the atomic
// transfer-and-record operation.
type DonationService interface {
	Donate(ctx context.Context, req DonateRequest) (*domain.Donation, error)
	GetDonation(ctx context.Context, id int64) (*domain.Donation, error)
}

// DonateRequest holds validated input for a donation.
type DonateRequest struct {
	Donor     domain.Identity
	NGO       domain.Identity
	Amount    int64
	ProjectID string
}

// VerifierService owns the verifier set and the authorization predicates.
type VerifierService interface {
	AddVerifier(ctx context.Context, caller, target domain.Identity) error
	RemoveVerifier(ctx context.Context, caller, target domain.Identity) error
	// IsVerifier reports explicit verifier-set membership only; the owner's
	// implicit privilege is not reflected here.
	IsVerifier(ctx context.Context, target domain.Identity) (bool, error)
	IsOwner(identity domain.Identity) bool
	IsVerifierOrOwner(ctx context.Context, identity domain.Identity) (bool, error)
}

// WalletService exposes custody operations outside the donation path.
type WalletService interface {
	Deposit(ctx context.Context, identity domain.Identity, amount int64) (int64, error)
	GetBalance(ctx context.Context, identity domain.Identity) (int64, error)
}

// AuthService is the caller-authentication collaborator: it issues
// identities and resolves credentials to them. The core only ever sees the
// resolved Identity.
type AuthService interface {
	Register(ctx context.Context, req RegisterAccountRequest) (*RegisterAccountResponse, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterAccountRequest holds input for account creation.
type RegisterAccountRequest struct {
	Username string
	Password string
}

// RegisterAccountResponse holds the issued identity.
type RegisterAccountResponse struct {
	Identity domain.Identity
}

// Notifier emits commit notifications to external observers. Emission is
// best-effort and happens only after a successful commit.
type Notifier interface {
	Publish(ctx context.Context, event domain.Event) error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(identity domain.Identity) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Identity domain.Identity
}
