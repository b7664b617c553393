package ports

import (
	"context"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// NGORepository defines persistence operations for the organization registry.
// Methods accepting pgx.Tx run inside transaction blocks with pessimistic
// locking; the registry exclusively owns NGO rows and the email index.
type NGORepository interface {
	// Create inserts a new organization. Returns domain.ErrDuplicateIdentity
	// or domain.ErrDuplicateEmail on a uniqueness violation.
	Create(ctx context.Context, tx pgx.Tx, ngo *domain.NGO) error
	GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.NGO, error)
	GetByEmail(ctx context.Context, email string) (*domain.NGO, error)
	GetByIdentityForUpdate(ctx context.Context, tx pgx.Tx, identity domain.Identity) (*domain.NGO, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, identity domain.Identity, status domain.NGOStatus) error
	AddToDonationTotal(ctx context.Context, tx pgx.Tx, identity domain.Identity, amount int64) error
	Count(ctx context.Context) (int64, error)
}

// DonationRepository defines persistence for the append-only donation ledger.
type DonationRepository interface {
	// NextID allocates the next sequential donation id. The allocation is
	// part of the surrounding transaction: a rollback returns the id to the
	// sequence, so committed ids have no gaps.
	NextID(ctx context.Context, tx pgx.Tx) (int64, error)
	Create(ctx context.Context, tx pgx.Tx, donation *domain.Donation) error
	GetByID(ctx context.Context, id int64) (*domain.Donation, error)
	Count(ctx context.Context) (int64, error)
}

// WalletRepository defines persistence for per-identity value custody.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	CreateTx(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Wallet, error)
	GetByIdentityForUpdate(ctx context.Context, tx pgx.Tx, identity domain.Identity) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, identity domain.Identity, newBalance int64) error
}

// VerifierRepository defines persistence for the explicit verifier set.
// The owner's implicit privilege is a policy fact and never stored here.
type VerifierRepository interface {
	// Add returns domain.ErrDuplicateIdentity if already present.
	Add(ctx context.Context, identity domain.Identity) error
	// Remove reports whether the identity was present.
	Remove(ctx context.Context, identity domain.Identity) (bool, error)
	Exists(ctx context.Context, identity domain.Identity) (bool, error)
}

// AccountRepository defines persistence for login accounts.
type AccountRepository interface {
	// Create returns domain.ErrDuplicateUsername on a username collision.
	Create(ctx context.Context, account *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Account, error)
}

// DBTransactor provides database transaction management. Every mutating core
// operation runs inside a single transaction so its effects commit or abort
// as one unit.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
