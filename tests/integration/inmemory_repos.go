package integration

import (
	"context"
	"fmt"
	"sync"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// The in-memory repos back the integration suite without a real PostgreSQL.
// Unlike row-level locks, consistency here comes from the transactor: Begin
// takes a global mutex, so transactions serialize, and every tx-scoped
// mutation registers an undo action that Rollback replays in reverse. That
// is enough to observe the same end states a real database would produce:
// exact balances, dense donation ids, one winner per uniqueness race.

// --- In-Memory NGO Repo ---

type inMemoryNGORepo struct {
	mu   sync.RWMutex
	ngos map[domain.Identity]*domain.NGO
}

func newInMemoryNGORepo() *inMemoryNGORepo {
	return &inMemoryNGORepo{ngos: make(map[domain.Identity]*domain.NGO)}
}

func (r *inMemoryNGORepo) Create(ctx context.Context, tx pgx.Tx, ngo *domain.NGO) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ngos[ngo.Identity]; ok {
		return domain.ErrDuplicateIdentity
	}
	for _, existing := range r.ngos {
		if existing.Email == ngo.Email {
			return domain.ErrDuplicateEmail
		}
	}
	stored := *ngo
	r.ngos[ngo.Identity] = &stored
	onRollback(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.ngos, ngo.Identity)
	})
	return nil
}

func (r *inMemoryNGORepo) GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.NGO, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.ngos[identity]
	if !ok {
		return nil, nil
	}
	copied := *n
	return &copied, nil
}

func (r *inMemoryNGORepo) GetByEmail(ctx context.Context, email string) (*domain.NGO, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.ngos {
		if n.Email == email {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryNGORepo) GetByIdentityForUpdate(ctx context.Context, tx pgx.Tx, identity domain.Identity) (*domain.NGO, error) {
	return r.GetByIdentity(ctx, identity)
}

func (r *inMemoryNGORepo) UpdateStatus(ctx context.Context, tx pgx.Tx, identity domain.Identity, status domain.NGOStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.ngos[identity]
	if !ok {
		return fmt.Errorf("organization not found")
	}
	prev := n.Status
	n.Status = status
	onRollback(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.ngos[identity]; ok {
			cur.Status = prev
		}
	})
	return nil
}

func (r *inMemoryNGORepo) AddToDonationTotal(ctx context.Context, tx pgx.Tx, identity domain.Identity, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.ngos[identity]
	if !ok {
		return fmt.Errorf("organization not found")
	}
	n.TotalDonations += amount
	onRollback(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.ngos[identity]; ok {
			cur.TotalDonations -= amount
		}
	})
	return nil
}

func (r *inMemoryNGORepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.ngos)), nil
}

// --- In-Memory Donation Repo ---

type inMemoryDonationRepo struct {
	mu        sync.RWMutex
	next      int64
	donations map[int64]*domain.Donation
}

func newInMemoryDonationRepo() *inMemoryDonationRepo {
	return &inMemoryDonationRepo{donations: make(map[int64]*domain.Donation)}
}

func (r *inMemoryDonationRepo) NextID(ctx context.Context, tx pgx.Tx) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	// Transactions serialize, so undo actions run LIFO and the counter
	// rewinds exactly to where this allocation left it.
	onRollback(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.next--
	})
	return id, nil
}

func (r *inMemoryDonationRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *d
	r.donations[d.ID] = &stored
	onRollback(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.donations, d.ID)
	})
	return nil
}

func (r *inMemoryDonationRepo) GetByID(ctx context.Context, id int64) (*domain.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.donations[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (r *inMemoryDonationRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.donations)), nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[domain.Identity]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[domain.Identity]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *w
	r.wallets[w.Identity] = &stored
	return nil
}

func (r *inMemoryWalletRepo) CreateTx(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *w
	r.wallets[w.Identity] = &stored
	onRollback(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.wallets, w.Identity)
	})
	return nil
}

func (r *inMemoryWalletRepo) GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[identity]
	if !ok {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

func (r *inMemoryWalletRepo) GetByIdentityForUpdate(ctx context.Context, tx pgx.Tx, identity domain.Identity) (*domain.Wallet, error) {
	return r.GetByIdentity(ctx, identity)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, identity domain.Identity, newBalance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[identity]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	prev := w.Balance
	w.Balance = newBalance
	onRollback(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.wallets[identity]; ok {
			cur.Balance = prev
		}
	})
	return nil
}

// --- In-Memory Verifier Repo ---

type inMemoryVerifierRepo struct {
	mu        sync.RWMutex
	verifiers map[domain.Identity]struct{}
}

func newInMemoryVerifierRepo() *inMemoryVerifierRepo {
	return &inMemoryVerifierRepo{verifiers: make(map[domain.Identity]struct{})}
}

func (r *inMemoryVerifierRepo) Add(ctx context.Context, identity domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.verifiers[identity]; ok {
		return domain.ErrDuplicateIdentity
	}
	r.verifiers[identity] = struct{}{}
	return nil
}

func (r *inMemoryVerifierRepo) Remove(ctx context.Context, identity domain.Identity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.verifiers[identity]
	delete(r.verifiers, identity)
	return ok, nil
}

func (r *inMemoryVerifierRepo) Exists(ctx context.Context, identity domain.Identity) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.verifiers[identity]
	return ok, nil
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[domain.Identity]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[domain.Identity]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return domain.ErrDuplicateUsername
		}
	}
	stored := *a
	r.accounts[a.Identity] = &stored
	return nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[identity]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: t.mu.Unlock}, nil
}

// memTx serializes transactions via the transactor mutex and keeps an undo
// journal so Rollback restores the pre-transaction state.
type memTx struct {
	release func()
	undo    []func()
	done    bool
}

func onRollback(tx pgx.Tx, fn func()) {
	if mt, ok := tx.(*memTx); ok {
		mt.undo = append(mt.undo, fn)
	}
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	t.release()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.release()
	return nil
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }

// --- Capturing Notifier ---

type captureNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{}
}

func (n *captureNotifier) Publish(ctx context.Context, event domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) Types() []domain.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]domain.EventType, 0, len(n.events))
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}
