package service

import (
	"context"
	"testing"

	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports/mocks"
	"ngo-donation-ledger/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testOwner = domain.Identity("id_owner")

type verifierTestDeps struct {
	svc          *VerifierServiceImpl
	verifierRepo *mocks.MockVerifierRepository
	notifier     *mocks.MockNotifier
	ctrl         *gomock.Controller
}

func setupVerifierService(t *testing.T) *verifierTestDeps {
	ctrl := gomock.NewController(t)
	d := &verifierTestDeps{
		verifierRepo: mocks.NewMockVerifierRepository(ctrl),
		notifier:     mocks.NewMockNotifier(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewVerifierService(
		d.verifierRepo, d.notifier, metrics.NewWith(prometheus.NewRegistry()),
		testOwner, zerolog.Nop(),
	)
	return d
}

func TestVerifierService_AddVerifier_Success(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.verifierRepo.EXPECT().Add(ctx, domain.Identity("id_v1")).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	err := d.svc.AddVerifier(ctx, testOwner, "id_v1")
	require.NoError(t, err)
}

func TestVerifierService_AddVerifier_NonOwner(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	err := d.svc.AddVerifier(context.Background(), "id_v1", "id_v2")
	assertAppError(t, err, "AUTHZ_001")
}

func TestVerifierService_AddVerifier_Duplicate(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.verifierRepo.EXPECT().Add(ctx, domain.Identity("id_v1")).Return(domain.ErrDuplicateIdentity)

	err := d.svc.AddVerifier(ctx, testOwner, "id_v1")
	assertAppError(t, err, "VER_001")
}

func TestVerifierService_RemoveVerifier_Success(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.verifierRepo.EXPECT().Remove(ctx, domain.Identity("id_v1")).Return(true, nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	err := d.svc.RemoveVerifier(ctx, testOwner, "id_v1")
	require.NoError(t, err)
}

func TestVerifierService_RemoveVerifier_OwnerProtectedForAnyCaller(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	for _, caller := range []domain.Identity{testOwner, "id_rando"} {
		err := d.svc.RemoveVerifier(ctx, caller, testOwner)
		assertAppError(t, err, "VER_003")
	}
}

func TestVerifierService_RemoveVerifier_NonOwner(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	err := d.svc.RemoveVerifier(context.Background(), "id_v1", "id_v2")
	assertAppError(t, err, "AUTHZ_001")
}

func TestVerifierService_RemoveVerifier_NotPresent(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.verifierRepo.EXPECT().Remove(ctx, domain.Identity("id_v1")).Return(false, nil)

	err := d.svc.RemoveVerifier(ctx, testOwner, "id_v1")
	assertAppError(t, err, "VER_002")
}

func TestVerifierService_Predicates(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	assert.True(t, d.svc.IsOwner(testOwner))
	assert.False(t, d.svc.IsOwner("id_v1"))

	// Owner privilege is implicit, no set lookup.
	ok, err := d.svc.IsVerifierOrOwner(ctx, testOwner)
	require.NoError(t, err)
	assert.True(t, ok)

	d.verifierRepo.EXPECT().Exists(ctx, domain.Identity("id_v1")).Return(true, nil)
	ok, err = d.svc.IsVerifierOrOwner(ctx, "id_v1")
	require.NoError(t, err)
	assert.True(t, ok)

	d.verifierRepo.EXPECT().Exists(ctx, domain.Identity("id_rando")).Return(false, nil)
	ok, err = d.svc.IsVerifierOrOwner(ctx, "id_rando")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifierService_IsVerifier_ExcludesImplicitOwner(t *testing.T) {
	d := setupVerifierService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.verifierRepo.EXPECT().Exists(ctx, testOwner).Return(false, nil)

	ok, err := d.svc.IsVerifier(ctx, testOwner)
	require.NoError(t, err)
	assert.False(t, ok)
}
