package postgres

import (
	"context"
	"testing"
	"time"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDonation(id int64) *domain.Donation {
	return &domain.Donation{
		ID:        id,
		Donor:     "id_donor",
		NGO:       "id_ngo",
		Amount:    100,
		ProjectID: "p1",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestDonationRepo_NextID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDonationRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE counters SET value").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(int64(0)))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.NextID(context.Background(), dbTx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDonationRepo(mock)
	d := newTestDonation(0)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO donations").
		WithArgs(d.ID, d.Donor, d.NGO, d.Amount, d.ProjectID, d.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, d)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDonationRepo(mock)
	d := newTestDonation(7)

	mock.ExpectQuery("SELECT .+ FROM donations WHERE id").
		WithArgs(d.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "donor", "ngo", "amount", "project_id", "created_at"}).
			AddRow(d.ID, d.Donor, d.NGO, d.Amount, d.ProjectID, d.CreatedAt))

	result, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(7), result.ID)
	assert.Equal(t, domain.Identity("id_donor"), result.Donor)
	assert.Equal(t, int64(100), result.Amount)
}

func TestDonationRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDonationRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM donations WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "donor", "ngo", "amount", "project_id", "created_at"}))

	result, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDonationRepo_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDonationRepo(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM donations`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}
