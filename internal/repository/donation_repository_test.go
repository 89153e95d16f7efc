package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func newDonationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDonationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newDonationMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	mock.ExpectExec("INSERT INTO donations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	donation := &models.Donation{DonorName: "Anonymous", AmountCents: 2500, Currency: "USD", Status: models.DonationStatusPending, SessionID: "sess_1"}
	require.NoError(t, repo.Create(context.Background(), donation))
	assert.NotEmpty(t, donation.ID)
}

func TestDonationRepositoryFindBySession(t *testing.T) {
	db, mock, cleanup := newDonationMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "donor_id", "donor_name", "amount_cents", "currency", "message", "status", "session_id", "created_at", "updated_at"}).
		AddRow("d1", nil, "Anonymous", int64(2500), "USD", "", "PENDING", "sess_1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .* FROM donations WHERE session_id = \\$1 LIMIT 1").
		WithArgs("sess_1").
		WillReturnRows(rows)

	donation, err := repo.FindBySession(context.Background(), "sess_1")
	require.NoError(t, err)
	assert.Equal(t, "d1", donation.ID)
	assert.Equal(t, int64(2500), donation.AmountCents)
}

func TestDonationRepositoryTotalSucceededCents(t *testing.T) {
	db, mock, cleanup := newDonationMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount_cents\\), 0\\) FROM donations WHERE status = \\$1").
		WithArgs(models.DonationStatusSucceeded).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(10000)))

	total, err := repo.TotalSucceededCents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), total)
}
