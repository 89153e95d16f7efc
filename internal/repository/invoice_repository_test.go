package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

func newInvoiceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestInvoiceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newInvoiceMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnResult(sqlmock.NewResult(1, 1))

	invoice := &models.Invoice{
		InvoiceNumber: "INV-2026-0001",
		InstructorID:  "u1",
		Services:      models.InvoiceServices{{Title: "Course videos", Rate: 100, Amount: 500}},
		SubTotal:      500,
		GrandTotal:    500,
		Status:        models.InvoiceStatusPending,
		Email:         "teach@example.com",
		DueDate:       time.Now().AddDate(0, 1, 0),
	}
	require.NoError(t, repo.Create(context.Background(), invoice))
	assert.NotEmpty(t, invoice.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryNextSequence(t *testing.T) {
	db, mock, cleanup := newInvoiceMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	// The max suffix drives the sequence, not the row count: with 40 rows
	// left after a deletion but INV-2026-0041 as the highest number issued,
	// the next allocation must be 42.
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(CAST\\(SUBSTRING\\(invoice_number FROM .*\\) AS INTEGER\\)\\), 0\\) FROM invoices WHERE EXTRACT\\(YEAR FROM created_at\\) = \\$1").
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))

	seq, err := repo.NextSequence(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 42, seq)
}

func TestInvoiceRepositoryCreateDuplicateNumber(t *testing.T) {
	db, mock, cleanup := newInvoiceMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "invoices_invoice_number_key"})

	invoice := &models.Invoice{InvoiceNumber: "INV-2026-0001", InstructorID: "u1", DueDate: time.Now()}
	err := repo.Create(context.Background(), invoice)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestInvoiceRepositoryListByInstructor(t *testing.T) {
	db, mock, cleanup := newInvoiceMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "invoice_number", "instructor_id", "instructor_details", "company_details", "services", "sub_total", "tax_rate", "tax_amount", "discount", "grand_total", "status", "rejection_reason", "decided_at", "notes", "email", "pdf_url", "due_date", "created_at", "updated_at"}).
		AddRow("i1", "INV-2026-0001", "u1", []byte(`{}`), []byte(`{}`), []byte(`[]`), 500.0, 0.0, 0.0, 0.0, 500.0, "PENDING", nil, nil, "", "teach@example.com", nil, time.Now(), time.Now(), time.Now())
	mock.ExpectQuery("SELECT .* FROM invoices WHERE 1=1 AND instructor_id = \\$1 ORDER BY created_at DESC LIMIT 20 OFFSET 0").
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM invoices WHERE 1=1 AND instructor_id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	invoices, total, err := repo.List(context.Background(), models.InvoiceFilter{InstructorID: "u1"})
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
	assert.Equal(t, 1, total)
}

func TestInvoiceRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newInvoiceMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec("DELETE FROM invoices WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}
