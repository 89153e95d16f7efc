package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/export"
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/mail"
)

type mockInvoiceRepo struct {
	invoices        map[string]*models.Invoice
	sequence        int
	createConflicts int
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: make(map[string]*models.Invoice)}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	if m.createConflicts > 0 {
		m.createConflicts--
		return appErrors.Clone(appErrors.ErrConflict, "invoice number already taken")
	}
	if invoice.ID == "" {
		invoice.ID = fmt.Sprintf("inv-%d", len(m.invoices)+1)
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return inv, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error) {
	out := make([]models.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := m.invoices[id]
	delete(m.invoices, id)
	return ok, nil
}

func (m *mockInvoiceRepo) NextSequence(ctx context.Context, year int) (int, error) {
	m.sequence++
	return m.sequence, nil
}

type mockStorage struct {
	uploads map[string][]byte
}

func (m *mockStorage) Upload(name string, data []byte) (string, error) {
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	m.uploads[name] = data
	return "https://files.example.com/" + name, nil
}

func (m *mockStorage) Delete(name string) error {
	delete(m.uploads, name)
	return nil
}

type mockMailer struct {
	sent []mail.Message
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newInvoiceService(repo *mockInvoiceRepo, queue *mockQueue, store *mockStorage, mailer *mockMailer) *InvoiceService {
	users := &mockUserReader{user: &models.User{ID: "instructor-1", Name: "Dina", Email: "dina@example.com", Phone: "555-0101", Address: "12 Oak Lane"}}
	cfg := InvoiceConfig{NumberPrefix: "INV", Company: models.Party{Name: "Open Academy", Email: "billing@example.com"}}
	return NewInvoiceService(repo, users, export.NewInvoicePDF(), store, mailer, queue, validator.New(), zap.NewNop(), cfg)
}

func pendingInvoice(id string) *models.Invoice {
	return &models.Invoice{
		ID:            id,
		InvoiceNumber: "INV-2026-0001",
		InstructorID:  "instructor-1",
		Instructor:    models.Party{Name: "Dina", Email: "dina@example.com"},
		Company:       models.Party{Name: "Open Academy"},
		Services:      models.InvoiceServices{{Title: "Algebra course", Amount: 400}},
		SubTotal:      400,
		GrandTotal:    400,
		Status:        models.InvoiceStatusPending,
		Email:         "dina@example.com",
		DueDate:       time.Now().Add(14 * 24 * time.Hour),
	}
}

func TestInvoiceServiceCreateComputesTotals(t *testing.T) {
	repo := newMockInvoiceRepo()
	svc := newInvoiceService(repo, &mockQueue{}, &mockStorage{}, &mockMailer{})

	invoice, err := svc.Create(context.Background(), "instructor-1", CreateInvoiceRequest{
		Services: []InvoiceLineRequest{
			{Title: "Algebra course", Amount: 400},
			{Title: "Geometry course", Amount: 100},
		},
		TaxRate:  10,
		Discount: 50,
		DueDate:  time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, invoice.SubTotal)
	assert.Equal(t, 50.0, invoice.TaxAmount)
	assert.Equal(t, 500.0, invoice.GrandTotal)
	assert.Equal(t, models.InvoiceStatusPending, invoice.Status)
	assert.Contains(t, invoice.InvoiceNumber, "INV-")
	assert.Equal(t, "Dina", invoice.Instructor.Name)
}

func TestInvoiceServiceCreateRetriesNumberRace(t *testing.T) {
	repo := newMockInvoiceRepo()
	repo.createConflicts = 1 // another request grabbed the first number
	svc := newInvoiceService(repo, &mockQueue{}, &mockStorage{}, &mockMailer{})

	invoice, err := svc.Create(context.Background(), "instructor-1", CreateInvoiceRequest{
		Services: []InvoiceLineRequest{{Title: "Algebra course", Amount: 400}},
		DueDate:  time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sequence)
	assert.Contains(t, invoice.InvoiceNumber, "0002")
}

func TestInvoiceServiceCreateExhaustsNumberRetries(t *testing.T) {
	repo := newMockInvoiceRepo()
	repo.createConflicts = invoiceNumberAttempts
	svc := newInvoiceService(repo, &mockQueue{}, &mockStorage{}, &mockMailer{})

	_, err := svc.Create(context.Background(), "instructor-1", CreateInvoiceRequest{
		Services: []InvoiceLineRequest{{Title: "Algebra course", Amount: 400}},
		DueDate:  time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestInvoiceServiceCreateRejectsExcessDiscount(t *testing.T) {
	svc := newInvoiceService(newMockInvoiceRepo(), &mockQueue{}, &mockStorage{}, &mockMailer{})

	_, err := svc.Create(context.Background(), "instructor-1", CreateInvoiceRequest{
		Services: []InvoiceLineRequest{{Title: "Algebra course", Amount: 100}},
		Discount: 500,
		DueDate:  time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestInvoiceServiceApproveQueuesDispatch(t *testing.T) {
	repo := newMockInvoiceRepo()
	repo.invoices["inv-1"] = pendingInvoice("inv-1")
	queue := &mockQueue{}
	svc := newInvoiceService(repo, queue, &mockStorage{}, &mockMailer{})

	invoice, err := svc.Approve(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusApproved, invoice.Status)
	require.NotNil(t, invoice.DecidedAt)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "invoice-dispatch", queue.jobs[0].Type)
	assert.Equal(t, "inv-1", queue.jobs[0].Payload)
}

func TestInvoiceServiceDecisionConflicts(t *testing.T) {
	repo := newMockInvoiceRepo()
	inv := pendingInvoice("inv-1")
	inv.Status = models.InvoiceStatusRejected
	repo.invoices["inv-1"] = inv
	svc := newInvoiceService(repo, &mockQueue{}, &mockStorage{}, &mockMailer{})

	_, err := svc.Approve(context.Background(), "inv-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	// re-sending the same decision is a no-op
	invoice, err := svc.Reject(context.Background(), "inv-1", "missing detail")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusRejected, invoice.Status)
}

func TestInvoiceServiceDeleteOnlyOwnPending(t *testing.T) {
	repo := newMockInvoiceRepo()
	repo.invoices["inv-1"] = pendingInvoice("inv-1")
	svc := newInvoiceService(repo, &mockQueue{}, &mockStorage{}, &mockMailer{})

	err := svc.Delete(context.Background(), "inv-1", instructorClaims("instructor-2"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.Delete(context.Background(), "inv-1", instructorClaims("instructor-1")))
	assert.Empty(t, repo.invoices)
}

func TestInvoiceServiceDispatchRendersAndMails(t *testing.T) {
	repo := newMockInvoiceRepo()
	inv := pendingInvoice("inv-1")
	inv.Status = models.InvoiceStatusApproved
	now := time.Now().UTC()
	inv.DecidedAt = &now
	repo.invoices["inv-1"] = inv
	store := &mockStorage{}
	mailer := &mockMailer{}
	svc := newInvoiceService(repo, &mockQueue{}, store, mailer)

	err := svc.Dispatch(context.Background(), jobs.Job{ID: "j1", Type: "invoice-dispatch", Payload: "inv-1"})
	require.NoError(t, err)

	require.NotNil(t, repo.invoices["inv-1"].PDFURL)
	assert.Contains(t, *repo.invoices["inv-1"].PDFURL, "INV-2026-0001.pdf")
	require.Len(t, mailer.sent, 1)
	require.Len(t, mailer.sent[0].Attachments, 1)
	assert.Equal(t, "application/pdf", mailer.sent[0].Attachments[0].ContentType)
	assert.NotEmpty(t, store.uploads)
}
