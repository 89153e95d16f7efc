package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/export"
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/mail"
	"github.com/noah-isme/lms-api/pkg/storage"
)

type invoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error)
	Delete(ctx context.Context, id string) (bool, error)
	NextSequence(ctx context.Context, year int) (int, error)
}

// InvoiceLineRequest is one billed line item in an invoice payload.
type InvoiceLineRequest struct {
	Title    string  `json:"title" validate:"required"`
	Duration string  `json:"duration"`
	Rate     float64 `json:"rate_per_video" validate:"gte=0"`
	Amount   float64 `json:"total_amount" validate:"gt=0"`
}

// CreateInvoiceRequest holds payload for submitting invoices.
type CreateInvoiceRequest struct {
	Services []InvoiceLineRequest `json:"services" validate:"required,min=1,dive"`
	TaxRate  float64              `json:"tax_rate" validate:"gte=0,lte=100"`
	Discount float64              `json:"discount" validate:"gte=0"`
	Notes    string               `json:"notes"`
	DueDate  time.Time            `json:"due_date" validate:"required"`
}

// invoiceNumberAttempts bounds the allocate-insert retry on number races.
const invoiceNumberAttempts = 3

// InvoiceConfig tunes numbering and the issuing company identity.
type InvoiceConfig struct {
	NumberPrefix string
	Company      models.Party
}

// InvoiceService handles instructor payout invoices: submission, admin
// decision, PDF rendering and email dispatch. Rendering and sending run on
// the dispatch queue so decisions return immediately.
type InvoiceService struct {
	repo          invoiceRepository
	users         userReader
	pdf           *export.InvoicePDF
	storage       storage.ObjectStorage
	mailer        mail.Service
	dispatchQueue jobEnqueuer
	validator     *validator.Validate
	logger        *zap.Logger
	config        InvoiceConfig
}

// NewInvoiceService constructs the invoice service.
func NewInvoiceService(repo invoiceRepository, users userReader, pdf *export.InvoicePDF, store storage.ObjectStorage, mailer mail.Service, dispatchQueue jobEnqueuer, validate *validator.Validate, logger *zap.Logger, config InvoiceConfig) *InvoiceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.NumberPrefix == "" {
		config.NumberPrefix = "INV"
	}
	return &InvoiceService{repo: repo, users: users, pdf: pdf, storage: store, mailer: mailer, dispatchQueue: dispatchQueue, validator: validate, logger: logger, config: config}
}

// List returns invoices and pagination metadata. Instructors only ever see
// their own; handlers pass the caller's id for non-admin requests.
func (s *InvoiceService) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, *models.Pagination, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	return invoices, listPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an invoice. Non-admin callers may only read their own.
func (s *InvoiceService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	if actor != nil && actor.Role != models.RoleAdmin && invoice.InstructorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invoice belongs to another instructor")
	}
	return invoice, nil
}

// Create submits a new invoice for the calling instructor. Totals are
// computed server side from the line items.
func (s *InvoiceService) Create(ctx context.Context, instructorID string, req CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invoice payload")
	}

	instructor, err := s.users.FindByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	var services models.InvoiceServices
	var subTotal float64
	for _, line := range req.Services {
		services = append(services, models.InvoiceService{
			Title:    line.Title,
			Duration: line.Duration,
			Rate:     line.Rate,
			Amount:   line.Amount,
		})
		subTotal += line.Amount
	}
	taxAmount := subTotal * req.TaxRate / 100
	grandTotal := subTotal + taxAmount - req.Discount
	if grandTotal < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "discount exceeds invoice total")
	}

	invoice := &models.Invoice{
		InstructorID: instructor.ID,
		Instructor: models.Party{
			Name:    instructor.Name,
			Email:   instructor.Email,
			Phone:   instructor.Phone,
			Address: instructor.Address,
		},
		Company:    s.config.Company,
		Services:   services,
		SubTotal:   subTotal,
		TaxRate:    req.TaxRate,
		TaxAmount:  taxAmount,
		Discount:   req.Discount,
		GrandTotal: grandTotal,
		Status:     models.InvoiceStatusPending,
		Notes:      req.Notes,
		Email:      instructor.Email,
		DueDate:    req.DueDate,
	}
	// Concurrent submissions can race to the same sequence; the unique
	// index on invoice_number arbitrates and the loser re-allocates.
	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		number, err := s.nextNumber(ctx)
		if err != nil {
			return nil, err
		}
		invoice.InvoiceNumber = number

		err = s.repo.Create(ctx, invoice)
		if err == nil {
			return invoice, nil
		}
		if appErrors.FromError(err).Code != appErrors.ErrConflict.Code {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invoice")
		}
	}
	return nil, appErrors.Clone(appErrors.ErrConflict, "could not allocate an invoice number")
}

// Approve marks a pending invoice approved and queues the PDF dispatch.
func (s *InvoiceService) Approve(ctx context.Context, id string) (*models.Invoice, error) {
	return s.decide(ctx, id, models.InvoiceStatusApproved, "")
}

// Reject marks a pending invoice rejected with a mandatory reason and
// queues the notification.
func (s *InvoiceService) Reject(ctx context.Context, id, reason string) (*models.Invoice, error) {
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	return s.decide(ctx, id, models.InvoiceStatusRejected, reason)
}

func (s *InvoiceService) decide(ctx context.Context, id string, status models.InvoiceStatus, reason string) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if invoice.Status == status {
		return invoice, nil
	}
	if invoice.Status != models.InvoiceStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("invoice is already %s", invoice.Status))
	}

	now := time.Now().UTC()
	invoice.Status = status
	invoice.DecidedAt = &now
	if reason != "" {
		invoice.RejectionReason = &reason
	} else {
		invoice.RejectionReason = nil
	}

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invoice")
	}

	if s.dispatchQueue != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: "invoice-dispatch", Payload: invoice.ID}
		if err := s.dispatchQueue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue invoice dispatch", zap.Error(err))
		}
	}
	return invoice, nil
}

// Delete removes an invoice. Only the owning instructor may delete, and
// only while it is pending.
func (s *InvoiceService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	invoice, err := s.Get(ctx, id, actor)
	if err != nil {
		return err
	}
	if invoice.Status != models.InvoiceStatusPending {
		return appErrors.Clone(appErrors.ErrConflict, "only pending invoices can be deleted")
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete invoice")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
	}
	return nil
}

// Dispatch renders the decided invoice PDF, stores it and emails the
// instructor. It is the handler for the invoice dispatch queue.
func (s *InvoiceService) Dispatch(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("invoice dispatch: unexpected payload %T", job.Payload)
	}

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("invoice dispatch: load %s: %w", id, err)
	}

	doc := export.InvoiceDocument{
		Number:          invoice.InvoiceNumber,
		Date:            invoice.CreatedAt,
		DueDate:         invoice.DueDate,
		CompanyName:     invoice.Company.Name,
		CompanyEmail:    invoice.Company.Email,
		CompanyAddress:  invoice.Company.Address,
		InstructorName:  invoice.Instructor.Name,
		InstructorEmail: invoice.Instructor.Email,
		SubTotal:        invoice.SubTotal,
		TaxRate:         invoice.TaxRate,
		TaxAmount:       invoice.TaxAmount,
		Discount:        invoice.Discount,
		GrandTotal:      invoice.GrandTotal,
		Status:          string(invoice.Status),
		DecisionDate:    invoice.DecidedAt,
		Notes:           invoice.Notes,
	}
	if invoice.RejectionReason != nil {
		doc.RejectionReason = *invoice.RejectionReason
	}
	for _, line := range invoice.Services {
		doc.Lines = append(doc.Lines, export.InvoiceLine{
			Title:    line.Title,
			Duration: line.Duration,
			Rate:     line.Rate,
			Amount:   line.Amount,
		})
	}

	pdfBytes, err := s.pdf.Render(doc)
	if err != nil {
		return fmt.Errorf("invoice dispatch: render %s: %w", invoice.InvoiceNumber, err)
	}

	filename := fmt.Sprintf("invoices/%s.pdf", invoice.InvoiceNumber)
	url, err := s.storage.Upload(filename, pdfBytes)
	if err != nil {
		return fmt.Errorf("invoice dispatch: store %s: %w", filename, err)
	}
	invoice.PDFURL = &url
	if err := s.repo.Update(ctx, invoice); err != nil {
		return fmt.Errorf("invoice dispatch: persist pdf url: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s %s", invoice.InvoiceNumber, invoice.Status)
	body := fmt.Sprintf("Your invoice %s has been %s.", invoice.InvoiceNumber, invoice.Status)
	if doc.RejectionReason != "" {
		body += " Reason: " + doc.RejectionReason
	}
	msg := mail.Message{
		ToName:   invoice.Instructor.Name,
		ToEmail:  invoice.Email,
		Subject:  subject,
		TextBody: body,
		Attachments: []mail.Attachment{{
			Filename:    fmt.Sprintf("%s.pdf", invoice.InvoiceNumber),
			ContentType: "application/pdf",
			Content:     pdfBytes,
		}},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("invoice dispatch: email %s: %w", invoice.Email, err)
	}

	s.logger.Sugar().Infow("invoice dispatched", "invoice", invoice.InvoiceNumber, "status", invoice.Status)
	return nil
}

func (s *InvoiceService) nextNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	seq, err := s.repo.NextSequence(ctx, year)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate invoice number")
	}
	return fmt.Sprintf("%s-%d-%04d", s.config.NumberPrefix, year, seq), nil
}
