package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/payments"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/export"
)

type donationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindBySession(ctx context.Context, sessionID string) (*models.Donation, error)
	UpdateStatus(ctx context.Context, id string, status models.DonationStatus) error
	List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error)
	ListAll(ctx context.Context) ([]models.Donation, error)
	TotalSucceededCents(ctx context.Context) (int64, error)
}

// CheckoutRequest holds payload for starting a donation.
type CheckoutRequest struct {
	DonorName   string `json:"donor_name" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Message     string `json:"message"`
}

// CheckoutResponse returns the payment session to the client.
type CheckoutResponse struct {
	Donation *models.Donation          `json:"donation"`
	Session  *payments.CheckoutSession `json:"session"`
}

// DonationConfig tunes donation acceptance.
type DonationConfig struct {
	Currency       string
	MinAmountCents int64
}

// DonationService handles donation checkout, webhook settlement and admin
// reporting.
type DonationService struct {
	repo      donationRepository
	gateway   payments.Gateway
	exporter  *export.CSVExporter
	validator *validator.Validate
	logger    *zap.Logger
	config    DonationConfig
}

// NewDonationService constructs the donation service.
func NewDonationService(repo donationRepository, gateway payments.Gateway, exporter *export.CSVExporter, validate *validator.Validate, logger *zap.Logger, config DonationConfig) *DonationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Currency == "" {
		config.Currency = "USD"
	}
	return &DonationService{repo: repo, gateway: gateway, exporter: exporter, validator: validate, logger: logger, config: config}
}

// Checkout opens a payment session and records the pending donation.
func (s *DonationService) Checkout(ctx context.Context, donorID *string, req CheckoutRequest) (*CheckoutResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid donation payload")
	}
	if req.AmountCents < s.config.MinAmountCents {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("minimum donation is %d cents", s.config.MinAmountCents))
	}

	session, err := s.gateway.CreateSession(ctx, req.AmountCents, s.config.Currency, "donation")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open payment session")
	}

	donation := &models.Donation{
		DonorID:     donorID,
		DonorName:   req.DonorName,
		AmountCents: req.AmountCents,
		Currency:    s.config.Currency,
		Message:     req.Message,
		Status:      models.DonationStatusPending,
		SessionID:   session.ID,
	}
	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record donation")
	}
	return &CheckoutResponse{Donation: donation, Session: session}, nil
}

// HandleWebhook verifies a gateway notification and settles the donation.
// Replayed notifications for an already settled donation are ignored.
func (s *DonationService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "webhook verification failed")
	}

	donation, err := s.repo.FindBySession(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "unknown payment session")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation")
	}
	if donation.Status != models.DonationStatusPending {
		return nil
	}

	status := models.DonationStatusFailed
	if event.Succeeded {
		status = models.DonationStatusSucceeded
	}
	if err := s.repo.UpdateStatus(ctx, donation.ID, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle donation")
	}

	s.logger.Sugar().Infow("donation settled", "donation_id", donation.ID, "status", status)
	return nil
}

// List returns donations and pagination metadata.
func (s *DonationService) List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, *models.Pagination, error) {
	donations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donations")
	}
	return donations, listPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a donation by payment session. Non-admin callers may only
// read their own.
func (s *DonationService) Get(ctx context.Context, sessionID string, actor *models.JWTClaims) (*models.Donation, error) {
	donation, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation")
	}
	if actor != nil && actor.Role != models.RoleAdmin {
		if donation.DonorID == nil || *donation.DonorID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "donation belongs to another donor")
		}
	}
	return donation, nil
}

// TotalRaisedCents returns the sum of completed donations.
func (s *DonationService) TotalRaisedCents(ctx context.Context) (int64, error) {
	total, err := s.repo.TotalSucceededCents(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum donations")
	}
	return total, nil
}

// ExportCSV writes every donation as a CSV document for admin reporting.
func (s *DonationService) ExportCSV(ctx context.Context) ([]byte, error) {
	donations, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export donations")
	}

	dataset := export.Dataset{
		Headers: []string{"id", "donor_name", "amount_cents", "currency", "status", "session_id", "created_at"},
	}
	for _, d := range donations {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":           d.ID,
			"donor_name":   d.DonorName,
			"amount_cents": strconv.FormatInt(d.AmountCents, 10),
			"currency":     d.Currency,
			"status":       string(d.Status),
			"session_id":   d.SessionID,
			"created_at":   d.CreatedAt.Format(time.RFC3339),
		})
	}
	return s.exporter.Render(dataset)
}
