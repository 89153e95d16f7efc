package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

const donationColumns = `id, donor_id, donor_name, amount_cents, currency, message, status, session_id, created_at, updated_at`

// DonationRepository provides database access for donations.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository creates a new instance of DonationRepository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts a new donation in its initial state.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == "" {
		donation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = now
	}
	donation.UpdatedAt = now

	const query = `INSERT INTO donations (id, donor_id, donor_name, amount_cents, currency, message, status, session_id, created_at, updated_at) VALUES (:id, :donor_id, :donor_name, :amount_cents, :currency, :message, :status, :session_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, donation); err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	return nil
}

// FindBySession returns a donation by its payment session id.
func (r *DonationRepository) FindBySession(ctx context.Context, sessionID string) (*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE session_id = $1 LIMIT 1`
	var donation models.Donation
	if err := r.db.GetContext(ctx, &donation, query, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find donation by session: %w", err)
	}
	return &donation, nil
}

// UpdateStatus transitions a donation's payment state.
func (r *DonationRepository) UpdateStatus(ctx context.Context, id string, status models.DonationStatus) error {
	const query = `UPDATE donations SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	return nil
}

// List returns donations based on filters with total count.
func (r *DonationRepository) List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error) {
	baseQuery := `FROM donations WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DonorID != "" {
		conditions = append(conditions, fmt.Sprintf("donor_id = $%d", len(args)+1))
		args = append(args, filter.DonorID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"amount_cents": true,
		"created_at":   true,
		"updated_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", donationColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var donations []models.Donation
	if err := r.db.SelectContext(ctx, &donations, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count donations: %w", err)
	}

	return donations, total, nil
}

// ListAll returns every donation in creation order for export.
func (r *DonationRepository) ListAll(ctx context.Context) ([]models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations ORDER BY created_at ASC`
	var donations []models.Donation
	if err := r.db.SelectContext(ctx, &donations, query); err != nil {
		return nil, fmt.Errorf("list all donations: %w", err)
	}
	return donations, nil
}

// TotalSucceededCents returns the sum of completed donations.
func (r *DonationRepository) TotalSucceededCents(ctx context.Context) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount_cents), 0) FROM donations WHERE status = $1`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, models.DonationStatusSucceeded); err != nil {
		return 0, fmt.Errorf("sum donations: %w", err)
	}
	return total, nil
}
