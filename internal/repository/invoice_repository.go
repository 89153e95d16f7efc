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
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

const invoiceColumns = `id, invoice_number, instructor_id, instructor_details, company_details, services, sub_total, tax_rate, tax_amount, discount, grand_total, status, rejection_reason, decided_at, notes, email, pdf_url, due_date, created_at, updated_at`

// InvoiceRepository provides database access for instructor invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now

	const query = `INSERT INTO invoices (id, invoice_number, instructor_id, instructor_details, company_details, services, sub_total, tax_rate, tax_amount, discount, grand_total, status, rejection_reason, decided_at, notes, email, pdf_url, due_date, created_at, updated_at) VALUES (:id, :invoice_number, :instructor_id, :instructor_details, :company_details, :services, :sub_total, :tax_rate, :tax_amount, :discount, :grand_total, :status, :rejection_reason, :decided_at, :notes, :email, :pdf_url, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "invoice number already taken")
		}
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// Update updates the mutable fields of an invoice, including its status.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invoices SET instructor_details = :instructor_details, company_details = :company_details, services = :services, sub_total = :sub_total, tax_rate = :tax_rate, tax_amount = :tax_amount, discount = :discount, grand_total = :grand_total, status = :status, rejection_reason = :rejection_reason, decided_at = :decided_at, notes = :notes, email = :email, pdf_url = :pdf_url, due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// FindByID returns an invoice by identifier.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 LIMIT 1`
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return &invoice, nil
}

// List returns invoices based on filters with total count.
func (r *InvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error) {
	baseQuery := `FROM invoices WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"invoice_number": true,
		"due_date":       true,
		"grand_total":    true,
		"created_at":     true,
		"updated_at":     true,
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", invoiceColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	return invoices, total, nil
}

// Delete removes an invoice permanently, reporting whether it existed.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete invoice: %w", err)
	}
	return affected > 0, nil
}

// NextSequence returns the next per-year invoice sequence number. It is
// derived from the highest numeric suffix already issued that year, so a
// deleted invoice never frees its number for reuse.
func (r *InvoiceRepository) NextSequence(ctx context.Context, year int) (int, error) {
	const query = `SELECT COALESCE(MAX(CAST(SUBSTRING(invoice_number FROM '([0-9]+)$') AS INTEGER)), 0) FROM invoices WHERE EXTRACT(YEAR FROM created_at) = $1`
	var highest int
	if err := r.db.GetContext(ctx, &highest, query, year); err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return highest + 1, nil
}
