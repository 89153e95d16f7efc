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

const programColumns = `id, school_id, school_name, contact_person, email, phone, program_requested, message, status, created_at, updated_at`

// ProgramRepository provides database access for programme requests.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository creates a new instance of ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Create inserts a new programme request.
func (r *ProgramRepository) Create(ctx context.Context, request *models.ProgramRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO program_requests (id, school_id, school_name, contact_person, email, phone, program_requested, message, status, created_at, updated_at) VALUES (:id, :school_id, :school_name, :contact_person, :email, :phone, :program_requested, :message, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create program request: %w", err)
	}
	return nil
}

// Update updates the status of a programme request.
func (r *ProgramRepository) Update(ctx context.Context, request *models.ProgramRequest) error {
	request.UpdatedAt = time.Now().UTC()
	const query = `UPDATE program_requests SET status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("update program request: %w", err)
	}
	return nil
}

// FindByID returns a programme request by identifier.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.ProgramRequest, error) {
	query := `SELECT ` + programColumns + ` FROM program_requests WHERE id = $1 LIMIT 1`
	var request models.ProgramRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program request: %w", err)
	}
	return &request, nil
}

// List returns programme requests based on filters with total count.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramRequestFilter) ([]models.ProgramRequest, int, error) {
	baseQuery := `FROM program_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.SchoolID != "" {
		conditions = append(conditions, fmt.Sprintf("school_id = $%d", len(args)+1))
		args = append(args, filter.SchoolID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", programColumns, baseQuery, pageSize, offset)

	var requests []models.ProgramRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list program requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count program requests: %w", err)
	}

	return requests, total, nil
}
