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

const schoolColumns = `id, school_name, school_code, head_of_school, address, contact, message, status, created_at, updated_at`

// SchoolRepository provides database access for partner school
// registrations.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository creates a new instance of SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// Create inserts a new school registration. A duplicate school code
// surfaces as a conflict.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if school.CreatedAt.IsZero() {
		school.CreatedAt = now
	}
	school.UpdatedAt = now

	const query = `INSERT INTO schools (id, school_name, school_code, head_of_school, address, contact, message, status, created_at, updated_at) VALUES (:id, :school_name, :school_code, :head_of_school, :address, :contact, :message, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "school code already registered")
		}
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a school registration.
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	school.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schools SET school_name = :school_name, head_of_school = :head_of_school, address = :address, contact = :contact, message = :message, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("update school: %w", err)
	}
	return nil
}

// FindByID returns a school by identifier.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = $1 LIMIT 1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find school: %w", err)
	}
	return &school, nil
}

// FindByCode returns a school by its registration code.
func (r *SchoolRepository) FindByCode(ctx context.Context, code string) (*models.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE school_code = $1 LIMIT 1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find school by code: %w", err)
	}
	return &school, nil
}

// List returns schools based on filters with total count.
func (r *SchoolRepository) List(ctx context.Context, filter models.SchoolFilter) ([]models.School, int, error) {
	baseQuery := `FROM schools WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(school_name) LIKE $%d OR LOWER(school_code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"school_name": true,
		"school_code": true,
		"created_at":  true,
		"updated_at":  true,
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", schoolColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schools: %w", err)
	}

	return schools, total, nil
}

// Delete removes a school registration, reporting whether it existed.
func (r *SchoolRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete school: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete school: %w", err)
	}
	return affected > 0, nil
}
