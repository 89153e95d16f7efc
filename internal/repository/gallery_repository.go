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
	"github.com/noah-isme/lms-api/pkg/database"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

const galleryColumns = `id, title, image_url, school_name, status, uploaded_by, created_at, updated_at`

const galleryBinColumns = `id, original_image_id, title, image_url, school_name, status, uploaded_by, deleted_at`

// GalleryRepository provides database access for gallery images and their
// recycle bin.
type GalleryRepository struct {
	db        *sqlx.DB
	retention time.Duration
}

// NewGalleryRepository creates a new instance of GalleryRepository.
func NewGalleryRepository(db *sqlx.DB, retention time.Duration) *GalleryRepository {
	return &GalleryRepository{db: db, retention: retention}
}

func (r *GalleryRepository) binCutoff() time.Time {
	return time.Now().UTC().Add(-r.retention)
}

// Create inserts a new gallery image.
func (r *GalleryRepository) Create(ctx context.Context, image *models.GalleryImage) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if image.CreatedAt.IsZero() {
		image.CreatedAt = now
	}
	image.UpdatedAt = now

	const query = `INSERT INTO gallery_images (id, title, image_url, school_name, status, uploaded_by, created_at, updated_at) VALUES (:id, :title, :image_url, :school_name, :status, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, image); err != nil {
		return fmt.Errorf("create gallery image: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a gallery image.
func (r *GalleryRepository) Update(ctx context.Context, image *models.GalleryImage) error {
	image.UpdatedAt = time.Now().UTC()
	const query = `UPDATE gallery_images SET title = :title, image_url = :image_url, school_name = :school_name, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, image); err != nil {
		return fmt.Errorf("update gallery image: %w", err)
	}
	return nil
}

// FindEntity returns an active gallery image by id.
func (r *GalleryRepository) FindEntity(ctx context.Context, id string) (*models.GalleryImage, error) {
	query := `SELECT ` + galleryColumns + ` FROM gallery_images WHERE id = $1 LIMIT 1`
	var image models.GalleryImage
	if err := r.db.GetContext(ctx, &image, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find gallery image: %w", err)
	}
	return &image, nil
}

// List returns gallery images based on filters with total count.
func (r *GalleryRepository) List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryImage, int, error) {
	baseQuery := `FROM gallery_images WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.SchoolName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(school_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.SchoolName)+"%")
	}
	if filter.UploadedBy != "" {
		conditions = append(conditions, fmt.Sprintf("uploaded_by = $%d", len(args)+1))
		args = append(args, filter.UploadedBy)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]bool{
		"title":      true,
		"created_at": true,
		"updated_at": true,
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", galleryColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var images []models.GalleryImage
	if err := r.db.SelectContext(ctx, &images, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list gallery images: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count gallery images: %w", err)
	}

	return images, total, nil
}

// MoveToBin copies a gallery image into the recycle bin and deletes the
// original in one transaction.
func (r *GalleryRepository) MoveToBin(ctx context.Context, entityID string, bin *models.GalleryBinItem) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO gallery_recycle_bin (id, original_image_id, title, image_url, school_name, status, uploaded_by, deleted_at) VALUES (:id, :original_image_id, :title, :image_url, :school_name, :status, :uploaded_by, :deleted_at)`
		if _, err := tx.NamedExecContext(ctx, insert, bin); err != nil {
			return fmt.Errorf("insert gallery bin: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = $1`, entityID); err != nil {
			return fmt.Errorf("delete gallery image: %w", err)
		}
		return nil
	})
	if isUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, "gallery image already in recycle bin")
	}
	return err
}

// MoveFromBin inserts the restored image and removes the bin record in one
// transaction. Restored rows get fresh timestamps, same as Create.
func (r *GalleryRepository) MoveFromBin(ctx context.Context, binID string, entity *models.GalleryImage) error {
	now := time.Now().UTC()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO gallery_images (id, title, image_url, school_name, status, uploaded_by, created_at, updated_at) VALUES (:id, :title, :image_url, :school_name, :status, :uploaded_by, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, entity); err != nil {
			return fmt.Errorf("restore gallery image: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM gallery_recycle_bin WHERE id = $1`, binID); err != nil {
			return fmt.Errorf("delete gallery bin: %w", err)
		}
		return nil
	})
}

// FindBin returns a non-expired recycle-bin record by id.
func (r *GalleryRepository) FindBin(ctx context.Context, id string) (*models.GalleryBinItem, error) {
	query := `SELECT ` + galleryBinColumns + ` FROM gallery_recycle_bin WHERE id = $1 AND deleted_at > $2 LIMIT 1`
	var bin models.GalleryBinItem
	if err := r.db.GetContext(ctx, &bin, query, id, r.binCutoff()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find gallery bin: %w", err)
	}
	return &bin, nil
}

// ListBin returns all non-expired recycle-bin records, newest first.
func (r *GalleryRepository) ListBin(ctx context.Context) ([]models.GalleryBinItem, error) {
	query := `SELECT ` + galleryBinColumns + ` FROM gallery_recycle_bin WHERE deleted_at > $1 ORDER BY deleted_at DESC`
	var items []models.GalleryBinItem
	if err := r.db.SelectContext(ctx, &items, query, r.binCutoff()); err != nil {
		return nil, fmt.Errorf("list gallery bin: %w", err)
	}
	return items, nil
}

// DeleteBin permanently removes a recycle-bin record.
func (r *GalleryRepository) DeleteBin(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gallery_recycle_bin WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete gallery bin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete gallery bin: %w", err)
	}
	return affected > 0, nil
}

// PurgeExpired removes recycle-bin records past the retention window.
func (r *GalleryRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gallery_recycle_bin WHERE deleted_at <= $1`, r.binCutoff())
	if err != nil {
		return 0, fmt.Errorf("purge gallery bin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge gallery bin: %w", err)
	}
	return affected, nil
}
