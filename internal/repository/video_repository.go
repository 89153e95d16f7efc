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

const videoColumns = `id, course_name, course_content, video_url, thumbnail_url, description, status, rejection_reason, rejected_at, approved_at, uploaded_by, sequence, created_at, updated_at`

const videoBinColumns = `id, original_video_id, course_name, course_content, video_url, thumbnail_url, description, status, uploaded_by, deleted_at`

// VideoRepository provides database access for course videos and their
// recycle bin. Bin reads treat records past the retention window as absent
// so expiry is observable before the purge sweep runs.
type VideoRepository struct {
	db        *sqlx.DB
	retention time.Duration
}

// NewVideoRepository creates a new instance of VideoRepository.
func NewVideoRepository(db *sqlx.DB, retention time.Duration) *VideoRepository {
	return &VideoRepository{db: db, retention: retention}
}

func (r *VideoRepository) binCutoff() time.Time {
	return time.Now().UTC().Add(-r.retention)
}

// Create inserts a new video.
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now

	const query = `INSERT INTO videos (id, course_name, course_content, video_url, thumbnail_url, description, status, rejection_reason, rejected_at, approved_at, uploaded_by, sequence, created_at, updated_at) VALUES (:id, :course_name, :course_content, :video_url, :thumbnail_url, :description, :status, :rejection_reason, :rejected_at, :approved_at, :uploaded_by, :sequence, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, video); err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a video, including its moderation
// state.
func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	video.UpdatedAt = time.Now().UTC()
	const query = `UPDATE videos SET course_name = :course_name, course_content = :course_content, video_url = :video_url, thumbnail_url = :thumbnail_url, description = :description, status = :status, rejection_reason = :rejection_reason, rejected_at = :rejected_at, approved_at = :approved_at, sequence = :sequence, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, video); err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return nil
}

// FindEntity returns an active video by id.
func (r *VideoRepository) FindEntity(ctx context.Context, id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 LIMIT 1`
	var video models.Video
	if err := r.db.GetContext(ctx, &video, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find video: %w", err)
	}
	return &video, nil
}

// List returns videos based on filters with total count.
func (r *VideoRepository) List(ctx context.Context, filter models.VideoFilter) ([]models.Video, int, error) {
	baseQuery := `FROM videos WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.UploadedBy != "" {
		conditions = append(conditions, fmt.Sprintf("uploaded_by = $%d", len(args)+1))
		args = append(args, filter.UploadedBy)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(course_name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "sequence"
	}
	allowedSorts := map[string]bool{
		"sequence":    true,
		"course_name": true,
		"created_at":  true,
		"updated_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "sequence"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", videoColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var videos []models.Video
	if err := r.db.SelectContext(ctx, &videos, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list videos: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	return videos, total, nil
}

// MoveToBin copies a video into the recycle bin and deletes the original in
// one transaction. A duplicate original_video_id surfaces as a conflict.
func (r *VideoRepository) MoveToBin(ctx context.Context, entityID string, bin *models.VideoBinItem) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO video_recycle_bin (id, original_video_id, course_name, course_content, video_url, thumbnail_url, description, status, uploaded_by, deleted_at) VALUES (:id, :original_video_id, :course_name, :course_content, :video_url, :thumbnail_url, :description, :status, :uploaded_by, :deleted_at)`
		if _, err := tx.NamedExecContext(ctx, insert, bin); err != nil {
			return fmt.Errorf("insert video bin: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, entityID); err != nil {
			return fmt.Errorf("delete video: %w", err)
		}
		return nil
	})
	if isUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, "video already in recycle bin")
	}
	return err
}

// MoveFromBin inserts the restored video and removes the bin record in one
// transaction. Restored rows get fresh timestamps, same as Create.
func (r *VideoRepository) MoveFromBin(ctx context.Context, binID string, entity *models.Video) error {
	now := time.Now().UTC()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO videos (id, course_name, course_content, video_url, thumbnail_url, description, status, rejection_reason, rejected_at, approved_at, uploaded_by, sequence, created_at, updated_at) VALUES (:id, :course_name, :course_content, :video_url, :thumbnail_url, :description, :status, :rejection_reason, :rejected_at, :approved_at, :uploaded_by, :sequence, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, entity); err != nil {
			return fmt.Errorf("restore video: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM video_recycle_bin WHERE id = $1`, binID); err != nil {
			return fmt.Errorf("delete video bin: %w", err)
		}
		return nil
	})
}

// FindBin returns a non-expired recycle-bin record by id.
func (r *VideoRepository) FindBin(ctx context.Context, id string) (*models.VideoBinItem, error) {
	query := `SELECT ` + videoBinColumns + ` FROM video_recycle_bin WHERE id = $1 AND deleted_at > $2 LIMIT 1`
	var bin models.VideoBinItem
	if err := r.db.GetContext(ctx, &bin, query, id, r.binCutoff()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find video bin: %w", err)
	}
	return &bin, nil
}

// ListBin returns all non-expired recycle-bin records, newest first.
func (r *VideoRepository) ListBin(ctx context.Context) ([]models.VideoBinItem, error) {
	query := `SELECT ` + videoBinColumns + ` FROM video_recycle_bin WHERE deleted_at > $1 ORDER BY deleted_at DESC`
	var items []models.VideoBinItem
	if err := r.db.SelectContext(ctx, &items, query, r.binCutoff()); err != nil {
		return nil, fmt.Errorf("list video bin: %w", err)
	}
	return items, nil
}

// DeleteBin permanently removes a recycle-bin record.
func (r *VideoRepository) DeleteBin(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_recycle_bin WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete video bin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete video bin: %w", err)
	}
	return affected > 0, nil
}

// PurgeExpired removes recycle-bin records past the retention window.
func (r *VideoRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_recycle_bin WHERE deleted_at <= $1`, r.binCutoff())
	if err != nil {
		return 0, fmt.Errorf("purge video bin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge video bin: %w", err)
	}
	return affected, nil
}
