package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

const settingColumns = `id, price_per_video, max_video_length, created_at, updated_at`

// SettingRepository provides database access for the platform video
// settings row.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Create inserts the settings row.
func (r *SettingRepository) Create(ctx context.Context, setting *models.VideoSetting) error {
	if setting.ID == "" {
		setting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if setting.CreatedAt.IsZero() {
		setting.CreatedAt = now
	}
	setting.UpdatedAt = now

	const query = `INSERT INTO video_settings (id, price_per_video, max_video_length, created_at, updated_at) VALUES (:id, :price_per_video, :max_video_length, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		return fmt.Errorf("create video setting: %w", err)
	}
	return nil
}

// Update updates the settings values.
func (r *SettingRepository) Update(ctx context.Context, setting *models.VideoSetting) error {
	setting.UpdatedAt = time.Now().UTC()
	const query = `UPDATE video_settings SET price_per_video = :price_per_video, max_video_length = :max_video_length, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		return fmt.Errorf("update video setting: %w", err)
	}
	return nil
}

// FindFirst returns the settings row, oldest first when several exist.
func (r *SettingRepository) FindFirst(ctx context.Context) (*models.VideoSetting, error) {
	query := `SELECT ` + settingColumns + ` FROM video_settings ORDER BY created_at ASC LIMIT 1`
	var setting models.VideoSetting
	if err := r.db.GetContext(ctx, &setting, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find video setting: %w", err)
	}
	return &setting, nil
}

// FindByID returns a settings row by identifier.
func (r *SettingRepository) FindByID(ctx context.Context, id string) (*models.VideoSetting, error) {
	query := `SELECT ` + settingColumns + ` FROM video_settings WHERE id = $1 LIMIT 1`
	var setting models.VideoSetting
	if err := r.db.GetContext(ctx, &setting, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find video setting: %w", err)
	}
	return &setting, nil
}

// Count reports how many settings rows exist.
func (r *SettingRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM video_settings`); err != nil {
		return 0, fmt.Errorf("count video settings: %w", err)
	}
	return total, nil
}

// Delete removes a settings row, reporting whether it existed.
func (r *SettingRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_settings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete video setting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete video setting: %w", err)
	}
	return affected > 0, nil
}
