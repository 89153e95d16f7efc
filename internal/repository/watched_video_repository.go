package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

// WatchedVideoRepository provides database access for the per-user watch
// history. The unique index on (video_id, user_id) keeps one row per pair.
type WatchedVideoRepository struct {
	db *sqlx.DB
}

// NewWatchedVideoRepository creates a new instance of
// WatchedVideoRepository.
func NewWatchedVideoRepository(db *sqlx.DB) *WatchedVideoRepository {
	return &WatchedVideoRepository{db: db}
}

// Create records a watch. A repeat watch surfaces as a conflict.
func (r *WatchedVideoRepository) Create(ctx context.Context, watched *models.WatchedVideo) error {
	if watched.ID == "" {
		watched.ID = uuid.NewString()
	}
	if watched.WatchedAt.IsZero() {
		watched.WatchedAt = time.Now().UTC()
	}

	const query = `INSERT INTO watched_videos (id, video_id, user_id, watched_at) VALUES (:id, :video_id, :user_id, :watched_at)`
	if _, err := r.db.NamedExecContext(ctx, query, watched); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "video already watched")
		}
		return fmt.Errorf("create watched video: %w", err)
	}
	return nil
}

// Find returns the watch record for a user and video, if any.
func (r *WatchedVideoRepository) Find(ctx context.Context, videoID, userID string) (*models.WatchedVideo, error) {
	const query = `SELECT id, video_id, user_id, watched_at FROM watched_videos WHERE video_id = $1 AND user_id = $2 LIMIT 1`
	var watched models.WatchedVideo
	if err := r.db.GetContext(ctx, &watched, query, videoID, userID); err != nil {
		return nil, err
	}
	return &watched, nil
}

// ListWatchers returns the users who watched a video, most recent first.
func (r *WatchedVideoRepository) ListWatchers(ctx context.Context, videoID string) ([]models.VideoWatcher, error) {
	const query = `SELECT w.user_id, u.name, u.email, w.watched_at FROM watched_videos w JOIN users u ON u.id = w.user_id WHERE w.video_id = $1 ORDER BY w.watched_at DESC`
	var watchers []models.VideoWatcher
	if err := r.db.SelectContext(ctx, &watchers, query, videoID); err != nil {
		return nil, fmt.Errorf("list video watchers: %w", err)
	}
	return watchers, nil
}

// ListWatched returns the videos a user has watched, most recent first.
func (r *WatchedVideoRepository) ListWatched(ctx context.Context, userID string) ([]models.WatchedVideoEntry, error) {
	const query = `SELECT w.video_id, v.course_name, v.description, w.watched_at FROM watched_videos w JOIN videos v ON v.id = w.video_id WHERE w.user_id = $1 ORDER BY w.watched_at DESC`
	var entries []models.WatchedVideoEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list watched videos: %w", err)
	}
	return entries, nil
}
