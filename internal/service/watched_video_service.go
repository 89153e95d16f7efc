package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type watchedVideoRepository interface {
	Create(ctx context.Context, watched *models.WatchedVideo) error
	Find(ctx context.Context, videoID, userID string) (*models.WatchedVideo, error)
	ListWatchers(ctx context.Context, videoID string) ([]models.VideoWatcher, error)
	ListWatched(ctx context.Context, userID string) ([]models.WatchedVideoEntry, error)
}

type videoFinder interface {
	FindEntity(ctx context.Context, id string) (*models.Video, error)
}

// WatchedVideoService tracks which users have finished which course
// videos.
type WatchedVideoService struct {
	repo   watchedVideoRepository
	videos videoFinder
	logger *zap.Logger
}

// NewWatchedVideoService constructs the watch-history service.
func NewWatchedVideoService(repo watchedVideoRepository, videos videoFinder, logger *zap.Logger) *WatchedVideoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchedVideoService{repo: repo, videos: videos, logger: logger}
}

// MarkWatched records that the user finished the video. Marking twice is
// a no-op; the second return reports whether a new record was created.
func (s *WatchedVideoService) MarkWatched(ctx context.Context, videoID, userID string) (*models.WatchedVideo, bool, error) {
	if _, err := s.videos.FindEntity(ctx, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "video not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video")
	}

	watched := &models.WatchedVideo{VideoID: videoID, UserID: userID}
	err := s.repo.Create(ctx, watched)
	if err == nil {
		return watched, true, nil
	}
	if appErrors.FromError(err).Code != appErrors.ErrConflict.Code {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark video watched")
	}

	existing, err := s.repo.Find(ctx, videoID, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load watch record")
	}
	return existing, false, nil
}

// Watchers returns the users who watched a video.
func (s *WatchedVideoService) Watchers(ctx context.Context, videoID string) ([]models.VideoWatcher, error) {
	watchers, err := s.repo.ListWatchers(ctx, videoID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list watchers")
	}
	return watchers, nil
}

// Watched returns the user's watch history.
func (s *WatchedVideoService) Watched(ctx context.Context, userID string) ([]models.WatchedVideoEntry, error) {
	entries, err := s.repo.ListWatched(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list watched videos")
	}
	return entries, nil
}
