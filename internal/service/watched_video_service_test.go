package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type mockWatchedRepo struct {
	records  map[string]*models.WatchedVideo
	watchers map[string][]models.VideoWatcher
}

func newMockWatchedRepo() *mockWatchedRepo {
	return &mockWatchedRepo{
		records:  make(map[string]*models.WatchedVideo),
		watchers: make(map[string][]models.VideoWatcher),
	}
}

func watchedKey(videoID, userID string) string { return videoID + "/" + userID }

func (m *mockWatchedRepo) Create(ctx context.Context, watched *models.WatchedVideo) error {
	key := watchedKey(watched.VideoID, watched.UserID)
	if _, ok := m.records[key]; ok {
		return appErrors.Clone(appErrors.ErrConflict, "video already watched")
	}
	if watched.ID == "" {
		watched.ID = key
	}
	if watched.WatchedAt.IsZero() {
		watched.WatchedAt = time.Now().UTC()
	}
	m.records[key] = watched
	return nil
}

func (m *mockWatchedRepo) Find(ctx context.Context, videoID, userID string) (*models.WatchedVideo, error) {
	return m.records[watchedKey(videoID, userID)], nil
}

func (m *mockWatchedRepo) ListWatchers(ctx context.Context, videoID string) ([]models.VideoWatcher, error) {
	return m.watchers[videoID], nil
}

func (m *mockWatchedRepo) ListWatched(ctx context.Context, userID string) ([]models.WatchedVideoEntry, error) {
	var out []models.WatchedVideoEntry
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, models.WatchedVideoEntry{VideoID: r.VideoID, WatchedAt: r.WatchedAt})
		}
	}
	return out, nil
}

func newWatchedService(repo *mockWatchedRepo, videos *mockVideoRepo) *WatchedVideoService {
	return NewWatchedVideoService(repo, videos, zap.NewNop())
}

func TestWatchedVideoServiceMarkWatchedIdempotent(t *testing.T) {
	videos := newMockVideoRepo()
	videos.videos["v1"] = &models.Video{ID: "v1", Status: models.StatusApproved, UploadedBy: "instructor-1"}
	repo := newMockWatchedRepo()
	svc := newWatchedService(repo, videos)

	watched, created, err := svc.MarkWatched(context.Background(), "v1", "user-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, watched.WatchedAt.IsZero())

	// a second mark reports the existing record instead of erroring
	again, created, err := svc.MarkWatched(context.Background(), "v1", "user-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, watched.ID, again.ID)
	require.Len(t, repo.records, 1)
}

func TestWatchedVideoServiceMarkWatchedMissingVideo(t *testing.T) {
	svc := newWatchedService(newMockWatchedRepo(), newMockVideoRepo())

	_, _, err := svc.MarkWatched(context.Background(), "absent", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestWatchedVideoServiceWatchers(t *testing.T) {
	repo := newMockWatchedRepo()
	repo.watchers["v1"] = []models.VideoWatcher{
		{UserID: "user-1", Name: "Amy", Email: "amy@example.com"},
		{UserID: "user-2", Name: "Ben", Email: "ben@example.com"},
	}
	svc := newWatchedService(repo, newMockVideoRepo())

	watchers, err := svc.Watchers(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, watchers, 2)
	assert.Equal(t, "Amy", watchers[0].Name)
}

func TestWatchedVideoServiceWatchedHistory(t *testing.T) {
	videos := newMockVideoRepo()
	videos.videos["v1"] = &models.Video{ID: "v1", Status: models.StatusApproved, UploadedBy: "instructor-1"}
	repo := newMockWatchedRepo()
	svc := newWatchedService(repo, videos)

	_, _, err := svc.MarkWatched(context.Background(), "v1", "user-1")
	require.NoError(t, err)

	entries, err := svc.Watched(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "v1", entries[0].VideoID)

	entries, err = svc.Watched(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
