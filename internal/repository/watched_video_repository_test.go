package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

func newWatchedMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWatchedVideoRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newWatchedMock(t)
	defer cleanup()
	repo := NewWatchedVideoRepository(db)

	mock.ExpectExec("INSERT INTO watched_videos").
		WillReturnResult(sqlmock.NewResult(1, 1))

	watched := &models.WatchedVideo{VideoID: "v1", UserID: "u1"}
	require.NoError(t, repo.Create(context.Background(), watched))
	assert.NotEmpty(t, watched.ID)
	assert.False(t, watched.WatchedAt.IsZero())
}

func TestWatchedVideoRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newWatchedMock(t)
	defer cleanup()
	repo := NewWatchedVideoRepository(db)

	mock.ExpectExec("INSERT INTO watched_videos").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "watched_videos_video_id_user_id_key"})

	err := repo.Create(context.Background(), &models.WatchedVideo{VideoID: "v1", UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWatchedVideoRepositoryListWatchers(t *testing.T) {
	db, mock, cleanup := newWatchedMock(t)
	defer cleanup()
	repo := NewWatchedVideoRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"user_id", "name", "email", "watched_at"}).
		AddRow("u1", "Amy", "amy@example.com", now).
		AddRow("u2", "Ben", "ben@example.com", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT w.user_id, u.name, u.email, w.watched_at FROM watched_videos w JOIN users u ON u.id = w.user_id WHERE w.video_id = \\$1").
		WithArgs("v1").
		WillReturnRows(rows)

	watchers, err := repo.ListWatchers(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, watchers, 2)
	assert.Equal(t, "amy@example.com", watchers[0].Email)
}
