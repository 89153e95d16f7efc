package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func newSettingMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSettingMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	mock.ExpectExec("INSERT INTO video_settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	setting := &models.VideoSetting{PricePerVideo: 25, MaxVideoLength: 45}
	require.NoError(t, repo.Create(context.Background(), setting))
	assert.NotEmpty(t, setting.ID)
}

func TestSettingRepositoryFindFirst(t *testing.T) {
	db, mock, cleanup := newSettingMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM video_settings ORDER BY created_at ASC LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "price_per_video", "max_video_length", "created_at", "updated_at"}).
			AddRow("s1", 25.0, 45, now, now))

	setting, err := repo.FindFirst(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", setting.ID)
	assert.Equal(t, 45, setting.MaxVideoLength)
}

func TestSettingRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newSettingMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	mock.ExpectExec("DELETE FROM video_settings WHERE id = \\$1").
		WithArgs("absent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Delete(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
}
