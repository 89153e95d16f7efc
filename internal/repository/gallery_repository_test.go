package repository

import (
	"context"
	"regexp"
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

func newGalleryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGalleryRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newGalleryMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db, 30*24*time.Hour)

	mock.ExpectExec("INSERT INTO gallery_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	image := &models.GalleryImage{Title: "Sports Day", ImageURL: "https://cdn/img.jpg", SchoolName: "Hillside", Status: models.StatusPending, UploadedBy: "s1"}
	require.NoError(t, repo.Create(context.Background(), image))
	assert.NotEmpty(t, image.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGalleryRepositoryListFiltersBySchool(t *testing.T) {
	db, mock, cleanup := newGalleryMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db, 30*24*time.Hour)

	rows := sqlmock.NewRows([]string{"id", "title", "image_url", "school_name", "status", "uploaded_by", "created_at", "updated_at"}).
		AddRow("g1", "Sports Day", "https://cdn/img.jpg", "Hillside", "APPROVED", "s1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .* FROM gallery_images WHERE 1=1 AND LOWER\\(school_name\\) LIKE \\$1 ORDER BY created_at DESC LIMIT 20 OFFSET 0").
		WithArgs("%hillside%").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM gallery_images WHERE 1=1 AND LOWER\\(school_name\\) LIKE \\$1").
		WithArgs("%hillside%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	images, total, err := repo.List(context.Background(), models.GalleryFilter{SchoolName: "Hillside"})
	require.NoError(t, err)
	assert.Len(t, images, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGalleryRepositoryMoveToBinDuplicate(t *testing.T) {
	db, mock, cleanup := newGalleryMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db, 30*24*time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO gallery_recycle_bin").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "gallery_recycle_bin_original_image_id_key"})
	mock.ExpectRollback()

	bin := &models.GalleryBinItem{ID: "b1", OriginalImageID: "g1", DeletedAt: time.Now().UTC()}
	err := repo.MoveToBin(context.Background(), "g1", bin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGalleryRepositoryMoveFromBin(t *testing.T) {
	db, mock, cleanup := newGalleryMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db, 30*24*time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO gallery_images").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gallery_recycle_bin WHERE id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	image := &models.GalleryImage{ID: "g2", Title: "Sports Day", Status: models.StatusPending, UploadedBy: "s1"}
	require.NoError(t, repo.MoveFromBin(context.Background(), "b1", image))
	// restored rows must not carry zero timestamps into created_at ordering
	assert.False(t, image.CreatedAt.IsZero())
	assert.False(t, image.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGalleryRepositoryPurgeExpired(t *testing.T) {
	db, mock, cleanup := newGalleryMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db, 30*24*time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gallery_recycle_bin WHERE deleted_at <= $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
