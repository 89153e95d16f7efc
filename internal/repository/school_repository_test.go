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

func newSchoolMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSchoolRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSchoolMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectExec("INSERT INTO schools").
		WillReturnResult(sqlmock.NewResult(1, 1))

	school := &models.School{SchoolName: "Hillside High", SchoolCode: "HH-001", HeadOfSchool: "Principal", Contact: "principal@hh.example", Status: models.StatusPending}
	require.NoError(t, repo.Create(context.Background(), school))
	assert.NotEmpty(t, school.ID)
}

func TestSchoolRepositoryCreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newSchoolMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectExec("INSERT INTO schools").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "schools_school_code_key"})

	school := &models.School{SchoolName: "Hillside High", SchoolCode: "HH-001", Status: models.StatusPending}
	err := repo.Create(context.Background(), school)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSchoolRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newSchoolMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	status := models.StatusPending
	rows := sqlmock.NewRows([]string{"id", "school_name", "school_code", "head_of_school", "address", "contact", "message", "status", "created_at", "updated_at"}).
		AddRow("s1", "Hillside High", "HH-001", "Principal", "", "principal@hh.example", nil, "PENDING", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .* FROM schools WHERE 1=1 AND status = \\$1 ORDER BY created_at DESC LIMIT 20 OFFSET 0").
		WithArgs(status).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schools WHERE 1=1 AND status = \\$1").
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	schools, total, err := repo.List(context.Background(), models.SchoolFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, schools, 1)
	assert.Equal(t, 1, total)
}
