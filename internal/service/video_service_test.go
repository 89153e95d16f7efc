package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/jobs"
)

type mockVideoRepo struct {
	videos map[string]*models.Video
	bin    map[string]*models.VideoBinItem
}

func newMockVideoRepo() *mockVideoRepo {
	return &mockVideoRepo{videos: make(map[string]*models.Video), bin: make(map[string]*models.VideoBinItem)}
}

func (m *mockVideoRepo) Create(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = "generated"
	}
	m.videos[video.ID] = video
	return nil
}

func (m *mockVideoRepo) Update(ctx context.Context, video *models.Video) error {
	m.videos[video.ID] = video
	return nil
}

func (m *mockVideoRepo) List(ctx context.Context, filter models.VideoFilter) ([]models.Video, int, error) {
	out := make([]models.Video, 0, len(m.videos))
	for _, v := range m.videos {
		out = append(out, *v)
	}
	return out, len(out), nil
}

func (m *mockVideoRepo) FindEntity(ctx context.Context, id string) (*models.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return v, nil
}

func (m *mockVideoRepo) FindBin(ctx context.Context, id string) (*models.VideoBinItem, error) {
	b, ok := m.bin[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (m *mockVideoRepo) ListBin(ctx context.Context) ([]models.VideoBinItem, error) {
	out := make([]models.VideoBinItem, 0, len(m.bin))
	for _, b := range m.bin {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockVideoRepo) MoveToBin(ctx context.Context, entityID string, bin *models.VideoBinItem) error {
	for _, existing := range m.bin {
		if existing.OriginalVideoID == entityID {
			return appErrors.Clone(appErrors.ErrConflict, "video already in recycle bin")
		}
	}
	m.bin[bin.ID] = bin
	delete(m.videos, entityID)
	return nil
}

func (m *mockVideoRepo) MoveFromBin(ctx context.Context, binID string, entity *models.Video) error {
	m.videos[entity.ID] = entity
	delete(m.bin, binID)
	return nil
}

func (m *mockVideoRepo) DeleteBin(ctx context.Context, id string) (bool, error) {
	_, ok := m.bin[id]
	delete(m.bin, id)
	return ok, nil
}

type mockQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type mockUserReader struct {
	user *models.User
	err  error
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func newVideoService(repo *mockVideoRepo, queue *mockQueue) *VideoService {
	users := &mockUserReader{user: &models.User{ID: "instructor-1", Name: "Dina", Email: "dina@example.com"}}
	return NewVideoService(repo, users, queue, validator.New(), zap.NewNop())
}

func instructorClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleInstructor}
}

func TestVideoServiceCreateStartsPending(t *testing.T) {
	repo := newMockVideoRepo()
	svc := newVideoService(repo, &mockQueue{})

	video, err := svc.Create(context.Background(), "instructor-1", CreateVideoRequest{
		CourseName: "Algebra Basics",
		VideoURL:   "https://cdn.example.com/algebra.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, video.Status)
	assert.Equal(t, "instructor-1", video.UploadedBy)
}

func TestVideoServiceApproveNotifiesUploader(t *testing.T) {
	repo := newMockVideoRepo()
	repo.videos["v1"] = &models.Video{ID: "v1", CourseName: "Algebra Basics", Status: models.StatusPending, UploadedBy: "instructor-1"}
	queue := &mockQueue{}
	svc := newVideoService(repo, queue)

	video, err := svc.Approve(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, video.Status)
	require.NotNil(t, video.ApprovedAt)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "video-decision", queue.jobs[0].Type)
}

func TestVideoServiceApproveIdempotent(t *testing.T) {
	repo := newMockVideoRepo()
	repo.videos["v1"] = &models.Video{ID: "v1", Status: models.StatusApproved, UploadedBy: "instructor-1"}
	queue := &mockQueue{}
	svc := newVideoService(repo, queue)

	video, err := svc.Approve(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, video.Status)
	assert.Empty(t, queue.jobs)
}

func TestVideoServiceRejectRequiresReason(t *testing.T) {
	repo := newMockVideoRepo()
	repo.videos["v1"] = &models.Video{ID: "v1", Status: models.StatusPending, UploadedBy: "instructor-1"}
	svc := newVideoService(repo, &mockQueue{})

	_, err := svc.Reject(context.Background(), "v1", "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestVideoServiceRejectClearsApproval(t *testing.T) {
	repo := newMockVideoRepo()
	repo.videos["v1"] = &models.Video{ID: "v1", Status: models.StatusPending, UploadedBy: "instructor-1"}
	svc := newVideoService(repo, &mockQueue{})

	video, err := svc.Reject(context.Background(), "v1", "blurry audio")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, video.Status)
	require.NotNil(t, video.RejectionReason)
	assert.Equal(t, "blurry audio", *video.RejectionReason)
	assert.Nil(t, video.ApprovedAt)
}

func TestVideoServiceRejectIdempotent(t *testing.T) {
	repo := newMockVideoRepo()
	reason := "blurry audio"
	repo.videos["v1"] = &models.Video{ID: "v1", Status: models.StatusRejected, RejectionReason: &reason, UploadedBy: "instructor-1"}
	queue := &mockQueue{}
	svc := newVideoService(repo, queue)

	video, err := svc.Reject(context.Background(), "v1", "still blurry")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, video.Status)
	assert.Equal(t, "blurry audio", *video.RejectionReason)
	assert.Empty(t, queue.jobs)
}

func TestVideoServiceSoftDeleteOwnership(t *testing.T) {
	repo := newMockVideoRepo()
	repo.videos["v1"] = &models.Video{ID: "v1", Status: models.StatusApproved, UploadedBy: "instructor-1"}
	svc := newVideoService(repo, &mockQueue{})

	_, err := svc.SoftDelete(context.Background(), "v1", instructorClaims("instructor-2"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	bin, err := svc.SoftDelete(context.Background(), "v1", instructorClaims("instructor-1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", bin.OriginalVideoID)
	assert.Empty(t, repo.videos)
}

func TestVideoServiceRestoreMintsNewID(t *testing.T) {
	repo := newMockVideoRepo()
	repo.videos["v1"] = &models.Video{ID: "v1", CourseName: "Algebra Basics", Status: models.StatusApproved, UploadedBy: "instructor-1"}
	svc := newVideoService(repo, &mockQueue{})

	bin, err := svc.SoftDelete(context.Background(), "v1", instructorClaims("instructor-1"))
	require.NoError(t, err)

	restored, err := svc.Restore(context.Background(), bin.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "v1", restored.ID)
	assert.Equal(t, "Algebra Basics", restored.CourseName)
	assert.Empty(t, repo.bin)
}
