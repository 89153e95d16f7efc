package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type mockLibraryRepo struct {
	books     map[string]*models.LibraryBook
	bookBin   map[string]*models.LibraryBookBinItem
	videos    map[string]*models.LibraryVideo
	videoBin  map[string]*models.LibraryVideoBinItem
	bookLists int
}

func newMockLibraryRepo() *mockLibraryRepo {
	return &mockLibraryRepo{
		books:    make(map[string]*models.LibraryBook),
		bookBin:  make(map[string]*models.LibraryBookBinItem),
		videos:   make(map[string]*models.LibraryVideo),
		videoBin: make(map[string]*models.LibraryVideoBinItem),
	}
}

func (m *mockLibraryRepo) CreateBook(ctx context.Context, book *models.LibraryBook) error {
	if book.ID == "" {
		book.ID = "generated-book"
	}
	m.books[book.ID] = book
	return nil
}

func (m *mockLibraryRepo) UpdateBook(ctx context.Context, book *models.LibraryBook) error {
	m.books[book.ID] = book
	return nil
}

func (m *mockLibraryRepo) FindBook(ctx context.Context, id string) (*models.LibraryBook, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (m *mockLibraryRepo) ListBooks(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryBook, int, error) {
	m.bookLists++
	out := make([]models.LibraryBook, 0, len(m.books))
	for _, b := range m.books {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *mockLibraryRepo) MoveBookToBin(ctx context.Context, entityID string, bin *models.LibraryBookBinItem) error {
	m.bookBin[bin.ID] = bin
	delete(m.books, entityID)
	return nil
}

func (m *mockLibraryRepo) MoveBookFromBin(ctx context.Context, binID string, entity *models.LibraryBook) error {
	m.books[entity.ID] = entity
	delete(m.bookBin, binID)
	return nil
}

func (m *mockLibraryRepo) FindBookBin(ctx context.Context, id string) (*models.LibraryBookBinItem, error) {
	b, ok := m.bookBin[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (m *mockLibraryRepo) ListBookBin(ctx context.Context) ([]models.LibraryBookBinItem, error) {
	out := make([]models.LibraryBookBinItem, 0, len(m.bookBin))
	for _, b := range m.bookBin {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockLibraryRepo) DeleteBookBin(ctx context.Context, id string) (bool, error) {
	_, ok := m.bookBin[id]
	delete(m.bookBin, id)
	return ok, nil
}

func (m *mockLibraryRepo) CreateVideo(ctx context.Context, video *models.LibraryVideo) error {
	if video.ID == "" {
		video.ID = "generated-video"
	}
	m.videos[video.ID] = video
	return nil
}

func (m *mockLibraryRepo) UpdateVideo(ctx context.Context, video *models.LibraryVideo) error {
	m.videos[video.ID] = video
	return nil
}

func (m *mockLibraryRepo) FindVideo(ctx context.Context, id string) (*models.LibraryVideo, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return v, nil
}

func (m *mockLibraryRepo) ListVideos(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryVideo, int, error) {
	out := make([]models.LibraryVideo, 0, len(m.videos))
	for _, v := range m.videos {
		out = append(out, *v)
	}
	return out, len(out), nil
}

func (m *mockLibraryRepo) MoveVideoToBin(ctx context.Context, entityID string, bin *models.LibraryVideoBinItem) error {
	m.videoBin[bin.ID] = bin
	delete(m.videos, entityID)
	return nil
}

func (m *mockLibraryRepo) MoveVideoFromBin(ctx context.Context, binID string, entity *models.LibraryVideo) error {
	m.videos[entity.ID] = entity
	delete(m.videoBin, binID)
	return nil
}

func (m *mockLibraryRepo) FindVideoBin(ctx context.Context, id string) (*models.LibraryVideoBinItem, error) {
	v, ok := m.videoBin[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return v, nil
}

func (m *mockLibraryRepo) ListVideoBin(ctx context.Context) ([]models.LibraryVideoBinItem, error) {
	out := make([]models.LibraryVideoBinItem, 0, len(m.videoBin))
	for _, v := range m.videoBin {
		out = append(out, *v)
	}
	return out, nil
}

func (m *mockLibraryRepo) DeleteVideoBin(ctx context.Context, id string) (bool, error) {
	_, ok := m.videoBin[id]
	delete(m.videoBin, id)
	return ok, nil
}

func newLibraryService(repo *mockLibraryRepo) *LibraryService {
	return newLibraryServiceWithCache(repo, newMockGalleryCache())
}

func newLibraryServiceWithCache(repo *mockLibraryRepo, cache *mockGalleryCache) *LibraryService {
	return NewLibraryService(repo, cache, time.Minute, validator.New(), zap.NewNop())
}

func TestLibraryServiceBookStartsPending(t *testing.T) {
	repo := newMockLibraryRepo()
	svc := newLibraryService(repo)

	book, err := svc.CreateBook(context.Background(), "school-1", CreateLibraryBookRequest{
		Title:   "Linear Algebra",
		Author:  "G. Strang",
		Subject: "Mathematics",
		PDFURL:  "https://cdn.example.com/linear-algebra.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, book.Status)
}

func TestLibraryServiceVideoLiveOnCreate(t *testing.T) {
	repo := newMockLibraryRepo()
	svc := newLibraryService(repo)

	video, err := svc.CreateVideo(context.Background(), "admin-1", CreateLibraryVideoRequest{
		Title:    "Calculus Lectures",
		Author:   "MIT OCW",
		Subject:  "Mathematics",
		VideoURL: "https://cdn.example.com/calculus.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, video.Status)
}

func TestLibraryServiceApproveBookRecordsAdmin(t *testing.T) {
	repo := newMockLibraryRepo()
	repo.books["b1"] = &models.LibraryBook{ID: "b1", Title: "Linear Algebra", Status: models.StatusPending, UploadedBy: "school-1"}
	svc := newLibraryService(repo)

	book, err := svc.ApproveBook(context.Background(), "b1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, book.Status)
	require.NotNil(t, book.ApprovedBy)
	assert.Equal(t, "admin-1", *book.ApprovedBy)
}

func TestLibraryServiceRejectBookClearsApprover(t *testing.T) {
	admin := "admin-1"
	repo := newMockLibraryRepo()
	repo.books["b1"] = &models.LibraryBook{ID: "b1", Status: models.StatusApproved, ApprovedBy: &admin, UploadedBy: "school-1"}
	svc := newLibraryService(repo)

	book, err := svc.RejectBook(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, book.Status)
	assert.Nil(t, book.ApprovedBy)
}

func TestLibraryServiceBookOwnership(t *testing.T) {
	repo := newMockLibraryRepo()
	repo.books["b1"] = &models.LibraryBook{ID: "b1", Status: models.StatusApproved, UploadedBy: "school-1"}
	svc := newLibraryService(repo)

	_, err := svc.SoftDeleteBook(context.Background(), "b1", schoolClaims("school-2"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestLibraryServiceBookBinRoundTrip(t *testing.T) {
	repo := newMockLibraryRepo()
	repo.books["b1"] = &models.LibraryBook{ID: "b1", Title: "Linear Algebra", Status: models.StatusApproved, UploadedBy: "school-1"}
	svc := newLibraryService(repo)

	bin, err := svc.SoftDeleteBook(context.Background(), "b1", schoolClaims("school-1"))
	require.NoError(t, err)
	assert.Equal(t, "b1", bin.OriginalBookID)

	items, err := svc.ListBookBin(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	restored, err := svc.RestoreBook(context.Background(), bin.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "b1", restored.ID)
	assert.Equal(t, "Linear Algebra", restored.Title)
}

func TestLibraryServiceListBooksCachesApprovedSearches(t *testing.T) {
	repo := newMockLibraryRepo()
	repo.books["b1"] = &models.LibraryBook{ID: "b1", Title: "Linear Algebra", Status: models.StatusApproved}
	repo.books["b2"] = &models.LibraryBook{ID: "b2", Title: "Draft Notes", Status: models.StatusPending}
	cache := newMockGalleryCache()
	svc := newLibraryServiceWithCache(repo, cache)

	approved := models.StatusApproved
	filter := models.LibraryFilter{Status: &approved, Search: "algebra", Page: 1, PageSize: 20}

	books, _, err := svc.ListBooks(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1, repo.bookLists)

	// second identical search is served from cache
	books, _, err = svc.ListBooks(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1, repo.bookLists)

	// staff views mixing statuses bypass the cache
	_, _, err = svc.ListBooks(context.Background(), models.LibraryFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.bookLists)
}

func TestLibraryServiceWritesInvalidateBookCache(t *testing.T) {
	repo := newMockLibraryRepo()
	repo.books["b1"] = &models.LibraryBook{ID: "b1", Title: "Linear Algebra", Status: models.StatusApproved}
	cache := newMockGalleryCache()
	svc := newLibraryServiceWithCache(repo, cache)

	approved := models.StatusApproved
	filter := models.LibraryFilter{Status: &approved, Page: 1, PageSize: 20}

	_, _, err := svc.ListBooks(context.Background(), filter)
	require.NoError(t, err)

	_, err = svc.CreateBook(context.Background(), "school-1", CreateLibraryBookRequest{
		Title:   "Calculus",
		Author:  "M. Spivak",
		Subject: "Mathematics",
		PDFURL:  "https://cdn.example.com/calculus.pdf",
	})
	require.NoError(t, err)
	assert.Contains(t, cache.deletes, "library:books:*")

	// the stale page is gone, the next search hits the database again
	_, _, err = svc.ListBooks(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.bookLists)
}

func TestLibraryServicePurgeVideoMissing(t *testing.T) {
	svc := newLibraryService(newMockLibraryRepo())

	err := svc.PurgeVideo(context.Background(), "absent")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
