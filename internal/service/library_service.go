package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/lifecycle"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type libraryRepository interface {
	CreateBook(ctx context.Context, book *models.LibraryBook) error
	UpdateBook(ctx context.Context, book *models.LibraryBook) error
	FindBook(ctx context.Context, id string) (*models.LibraryBook, error)
	ListBooks(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryBook, int, error)
	MoveBookToBin(ctx context.Context, entityID string, bin *models.LibraryBookBinItem) error
	MoveBookFromBin(ctx context.Context, binID string, entity *models.LibraryBook) error
	FindBookBin(ctx context.Context, id string) (*models.LibraryBookBinItem, error)
	ListBookBin(ctx context.Context) ([]models.LibraryBookBinItem, error)
	DeleteBookBin(ctx context.Context, id string) (bool, error)

	CreateVideo(ctx context.Context, video *models.LibraryVideo) error
	UpdateVideo(ctx context.Context, video *models.LibraryVideo) error
	FindVideo(ctx context.Context, id string) (*models.LibraryVideo, error)
	ListVideos(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryVideo, int, error)
	MoveVideoToBin(ctx context.Context, entityID string, bin *models.LibraryVideoBinItem) error
	MoveVideoFromBin(ctx context.Context, binID string, entity *models.LibraryVideo) error
	FindVideoBin(ctx context.Context, id string) (*models.LibraryVideoBinItem, error)
	ListVideoBin(ctx context.Context) ([]models.LibraryVideoBinItem, error)
	DeleteVideoBin(ctx context.Context, id string) (bool, error)
}

type libraryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const (
	libraryBookCachePrefix  = "library:books:"
	libraryVideoCachePrefix = "library:videos:"
)

// Only the approved catalogue is cached; staff views that mix pending and
// rejected rows always hit the database.
func cacheableLibraryFilter(f models.LibraryFilter) bool {
	return f.Status != nil && *f.Status == models.StatusApproved
}

func libraryCacheKey(prefix string, f models.LibraryFilter) string {
	return fmt.Sprintf("%sq=%s:t=%s:a=%s:s=%s:k=%s:o=%s.%s:p%d:n%d",
		prefix, f.Search, f.Title, f.Author, f.Subject, f.Keyword, f.SortBy, f.SortOrder, f.Page, f.PageSize)
}

// cachedBookPage is the Redis payload for an approved book search page.
type cachedBookPage struct {
	Books      []models.LibraryBook `json:"books"`
	Pagination models.Pagination    `json:"pagination"`
}

// cachedVideoPage is the Redis payload for an approved video search page.
type cachedVideoPage struct {
	Videos     []models.LibraryVideo `json:"videos"`
	Pagination models.Pagination     `json:"pagination"`
}

// bookStores adapts the library repository's book methods to the lifecycle
// store contract.
type bookStores struct{ repo libraryRepository }

func (a bookStores) FindEntity(ctx context.Context, id string) (*models.LibraryBook, error) {
	return a.repo.FindBook(ctx, id)
}
func (a bookStores) FindBin(ctx context.Context, id string) (*models.LibraryBookBinItem, error) {
	return a.repo.FindBookBin(ctx, id)
}
func (a bookStores) ListBin(ctx context.Context) ([]models.LibraryBookBinItem, error) {
	return a.repo.ListBookBin(ctx)
}
func (a bookStores) MoveToBin(ctx context.Context, entityID string, bin *models.LibraryBookBinItem) error {
	return a.repo.MoveBookToBin(ctx, entityID, bin)
}
func (a bookStores) MoveFromBin(ctx context.Context, binID string, entity *models.LibraryBook) error {
	return a.repo.MoveBookFromBin(ctx, binID, entity)
}
func (a bookStores) DeleteBin(ctx context.Context, id string) (bool, error) {
	return a.repo.DeleteBookBin(ctx, id)
}

// videoStores adapts the library repository's video methods likewise.
type videoStores struct{ repo libraryRepository }

func (a videoStores) FindEntity(ctx context.Context, id string) (*models.LibraryVideo, error) {
	return a.repo.FindVideo(ctx, id)
}
func (a videoStores) FindBin(ctx context.Context, id string) (*models.LibraryVideoBinItem, error) {
	return a.repo.FindVideoBin(ctx, id)
}
func (a videoStores) ListBin(ctx context.Context) ([]models.LibraryVideoBinItem, error) {
	return a.repo.ListVideoBin(ctx)
}
func (a videoStores) MoveToBin(ctx context.Context, entityID string, bin *models.LibraryVideoBinItem) error {
	return a.repo.MoveVideoToBin(ctx, entityID, bin)
}
func (a videoStores) MoveFromBin(ctx context.Context, binID string, entity *models.LibraryVideo) error {
	return a.repo.MoveVideoFromBin(ctx, binID, entity)
}
func (a videoStores) DeleteBin(ctx context.Context, id string) (bool, error) {
	return a.repo.DeleteVideoBin(ctx, id)
}

// CreateLibraryBookRequest holds payload for adding books.
type CreateLibraryBookRequest struct {
	Title         string   `json:"title" validate:"required"`
	Author        string   `json:"author" validate:"required"`
	Subject       string   `json:"subject" validate:"required"`
	Keywords      []string `json:"keywords"`
	PDFURL        string   `json:"pdf_url" validate:"required,url"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,url"`
	Description   string   `json:"description"`
}

// CreateLibraryVideoRequest holds payload for adding library videos.
type CreateLibraryVideoRequest struct {
	Title         string   `json:"title" validate:"required"`
	Author        string   `json:"author" validate:"required"`
	Subject       string   `json:"subject" validate:"required"`
	Keywords      []string `json:"keywords"`
	VideoURL      string   `json:"video_url" validate:"required,url"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,url"`
	Description   string   `json:"description"`
}

// LibraryService handles the book and video catalogue: search, moderation
// and the recycle bins. Books start pending review; library videos are
// trusted admin uploads and go live immediately. Approved search pages are
// cached in Redis and invalidated on every catalogue write.
type LibraryService struct {
	repo        libraryRepository
	cache       libraryCache
	cacheTTL    time.Duration
	bookEngine  *lifecycle.Engine[models.LibraryBook, models.LibraryBookBinItem]
	videoEngine *lifecycle.Engine[models.LibraryVideo, models.LibraryVideoBinItem]
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewLibraryService constructs the library service.
func NewLibraryService(repo libraryRepository, cache libraryCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *LibraryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bookEngine := lifecycle.NewEngine[models.LibraryBook, models.LibraryBookBinItem](lifecycle.EntityLibraryBook, bookStores{repo},
		func(b *models.LibraryBook) *models.LibraryBookBinItem {
			return &models.LibraryBookBinItem{
				ID:             uuid.NewString(),
				OriginalBookID: b.ID,
				Title:          b.Title,
				Author:         b.Author,
				Subject:        b.Subject,
				Keywords:       b.Keywords,
				PDFURL:         b.PDFURL,
				CoverImageURL:  b.CoverImageURL,
				Description:    b.Description,
				Status:         b.Status,
				UploadedBy:     b.UploadedBy,
				DeletedAt:      time.Now().UTC(),
			}
		},
		func(bin *models.LibraryBookBinItem) *models.LibraryBook {
			return &models.LibraryBook{
				ID:            uuid.NewString(),
				Title:         bin.Title,
				Author:        bin.Author,
				Subject:       bin.Subject,
				Keywords:      bin.Keywords,
				PDFURL:        bin.PDFURL,
				CoverImageURL: bin.CoverImageURL,
				Description:   bin.Description,
				Status:        bin.Status,
				UploadedBy:    bin.UploadedBy,
			}
		},
		logger,
	)

	videoEngine := lifecycle.NewEngine[models.LibraryVideo, models.LibraryVideoBinItem](lifecycle.EntityLibraryVideo, videoStores{repo},
		func(v *models.LibraryVideo) *models.LibraryVideoBinItem {
			return &models.LibraryVideoBinItem{
				ID:              uuid.NewString(),
				OriginalVideoID: v.ID,
				Title:           v.Title,
				Author:          v.Author,
				Subject:         v.Subject,
				Keywords:        v.Keywords,
				VideoURL:        v.VideoURL,
				CoverImageURL:   v.CoverImageURL,
				Description:     v.Description,
				Status:          v.Status,
				UploadedBy:      v.UploadedBy,
				DeletedAt:       time.Now().UTC(),
			}
		},
		func(bin *models.LibraryVideoBinItem) *models.LibraryVideo {
			return &models.LibraryVideo{
				ID:            uuid.NewString(),
				Title:         bin.Title,
				Author:        bin.Author,
				Subject:       bin.Subject,
				Keywords:      bin.Keywords,
				VideoURL:      bin.VideoURL,
				CoverImageURL: bin.CoverImageURL,
				Description:   bin.Description,
				Status:        bin.Status,
				UploadedBy:    bin.UploadedBy,
			}
		},
		logger,
	)

	return &LibraryService{repo: repo, cache: cache, cacheTTL: cacheTTL, bookEngine: bookEngine, videoEngine: videoEngine, validator: validate, logger: logger}
}

// ListBooks returns books matching the filter with pagination metadata.
// Approved searches are served from cache when warm.
func (s *LibraryService) ListBooks(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryBook, *models.Pagination, error) {
	useCache := s.cache != nil && cacheableLibraryFilter(filter)
	key := libraryCacheKey(libraryBookCachePrefix, filter)
	if useCache {
		var cached cachedBookPage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			pagination := cached.Pagination
			return cached.Books, &pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("library cache read failed", zap.Error(err))
		}
	}

	books, total, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list library books")
	}
	pagination := listPagination(filter.Page, filter.PageSize, total)

	if useCache {
		if err := s.cache.Set(ctx, key, cachedBookPage{Books: books, Pagination: *pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("library cache write failed", zap.Error(err))
		}
	}
	return books, pagination, nil
}

// GetBook returns a book by id.
func (s *LibraryService) GetBook(ctx context.Context, id string) (*models.LibraryBook, error) {
	book, err := s.repo.FindBook(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "library book not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load library book")
	}
	return book, nil
}

// CreateBook adds a book to the catalogue, pending review.
func (s *LibraryService) CreateBook(ctx context.Context, uploaderID string, req CreateLibraryBookRequest) (*models.LibraryBook, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid library book payload")
	}

	book := &models.LibraryBook{
		Title:         req.Title,
		Author:        req.Author,
		Subject:       req.Subject,
		Keywords:      pq.StringArray(req.Keywords),
		PDFURL:        req.PDFURL,
		CoverImageURL: req.CoverImageURL,
		Description:   req.Description,
		Status:        models.StatusPending,
		UploadedBy:    uploaderID,
	}
	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create library book")
	}
	s.invalidateBookCache(ctx)
	return book, nil
}

// UpdateBook edits a book. School accounts may only edit their own uploads.
func (s *LibraryService) UpdateBook(ctx context.Context, id string, actor *models.JWTClaims, req CreateLibraryBookRequest) (*models.LibraryBook, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid library book payload")
	}

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && book.UploadedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "book belongs to another account")
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Subject = req.Subject
	book.Keywords = pq.StringArray(req.Keywords)
	book.PDFURL = req.PDFURL
	book.CoverImageURL = req.CoverImageURL
	book.Description = req.Description

	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update library book")
	}
	s.invalidateBookCache(ctx)
	return book, nil
}

// ApproveBook marks a book approved, recording the deciding admin.
func (s *LibraryService) ApproveBook(ctx context.Context, id, adminID string) (*models.LibraryBook, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.Status == models.StatusApproved {
		return book, nil
	}
	book.Status = models.StatusApproved
	book.ApprovedBy = &adminID
	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve library book")
	}
	s.invalidateBookCache(ctx)
	return book, nil
}

// RejectBook marks a book rejected.
func (s *LibraryService) RejectBook(ctx context.Context, id string) (*models.LibraryBook, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	book.Status = models.StatusRejected
	book.ApprovedBy = nil
	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject library book")
	}
	s.invalidateBookCache(ctx)
	return book, nil
}

// SoftDeleteBook moves a book to the recycle bin. School accounts may only
// delete their own uploads.
func (s *LibraryService) SoftDeleteBook(ctx context.Context, id string, actor *models.JWTClaims) (*models.LibraryBookBinItem, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && book.UploadedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "book belongs to another account")
	}
	bin, err := s.bookEngine.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateBookCache(ctx)
	return bin, nil
}

// RestoreBook re-creates a book from the recycle bin under a new id.
func (s *LibraryService) RestoreBook(ctx context.Context, binID string) (*models.LibraryBook, error) {
	book, err := s.bookEngine.Restore(ctx, binID)
	if err != nil {
		return nil, err
	}
	s.invalidateBookCache(ctx)
	return book, nil
}

// PurgeBook permanently removes a book recycle-bin record.
func (s *LibraryService) PurgeBook(ctx context.Context, binID string) error {
	return s.bookEngine.Purge(ctx, binID)
}

// ListBookBin returns the book recycle-bin contents.
func (s *LibraryService) ListBookBin(ctx context.Context) ([]models.LibraryBookBinItem, error) {
	return s.bookEngine.ListBin(ctx)
}

// ListVideos returns library videos matching the filter. Approved searches
// are served from cache when warm.
func (s *LibraryService) ListVideos(ctx context.Context, filter models.LibraryFilter) ([]models.LibraryVideo, *models.Pagination, error) {
	useCache := s.cache != nil && cacheableLibraryFilter(filter)
	key := libraryCacheKey(libraryVideoCachePrefix, filter)
	if useCache {
		var cached cachedVideoPage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			pagination := cached.Pagination
			return cached.Videos, &pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("library cache read failed", zap.Error(err))
		}
	}

	videos, total, err := s.repo.ListVideos(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list library videos")
	}
	pagination := listPagination(filter.Page, filter.PageSize, total)

	if useCache {
		if err := s.cache.Set(ctx, key, cachedVideoPage{Videos: videos, Pagination: *pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("library cache write failed", zap.Error(err))
		}
	}
	return videos, pagination, nil
}

// GetVideo returns a library video by id.
func (s *LibraryService) GetVideo(ctx context.Context, id string) (*models.LibraryVideo, error) {
	video, err := s.repo.FindVideo(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "library video not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load library video")
	}
	return video, nil
}

// CreateVideo adds a library video. Library videos are admin uploads and
// are approved immediately.
func (s *LibraryService) CreateVideo(ctx context.Context, uploaderID string, req CreateLibraryVideoRequest) (*models.LibraryVideo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid library video payload")
	}

	video := &models.LibraryVideo{
		Title:         req.Title,
		Author:        req.Author,
		Subject:       req.Subject,
		Keywords:      pq.StringArray(req.Keywords),
		VideoURL:      req.VideoURL,
		CoverImageURL: req.CoverImageURL,
		Description:   req.Description,
		Status:        models.StatusApproved,
		UploadedBy:    uploaderID,
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create library video")
	}
	s.invalidateVideoCache(ctx)
	return video, nil
}

// UpdateVideo edits a library video.
func (s *LibraryService) UpdateVideo(ctx context.Context, id string, req CreateLibraryVideoRequest) (*models.LibraryVideo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid library video payload")
	}

	video, err := s.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	video.Title = req.Title
	video.Author = req.Author
	video.Subject = req.Subject
	video.Keywords = pq.StringArray(req.Keywords)
	video.VideoURL = req.VideoURL
	video.CoverImageURL = req.CoverImageURL
	video.Description = req.Description

	if err := s.repo.UpdateVideo(ctx, video); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update library video")
	}
	s.invalidateVideoCache(ctx)
	return video, nil
}

// SoftDeleteVideo moves a library video to the recycle bin.
func (s *LibraryService) SoftDeleteVideo(ctx context.Context, id string) (*models.LibraryVideoBinItem, error) {
	bin, err := s.videoEngine.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateVideoCache(ctx)
	return bin, nil
}

// RestoreVideo re-creates a library video from the recycle bin.
func (s *LibraryService) RestoreVideo(ctx context.Context, binID string) (*models.LibraryVideo, error) {
	video, err := s.videoEngine.Restore(ctx, binID)
	if err != nil {
		return nil, err
	}
	s.invalidateVideoCache(ctx)
	return video, nil
}

// PurgeVideo permanently removes a video recycle-bin record.
func (s *LibraryService) PurgeVideo(ctx context.Context, binID string) error {
	return s.videoEngine.Purge(ctx, binID)
}

// ListVideoBin returns the video recycle-bin contents.
func (s *LibraryService) ListVideoBin(ctx context.Context) ([]models.LibraryVideoBinItem, error) {
	return s.videoEngine.ListBin(ctx)
}

func (s *LibraryService) invalidateBookCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, libraryBookCachePrefix+"*"); err != nil {
		s.logger.Warn("library cache invalidation failed", zap.Error(err))
	}
}

func (s *LibraryService) invalidateVideoCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, libraryVideoCachePrefix+"*"); err != nil {
		s.logger.Warn("library cache invalidation failed", zap.Error(err))
	}
}

func listPagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
