package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/lifecycle"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type galleryRepository interface {
	lifecycle.Stores[models.GalleryImage, models.GalleryBinItem]
	Create(ctx context.Context, image *models.GalleryImage) error
	Update(ctx context.Context, image *models.GalleryImage) error
	List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryImage, int, error)
}

type galleryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const galleryCachePrefix = "gallery:public:"

// CreateGalleryImageRequest holds payload for uploading gallery images.
type CreateGalleryImageRequest struct {
	Title      string `json:"title" validate:"required"`
	ImageURL   string `json:"image_url" validate:"required,url"`
	SchoolName string `json:"school_name" validate:"required"`
}

// UpdateGalleryImageRequest holds payload for editing gallery images.
type UpdateGalleryImageRequest struct {
	Title      string `json:"title" validate:"required"`
	ImageURL   string `json:"image_url" validate:"required,url"`
	SchoolName string `json:"school_name" validate:"required"`
}

// cachedGalleryPage is the Redis payload for a public listing page.
type cachedGalleryPage struct {
	Images     []models.GalleryImage `json:"images"`
	Pagination models.Pagination     `json:"pagination"`
}

// GalleryService handles gallery image use-cases. The public approved
// listing is cached in Redis; every write invalidates the cached pages.
type GalleryService struct {
	repo      galleryRepository
	cache     galleryCache
	cacheTTL  time.Duration
	engine    *lifecycle.Engine[models.GalleryImage, models.GalleryBinItem]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGalleryService constructs the gallery service.
func NewGalleryService(repo galleryRepository, cache galleryCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *GalleryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := lifecycle.NewEngine[models.GalleryImage, models.GalleryBinItem](lifecycle.EntityGalleryImage, repo,
		func(img *models.GalleryImage) *models.GalleryBinItem {
			return &models.GalleryBinItem{
				ID:              uuid.NewString(),
				OriginalImageID: img.ID,
				Title:           img.Title,
				ImageURL:        img.ImageURL,
				SchoolName:      img.SchoolName,
				Status:          img.Status,
				UploadedBy:      img.UploadedBy,
				DeletedAt:       time.Now().UTC(),
			}
		},
		func(b *models.GalleryBinItem) *models.GalleryImage {
			return &models.GalleryImage{
				ID:         uuid.NewString(),
				Title:      b.Title,
				ImageURL:   b.ImageURL,
				SchoolName: b.SchoolName,
				Status:     b.Status,
				UploadedBy: b.UploadedBy,
			}
		},
		logger,
	)
	return &GalleryService{repo: repo, cache: cache, cacheTTL: cacheTTL, engine: engine, validator: validate, logger: logger}
}

// List returns gallery images and pagination metadata.
func (s *GalleryService) List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryImage, *models.Pagination, error) {
	images, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gallery images")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return images, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListPublic returns approved gallery images, served from cache when warm.
// The second return reports whether the page came from cache.
func (s *GalleryService) ListPublic(ctx context.Context, page, pageSize int) ([]models.GalleryImage, *models.Pagination, bool, error) {
	key := fmt.Sprintf("%sp%d:s%d", galleryCachePrefix, page, pageSize)
	if s.cache != nil {
		var cached cachedGalleryPage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			pagination := cached.Pagination
			return cached.Images, &pagination, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("gallery cache read failed", zap.Error(err))
		}
	}

	approved := models.StatusApproved
	images, pagination, err := s.List(ctx, models.GalleryFilter{Status: &approved, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedGalleryPage{Images: images, Pagination: *pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("gallery cache write failed", zap.Error(err))
		}
	}
	return images, pagination, false, nil
}

// Get returns a gallery image by id.
func (s *GalleryService) Get(ctx context.Context, id string) (*models.GalleryImage, error) {
	image, err := s.repo.FindEntity(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gallery image not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gallery image")
	}
	return image, nil
}

// Create uploads a new gallery image, pending moderation.
func (s *GalleryService) Create(ctx context.Context, uploaderID string, req CreateGalleryImageRequest) (*models.GalleryImage, error) {
	if req.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gallery payload")
	}

	image := &models.GalleryImage{
		Title:      req.Title,
		ImageURL:   req.ImageURL,
		SchoolName: req.SchoolName,
		Status:     models.StatusPending,
		UploadedBy: uploaderID,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create gallery image")
	}
	s.invalidateCache(ctx)
	return image, nil
}

// Update edits a gallery image. School accounts may only edit their own
// uploads.
func (s *GalleryService) Update(ctx context.Context, id string, actor *models.JWTClaims, req UpdateGalleryImageRequest) (*models.GalleryImage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gallery payload")
	}

	image, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && image.UploadedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "image belongs to another school")
	}

	image.Title = req.Title
	image.ImageURL = req.ImageURL
	image.SchoolName = req.SchoolName

	if err := s.repo.Update(ctx, image); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update gallery image")
	}
	s.invalidateCache(ctx)
	return image, nil
}

// Approve marks an image approved. Re-approval is a no-op.
func (s *GalleryService) Approve(ctx context.Context, id string) (*models.GalleryImage, error) {
	image, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if image.Status == models.StatusApproved {
		return image, nil
	}
	image.Status = models.StatusApproved
	if err := s.repo.Update(ctx, image); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve gallery image")
	}
	s.invalidateCache(ctx)
	return image, nil
}

// Reject marks an image rejected.
func (s *GalleryService) Reject(ctx context.Context, id string) (*models.GalleryImage, error) {
	image, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	image.Status = models.StatusRejected
	if err := s.repo.Update(ctx, image); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject gallery image")
	}
	s.invalidateCache(ctx)
	return image, nil
}

// SoftDelete moves an image to the recycle bin. School accounts may only
// delete their own uploads.
func (s *GalleryService) SoftDelete(ctx context.Context, id string, actor *models.JWTClaims) (*models.GalleryBinItem, error) {
	image, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && image.UploadedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "image belongs to another school")
	}
	bin, err := s.engine.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return bin, nil
}

// Restore re-creates an image from the recycle bin under a new id.
func (s *GalleryService) Restore(ctx context.Context, binID string) (*models.GalleryImage, error) {
	image, err := s.engine.Restore(ctx, binID)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return image, nil
}

// Purge permanently removes a recycle-bin record.
func (s *GalleryService) Purge(ctx context.Context, binID string) error {
	return s.engine.Purge(ctx, binID)
}

// ListBin returns the recycle-bin contents.
func (s *GalleryService) ListBin(ctx context.Context) ([]models.GalleryBinItem, error) {
	return s.engine.ListBin(ctx)
}

func (s *GalleryService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, galleryCachePrefix+"*"); err != nil {
		s.logger.Warn("gallery cache invalidation failed", zap.Error(err))
	}
}
