package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type settingRepository interface {
	Create(ctx context.Context, setting *models.VideoSetting) error
	Update(ctx context.Context, setting *models.VideoSetting) error
	FindFirst(ctx context.Context) (*models.VideoSetting, error)
	FindByID(ctx context.Context, id string) (*models.VideoSetting, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// VideoSettingRequest holds the upload policy payload.
type VideoSettingRequest struct {
	PricePerVideo  float64 `json:"price_per_video" validate:"required,gt=0"`
	MaxVideoLength int     `json:"max_video_length" validate:"required,gt=0"`
}

// SettingService manages the platform-wide video upload policy. Only a
// single settings row may exist.
type SettingService struct {
	repo      settingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingService constructs the settings service.
func NewSettingService(repo settingRepository, validate *validator.Validate, logger *zap.Logger) *SettingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, validator: validate, logger: logger}
}

// Create inserts the settings row. A second create is a conflict.
func (s *SettingService) Create(ctx context.Context, req VideoSettingRequest) (*models.VideoSetting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid video setting payload")
	}

	existing, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check video settings")
	}
	if existing > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "video settings already exist")
	}

	setting := &models.VideoSetting{
		PricePerVideo:  req.PricePerVideo,
		MaxVideoLength: req.MaxVideoLength,
	}
	if err := s.repo.Create(ctx, setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create video setting")
	}
	return setting, nil
}

// Get returns the current settings.
func (s *SettingService) Get(ctx context.Context) (*models.VideoSetting, error) {
	setting, err := s.repo.FindFirst(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video settings not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video settings")
	}
	return setting, nil
}

// GetByID returns a settings row by id.
func (s *SettingService) GetByID(ctx context.Context, id string) (*models.VideoSetting, error) {
	setting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video settings not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video settings")
	}
	return setting, nil
}

// Update edits a settings row.
func (s *SettingService) Update(ctx context.Context, id string, req VideoSettingRequest) (*models.VideoSetting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid video setting payload")
	}

	setting, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	setting.PricePerVideo = req.PricePerVideo
	setting.MaxVideoLength = req.MaxVideoLength

	if err := s.repo.Update(ctx, setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update video setting")
	}
	return setting, nil
}

// Delete removes a settings row.
func (s *SettingService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete video setting")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "video settings not found")
	}
	return nil
}
