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
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/mail"
)

type videoRepository interface {
	lifecycle.Stores[models.Video, models.VideoBinItem]
	Create(ctx context.Context, video *models.Video) error
	Update(ctx context.Context, video *models.Video) error
	List(ctx context.Context, filter models.VideoFilter) ([]models.Video, int, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// CreateVideoRequest holds payload for uploading course videos.
type CreateVideoRequest struct {
	CourseName    string `json:"course_name" validate:"required"`
	CourseContent string `json:"course_content"`
	VideoURL      string `json:"video_url" validate:"required,url"`
	ThumbnailURL  string `json:"thumbnail_url" validate:"omitempty,url"`
	Description   string `json:"description"`
	Sequence      int    `json:"sequence" validate:"gte=0"`
}

// UpdateVideoRequest holds payload for editing course videos.
type UpdateVideoRequest struct {
	CourseName    string `json:"course_name" validate:"required"`
	CourseContent string `json:"course_content"`
	VideoURL      string `json:"video_url" validate:"required,url"`
	ThumbnailURL  string `json:"thumbnail_url" validate:"omitempty,url"`
	Description   string `json:"description"`
	Sequence      int    `json:"sequence" validate:"gte=0"`
}

// VideoService handles course video use-cases: CRUD, moderation and the
// recycle bin.
type VideoService struct {
	repo      videoRepository
	users     userReader
	engine    *lifecycle.Engine[models.Video, models.VideoBinItem]
	mailQueue jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVideoService constructs the video service.
func NewVideoService(repo videoRepository, users userReader, mailQueue jobEnqueuer, validate *validator.Validate, logger *zap.Logger) *VideoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := lifecycle.NewEngine[models.Video, models.VideoBinItem](lifecycle.EntityVideo, repo,
		func(v *models.Video) *models.VideoBinItem {
			return &models.VideoBinItem{
				ID:              uuid.NewString(),
				OriginalVideoID: v.ID,
				CourseName:      v.CourseName,
				CourseContent:   v.CourseContent,
				VideoURL:        v.VideoURL,
				ThumbnailURL:    v.ThumbnailURL,
				Description:     v.Description,
				Status:          v.Status,
				UploadedBy:      v.UploadedBy,
				DeletedAt:       time.Now().UTC(),
			}
		},
		func(b *models.VideoBinItem) *models.Video {
			return &models.Video{
				ID:            uuid.NewString(),
				CourseName:    b.CourseName,
				CourseContent: b.CourseContent,
				VideoURL:      b.VideoURL,
				ThumbnailURL:  b.ThumbnailURL,
				Description:   b.Description,
				Status:        b.Status,
				UploadedBy:    b.UploadedBy,
			}
		},
		logger,
	)
	return &VideoService{repo: repo, users: users, engine: engine, mailQueue: mailQueue, validator: validate, logger: logger}
}

// List returns videos and pagination metadata.
func (s *VideoService) List(ctx context.Context, filter models.VideoFilter) ([]models.Video, *models.Pagination, error) {
	videos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list videos")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return videos, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a video by id.
func (s *VideoService) Get(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.repo.FindEntity(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video")
	}
	return video, nil
}

// Create uploads a new video. Videos always start pending moderation.
func (s *VideoService) Create(ctx context.Context, uploaderID string, req CreateVideoRequest) (*models.Video, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid video payload")
	}

	video := &models.Video{
		CourseName:    req.CourseName,
		CourseContent: req.CourseContent,
		VideoURL:      req.VideoURL,
		ThumbnailURL:  req.ThumbnailURL,
		Description:   req.Description,
		Status:        models.StatusPending,
		UploadedBy:    uploaderID,
		Sequence:      req.Sequence,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create video")
	}
	return video, nil
}

// Update edits a video. Instructors may only edit their own uploads.
func (s *VideoService) Update(ctx context.Context, id string, actor *models.JWTClaims, req UpdateVideoRequest) (*models.Video, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid video payload")
	}

	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && video.UploadedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "video belongs to another instructor")
	}

	video.CourseName = req.CourseName
	video.CourseContent = req.CourseContent
	video.VideoURL = req.VideoURL
	video.ThumbnailURL = req.ThumbnailURL
	video.Description = req.Description
	video.Sequence = req.Sequence

	if err := s.repo.Update(ctx, video); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update video")
	}
	return video, nil
}

// Approve marks a video approved and clears any previous rejection.
// Re-approving an approved video is a no-op.
func (s *VideoService) Approve(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Status == models.StatusApproved {
		return video, nil
	}

	now := time.Now().UTC()
	video.Status = models.StatusApproved
	video.ApprovedAt = &now
	video.RejectionReason = nil
	video.RejectedAt = nil

	if err := s.repo.Update(ctx, video); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve video")
	}
	s.notifyUploader(ctx, video, "approved", "")
	return video, nil
}

// Reject marks a video rejected with a mandatory reason.
func (s *VideoService) Reject(ctx context.Context, id, reason string) (*models.Video, error) {
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Status == models.StatusRejected {
		return video, nil
	}

	now := time.Now().UTC()
	video.Status = models.StatusRejected
	video.RejectionReason = &reason
	video.RejectedAt = &now
	video.ApprovedAt = nil

	if err := s.repo.Update(ctx, video); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject video")
	}
	s.notifyUploader(ctx, video, "rejected", reason)
	return video, nil
}

// SoftDelete moves a video to the recycle bin. Instructors may only delete
// their own uploads.
func (s *VideoService) SoftDelete(ctx context.Context, id string, actor *models.JWTClaims) (*models.VideoBinItem, error) {
	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && video.UploadedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "video belongs to another instructor")
	}
	return s.engine.SoftDelete(ctx, id)
}

// Restore re-creates a video from the recycle bin under a new id.
func (s *VideoService) Restore(ctx context.Context, binID string) (*models.Video, error) {
	return s.engine.Restore(ctx, binID)
}

// Purge permanently removes a recycle-bin record.
func (s *VideoService) Purge(ctx context.Context, binID string) error {
	return s.engine.Purge(ctx, binID)
}

// ListBin returns the recycle-bin contents.
func (s *VideoService) ListBin(ctx context.Context) ([]models.VideoBinItem, error) {
	return s.engine.ListBin(ctx)
}

func (s *VideoService) notifyUploader(ctx context.Context, video *models.Video, decision, reason string) {
	if s.mailQueue == nil || s.users == nil {
		return
	}
	uploader, err := s.users.FindByID(ctx, video.UploadedBy)
	if err != nil {
		s.logger.Warn("failed to load uploader for notification", zap.Error(err))
		return
	}

	body := fmt.Sprintf("Your video %q has been %s.", video.CourseName, decision)
	if reason != "" {
		body += " Reason: " + reason
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "video-decision",
		Payload: mail.Message{
			ToName:   uploader.Name,
			ToEmail:  uploader.Email,
			Subject:  fmt.Sprintf("Video %s: %s", decision, video.CourseName),
			TextBody: body,
		},
	}
	if err := s.mailQueue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue decision email", zap.Error(err))
	}
}
