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

type schoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	FindByID(ctx context.Context, id string) (*models.School, error)
	List(ctx context.Context, filter models.SchoolFilter) ([]models.School, int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// RegisterSchoolRequest holds the public partner registration payload.
type RegisterSchoolRequest struct {
	SchoolName   string `json:"school_name" validate:"required"`
	SchoolCode   string `json:"school_code" validate:"required"`
	HeadOfSchool string `json:"head_of_school" validate:"required"`
	Address      string `json:"address"`
	Contact      string `json:"contact" validate:"required"`
	Message      string `json:"message"`
}

// UpdateSchoolRequest holds payload for editing school registrations.
type UpdateSchoolRequest struct {
	SchoolName   string `json:"school_name" validate:"required"`
	HeadOfSchool string `json:"head_of_school" validate:"required"`
	Address      string `json:"address"`
	Contact      string `json:"contact" validate:"required"`
	Message      string `json:"message"`
}

// SchoolService handles partner school registrations and their moderation.
type SchoolService struct {
	repo      schoolRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs the school service.
func NewSchoolService(repo schoolRepository, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, validator: validate, logger: logger}
}

// List returns schools and pagination metadata.
func (s *SchoolService) List(ctx context.Context, filter models.SchoolFilter) ([]models.School, *models.Pagination, error) {
	schools, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
	}
	return schools, listPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a school by id.
func (s *SchoolService) Get(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return school, nil
}

// Register files a new partner registration request, pending review.
func (s *SchoolService) Register(ctx context.Context, req RegisterSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}

	school := &models.School{
		SchoolName:   req.SchoolName,
		SchoolCode:   req.SchoolCode,
		HeadOfSchool: req.HeadOfSchool,
		Address:      req.Address,
		Contact:      req.Contact,
		Status:       models.StatusPending,
	}
	if req.Message != "" {
		school.Message = &req.Message
	}
	if err := s.repo.Create(ctx, school); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register school")
	}
	return school, nil
}

// Update edits a school registration.
func (s *SchoolService) Update(ctx context.Context, id string, req UpdateSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}

	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	school.SchoolName = req.SchoolName
	school.HeadOfSchool = req.HeadOfSchool
	school.Address = req.Address
	school.Contact = req.Contact
	if req.Message != "" {
		school.Message = &req.Message
	}

	if err := s.repo.Update(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school")
	}
	return school, nil
}

// Approve marks a registration approved. Re-approval is a no-op.
func (s *SchoolService) Approve(ctx context.Context, id string) (*models.School, error) {
	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if school.Status == models.StatusApproved {
		return school, nil
	}
	school.Status = models.StatusApproved
	if err := s.repo.Update(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve school")
	}
	return school, nil
}

// Reject marks a registration rejected.
func (s *SchoolService) Reject(ctx context.Context, id string) (*models.School, error) {
	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	school.Status = models.StatusRejected
	if err := s.repo.Update(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject school")
	}
	return school, nil
}

// Delete removes a school registration.
func (s *SchoolService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete school")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}
	return nil
}
