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

type programRepository interface {
	Create(ctx context.Context, request *models.ProgramRequest) error
	Update(ctx context.Context, request *models.ProgramRequest) error
	FindByID(ctx context.Context, id string) (*models.ProgramRequest, error)
	List(ctx context.Context, filter models.ProgramRequestFilter) ([]models.ProgramRequest, int, error)
}

// RequestProgramRequest holds the school's programme application payload.
type RequestProgramRequest struct {
	ContactPerson    string `json:"contact_person" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required"`
	ProgramRequested string `json:"program_requested" validate:"required"`
	Message          string `json:"message"`
}

// ProgramService handles programme requests filed by schools and their
// moderation by admins.
type ProgramService struct {
	repo      programRepository
	users     userReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs the programme service.
func NewProgramService(repo programRepository, users userReader, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, users: users, validator: validate, logger: logger}
}

// Submit files a new programme request for the calling school, pending
// review. The school name is taken from the account, not the payload.
func (s *ProgramService) Submit(ctx context.Context, schoolID string, req RequestProgramRequest) (*models.ProgramRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program request payload")
	}

	school, err := s.users.FindByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school account")
	}

	request := &models.ProgramRequest{
		SchoolID:         school.ID,
		SchoolName:       school.Name,
		ContactPerson:    req.ContactPerson,
		Email:            req.Email,
		Phone:            req.Phone,
		ProgramRequested: req.ProgramRequested,
		Status:           models.StatusPending,
	}
	if req.Message != "" {
		request.Message = &req.Message
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit program request")
	}
	return request, nil
}

// List returns programme requests. Schools see their own submissions;
// admins see the pending queue by default.
func (s *ProgramService) List(ctx context.Context, actor *models.JWTClaims, filter models.ProgramRequestFilter) ([]models.ProgramRequest, *models.Pagination, error) {
	if actor.Role == models.RoleSchool {
		filter.SchoolID = actor.UserID
		filter.Status = nil
	} else if filter.Status == nil {
		pending := models.StatusPending
		filter.Status = &pending
	}

	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program requests")
	}
	return requests, listPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a programme request by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.ProgramRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program request")
	}
	return request, nil
}

// Approve marks a programme request approved. Re-approval is a no-op.
func (s *ProgramService) Approve(ctx context.Context, id string) (*models.ProgramRequest, error) {
	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status == models.StatusApproved {
		return request, nil
	}
	request.Status = models.StatusApproved
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve program request")
	}
	return request, nil
}

// Reject marks a programme request rejected.
func (s *ProgramService) Reject(ctx context.Context, id string) (*models.ProgramRequest, error) {
	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status == models.StatusRejected {
		return request, nil
	}
	request.Status = models.StatusRejected
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject program request")
	}
	return request, nil
}
