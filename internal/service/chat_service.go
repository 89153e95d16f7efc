package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type chatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListConversation(ctx context.Context, userID, partnerID string, page, pageSize int) ([]models.ChatMessage, int, error)
	MarkRead(ctx context.Context, userID, partnerID string, at time.Time) error
	Partners(ctx context.Context, userID string) ([]models.ChatPartner, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// SendMessageRequest is the payload for sending a direct message.
type SendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required,uuid4"`
	Body       string  `json:"body" validate:"required,max=4000"`
	ImageURL   *string `json:"image_url" validate:"omitempty,url"`
}

// ChatService provides direct messaging between users.
type ChatService struct {
	repo      chatRepository
	users     userReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs the chat service.
func NewChatService(repo chatRepository, users userReader, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{repo: repo, users: users, validator: validate, logger: logger}
}

// Send delivers a message from the actor to the receiver.
func (s *ChatService) Send(ctx context.Context, senderID string, req SendMessageRequest) (*models.ChatMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if req.ReceiverID == senderID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot message yourself")
	}

	receiver, err := s.users.FindByID(ctx, req.ReceiverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "receiver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receiver")
	}
	if !receiver.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "receiver account is deactivated")
	}

	msg := &models.ChatMessage{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
		ImageURL:   req.ImageURL,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store message")
	}
	return msg, nil
}

// Conversation returns the message history between the actor and a partner,
// oldest first, and marks the partner's messages as read.
func (s *ChatService) Conversation(ctx context.Context, userID, partnerID string, page, pageSize int) ([]models.ChatMessage, *models.Pagination, error) {
	messages, total, err := s.repo.ListConversation(ctx, userID, partnerID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conversation")
	}
	if err := s.repo.MarkRead(ctx, userID, partnerID, time.Now().UTC()); err != nil {
		s.logger.Sugar().Warnw("failed to mark conversation read", "user_id", userID, "partner_id", partnerID, "error", err)
	}
	return messages, listPagination(page, pageSize, total), nil
}

// Partners returns the actor's conversation sidebar with unread counts.
func (s *ChatService) Partners(ctx context.Context, userID string) ([]models.ChatPartner, error) {
	partners, err := s.repo.Partners(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conversations")
	}
	return partners, nil
}

// UnreadCount returns the actor's total unread message count.
func (s *ChatService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	return count, nil
}
