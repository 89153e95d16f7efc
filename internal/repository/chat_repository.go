package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

const chatColumns = `id, sender_id, receiver_id, body, image_url, read_at, created_at`

// ChatRepository provides database access for direct messages.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates a new instance of ChatRepository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create inserts a new chat message.
func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO chat_messages (id, sender_id, receiver_id, body, image_url, read_at, created_at) VALUES (:id, :sender_id, :receiver_id, :body, :image_url, :read_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	return nil
}

// ListConversation returns messages exchanged between two users, oldest
// first, with total count.
func (r *ChatRepository) ListConversation(ctx context.Context, userID, partnerID string, page, pageSize int) ([]models.ChatMessage, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT %s FROM chat_messages WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1) ORDER BY created_at ASC LIMIT %d OFFSET %d`, chatColumns, pageSize, offset)
	var messages []models.ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query, userID, partnerID); err != nil {
		return nil, 0, fmt.Errorf("list conversation: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM chat_messages WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID, partnerID); err != nil {
		return nil, 0, fmt.Errorf("count conversation: %w", err)
	}

	return messages, total, nil
}

// MarkRead marks every unread message from partner to user as read.
func (r *ChatRepository) MarkRead(ctx context.Context, userID, partnerID string, at time.Time) error {
	const query = `UPDATE chat_messages SET read_at = $3 WHERE receiver_id = $1 AND sender_id = $2 AND read_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID, partnerID, at); err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	return nil
}

// Partners returns the conversation sidebar for a user: one row per
// counterpart with the latest message and unread count, newest first.
func (r *ChatRepository) Partners(ctx context.Context, userID string) ([]models.ChatPartner, error) {
	const query = `
SELECT p.user_id,
       u.name,
       p.last_message,
       p.last_at,
       p.unread
FROM (
    SELECT DISTINCT ON (partner) partner AS user_id,
           body AS last_message,
           created_at AS last_at,
           (SELECT COUNT(*) FROM chat_messages n WHERE n.sender_id = m.partner AND n.receiver_id = $1 AND n.read_at IS NULL) AS unread
    FROM (
        SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner,
               body, created_at
        FROM chat_messages
        WHERE sender_id = $1 OR receiver_id = $1
    ) m
    ORDER BY partner, created_at DESC
) p
JOIN users u ON u.id = p.user_id
ORDER BY p.last_at DESC`
	var partners []models.ChatPartner
	if err := r.db.SelectContext(ctx, &partners, query, userID); err != nil {
		return nil, fmt.Errorf("list chat partners: %w", err)
	}
	return partners, nil
}

// UnreadCount returns the total number of unread messages for a user.
func (r *ChatRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM chat_messages WHERE receiver_id = $1 AND read_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}
