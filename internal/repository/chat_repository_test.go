package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func newChatMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestChatRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectExec("INSERT INTO chat_messages").
		WillReturnResult(sqlmock.NewResult(1, 1))

	msg := &models.ChatMessage{SenderID: "u1", ReceiverID: "u2", Body: "hello"}
	require.NoError(t, repo.Create(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestChatRepositoryListConversation(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	rows := sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "body", "image_url", "read_at", "created_at"}).
		AddRow("m1", "u1", "u2", "hello", nil, nil, time.Now())
	mock.ExpectQuery("SELECT .* FROM chat_messages WHERE \\(sender_id = \\$1 AND receiver_id = \\$2\\) OR \\(sender_id = \\$2 AND receiver_id = \\$1\\) ORDER BY created_at ASC LIMIT 50 OFFSET 0").
		WithArgs("u1", "u2").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM chat_messages").
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	messages, total, err := repo.ListConversation(context.Background(), "u1", "u2", 1, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, 1, total)
}

func TestChatRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE chat_messages SET read_at = \\$3 WHERE receiver_id = \\$1 AND sender_id = \\$2 AND read_at IS NULL").
		WithArgs("u1", "u2", now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.MarkRead(context.Background(), "u1", "u2", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepositoryUnreadCount(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM chat_messages WHERE receiver_id = \\$1 AND read_at IS NULL").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
