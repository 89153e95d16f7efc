package models

import "time"

// ChatMessage is a direct message between two users.
type ChatMessage struct {
	ID         string     `db:"id" json:"id"`
	SenderID   string     `db:"sender_id" json:"sender_id"`
	ReceiverID string     `db:"receiver_id" json:"receiver_id"`
	Body       string     `db:"body" json:"body"`
	ImageURL   *string    `db:"image_url" json:"image_url,omitempty"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ChatPartner summarises a conversation counterpart for the sidebar.
type ChatPartner struct {
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	LastMessage string    `db:"last_message" json:"last_message"`
	LastAt      time.Time `db:"last_at" json:"last_at"`
	Unread      int       `db:"unread" json:"unread"`
}
