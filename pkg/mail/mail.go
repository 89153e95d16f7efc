// Package mail defines the outbound email boundary. Lifecycle decisions that
// notify users (invoice approval/rejection) go through Service; the backend
// is chosen by configuration.
package mail

import "context"

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a single outbound email.
type Message struct {
	ToName      string
	ToEmail     string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Service sends email messages.
type Service interface {
	Send(ctx context.Context, msg Message) error
}
