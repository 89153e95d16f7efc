package mail

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleService logs outgoing mail instead of delivering it. Default
// backend in development.
type ConsoleService struct {
	logger *zap.Logger
}

var _ Service = (*ConsoleService)(nil)

// NewConsoleService constructs a logging mail service.
func NewConsoleService(logger *zap.Logger) *ConsoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleService{logger: logger}
}

// Send logs the message and discards it.
func (s *ConsoleService) Send(_ context.Context, msg Message) error {
	s.logger.Sugar().Infow("outbound email",
		"to", msg.ToEmail,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return nil
}
