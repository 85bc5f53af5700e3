package notification

import (
	"context"

	"github.com/pharmacy/backend/internal/application/notification"
	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of delivering them. Used in
// development and wherever no mail provider is configured.
type LogSender struct {
	logger *zap.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a log-only sender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, msg notification.Message) error {
	fields := []zap.Field{
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	}
	if msg.Attachment != nil {
		fields = append(fields,
			zap.String("attachment", msg.Attachment.Filename),
			zap.Int("attachment_bytes", len(msg.Attachment.Data)))
	}
	s.logger.Info("notification", fields...)
	return nil
}
