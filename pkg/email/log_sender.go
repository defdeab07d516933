package email

import (
	"context"
	"log/slog"
)

// LogSender writes messages to a logger instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email not sent, log sender in use",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
		slog.String("body", msg.TextBody),
	)
	return nil
}

// NewSender returns a PostmarkSender when a server token is configured and a
// LogSender otherwise.
func NewSender(cfg Config, logger *slog.Logger) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return NewLogSender(logger), nil
	}
	return NewPostmarkSender(cfg)
}
