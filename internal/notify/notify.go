package notify

import (
	"context"

	"go.uber.org/zap"
)

// Sink delivers purchase notifications. Attachment is an optional link,
// e.g. the listing URL of the purchased offer.
type Sink interface {
	Send(ctx context.Context, message string, attachment string) error
}

// LogSink writes notifications to the structured log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log-backed notification sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Send logs the notification.
func (s *LogSink) Send(_ context.Context, message string, attachment string) error {
	fields := []zap.Field{zap.String("message", message)}
	if attachment != "" {
		fields = append(fields, zap.String("attachment", attachment))
	}

	s.logger.Info("notification-sent", fields...)

	return nil
}

// Multi fans one notification out to several sinks. Errors are collected,
// not short-circuited, so one broken sink does not silence the rest.
type Multi []Sink

// Send delivers to every sink and returns the first error encountered.
func (m Multi) Send(ctx context.Context, message string, attachment string) error {
	var first error
	for _, sink := range m {
		if err := sink.Send(ctx, message, attachment); err != nil && first == nil {
			first = err
		}
	}

	return first
}
