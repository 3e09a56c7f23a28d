package api

import (
	"context"
	"log/slog"
	"time"
)

// CallEvent describes one completed API call, after retries.
type CallEvent struct {
	Method    string
	Path      string
	Status    int
	Attempts  int
	Latency   time.Duration
	RequestID string
	Err       error
}

// Observer receives an event for every API call.
type Observer interface {
	OnCallComplete(ctx context.Context, event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(context.Context, CallEvent) {}

// LogObserver writes call events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(ctx context.Context, event CallEvent) {
	attrs := []any{
		"method", event.Method,
		"path", event.Path,
		"status", event.Status,
		"attempts", event.Attempts,
		"latency_ms", event.Latency.Milliseconds(),
		"request_id", event.RequestID,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error(), "error_code", ErrorCode(event.Err))
		o.logger.WarnContext(ctx, "api_call", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "api_call", attrs...)
}
