package service

import (
	"context"
	"log/slog"
	"time"
)

// SessionOp names a session lifecycle step.
type SessionOp string

const (
	OpLogin   SessionOp = "login"
	OpLogout  SessionOp = "logout"
	OpRefresh SessionOp = "refresh"
)

// SessionEvent is emitted once per sign-in, sign-out or token refresh.
type SessionEvent struct {
	Op       SessionOp
	Username string
	Duration time.Duration
	Err      error
	// RemoteErr is a backend failure that did not fail the operation,
	// such as an unreachable revoke endpoint on sign-out.
	RemoteErr error
}

// SessionObserver receives session events.
type SessionObserver interface {
	OnSessionEvent(ctx context.Context, event SessionEvent)
}

// NoopSessionObserver discards all events.
type NoopSessionObserver struct{}

func (NoopSessionObserver) OnSessionEvent(context.Context, SessionEvent) {}

// LogSessionObserver writes session events to a structured logger.
type LogSessionObserver struct {
	logger *slog.Logger
}

// NewLogSessionObserver falls back to a no-op observer without a logger.
func NewLogSessionObserver(logger *slog.Logger) SessionObserver {
	if logger == nil {
		return NoopSessionObserver{}
	}
	return &LogSessionObserver{logger: logger}
}

func (o *LogSessionObserver) OnSessionEvent(ctx context.Context, event SessionEvent) {
	attrs := []any{
		"op", string(event.Op),
		"username", event.Username,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.RemoteErr != nil {
		attrs = append(attrs, "remote_error", event.RemoteErr.Error())
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "session", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "session", attrs...)
}

func firstObserver(observers []SessionObserver) SessionObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopSessionObserver{}
}
