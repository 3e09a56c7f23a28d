package cli

import (
	"context"
	"time"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Terminal dimensions
	Width  int
	Height int

	// Signed-in user shown in the header; empty when signed out.
	User string
}

// RequestContext bounds one backend call made from the TUI. The HTTP client
// applies its own per-attempt timeout; this caps retries as a whole.
func (s *SharedState) RequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Timeout())
}

// Timeout is the budget for one user action.
func (s *SharedState) Timeout() time.Duration {
	if s.App != nil && s.App.RequestTimeout > 0 {
		return s.App.RequestTimeout
	}
	return 2 * time.Minute
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator),
// status bar (2 lines: separator + hints), and command bar (1 line).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}
