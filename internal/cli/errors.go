package cli

import (
	"errors"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
)

// ErrorHint suggests the next step for errors a user can act on.
func ErrorHint(err error) string {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "sign in with: taskdesk login"
	case errors.Is(err, api.ErrForbidden):
		return "your account lacks permission for this action"
	case errors.Is(err, api.ErrUnavailable), errors.Is(err, api.ErrTimeout):
		return "check api.base_url and that the backend is running"
	}
	return ""
}

// errorOutput renders err for the TUI output area, with a hint when one applies.
func errorOutput(err error) string {
	out := formatter.Error(err)
	if hint := ErrorHint(err); hint != "" {
		out += "\n" + formatter.Dim(hint)
	}
	return out
}
