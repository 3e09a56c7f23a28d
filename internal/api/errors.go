package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized means there is no valid session; sign in again.
	ErrUnauthorized = errors.New("not signed in or session expired")

	// ErrForbidden means the user lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	ErrNotFound = errors.New("not found")

	// ErrValidation means the backend rejected the payload; see
	// APIError.Fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict means the resource changed or is in a state that forbids
	// the operation, e.g. closing an already closed billing period.
	ErrConflict = errors.New("conflict")

	ErrServer = errors.New("server error")

	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	ErrTimeout = errors.New("request timed out")
)

// APIError is a non-2xx response. It unwraps to the sentinel for its status.
type APIError struct {
	Status    int
	Method    string
	Path      string
	Message   string
	Fields    map[string]string
	RequestID string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d", e.Method, e.Path, e.Status)
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + e.Fields[k]
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return sentinelFor(e.Status)
}

func sentinelFor(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusConflict, status == http.StatusPreconditionFailed:
		return ErrConflict
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ErrTimeout
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusTooManyRequests:
		return ErrUnavailable
	case status >= 500:
		return ErrServer
	}
	return nil
}

// errorBody covers the error shapes the backend emits.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
	Fields  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"fieldErrors"`
}

func (b errorBody) fields() map[string]string {
	if len(b.Errors) == 0 && len(b.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(b.Errors)+len(b.Fields))
	for k, v := range b.Errors {
		out[k] = v
	}
	for _, f := range b.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// retryable reports whether a failed GET may be tried again.
func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer) || errors.Is(err, ErrTimeout)
}

// ErrorCode is a short stable label for logs.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrServer):
		return "SERVER"
	default:
		return "UNKNOWN"
	}
}
