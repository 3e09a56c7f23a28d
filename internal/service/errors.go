package service

import (
	"fmt"

	"github.com/alexanderramin/taskdesk/internal/api"
)

// ErrNotSignedIn is returned when no session is stored. It matches
// api.ErrUnauthorized so callers can treat both the same way.
var ErrNotSignedIn = fmt.Errorf("not signed in: %w", api.ErrUnauthorized)
