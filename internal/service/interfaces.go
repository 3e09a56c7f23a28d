// Package service holds the client-side use cases that span the backend API
// and the local store: signing in and out, and keeping the bearer token
// fresh.
package service

import (
	"context"

	"github.com/alexanderramin/taskdesk/internal/domain"
)

// Authenticator is the backend's sign-in surface.
type Authenticator interface {
	Login(ctx context.Context, in domain.LoginInput) (*domain.TokenResponse, error)
	Logout(ctx context.Context) error
}

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
}

// ProfileInvalidator is notified whenever the signed-in user changes.
type ProfileInvalidator interface {
	Invalidate()
}

type SessionService interface {
	// Login exchanges credentials for tokens and stores the session. Table
	// preferences are reset when a different user signs in.
	Login(ctx context.Context, in domain.LoginInput) (*domain.Session, error)

	// Logout revokes the session server-side (best effort) and forgets it
	// locally.
	Logout(ctx context.Context) error

	// Current returns the stored session, or ErrNotSignedIn.
	Current(ctx context.Context) (*domain.Session, error)
}
