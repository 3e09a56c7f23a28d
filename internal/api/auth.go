package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alexanderramin/taskdesk/internal/domain"
)

type AuthService struct {
	c *Client
}

func (s *AuthService) Login(ctx context.Context, in domain.LoginInput) (*domain.TokenResponse, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return s.tokenCall(ctx, "/auth/login", in)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refreshing session: %w", ErrUnauthorized)
	}
	return s.tokenCall(ctx, "/auth/refresh", map[string]string{"refreshToken": refreshToken})
}

func (s *AuthService) tokenCall(ctx context.Context, path string, in any) (*domain.TokenResponse, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding %s body: %w", path, err)
	}
	var tok domain.TokenResponse
	err = s.c.do(ctx, call{
		method:      http.MethodPost,
		path:        path,
		body:        data,
		contentType: "application/json",
		anon:        true,
		out:         &tok,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("requesting token: empty access token in response")
	}
	return &tok, nil
}

// Logout revokes the current session server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.c.send(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	return nil
}

type ProfileService struct {
	c *Client
}

// Me returns the signed-in user.
func (s *ProfileService) Me(ctx context.Context) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := s.c.get(ctx, "/users/me", nil, &p); err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return &p, nil
}

// ProfileCache memoizes the signed-in user's profile for one session.
// The owner invalidates it on sign-in and sign-out.
type ProfileCache struct {
	mu        sync.Mutex
	fetch     func(context.Context) (*domain.UserProfile, error)
	ttl       time.Duration
	now       func() time.Time
	profile   *domain.UserProfile
	fetchedAt time.Time
}

// NewProfileCache caches fetch results for ttl. A zero ttl keeps the value
// until Invalidate.
func NewProfileCache(fetch func(context.Context) (*domain.UserProfile, error), ttl time.Duration) *ProfileCache {
	return &ProfileCache{fetch: fetch, ttl: ttl, now: time.Now}
}

// Get returns the cached profile, fetching it when missing or stale.
func (c *ProfileCache) Get(ctx context.Context) (*domain.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile != nil && (c.ttl == 0 || c.now().Sub(c.fetchedAt) < c.ttl) {
		return c.profile, nil
	}
	p, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.profile = p
	c.fetchedAt = c.now()
	return p, nil
}

// Peek returns the cached profile without fetching.
func (c *ProfileCache) Peek() (*domain.UserProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile, c.profile != nil
}

func (c *ProfileCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = nil
	c.fetchedAt = time.Time{}
}
