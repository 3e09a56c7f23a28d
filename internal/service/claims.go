package service

import (
	"fmt"
	"time"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the fields taskdesk reads from an access token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// ParseClaims reads the subject and expiry of a JWT without verifying its
// signature. The backend verifies tokens; the client only needs them to
// label the session and schedule refreshes. Opaque tokens return an error.
func ParseClaims(token string) (TokenClaims, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("reading token claims: %w", err)
	}
	out := TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// sessionFromTokens builds the stored session for a token response.
// Explicit fields win over token claims.
func sessionFromTokens(tok *domain.TokenResponse, username string, now time.Time) *domain.Session {
	s := &domain.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Username:     username,
		CreatedAt:    now,
	}
	if tok.ExpiresIn > 0 {
		s.ExpiresAt = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	if claims, err := ParseClaims(tok.AccessToken); err == nil {
		if s.Username == "" {
			s.Username = claims.Subject
		}
		if s.ExpiresAt.IsZero() {
			s.ExpiresAt = claims.ExpiresAt
		}
	}
	return s
}
