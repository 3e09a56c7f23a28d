package domain

import (
	"fmt"
	"strconv"
	"time"
)

type Project struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Client string `json:"client"`
	Active bool   `json:"active"`
}

// Label is the human form used in pickers.
func (p *Project) Label() string {
	if p.Code != "" {
		return fmt.Sprintf("%s · %s", p.Code, p.Name)
	}
	return p.Name
}

type Requester struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}

type Quote struct {
	ID          int64       `json:"id"`
	Number      string      `json:"number"`
	ProjectID   int64       `json:"projectId"`
	ProjectName string      `json:"projectName"`
	Description string      `json:"description"`
	Hours       float64     `json:"hours"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Status      QuoteStatus `json:"status"`
	IssuedAt    *Date       `json:"issuedAt,omitempty"`
}

// UserProfile is the signed-in user as reported by the backend.
type UserProfile struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// DisplayName prefers the full name.
func (u *UserProfile) DisplayName() string {
	return Coalesce(u.FullName, u.Username)
}

// HasRole reports whether the user holds role.
func (u *UserProfile) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Session is the locally stored authentication state.
type Session struct {
	AccessToken  string
	RefreshToken string
	Username     string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the access token is past its expiry at now.
// A zero expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// LoginInput is the credentials form.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=6,max=200"`
}

// TokenResponse is returned by the login and refresh endpoints.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// TablePrefs are the persisted per-view table settings.
type TablePrefs struct {
	View      string
	Hidden    []string
	PageSize  int
	SortField string
	SortDir   string
}

func formatID(id int64) string {
	return "#" + strconv.FormatInt(id, 10)
}
