package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/service"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSource_NoSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.tokens.Token()
	assert.ErrorIs(t, err, service.ErrNotSignedIn)

	_, err = h.api.Tasks.List(context.Background(), table.NewQuery(10))
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, h.backend.Requests(), "no request goes out without a token")
}

func TestTokenSource_ServesStoredToken(t *testing.T) {
	h := newHarness(t)
	tok := h.backend.IssueToken("ana")
	require.NoError(t, h.store.Sessions.Save(context.Background(), &domain.Session{
		Username: "ana", AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	got, err := h.tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, got.AccessToken)
	assert.Equal(t, "Bearer", got.TokenType)
	assert.Empty(t, h.backend.RequestsTo(http.MethodPost, "/auth/refresh"))
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	old := h.backend.IssueToken("ana")
	require.NoError(t, h.store.Sessions.Save(ctx, &domain.Session{
		Username: "ana", AccessToken: old.AccessToken, RefreshToken: old.RefreshToken,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := h.api.Tasks.List(ctx, table.NewQuery(10))
	require.NoError(t, err)
	require.Len(t, h.backend.RequestsTo(http.MethodPost, "/auth/refresh"), 1)

	stored, err := h.store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, old.AccessToken, stored.AccessToken)
	assert.NotEqual(t, old.RefreshToken, stored.RefreshToken)
	assert.True(t, stored.ExpiresAt.After(time.Now()))

	// The refreshed token is reused.
	_, err = h.api.Tasks.List(ctx, table.NewQuery(10))
	require.NoError(t, err)
	assert.Len(t, h.backend.RequestsTo(http.MethodPost, "/auth/refresh"), 1)
}

func TestTokenSource_RefreshRejected(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Sessions.Save(context.Background(), &domain.Session{
		Username: "ana", AccessToken: "stale", RefreshToken: "refresh-unknown",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := h.tokens.Token()
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestTokenSource_ExpiredWithoutRefreshToken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Sessions.Save(context.Background(), &domain.Session{
		Username: "ana", AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := h.tokens.Token()
	assert.ErrorIs(t, err, service.ErrNotSignedIn)
	assert.Empty(t, h.backend.Requests())
}

func TestTokenSource_ResetRereadsStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Sessions.Save(ctx, &domain.Session{Username: "ana", AccessToken: "first"}))
	got, err := h.tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "first", got.AccessToken)

	require.NoError(t, h.store.Sessions.Save(ctx, &domain.Session{Username: "ana", AccessToken: "second"}))
	got, err = h.tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "first", got.AccessToken)

	h.tokens.Reset()
	got, err = h.tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "second", got.AccessToken)
}
