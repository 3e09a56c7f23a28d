package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/repository"
	"github.com/alexanderramin/taskdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_LoadEmpty(t *testing.T) {
	store := testutil.NewTestStore(t)

	_, err := store.Sessions.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepo_SaveReplacesSingleRow(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	expires := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Sessions.Save(ctx, &domain.Session{
		Username: "ana", AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires,
	}))
	require.NoError(t, store.Sessions.Save(ctx, &domain.Session{
		Username: "bruno", AccessToken: "a2",
	}))

	got, err := store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bruno", got.Username)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Empty(t, got.RefreshToken)
	assert.True(t, got.ExpiresAt.IsZero())
	assert.False(t, got.CreatedAt.IsZero())

	var n int
	require.NoError(t, store.DB.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSessionRepo_ExpiryRoundTrip(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	expires := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Sessions.Save(ctx, &domain.Session{Username: "ana", AccessToken: "a", ExpiresAt: expires}))
	got, err := store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.True(t, expires.Equal(got.ExpiresAt))
	assert.True(t, got.Expired(expires))
	assert.False(t, got.Expired(expires.Add(-time.Second)))
}

func TestSessionRepo_Delete(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Sessions.Save(ctx, &domain.Session{Username: "ana", AccessToken: "a"}))
	require.NoError(t, store.Sessions.Delete(ctx))
	require.NoError(t, store.Sessions.Delete(ctx))

	_, err := store.Sessions.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
