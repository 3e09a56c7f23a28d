package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/repository"
	"github.com/alexanderramin/taskdesk/internal/service"
	"github.com/alexanderramin/taskdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresSession(t *testing.T) {
	h := newHarness(t, testutil.WithAccessTTL(10*time.Minute))
	profile := &countingInvalidator{}
	obs := &recordingObserver{}
	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, profile, obs)
	ctx := context.Background()

	sess, err := svc.Login(ctx, domain.LoginInput{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ana", sess.Username)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), sess.ExpiresAt, 5*time.Second)

	stored, err := h.store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.AccessToken, stored.AccessToken)
	assert.Equal(t, 1, profile.count())
	assert.Equal(t, []service.SessionOp{service.OpLogin}, obs.ops())

	// The authed client now carries the stored token.
	me, err := h.api.Profile.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana", me.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t)
	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, nil)

	_, err := svc.Login(context.Background(), domain.LoginInput{Username: "ana", Password: "wrong-password"})
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	_, err = h.store.Sessions.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLogin_InvalidInputNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, nil)

	_, err := svc.Login(context.Background(), domain.LoginInput{Username: "ana", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Empty(t, h.backend.Requests())
}

func TestLogin_DifferentUserResetsPrefs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Sessions.Save(ctx, &domain.Session{Username: "bruno", AccessToken: "old"}))
	require.NoError(t, h.store.Prefs.Save(ctx, &domain.TablePrefs{View: "tasks", PageSize: 25}))

	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, nil)
	_, err := svc.Login(ctx, domain.LoginInput{Username: "ana", Password: "secret123"})
	require.NoError(t, err)

	_, err = h.store.Prefs.Get(ctx, "tasks")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLogin_SameUserKeepsPrefs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Sessions.Save(ctx, &domain.Session{Username: "ana", AccessToken: "old"}))
	require.NoError(t, h.store.Prefs.Save(ctx, &domain.TablePrefs{View: "tasks", PageSize: 25}))

	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, nil)
	_, err := svc.Login(ctx, domain.LoginInput{Username: "ana", Password: "secret123"})
	require.NoError(t, err)

	prefs, err := h.store.Prefs.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, 25, prefs.PageSize)
}

func TestLogin_RollsBackWhenSaveFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Sessions.Save(ctx, &domain.Session{Username: "bruno", AccessToken: "old"}))
	require.NoError(t, h.store.Prefs.Save(ctx, &domain.TablePrefs{View: "tasks", PageSize: 25}))

	boom := errors.New("disk full")
	uow := &testutil.FailingUoW{DB: h.store.DB, FailOn: "INTO sessions", Err: boom}
	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, uow, h.tokens, nil)

	_, err := svc.Login(ctx, domain.LoginInput{Username: "ana", Password: "secret123"})
	require.ErrorIs(t, err, boom)

	stored, err := h.store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bruno", stored.Username)
	_, err = h.store.Prefs.Get(ctx, "tasks")
	assert.NoError(t, err, "prefs reset must roll back with the failed save")
}

func TestLogout_RevokesAndForgets(t *testing.T) {
	h := newHarness(t)
	profile := &countingInvalidator{}
	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, profile)
	ctx := context.Background()

	sess, err := svc.Login(ctx, domain.LoginInput{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	reqs := h.backend.RequestsTo(http.MethodPost, "/auth/logout")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+sess.AccessToken, reqs[0].Header.Get("Authorization"))

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, service.ErrNotSignedIn)
	assert.Equal(t, 2, profile.count())

	_, err = h.api.Profile.Me(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestLogout_BackendDownStillForgetsLocally(t *testing.T) {
	h := newHarness(t)
	obs := &recordingObserver{}
	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, nil, obs)
	ctx := context.Background()

	_, err := svc.Login(ctx, domain.LoginInput{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	h.backend.FailNext(http.MethodPost, "/auth/logout", http.StatusServiceUnavailable)

	require.NoError(t, svc.Logout(ctx))
	_, err = h.store.Sessions.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.Len(t, obs.events, 2)
	assert.Equal(t, service.OpLogout, obs.events[1].Op)
	assert.Equal(t, "ana", obs.events[1].Username)
	assert.NoError(t, obs.events[1].Err)
	assert.ErrorIs(t, obs.events[1].RemoteErr, api.ErrUnavailable)
}

func TestLogout_NotSignedIn(t *testing.T) {
	h := newHarness(t)
	svc := service.NewSessionService(h.api.Auth, h.store.Sessions, h.store.UoW, h.tokens, nil)

	err := svc.Logout(context.Background())
	assert.ErrorIs(t, err, service.ErrNotSignedIn)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, h.backend.Requests())
}
