package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/service"
	"github.com/alexanderramin/taskdesk/internal/testutil"
)

type harness struct {
	backend *testutil.FakeBackend
	store   *testutil.TestStore
	tokens  *service.TokenSource
	api     *api.API
	anon    *api.API
}

func newHarness(t *testing.T, opts ...testutil.BackendOption) *harness {
	t.Helper()
	backend := testutil.NewFakeBackend(t, opts...)
	store := testutil.NewTestStore(t)
	cfg := api.Config{BaseURL: backend.URL(), Timeout: 5 * time.Second}

	anon := api.New(api.NewClient(cfg, nil, nil))
	tokens := service.NewTokenSource(store.Sessions, anon.Auth)
	return &harness{
		backend: backend,
		store:   store,
		tokens:  tokens,
		api:     api.New(api.NewClient(cfg, tokens, nil)),
		anon:    anon,
	}
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingObserver struct {
	mu     sync.Mutex
	events []service.SessionEvent
}

func (r *recordingObserver) OnSessionEvent(_ context.Context, ev service.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingObserver) ops() []service.SessionOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]service.SessionOp, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Op
	}
	return out
}
