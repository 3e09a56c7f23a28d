package api_test

import (
	"strconv"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/testutil"
)

type fixture struct {
	backend *testutil.FakeBackend
	api     *api.API
	token   string
}

type fixtureOption func(*api.Config)

func withRetries(n int) fixtureOption {
	return func(c *api.Config) { c.MaxRetries = n }
}

func withTimeout(d time.Duration) fixtureOption {
	return func(c *api.Config) { c.Timeout = d }
}

// newFixture starts a fake backend and an API client signed in as ana.
func newFixture(t *testing.T, backendOpts []testutil.BackendOption, opts ...fixtureOption) *fixture {
	t.Helper()
	b := testutil.NewFakeBackend(t, backendOpts...)
	tok := b.IssueToken("ana")
	cfg := api.Config{BaseURL: b.URL(), Timeout: 5 * time.Second, MaxRetries: 2, Backoff: time.Millisecond}
	for _, opt := range opts {
		opt(&cfg)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok.AccessToken, TokenType: "Bearer"})
	return &fixture{
		backend: b,
		api:     api.New(api.NewClient(cfg, src, nil)),
		token:   tok.AccessToken,
	}
}

func validTaskInput() domain.TaskInput {
	return domain.TaskInput{
		Title:       "Monthly close report",
		Priority:    "HIGH",
		FlowType:    "DEVELOPMENT",
		RequesterID: 1,
		ProjectID:   1,
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
