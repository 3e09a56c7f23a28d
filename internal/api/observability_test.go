package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/alexanderramin/taskdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	events []api.CallEvent
}

func (r *recordingObserver) OnCallComplete(_ context.Context, ev api.CallEvent) {
	r.events = append(r.events, ev)
}

func TestObserver_ReceivesEveryCall(t *testing.T) {
	b := testutil.NewFakeBackend(t, testutil.WithTasks(2))
	obs := &recordingObserver{}
	c := api.NewClient(api.Config{BaseURL: b.URL(), Timeout: 5 * time.Second, MaxRetries: 1, Backoff: time.Millisecond}, nil, obs)
	a := api.New(c)
	b.FailNext(http.MethodGet, "/projects", http.StatusServiceUnavailable)

	_, err := a.Projects.List(context.Background(), table.NewQuery(10))
	require.Error(t, err, "anonymous client is rejected by the authed route")

	require.Len(t, obs.events, 1)
	ev := obs.events[0]
	assert.Equal(t, http.MethodGet, ev.Method)
	assert.Equal(t, "/projects", ev.Path)
	assert.Equal(t, 2, ev.Attempts)
	assert.Equal(t, http.StatusUnauthorized, ev.Status)
	assert.NotEmpty(t, ev.RequestID)
	assert.ErrorIs(t, ev.Err, api.ErrUnauthorized)
}

func TestLogObserver_WritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	obs := api.NewLogObserver(slog.New(slog.NewJSONHandler(&buf, nil)))

	obs.OnCallComplete(context.Background(), api.CallEvent{
		Method: "GET", Path: "/tasks", Status: 200, Attempts: 1, Latency: 12 * time.Millisecond, RequestID: "req-1",
	})
	obs.OnCallComplete(context.Background(), api.CallEvent{
		Method: "POST", Path: "/billing-periods/3/close", Status: 409, Attempts: 1,
		Err: &api.APIError{Status: 409, Method: "POST", Path: "/billing-periods/3/close", Message: "already closed"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ok, failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.Equal(t, "INFO", ok["level"])
	assert.Equal(t, "req-1", ok["request_id"])
	assert.Equal(t, "WARN", failed["level"])
	assert.Equal(t, "CONFLICT", failed["error_code"])
}
