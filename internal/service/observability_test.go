package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestLogSessionObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := service.NewLogSessionObserver(slog.New(slog.NewJSONHandler(&buf, nil)))

	obs.OnSessionEvent(context.Background(), service.SessionEvent{
		Op: service.OpLogin, Username: "ana", Duration: 12 * time.Millisecond,
	})
	obs.OnSessionEvent(context.Background(), service.SessionEvent{
		Op: service.OpLogout, Username: "ana", RemoteErr: errors.New("connection refused"),
	})
	obs.OnSessionEvent(context.Background(), service.SessionEvent{
		Op: service.OpRefresh, Username: "ana", Err: errors.New("refresh token expired"),
	})

	out := buf.String()
	assert.Contains(t, out, `"op":"login"`)
	assert.Contains(t, out, `"username":"ana"`)
	assert.Contains(t, out, `"remote_error":"connection refused"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "refresh token expired")
}

func TestNewLogSessionObserver_NilLogger(t *testing.T) {
	assert.IsType(t, service.NoopSessionObserver{}, service.NewLogSessionObserver(nil))
}
