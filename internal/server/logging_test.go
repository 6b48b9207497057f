package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observeLogs swaps the global logger for one recording entries at level.
func observeLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := DefaultLogger
	SetLogger(NewLoggerFromZap(zap.New(core)))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		l, err := NewLogger("debug", format)
		require.NoError(t, err, format)
		require.NotNil(t, l)
	}

	_, err := NewLogger("loud", "json")
	assert.Error(t, err)

	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestLoggerFieldsAndError(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	Info("hello", map[string]any{"count": 3})
	Error("broken", nil, errors.New("disk full"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Message)
	assert.EqualValues(t, 3, entries[0].ContextMap()["count"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "disk full", entries[1].ContextMap()["error"])
}

func TestRequestLogLine(t *testing.T) {
	logs := observeLogs(t, zapcore.InfoLevel)
	s, _ := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	r.Header.Set(HeaderRequestID, "rid-7")
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	s.Handler().ServeHTTP(httptest.NewRecorder(), r)

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	fields := requests[0].ContextMap()
	assert.Equal(t, "rid-7", fields["rid"])
	assert.Equal(t, "/api/goals", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Equal(t, "203.0.113.9", fields["ip"])

	assert.Equal(t, 1, logs.FilterMessage("sample goals inserted").Len())
}

func TestSeedFailureLogsAtErrorLevel(t *testing.T) {
	logs := observeLogs(t, zapcore.ErrorLevel)

	rr := httptest.NewRecorder()
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/seed", nil).WithContext(ctx))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1, logs.FilterMessage("seed failed").Len())
}
