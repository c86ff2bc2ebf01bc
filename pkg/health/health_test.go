package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, handler echo.HandlerFunc, path string) (*httptest.ResponseRecorder, statusResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveEndpoint_Healthy(t *testing.T) {
	h := New()
	h.AddLivenessCheck("always-ok", time.Second, func(context.Context) error { return nil })
	h.Start(context.Background(), time.Hour)
	defer h.Stop()

	rec, body := probe(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Checks)
}

func TestReadyEndpoint_NotReadyUntilSet(t *testing.T) {
	h := New()

	rec, body := probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Contains(t, body.Checks, "_readiness")

	h.SetReady(true)
	rec, body = probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestFailureThreshold(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	h.SetReady(true)

	c := h.checks[0]

	// Two consecutive failures are below the threshold of three.
	c.runOnce(context.Background())
	c.runOnce(context.Background())
	assert.True(t, h.IsReady())

	c.runOnce(context.Background())
	assert.False(t, h.IsReady())

	rec, body := probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestRecoveryAfterSuccess(t *testing.T) {
	h := New()
	var fail bool
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})
	h.SetReady(true)
	c := h.checks[0]

	fail = true
	for range 3 {
		c.runOnce(context.Background())
	}
	require.False(t, h.IsReady())

	// One success flips it back (successThreshold is 1).
	fail = false
	c.runOnce(context.Background())
	assert.True(t, h.IsReady())
}

func TestLivenessDoesNotAffectReadiness(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, func(context.Context) error {
		return errors.New("too many")
	})
	h.SetReady(true)
	c := h.checks[0]
	for range 3 {
		c.runOnce(context.Background())
	}

	assert.True(t, h.IsReady())

	rec, _ := probe(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheckTimeout(t *testing.T) {
	h := New()
	h.AddReadinessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	c := h.checks[0]
	for range 3 {
		c.runOnce(context.Background())
	}

	msg, failed := c.failure()
	assert.True(t, failed)
	assert.Contains(t, msg, "deadline")
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck(fakePinger{})(context.Background()))
	assert.Error(t, PingCheck(fakePinger{err: errors.New("refused")})(context.Background()))
}
