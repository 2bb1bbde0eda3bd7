package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	healthResp := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", healthResp.Status)
	assert.Equal(t, "healthy", healthResp.Components["database"].Status)
	assert.Equal(t, "healthy", healthResp.Components["blobs"].Status)
}

type brokenPinger struct{}

func (brokenPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestCheckComponent(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "degraded", checkComponent(ctx, nil, "database").Status)

	down := checkComponent(ctx, brokenPinger{}, "photo storage")
	assert.Equal(t, "unhealthy", down.Status)
	assert.Equal(t, "photo storage unreachable", down.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.submitToday(t, "usr-a", validFields())

	resp := ts.api.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "custodylog_entries_created_total")
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Do(http.MethodOptions, "/api/v1/entries",
		"Origin: http://localhost:3000",
		"Access-Control-Request-Method: POST",
	)
	assert.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
}
