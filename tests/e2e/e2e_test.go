//go:build e2e

package e2e_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_LiveEndpoint verifies the /live liveness probe returns 200 OK.
func TestE2E_LiveEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodGet, "/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]any](t, resp)["status"])
}

// TestE2E_HealthEndpoint verifies database and blob store are probed.
func TestE2E_HealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	components, ok := body["components"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, components, "database")
	assert.Contains(t, components, "blob_store")
}

// TestE2E_ReadyEndpoint verifies the readiness probe against a live database.
func TestE2E_ReadyEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestE2E_Metrics verifies the route-labelled request counter is exported.
func TestE2E_Metrics(t *testing.T) {
	ts := setupTestServer(t)

	ts.do(t, http.MethodGet, "/live", "", nil)

	resp := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `route="GET /live"`)
}

// TestE2E_RequestIDEchoed verifies a caller-supplied request id is returned.
func TestE2E_RequestIDEchoed(t *testing.T) {
	ts := setupTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/live", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "trace-123")

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-123", resp.Header.Get("X-Request-Id"))
}
