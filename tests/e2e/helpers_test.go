//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob/memstore"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/eduprompt-backend/internal/app"
	"github.com/heartmarshall/eduprompt-backend/internal/config"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/transport/middleware"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	App    *app.Container

	AdminID    uuid.UUID
	AdminToken string
	UserID     uuid.UUID
	UserToken  string
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 8 << 20},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-at-least-32-chars-long!!",
			JWTIssuer:      "test-issuer",
			AccessTokenTTL: 15 * time.Minute,
		},
		CORS:      config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,PUT,DELETE", AllowedHeaders: "Authorization,Content-Type"},
		RateLimit: config.RateLimitConfig{PublicPerMinute: 10000, AdminPerMinute: 10000},
		Backup:    config.BackupConfig{BlobPrefix: "backups/", MaxImportItems: 1000, Location: time.UTC},
		Recommend: config.RecommendConfig{
			DifficultyWeight: 0.3,
			CategoryWeight:   0.3,
			PopularityWeight: 0.4,
			TrendingBonus:    0.1,
			DefaultLimit:     10,
			MaxLimit:         50,
		},
		Cache: config.CacheConfig{Size: 64, TTL: time.Minute},
	}
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper) and an in-memory blob store.
// Every call starts from empty tables.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	testhelper.Reset(t, pool)

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	c := app.Wire(cfg, logger, pool, memstore.New())

	limiter := middleware.NewRateLimiter(time.Hour)
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(app.NewRouter(c, limiter))
	t.Cleanup(srv.Close)

	ts := &testServer{
		URL:     srv.URL,
		Client:  srv.Client(),
		Pool:    pool,
		App:     c,
		AdminID: uuid.New(),
		UserID:  uuid.New(),
	}

	var err error
	ts.AdminToken, err = c.Tokens.Issue(ts.AdminID, domain.UserRoleAdmin, 0)
	require.NoError(t, err)
	ts.UserToken, err = c.Tokens.Issue(ts.UserID, domain.UserRoleUser, 0)
	require.NoError(t, err)

	return ts
}

// ---------------------------------------------------------------------------
// request helpers
// ---------------------------------------------------------------------------

// do sends a request with an optional JSON body and bearer token.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// admin sends the request as the admin user and asserts the status.
func (ts *testServer) admin(t *testing.T, method, path string, body any, wantStatus int) *http.Response {
	t.Helper()
	resp := ts.do(t, method, path, ts.AdminToken, body)
	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, wantStatus, raw)
	}
	return resp
}

// decode reads a JSON response body into T.
func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// toolBody is a valid create request for an AI tool.
func toolBody(name string) map[string]any {
	return map[string]any{
		"name":              name,
		"description":       "Công cụ AI cho giáo viên",
		"url":               "https://example.com/" + uuid.NewString()[:8],
		"category":          "TEXT_GENERATION",
		"subjects":          []string{"Toán"},
		"gradeLevels":       []string{"10"},
		"pricingModel":      "FREE",
		"difficulty":        "BEGINNER",
		"vietnameseSupport": true,
		"popularity":        50,
	}
}

// templateBody is a valid create request for a template.
func templateBody(name string) map[string]any {
	return map[string]any{
		"name":        name,
		"subject":     "Toán",
		"gradeLevels": []string{"10"},
		"outputType":  "LESSON_PLAN",
		"content":     "Soạn giáo án về {{topic}}",
		"variables":   []map[string]any{{"name": "topic", "label": "Chủ đề", "required": true}},
		"tags":        []string{"giáo án"},
		"difficulty":  "BEGINNER",
	}
}

type idResponse struct {
	ID uuid.UUID `json:"id"`
}

func (ts *testServer) createTool(t *testing.T, name string) uuid.UUID {
	t.Helper()
	return decode[idResponse](t, ts.admin(t, http.MethodPost, "/api/admin/ai-tools", toolBody(name), http.StatusCreated)).ID
}

func (ts *testServer) createTemplate(t *testing.T, name string) uuid.UUID {
	t.Helper()
	return decode[idResponse](t, ts.admin(t, http.MethodPost, "/api/admin/templates", templateBody(name), http.StatusCreated)).ID
}
