package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const probeTimeout = 3 * time.Second

// Probe reports the health of one dependency.
type Probe func(ctx context.Context) error

// Component names a dependency and its probe.
type Component struct {
	Name  string
	Probe Probe
}

type pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseComponent probes the connection pool.
func DatabaseComponent(db pinger) Component {
	return Component{Name: "database", Probe: db.Ping}
}

// BlobComponent probes the snapshot store with a lookup of a key that is not
// expected to exist. NotFound means the store answered.
func BlobComponent[I any](head func(ctx context.Context, key string) (I, error)) Component {
	return Component{Name: "blob_store", Probe: func(ctx context.Context) error {
		_, err := head(ctx, "healthcheck/probe")
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}}
}

// HealthHandler serves the liveness, readiness and health endpoints.
type HealthHandler struct {
	components []Component
	version    string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(version string, components ...Component) *HealthHandler {
	return &HealthHandler{components: components, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live always answers 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 200 when every component is up, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	_, ok := h.check(r.Context())
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "down", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports every component with its probe latency, plus the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components, ok := h.check(r.Context())
	status, code := "ok", http.StatusOK
	if !ok {
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) check(ctx context.Context) (map[string]CompStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out := make(map[string]CompStatus, len(h.components))
	ok := true
	for _, c := range h.components {
		start := time.Now()
		if err := c.Probe(ctx); err != nil {
			out[c.Name] = CompStatus{Status: "down"}
			ok = false
			continue
		}
		out[c.Name] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}
	return out, ok
}
