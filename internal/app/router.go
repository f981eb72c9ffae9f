package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/eduprompt-backend/internal/transport/middleware"
	"github.com/heartmarshall/eduprompt-backend/internal/transport/rest"
)

// NewRouter builds the HTTP handler: global middleware around a ServeMux with
// the public, rating and admin routes. Admin routes require the admin role.
func NewRouter(c *Container, limiter *middleware.RateLimiter) http.Handler {
	cfg := c.Config
	maxBody := cfg.Server.MaxBodyBytes

	health := rest.NewHealthHandler(BuildVersion(),
		rest.DatabaseComponent(c.Pool),
		rest.BlobComponent(c.Blobs.Head),
	)
	recommendH := rest.NewRecommendHandler(c.Recommend, c.Log)
	ratingH := rest.NewRatingHandler(c.Catalog, c.Log)
	catalogH := rest.NewCatalogHandler(c.Catalog, maxBody, c.Log)
	backupH := rest.NewBackupHandler(c.Backup, maxBody, c.Log)
	scheduleH := rest.NewScheduleHandler(c.Scheduler, c.Log)
	auditH := rest.NewAuditHandler(c.Audit, c.Log)

	public := limiter.Limit("public", cfg.RateLimit.PublicPerMinute)
	admin := middleware.Chain(
		middleware.RequireAdmin(),
		limiter.Limit("admin", cfg.RateLimit.AdminPerMinute),
	)

	mux := http.NewServeMux()
	route := func(pattern string, mw middleware.Middleware, h http.HandlerFunc) {
		mux.Handle(pattern, mw(h))
	}

	// Probes and metrics.
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry}))

	// Public.
	route("GET /api/recommendations/tools", public, recommendH.Tools)
	route("GET /api/recommendations/templates", public, recommendH.Templates)
	route("POST /api/ai-tools/{id}/ratings", public, ratingH.RateTool)
	route("POST /api/templates/{id}/ratings", public, ratingH.RateTemplate)
	route("POST /api/templates/{id}/use", public, ratingH.UseTemplate)

	// Backups.
	route("GET /api/admin/backup", admin, backupH.List)
	route("POST /api/admin/backup", admin, backupH.Create)
	route("GET /api/admin/backup/{id}", admin, backupH.Get)
	route("DELETE /api/admin/backup/{id}", admin, backupH.Delete)
	route("POST /api/admin/backup/{first}/{second}", admin, backupH.Action)
	route("POST /api/admin/backup/export", admin, backupH.Export)
	route("POST /api/admin/backup/import", admin, backupH.Import)

	// Schedule.
	route("GET /api/admin/backup/schedule", admin, scheduleH.GetConfig)
	route("PUT /api/admin/backup/schedule", admin, scheduleH.UpdateConfig)
	route("POST /api/admin/backup/schedule/run-now", admin, scheduleH.RunNow)
	route("GET /api/admin/backup/stats", admin, scheduleH.Stats)

	// AI tools.
	route("GET /api/admin/ai-tools", admin, catalogH.ListTools)
	route("POST /api/admin/ai-tools", admin, catalogH.CreateTool)
	route("GET /api/admin/ai-tools/{id}", admin, catalogH.GetTool)
	route("PUT /api/admin/ai-tools/{id}", admin, catalogH.UpdateTool)
	route("DELETE /api/admin/ai-tools/{id}", admin, catalogH.DeleteTool)
	route("POST /api/admin/ai-tools/bulk-update", admin, catalogH.BulkUpdateTools)
	route("POST /api/admin/ai-tools/bulk-delete", admin, catalogH.BulkDeleteTools)
	route("POST /api/admin/ai-tools/import", admin, catalogH.ImportTools)
	route("GET /api/admin/ai-tools/export", admin, catalogH.ExportTools)

	// Templates.
	route("GET /api/admin/templates", admin, catalogH.ListTemplates)
	route("POST /api/admin/templates", admin, catalogH.CreateTemplate)
	route("GET /api/admin/templates/{id}", admin, catalogH.GetTemplate)
	route("PUT /api/admin/templates/{id}", admin, catalogH.UpdateTemplate)
	route("DELETE /api/admin/templates/{id}", admin, catalogH.DeleteTemplate)
	route("POST /api/admin/templates/bulk-delete", admin, catalogH.BulkDeleteTemplates)
	route("POST /api/admin/templates/import", admin, catalogH.ImportTemplates)
	route("GET /api/admin/templates/export", admin, catalogH.ExportTemplates)

	// Audit and dashboard.
	route("GET /api/admin/audit-logs", admin, auditH.List)
	route("GET /api/admin/audit-logs/stats", admin, auditH.Stats)
	route("POST /api/admin/audit-logs/cleanup", admin, auditH.Cleanup)
	route("GET /api/admin/audit-logs/users/{id}", admin, auditH.ByUser)
	route("GET /api/admin/dashboard/stats", admin, catalogH.Dashboard)

	httpMetrics := middleware.NewHTTPMetrics(c.Registry)

	return middleware.Chain(
		middleware.Recovery(c.Log),
		middleware.RequestID(),
		middleware.ClientIP(cfg.Server.TrustProxy),
		middleware.Logger(c.Log),
		middleware.CORS(cfg.CORS),
		middleware.Auth(c.Tokens),
		httpMetrics.Middleware(),
	)(mux)
}
