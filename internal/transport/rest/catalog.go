package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/catalog"
)

type catalogService interface {
	ListTools(ctx context.Context, f domain.ToolFilter) (catalog.ToolPage, error)
	GetTool(ctx context.Context, id uuid.UUID) (*domain.AITool, error)
	CreateTool(ctx context.Context, in catalog.ToolInput) (*domain.AITool, error)
	UpdateTool(ctx context.Context, id uuid.UUID, in catalog.ToolInput) (*domain.AITool, error)
	DeleteTool(ctx context.Context, id uuid.UUID) error
	BulkUpdateTools(ctx context.Context, ids []uuid.UUID, patch domain.ToolPatch) (int, error)
	BulkDeleteTools(ctx context.Context, ids []uuid.UUID) (int, error)
	ExportTools(ctx context.Context, f domain.ToolFilter) (domain.ToolExportDocument, error)
	ImportTools(ctx context.Context, doc domain.ToolExportDocument, overwrite bool) (catalog.ImportSummary, error)

	ListTemplates(ctx context.Context, f domain.TemplateFilter) (catalog.TemplatePage, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*domain.Template, error)
	CreateTemplate(ctx context.Context, in catalog.TemplateInput) (*domain.Template, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, in catalog.TemplateInput) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	BulkDeleteTemplates(ctx context.Context, ids []uuid.UUID) (int, error)
	ExportTemplates(ctx context.Context, f domain.TemplateFilter) (domain.TemplateExportDocument, error)
	ImportTemplates(ctx context.Context, doc domain.TemplateExportDocument, overwrite bool) (catalog.ImportSummary, error)

	Dashboard(ctx context.Context) (domain.DashboardStats, error)
}

// CatalogHandler serves the admin catalog endpoints.
type CatalogHandler struct {
	svc  catalogService
	bind *binder
	log  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler. maxBody bounds import documents.
func NewCatalogHandler(svc catalogService, maxBody int64, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, bind: newBinder(maxBody), log: logger.With("handler", "catalog")}
}

// ---------------------------------------------------------------------------
// request / response bodies
// ---------------------------------------------------------------------------

type toolRequest struct {
	Name              string   `json:"name"              validate:"notblank,max=200"`
	Description       string   `json:"description"`
	URL               string   `json:"url"               validate:"omitempty,url"`
	Category          string   `json:"category"          validate:"required"`
	Subjects          []string `json:"subjects"          validate:"min=1,dive,notblank"`
	GradeLevels       []string `json:"gradeLevels"       validate:"min=1,dive,notblank"`
	Features          []string `json:"features"`
	UseCases          []string `json:"useCases"`
	PricingModel      string   `json:"pricingModel"      validate:"required"`
	Difficulty        string   `json:"difficulty"        validate:"required"`
	VietnameseSupport bool     `json:"vietnameseSupport"`
	Popularity        int      `json:"popularity"        validate:"min=0"`
	Trending          bool     `json:"trending"`
}

func (req toolRequest) input() catalog.ToolInput {
	return catalog.ToolInput{
		Name:              req.Name,
		Description:       req.Description,
		URL:               req.URL,
		Category:          domain.ToolCategory(req.Category),
		Subjects:          req.Subjects,
		GradeLevels:       req.GradeLevels,
		Features:          req.Features,
		UseCases:          req.UseCases,
		PricingModel:      domain.PricingModel(req.PricingModel),
		Difficulty:        domain.Difficulty(req.Difficulty),
		VietnameseSupport: req.VietnameseSupport,
		Popularity:        req.Popularity,
		Trending:          req.Trending,
	}
}

type variableRequest struct {
	Name        string `json:"name"        validate:"notblank"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder"`
}

type templateRequest struct {
	Name               string            `json:"name"               validate:"notblank,max=200"`
	Description        string            `json:"description"`
	Subject            string            `json:"subject"            validate:"notblank"`
	GradeLevels        []string          `json:"gradeLevels"        validate:"min=1,dive,notblank"`
	OutputType         string            `json:"outputType"         validate:"required"`
	Content            string            `json:"content"            validate:"notblank"`
	Variables          []variableRequest `json:"variables"          validate:"dive"`
	Tags               []string          `json:"tags"               validate:"dive,notblank"`
	Difficulty         string            `json:"difficulty"         validate:"required"`
	RecommendedToolIDs []uuid.UUID       `json:"recommendedToolIds"`
}

func (req templateRequest) input() catalog.TemplateInput {
	vars := make([]domain.TemplateVariable, 0, len(req.Variables))
	for _, v := range req.Variables {
		vars = append(vars, domain.TemplateVariable{
			Name:        v.Name,
			Label:       v.Label,
			Type:        v.Type,
			Required:    v.Required,
			Placeholder: v.Placeholder,
		})
	}
	return catalog.TemplateInput{
		Name:               req.Name,
		Description:        req.Description,
		Subject:            req.Subject,
		GradeLevels:        req.GradeLevels,
		OutputType:         domain.OutputType(req.OutputType),
		Content:            req.Content,
		Variables:          vars,
		Tags:               req.Tags,
		Difficulty:         domain.Difficulty(req.Difficulty),
		RecommendedToolIDs: req.RecommendedToolIDs,
	}
}

type idsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"min=1,max=500"`
}

type bulkUpdateRequest struct {
	IDs   []uuid.UUID `json:"ids" validate:"min=1,max=500"`
	Patch struct {
		Category     *string `json:"category"`
		Difficulty   *string `json:"difficulty"`
		PricingModel *string `json:"pricingModel"`
		Trending     *bool   `json:"trending"`
	} `json:"patch"`
}

func (req bulkUpdateRequest) patch() domain.ToolPatch {
	return domain.ToolPatch{
		Category:     enumPtr[domain.ToolCategory](req.Patch.Category),
		Difficulty:   enumPtr[domain.Difficulty](req.Patch.Difficulty),
		PricingModel: enumPtr[domain.PricingModel](req.Patch.PricingModel),
		Trending:     req.Patch.Trending,
	}
}

type toolImportRequest struct {
	domain.ToolExportDocument
	Overwrite bool `json:"overwrite"`
}

type templateImportRequest struct {
	domain.TemplateExportDocument
	Overwrite bool `json:"overwrite"`
}

type pageResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type bulkResponse struct {
	Affected int `json:"affected"`
}

type importSummaryResponse struct {
	Received int `json:"received"`
	Written  int `json:"written"`
	Skipped  int `json:"skipped"`
}

func toImportSummary(s catalog.ImportSummary) importSummaryResponse {
	return importSummaryResponse{Received: s.Received, Written: s.Written, Skipped: s.Skipped}
}

type dashboardResponse struct {
	AIToolCount     int            `json:"aiToolCount"`
	TemplateCount   int            `json:"templateCount"`
	TrendingTools   int            `json:"trendingTools"`
	BackupCount     int            `json:"backupCount"`
	BackupSizeBytes int64          `json:"backupSizeBytes"`
	RatingCount     int            `json:"ratingCount"`
	AuditEntries24h int            `json:"auditEntries24h"`
	LatestBackupAt  *time.Time     `json:"latestBackupAt,omitempty"`
	ToolsByCategory map[string]int `json:"toolsByCategory"`
	TemplatesByType map[string]int `json:"templatesByOutputType"`
}

func toDashboardResponse(d domain.DashboardStats) dashboardResponse {
	resp := dashboardResponse{
		AIToolCount:     d.AIToolCount,
		TemplateCount:   d.TemplateCount,
		TrendingTools:   d.TrendingTools,
		BackupCount:     d.BackupCount,
		BackupSizeBytes: d.BackupSizeBytes,
		RatingCount:     d.RatingCount,
		AuditEntries24h: d.AuditEntries24h,
		LatestBackupAt:  d.LatestBackupAt,
		ToolsByCategory: make(map[string]int, len(d.ToolsByCategory)),
		TemplatesByType: make(map[string]int, len(d.TemplatesByType)),
	}
	for k, v := range d.ToolsByCategory {
		resp.ToolsByCategory[string(k)] = v
	}
	for k, v := range d.TemplatesByType {
		resp.TemplatesByType[string(k)] = v
	}
	return resp
}

// ---------------------------------------------------------------------------
// filters
// ---------------------------------------------------------------------------

func toolFilter(q *query, paged bool) domain.ToolFilter {
	f := domain.ToolFilter{
		Search:         q.optStr("search"),
		Categories:     enumList[domain.ToolCategory](q.list("category")),
		Subjects:       q.list("subject"),
		GradeLevels:    q.list("grade"),
		Difficulty:     enumPtr[domain.Difficulty](q.optStr("difficulty")),
		PricingModel:   enumPtr[domain.PricingModel](q.optStr("pricingModel")),
		Trending:       q.optBool("trending"),
		VietnameseOnly: q.bool("vietnamese"),
	}
	if paged {
		f.Limit, f.Offset = q.page()
	}
	return f
}

func templateFilter(q *query, paged bool) domain.TemplateFilter {
	f := domain.TemplateFilter{
		Search:      q.optStr("search"),
		Subjects:    q.list("subject"),
		GradeLevels: q.list("grade"),
		OutputTypes: enumList[domain.OutputType](q.list("outputType")),
		Difficulty:  enumPtr[domain.Difficulty](q.optStr("difficulty")),
		Tags:        q.list("tag"),
	}
	if paged {
		f.Limit, f.Offset = q.page()
	}
	return f
}

// ---------------------------------------------------------------------------
// AI tools
// ---------------------------------------------------------------------------

// ListTools GET /api/admin/ai-tools
func (h *CatalogHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := toolFilter(q, true)
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	page, err := h.svc.ListTools(r.Context(), f)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse[domain.AITool]{Items: nonNil(page.Items), Total: page.Total, Limit: f.Limit, Offset: f.Offset})
}

// GetTool GET /api/admin/ai-tools/{id}
func (h *CatalogHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	tool, err := h.svc.GetTool(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// CreateTool POST /api/admin/ai-tools
func (h *CatalogHandler) CreateTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	tool, err := h.svc.CreateTool(r.Context(), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

// UpdateTool PUT /api/admin/ai-tools/{id}
func (h *CatalogHandler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	var req toolRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	tool, err := h.svc.UpdateTool(r.Context(), id, req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// DeleteTool DELETE /api/admin/ai-tools/{id}
func (h *CatalogHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteTool(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	noContent(w)
}

// BulkUpdateTools POST /api/admin/ai-tools/bulk-update
func (h *CatalogHandler) BulkUpdateTools(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	n, err := h.svc.BulkUpdateTools(r.Context(), req.IDs, req.patch())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResponse{Affected: n})
}

// BulkDeleteTools POST /api/admin/ai-tools/bulk-delete
func (h *CatalogHandler) BulkDeleteTools(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	n, err := h.svc.BulkDeleteTools(r.Context(), req.IDs)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResponse{Affected: n})
}

// ImportTools POST /api/admin/ai-tools/import
func (h *CatalogHandler) ImportTools(w http.ResponseWriter, r *http.Request) {
	var req toolImportRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	summary, err := h.svc.ImportTools(r.Context(), req.ToolExportDocument, req.Overwrite)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportSummary(summary))
}

// ExportTools GET /api/admin/ai-tools/export
func (h *CatalogHandler) ExportTools(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := toolFilter(q, false)
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	doc, err := h.svc.ExportTools(r.Context(), f)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeAttachment(w, exportFilename("ai-tools", doc.ExportDate), doc)
}

// ---------------------------------------------------------------------------
// templates
// ---------------------------------------------------------------------------

// ListTemplates GET /api/admin/templates
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := templateFilter(q, true)
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	page, err := h.svc.ListTemplates(r.Context(), f)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse[domain.Template]{Items: nonNil(page.Items), Total: page.Total, Limit: f.Limit, Offset: f.Offset})
}

// GetTemplate GET /api/admin/templates/{id}
func (h *CatalogHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	tpl, err := h.svc.GetTemplate(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// CreateTemplate POST /api/admin/templates
func (h *CatalogHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	tpl, err := h.svc.CreateTemplate(r.Context(), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// UpdateTemplate PUT /api/admin/templates/{id}
func (h *CatalogHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	var req templateRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	tpl, err := h.svc.UpdateTemplate(r.Context(), id, req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// DeleteTemplate DELETE /api/admin/templates/{id}
func (h *CatalogHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteTemplate(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	noContent(w)
}

// BulkDeleteTemplates POST /api/admin/templates/bulk-delete
func (h *CatalogHandler) BulkDeleteTemplates(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	n, err := h.svc.BulkDeleteTemplates(r.Context(), req.IDs)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResponse{Affected: n})
}

// ImportTemplates POST /api/admin/templates/import
func (h *CatalogHandler) ImportTemplates(w http.ResponseWriter, r *http.Request) {
	var req templateImportRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	summary, err := h.svc.ImportTemplates(r.Context(), req.TemplateExportDocument, req.Overwrite)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportSummary(summary))
}

// ExportTemplates GET /api/admin/templates/export
func (h *CatalogHandler) ExportTemplates(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := templateFilter(q, false)
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	doc, err := h.svc.ExportTemplates(r.Context(), f)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeAttachment(w, exportFilename("templates", doc.ExportDate), doc)
}

// Dashboard GET /api/admin/dashboard/stats
func (h *CatalogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(stats))
}

func exportFilename(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-export-%s.json", prefix, at.UTC().Format("2006-01-02"))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
