package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/backup"
)

type backupService interface {
	CreateBackup(ctx context.Context, input backup.CreateBackupInput) (*domain.Snapshot, error)
	GetBackupData(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error)
	ListBackups(ctx context.Context) ([]domain.BackupInfo, error)
	DeleteBackup(ctx context.Context, id uuid.UUID) error
	VerifyBackup(ctx context.Context, id uuid.UUID) (*backup.VerificationResult, error)
	ExportData(ctx context.Context, opts backup.ExportOptions) (*domain.Snapshot, error)
	ImportData(ctx context.Context, snap *domain.Snapshot, opts backup.ImportOptions) (*backup.ImportResult, error)
	RestoreBackup(ctx context.Context, id uuid.UUID, opts backup.ImportOptions) (*backup.ImportResult, error)
}

// BackupHandler serves the admin backup endpoints.
type BackupHandler struct {
	svc  backupService
	bind *binder
	log  *slog.Logger
}

// NewBackupHandler creates a BackupHandler. maxBody bounds uploaded snapshots.
func NewBackupHandler(svc backupService, maxBody int64, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{svc: svc, bind: newBinder(maxBody), log: logger.With("handler", "backup")}
}

// ---------------------------------------------------------------------------
// request / response bodies
// ---------------------------------------------------------------------------

type createBackupRequest struct {
	Label            string `json:"label"       validate:"max=200"`
	Description      string `json:"description" validate:"max=2000"`
	IncludeAITools   *bool  `json:"includeAITools"`
	IncludeTemplates *bool  `json:"includeTemplates"`
}

type exportRequest struct {
	IncludeAITools   *bool `json:"includeAITools"`
	IncludeTemplates *bool `json:"includeTemplates"`
	Filters          struct {
		Categories  []string `json:"categories"`
		Subjects    []string `json:"subjects"`
		GradeLevels []string `json:"gradeLevels"`
		OutputTypes []string `json:"outputTypes"`
	} `json:"filters"`
	Save        bool   `json:"save"`
	Label       string `json:"label"       validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type importOptionsRequest struct {
	OverwriteExisting        bool     `json:"overwriteExisting"`
	DryRun                   bool     `json:"dryRun"`
	CreateBackupBeforeImport bool     `json:"createBackupBeforeImport"`
	ClearExisting            bool     `json:"clearExisting"`
	Collections              []string `json:"collections"`
}

func (o importOptionsRequest) options() backup.ImportOptions {
	cols := make([]domain.Collection, 0, len(o.Collections))
	for _, c := range o.Collections {
		cols = append(cols, domain.Collection(c))
	}
	return backup.ImportOptions{
		OverwriteExisting:        o.OverwriteExisting,
		DryRun:                   o.DryRun,
		CreateBackupBeforeImport: o.CreateBackupBeforeImport,
		ClearExisting:            o.ClearExisting,
		Collections:              cols,
	}
}

type importRequest struct {
	Snapshot *domain.Snapshot    `json:"snapshot" validate:"required"`
	Options  importOptionsRequest `json:"options"`
}

type backupInfoResponse struct {
	ID          uuid.UUID           `json:"id"`
	Label       string              `json:"label"`
	Description string              `json:"description,omitempty"`
	Kind        domain.SnapshotKind `json:"kind"`
	Collections []domain.Collection `json:"collections"`
	TotalItems  int                 `json:"totalItems"`
	SizeBytes   int64               `json:"sizeBytes"`
	Checksum    string              `json:"checksum"`
	CreatedBy   *uuid.UUID          `json:"createdBy,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func toBackupInfoResponse(b domain.BackupInfo) backupInfoResponse {
	return backupInfoResponse{
		ID:          b.ID,
		Label:       b.Label,
		Description: b.Description,
		Kind:        b.Kind,
		Collections: nonNil(b.Collections),
		TotalItems:  b.TotalItems,
		SizeBytes:   b.SizeBytes,
		Checksum:    b.Checksum,
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
	}
}

// snapshotSummaryResponse describes a snapshot without its data.
type snapshotSummaryResponse struct {
	ID          uuid.UUID           `json:"id"`
	Version     string              `json:"version"`
	Label       string              `json:"label"`
	Kind        domain.SnapshotKind `json:"kind"`
	Collections []domain.Collection `json:"collections"`
	TotalItems  int                 `json:"totalItems"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func toSnapshotSummary(s *domain.Snapshot) snapshotSummaryResponse {
	return snapshotSummaryResponse{
		ID:          s.ID,
		Version:     s.Version,
		Label:       s.Label,
		Kind:        s.Kind,
		Collections: nonNil(s.Collections),
		TotalItems:  s.TotalItems,
		CreatedAt:   s.CreatedAt,
	}
}

type importItemErrorResponse struct {
	Collection domain.Collection `json:"collection"`
	ItemID     string            `json:"itemId"`
	Error      string            `json:"error"`
}

type importResultResponse struct {
	Imported       int                       `json:"imported"`
	Updated        int                       `json:"updated"`
	Skipped        int                       `json:"skipped"`
	Errors         []importItemErrorResponse `json:"errors"`
	DryRun         bool                      `json:"dryRun"`
	SafetyBackupID *uuid.UUID                `json:"safetyBackupId,omitempty"`
}

func toImportResultResponse(res *backup.ImportResult) importResultResponse {
	errs := make([]importItemErrorResponse, 0, len(res.Errors))
	for _, e := range res.Errors {
		errs = append(errs, importItemErrorResponse{Collection: e.Collection, ItemID: e.ItemID, Error: e.Error})
	}
	return importResultResponse{
		Imported:       res.Imported,
		Updated:        res.Updated,
		Skipped:        res.Skipped,
		Errors:         errs,
		DryRun:         res.DryRun,
		SafetyBackupID: res.SafetyBackupID,
	}
}

type verificationResponse struct {
	Valid         bool     `json:"valid"`
	Problems      []string `json:"problems"`
	ItemCount     int      `json:"itemCount"`
	ChecksumMatch bool     `json:"checksumMatch"`
}

// boolOr returns the pointed value or def when absent.
func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ---------------------------------------------------------------------------
// handlers
// ---------------------------------------------------------------------------

// List GET /api/admin/backup
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.ListBackups(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	items := make([]backupInfoResponse, 0, len(infos))
	for _, b := range infos {
		items = append(items, toBackupInfoResponse(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// Create POST /api/admin/backup
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBackupRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	snap, err := h.svc.CreateBackup(r.Context(), backup.CreateBackupInput{
		Label:            req.Label,
		Description:      req.Description,
		Kind:             domain.SnapshotKindManual,
		IncludeAITools:   boolOr(req.IncludeAITools, true),
		IncludeTemplates: boolOr(req.IncludeTemplates, true),
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSnapshotSummary(snap))
}

// Get GET /api/admin/backup/{id}
func (h *BackupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	snap, err := h.svc.GetBackupData(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Delete DELETE /api/admin/backup/{id}
func (h *BackupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteBackup(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	noContent(w)
}

// Verify POST /api/admin/backup/{id}/verify
func (h *BackupHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	res, err := h.svc.VerifyBackup(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, verificationResponse{
		Valid:         res.Valid,
		Problems:      nonNil(res.Problems),
		ItemCount:     res.ItemCount,
		ChecksumMatch: res.ChecksumMatch,
	})
}

// Export POST /api/admin/backup/export
// Responds with the snapshot as a downloadable file.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	opts := backup.ExportOptions{
		IncludeAITools:   boolOr(req.IncludeAITools, true),
		IncludeTemplates: boolOr(req.IncludeTemplates, true),
		Tools: domain.ToolFilter{
			Categories:  enumList[domain.ToolCategory](req.Filters.Categories),
			Subjects:    req.Filters.Subjects,
			GradeLevels: req.Filters.GradeLevels,
		},
		Templates: domain.TemplateFilter{
			Subjects:    req.Filters.Subjects,
			GradeLevels: req.Filters.GradeLevels,
			OutputTypes: enumList[domain.OutputType](req.Filters.OutputTypes),
		},
		Save:        req.Save,
		Label:       req.Label,
		Description: req.Description,
	}
	snap, err := h.svc.ExportData(r.Context(), opts)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeAttachment(w, exportFilename("backup", snap.CreatedAt), snap)
}

// Import POST /api/admin/backup/import
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	res, err := h.svc.ImportData(r.Context(), req.Snapshot, req.Options.options())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResultResponse(res))
}

// Restore POST /api/admin/backup/restore/{id}
// The body carries import options and may be empty.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	var req importOptionsRequest
	if err := h.bind.decodeOptional(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	res, err := h.svc.RestoreBackup(r.Context(), id, req.options())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResultResponse(res))
}

// Action POST /api/admin/backup/{first}/{second}
// ServeMux rejects /backup/{id}/verify and /backup/restore/{id} as conflicting
// patterns, so both are registered as one and dispatched here.
func (h *BackupHandler) Action(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "restore":
		r.SetPathValue("id", second)
		h.Restore(w, r)
	case second == "verify":
		r.SetPathValue("id", first)
		h.Verify(w, r)
	default:
		respondError(w, r, h.log, fmt.Errorf("backup action %s/%s: %w", first, second, domain.ErrNotFound))
	}
}
