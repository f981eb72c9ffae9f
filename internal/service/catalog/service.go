// Package catalog implements admin management of AI tools and templates,
// public ratings and the admin dashboard.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/cache"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

type toolRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AITool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, f domain.ToolFilter) ([]domain.AITool, int, error)
	ListAll(ctx context.Context, f domain.ToolFilter) ([]domain.AITool, error)
	CountByCategory(ctx context.Context) (map[domain.ToolCategory]int, int, error)
	Create(ctx context.Context, t domain.AITool) (*domain.AITool, error)
	Update(ctx context.Context, t domain.AITool) (*domain.AITool, error)
	BulkUpsert(ctx context.Context, tools []domain.AITool, overwrite bool) (int, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, patch domain.ToolPatch) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, error)
}

type templateRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, f domain.TemplateFilter) ([]domain.Template, int, error)
	ListAll(ctx context.Context, f domain.TemplateFilter) ([]domain.Template, error)
	CountByOutputType(ctx context.Context) (map[domain.OutputType]int, error)
	Create(ctx context.Context, t domain.Template) (*domain.Template, error)
	Update(ctx context.Context, t domain.Template) (*domain.Template, error)
	BulkUpsert(ctx context.Context, tpls []domain.Template, overwrite bool) (int, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, error)
}

type ratingRepo interface {
	Upsert(ctx context.Context, rt domain.Rating) error
	Count(ctx context.Context) (int, error)
	DeleteByItems(ctx context.Context, itemType domain.ItemType, ids []uuid.UUID) error
}

type backupTotals interface {
	Totals(ctx context.Context) (domain.BackupTotals, error)
}

type auditReader interface {
	Stats(ctx context.Context, now time.Time) (domain.AuditStats, error)
}

type auditLogger interface {
	Log(ctx context.Context, e domain.AuditLogEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	// MaxBulkIDs bounds bulk update/delete requests.
	MaxBulkIDs = 500
	// MaxImportItems bounds a single import document.
	MaxImportItems = 5000
)

// Config holds read cache settings.
type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Service manages the catalog. List and dashboard reads are cached; every
// mutation purges the caches.
type Service struct {
	tools     toolRepo
	templates templateRepo
	ratings   ratingRepo
	backups   backupTotals
	auditLog  auditReader
	audit     auditLogger
	tx        txManager
	log       *slog.Logger
	now       func() time.Time

	toolPages     *cache.Cache[ToolPage]
	templatePages *cache.Cache[TemplatePage]
	dashboard     *cache.Cache[domain.DashboardStats]
}

// NewService creates a catalog service.
func NewService(
	log *slog.Logger,
	tools toolRepo,
	templates templateRepo,
	ratings ratingRepo,
	backups backupTotals,
	auditLog auditReader,
	audit auditLogger,
	tx txManager,
	cfg Config,
) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &Service{
		tools:         tools,
		templates:     templates,
		ratings:       ratings,
		backups:       backups,
		auditLog:      auditLog,
		audit:         audit,
		tx:            tx,
		log:           log.With("service", "catalog"),
		now:           time.Now,
		toolPages:     cache.New[ToolPage](cfg.CacheSize, cfg.CacheTTL),
		templatePages: cache.New[TemplatePage](cfg.CacheSize, cfg.CacheTTL),
		dashboard:     cache.New[domain.DashboardStats](1, cfg.CacheTTL),
	}
}

// Purge drops every cached read. Called after each mutation and by
// collaborators that write the catalog directly (backup restore).
func (s *Service) Purge() {
	s.toolPages.Purge()
	s.templatePages.Purge()
	s.dashboard.Purge()
}

// logAudit writes an audit entry. Called inside the mutation's transaction
// so the entry commits or rolls back with it.
func (s *Service) logAudit(ctx context.Context, action domain.AuditAction, resource domain.AuditResource, target *uuid.UUID, details map[string]any) error {
	e := domain.AuditLogEntry{
		ID:        uuid.New(),
		Action:    action,
		Resource:  resource,
		Details:   details,
		CreatedAt: s.now().UTC(),
	}
	if actor, ok := ctxutil.UserIDFromCtx(ctx); ok {
		e.ActorID = &actor
	}
	if target != nil {
		t := target.String()
		e.TargetID = &t
	}
	if ip := ctxutil.ClientIPFromCtx(ctx); ip != "" {
		e.IPAddress = &ip
	}
	if err := s.audit.Log(ctx, e); err != nil {
		return fmt.Errorf("audit log: %w", err)
	}
	return nil
}

// cacheKey derives a stable key from a filter value.
func cacheKey(prefix string, v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return prefix + ":" + string(b)
}

func validateIDs(ids []uuid.UUID) error {
	switch {
	case len(ids) == 0:
		return domain.NewValidationError("ids", "at least one id required")
	case len(ids) > MaxBulkIDs:
		return domain.NewValidationError("ids", fmt.Sprintf("at most %d ids", MaxBulkIDs))
	}
	for i, id := range ids {
		if id == uuid.Nil {
			return domain.NewValidationError(fmt.Sprintf("ids[%d]", i), "must not be empty")
		}
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
