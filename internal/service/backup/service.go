// Package backup creates, verifies, exports and restores catalog snapshots.
// Snapshot payloads are JSON blobs in the blob store; metadata rows index them.
package backup

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

type toolRepo interface {
	ListAll(ctx context.Context, f domain.ToolFilter) ([]domain.AITool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, t domain.AITool) (*domain.AITool, error)
	Update(ctx context.Context, t domain.AITool) (*domain.AITool, error)
	DeleteAll(ctx context.Context) (int, error)
}

type templateRepo interface {
	ListAll(ctx context.Context, f domain.TemplateFilter) ([]domain.Template, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, t domain.Template) (*domain.Template, error)
	Update(ctx context.Context, t domain.Template) (*domain.Template, error)
	DeleteAll(ctx context.Context) (int, error)
}

type backupRepo interface {
	Create(ctx context.Context, b domain.BackupInfo) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BackupInfo, error)
	List(ctx context.Context) ([]domain.BackupInfo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type blobStore interface {
	Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error)
	Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
}

type auditLogger interface {
	Log(ctx context.Context, e domain.AuditLogEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInSavepoint(ctx context.Context, fn func(ctx context.Context) error) error
}

type cachePurger interface {
	Purge()
}

// Config holds service tunables.
type Config struct {
	BlobPrefix     string
	MaxImportItems int
}

// Service provides snapshot operations.
type Service struct {
	tools     toolRepo
	templates templateRepo
	backups   backupRepo
	blobs     blobStore
	audit     auditLogger
	tx        txManager
	caches    []cachePurger
	metrics   *Metrics
	cfg       Config
	log       *slog.Logger
	now       func() time.Time
}

// NewService creates a backup service. caches are purged after every
// import that writes to the catalog.
func NewService(
	log *slog.Logger,
	tools toolRepo,
	templates templateRepo,
	backups backupRepo,
	blobs blobStore,
	audit auditLogger,
	tx txManager,
	metrics *Metrics,
	cfg Config,
	caches ...cachePurger,
) *Service {
	if cfg.BlobPrefix == "" {
		cfg.BlobPrefix = "backups/"
	}
	return &Service{
		tools:     tools,
		templates: templates,
		backups:   backups,
		blobs:     blobs,
		audit:     audit,
		tx:        tx,
		caches:    caches,
		metrics:   metrics,
		cfg:       cfg,
		log:       log.With("service", "backup"),
		now:       time.Now,
	}
}

func (s *Service) blobKey(id uuid.UUID) string {
	return s.cfg.BlobPrefix + id.String() + ".json"
}

func (s *Service) purgeCaches() {
	for _, c := range s.caches {
		c.Purge()
	}
}

// writeAudit records an admin action. Audit failures are logged, not returned:
// the action itself has already happened.
func (s *Service) writeAudit(ctx context.Context, action domain.AuditAction, target *uuid.UUID, details map[string]any) {
	e := domain.AuditLogEntry{
		ID:        uuid.New(),
		Action:    action,
		Resource:  domain.AuditResourceBackup,
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
		s.log.WarnContext(ctx, "audit log failed",
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
	}
}

func actorFromCtx(ctx context.Context) *uuid.UUID {
	if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
		return &id
	}
	return nil
}
