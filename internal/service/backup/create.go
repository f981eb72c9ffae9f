package backup

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// CreateBackup captures the included collections in full and persists the snapshot.
// Any failure aborts the whole operation and leaves no partial snapshot behind.
func (s *Service) CreateBackup(ctx context.Context, input CreateBackupInput) (*domain.Snapshot, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	kind := input.Kind
	if kind == "" {
		kind = domain.SnapshotKindManual
	}

	start := time.Now()
	snap, err := s.capture(ctx, input.IncludeAITools, input.IncludeTemplates, domain.ToolFilter{}, domain.TemplateFilter{})
	if err != nil {
		s.metrics.observeBackup(kind, start, 0, err)
		return nil, err
	}
	snap.Kind = kind
	snap.Label = labelOrDefault(input.Label, kind, snap.CreatedAt)
	snap.Description = strings.TrimSpace(input.Description)

	info, err := s.persist(ctx, snap)
	s.metrics.observeBackup(kind, start, info.SizeBytes, err)
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, domain.AuditActionBackupCreate, &snap.ID, map[string]any{
		"label":      snap.Label,
		"kind":       string(kind),
		"totalItems": snap.TotalItems,
		"sizeBytes":  info.SizeBytes,
	})
	s.log.InfoContext(ctx, "backup created",
		slog.String("backup_id", snap.ID.String()),
		slog.String("kind", string(kind)),
		slog.Int("total_items", snap.TotalItems),
		slog.Int64("size_bytes", info.SizeBytes),
	)
	return snap, nil
}

// ExportData builds a filtered snapshot. Excluded collections are absent from
// the data. With Save set the export is also persisted as an EXPORT backup.
func (s *Service) ExportData(ctx context.Context, opts ExportOptions) (*domain.Snapshot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.capture(ctx, opts.IncludeAITools, opts.IncludeTemplates, opts.toolFilter(), opts.templateFilter())
	if err != nil {
		s.metrics.operation("export", err)
		return nil, err
	}
	snap.Kind = domain.SnapshotKindExport
	snap.Label = labelOrDefault(opts.Label, domain.SnapshotKindExport, snap.CreatedAt)
	snap.Description = strings.TrimSpace(opts.Description)

	details := map[string]any{
		"totalItems":  snap.TotalItems,
		"collections": snap.Collections,
		"saved":       opts.Save,
	}
	if opts.Save {
		start := time.Now()
		info, err := s.persist(ctx, snap)
		s.metrics.observeBackup(domain.SnapshotKindExport, start, info.SizeBytes, err)
		if err != nil {
			s.metrics.operation("export", err)
			return nil, err
		}
		details["sizeBytes"] = info.SizeBytes
	}
	s.metrics.operation("export", nil)

	s.writeAudit(ctx, domain.AuditActionExport, &snap.ID, details)
	s.log.InfoContext(ctx, "catalog exported",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("total_items", snap.TotalItems),
		slog.Bool("saved", opts.Save),
	)
	return snap, nil
}

// capture reads the included collections. Included collections are always
// non-nil so an empty one serialises as [] rather than being dropped.
func (s *Service) capture(
	ctx context.Context,
	includeTools, includeTemplates bool,
	toolFilter domain.ToolFilter,
	templateFilter domain.TemplateFilter,
) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		ID:        uuid.New(),
		Version:   domain.SnapshotVersion,
		CreatedAt: s.now().UTC(),
		CreatedBy: actorFromCtx(ctx),
	}

	if includeTools {
		tools, err := s.tools.ListAll(ctx, toolFilter)
		if err != nil {
			return nil, fmt.Errorf("read ai tools: %w", err)
		}
		if tools == nil {
			tools = []domain.AITool{}
		}
		snap.Data.AITools = tools
		snap.Collections = append(snap.Collections, domain.CollectionAITools)
	}
	if includeTemplates {
		templates, err := s.templates.ListAll(ctx, templateFilter)
		if err != nil {
			return nil, fmt.Errorf("read templates: %w", err)
		}
		if templates == nil {
			templates = []domain.Template{}
		}
		snap.Data.Templates = templates
		snap.Collections = append(snap.Collections, domain.CollectionTemplates)
	}

	snap.TotalItems = snap.Data.Count()
	return snap, nil
}

// persist writes the blob first, then the metadata row. If the row cannot be
// written the blob is removed again.
func (s *Service) persist(ctx context.Context, snap *domain.Snapshot) (domain.BackupInfo, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return domain.BackupInfo{}, fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha256.Sum256(payload)

	info := domain.BackupInfo{
		ID:          snap.ID,
		Label:       snap.Label,
		Description: snap.Description,
		Kind:        snap.Kind,
		Collections: snap.Collections,
		TotalItems:  snap.TotalItems,
		SizeBytes:   int64(len(payload)),
		Checksum:    hex.EncodeToString(sum[:]),
		BlobKey:     s.blobKey(snap.ID),
		CreatedBy:   snap.CreatedBy,
		CreatedAt:   snap.CreatedAt,
	}

	_, err = s.blobs.Put(ctx, info.BlobKey, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"kind":     string(snap.Kind),
			"checksum": info.Checksum,
		},
	})
	if err != nil {
		return domain.BackupInfo{}, fmt.Errorf("write snapshot blob: %w: %v", domain.ErrStorage, err)
	}

	if err := s.backups.Create(ctx, info); err != nil {
		if _, delErr := s.blobs.Delete(ctx, info.BlobKey); delErr != nil {
			s.log.ErrorContext(ctx, "orphaned snapshot blob",
				slog.String("blob_key", info.BlobKey),
				slog.String("error", delErr.Error()),
			)
		}
		return domain.BackupInfo{}, fmt.Errorf("write backup metadata: %w: %v", domain.ErrStorage, err)
	}
	s.purgeCaches()
	return info, nil
}

func labelOrDefault(label string, kind domain.SnapshotKind, at time.Time) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	prefix := "Backup"
	switch kind {
	case domain.SnapshotKindScheduled:
		prefix = "Scheduled backup"
	case domain.SnapshotKindPreImport:
		prefix = "Pre-import backup"
	case domain.SnapshotKindExport:
		prefix = "Export"
	}
	return prefix + " " + at.Format("2006-01-02 15:04")
}
