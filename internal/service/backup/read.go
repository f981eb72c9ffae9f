package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// GetBackupData loads a stored snapshot. Returns domain.ErrNotFound for unknown ids.
func (s *Service) GetBackupData(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error) {
	info, err := s.backups.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	payload, err := s.readBlob(ctx, info.BlobKey)
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w: %v", id, domain.ErrStorage, err)
	}
	return &snap, nil
}

// ListBackups returns backup metadata, newest first.
func (s *Service) ListBackups(ctx context.Context) ([]domain.BackupInfo, error) {
	list, err := s.backups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return list, nil
}

// DeleteBackup removes the metadata row and the blob.
func (s *Service) DeleteBackup(ctx context.Context, id uuid.UUID) error {
	err := s.deleteBackup(ctx, id)
	s.metrics.operation("delete", err)
	if err != nil {
		return err
	}
	s.writeAudit(ctx, domain.AuditActionBackupDelete, &id, nil)
	return nil
}

// deleteBackup removes a backup without auditing. Retention uses it directly.
func (s *Service) deleteBackup(ctx context.Context, id uuid.UUID) error {
	info, err := s.backups.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if err := s.backups.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	// The row is gone, so a leftover blob is unreachable; log and continue.
	if _, err := s.blobs.Delete(ctx, info.BlobKey); err != nil {
		s.log.WarnContext(ctx, "delete snapshot blob",
			slog.String("blob_key", info.BlobKey),
			slog.String("error", err.Error()),
		)
	}
	s.purgeCaches()
	s.log.InfoContext(ctx, "backup deleted", slog.String("backup_id", id.String()))
	return nil
}

// DeleteExpired removes the given backups as the system actor and returns how
// many were deleted. Used by scheduler retention.
func (s *Service) DeleteExpired(ctx context.Context, ids []uuid.UUID) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := s.deleteBackup(ctx, id); err != nil {
			s.metrics.operation("retention", err)
			return deleted, err
		}
		deleted++
	}
	if deleted > 0 {
		s.metrics.operation("retention", nil)
		s.writeAudit(ctx, domain.AuditActionBackupDelete, nil, map[string]any{
			"reason": "retention",
			"count":  deleted,
		})
	}
	return deleted, nil
}

func (s *Service) readBlob(ctx context.Context, key string) ([]byte, error) {
	_, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot blob %s: %w: %v", key, domain.ErrStorage, err)
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read snapshot blob %s: %w: %v", key, domain.ErrStorage, err)
	}
	return payload, nil
}
