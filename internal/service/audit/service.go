// Package audit exposes the audit log to administrators.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

type auditRepo interface {
	List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error)
	GetByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]domain.AuditLogEntry, int, error)
	Stats(ctx context.Context, now time.Time) (domain.AuditStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	Log(ctx context.Context, e domain.AuditLogEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	// MinRetentionDays is the shortest cleanup horizon accepted.
	MinRetentionDays = 1
	// MaxRetentionDays is the longest cleanup horizon accepted.
	MaxRetentionDays = 3650
)

// Service reads and prunes the audit log.
type Service struct {
	repo auditRepo
	tx   txManager
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates an audit service.
func NewService(log *slog.Logger, repo auditRepo, tx txManager) *Service {
	return &Service{
		repo: repo,
		tx:   tx,
		log:  log.With("service", "audit"),
		now:  time.Now,
	}
}

// Page is one page of audit entries.
type Page struct {
	Items []domain.AuditLogEntry
	Total int
}

// List returns entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, f domain.AuditFilter) (Page, error) {
	if err := validateFilter(f); err != nil {
		return Page{}, err
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("list audit logs: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

// ByUser returns entries written by one actor.
func (s *Service) ByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (Page, error) {
	if userID == uuid.Nil {
		return Page{}, domain.NewValidationError("userId", "required")
	}
	if limit < 0 || offset < 0 {
		return Page{}, domain.NewValidationError("pagination", "limit and offset must be >= 0")
	}
	items, total, err := s.repo.GetByActor(ctx, userID, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list audit logs by user: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

// Stats summarises the audit log.
func (s *Service) Stats(ctx context.Context) (domain.AuditStats, error) {
	st, err := s.repo.Stats(ctx, s.now().UTC())
	if err != nil {
		return domain.AuditStats{}, fmt.Errorf("audit stats: %w", err)
	}
	return st, nil
}

// Cleanup deletes entries older than the given number of days and records
// the cleanup itself. Returns the number of deleted entries.
func (s *Service) Cleanup(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays < MinRetentionDays || olderThanDays > MaxRetentionDays {
		return 0, domain.NewValidationError("days",
			fmt.Sprintf("must be between %d and %d", MinRetentionDays, MaxRetentionDays))
	}

	now := s.now().UTC()
	cutoff := now.AddDate(0, 0, -olderThanDays)

	var deleted int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var delErr error
		deleted, delErr = s.repo.DeleteOlderThan(txCtx, cutoff)
		if delErr != nil {
			return fmt.Errorf("delete audit logs: %w", delErr)
		}

		e := domain.AuditLogEntry{
			ID:       uuid.New(),
			Action:   domain.AuditActionAuditCleanup,
			Resource: domain.AuditResourceAuditLog,
			Details: map[string]any{
				"olderThanDays": olderThanDays,
				"cutoff":        cutoff.Format(time.RFC3339),
				"deleted":       deleted,
			},
			CreatedAt: now,
		}
		if actor, ok := ctxutil.UserIDFromCtx(txCtx); ok {
			e.ActorID = &actor
		}
		if ip := ctxutil.ClientIPFromCtx(txCtx); ip != "" {
			e.IPAddress = &ip
		}
		if err := s.repo.Log(txCtx, e); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "audit log cleaned up",
		slog.Int("older_than_days", olderThanDays),
		slog.Int("deleted", deleted),
	)
	return deleted, nil
}

func validateFilter(f domain.AuditFilter) error {
	var errs []domain.FieldError
	if f.Action != nil && !f.Action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "invalid value"})
	}
	if f.Resource != nil && !f.Resource.IsValid() {
		errs = append(errs, domain.FieldError{Field: "resource", Message: "invalid value"})
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs = append(errs, domain.FieldError{Field: "to", Message: "must not be before from"})
	}
	if f.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be >= 0"})
	}
	if f.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
