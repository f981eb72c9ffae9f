package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// ImportData applies a snapshot to the live catalog.
//
// Items are applied best-effort: the loop runs in one transaction and each
// item in its own savepoint, so a failing item is rolled back alone and
// reported in the result while the others commit.
func (s *Service) ImportData(ctx context.Context, snap *domain.Snapshot, opts ImportOptions) (*ImportResult, error) {
	result, err := s.importData(ctx, snap, opts)
	s.metrics.operation("import", err)
	if err != nil {
		return nil, err
	}
	if !result.DryRun {
		s.writeAudit(ctx, domain.AuditActionImport, &snap.ID, importDetails(result, opts))
	}
	return result, nil
}

// RestoreBackup imports a stored snapshot.
func (s *Service) RestoreBackup(ctx context.Context, id uuid.UUID, opts ImportOptions) (*ImportResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.GetBackupData(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.importData(ctx, snap, opts)
	s.metrics.operation("restore", err)
	if err != nil {
		return nil, err
	}
	if !result.DryRun {
		s.writeAudit(ctx, domain.AuditActionBackupRestore, &id, importDetails(result, opts))
	}
	return result, nil
}

func (s *Service) importData(ctx context.Context, snap *domain.Snapshot, opts ImportOptions) (*ImportResult, error) {
	if snap == nil {
		return nil, domain.NewValidationError("snapshot", "required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	plan, err := s.planImport(snap, opts)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{DryRun: opts.DryRun, Errors: []ImportItemError{}}

	if opts.CreateBackupBeforeImport && !opts.DryRun {
		safety, err := s.CreateBackup(ctx, CreateBackupInput{
			Kind:             domain.SnapshotKindPreImport,
			Description:      fmt.Sprintf("Taken before importing snapshot %s", snap.ID),
			IncludeAITools:   plan.tools,
			IncludeTemplates: plan.templates,
		})
		if err != nil {
			return nil, fmt.Errorf("safety backup: %w: %v", domain.ErrBackupFailed, err)
		}
		result.SafetyBackupID = &safety.ID
	}

	// On a dry run the rows are still there; count against an emptied collection.
	wiped := opts.ClearExisting && opts.DryRun

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if opts.ClearExisting && !opts.DryRun {
			if err := s.clear(txCtx, plan); err != nil {
				return err
			}
		}
		if plan.tools {
			for _, t := range snap.Data.AITools {
				if err := txCtx.Err(); err != nil {
					return err
				}
				s.applyItem(txCtx, result, opts, domain.CollectionAITools, t.ID, t.Validate, func(c context.Context) (bool, error) {
					if wiped {
						return false, nil
					}
					return s.tools.Exists(c, t.ID)
				}, func(c context.Context, exists bool) error {
					t := withTimestamps(t, s.now())
					if exists {
						_, err := s.tools.Update(c, t)
						return err
					}
					_, err := s.tools.Create(c, t)
					return err
				})
			}
		}
		if plan.templates {
			for _, t := range snap.Data.Templates {
				if err := txCtx.Err(); err != nil {
					return err
				}
				s.applyItem(txCtx, result, opts, domain.CollectionTemplates, t.ID, t.Validate, func(c context.Context) (bool, error) {
					if wiped {
						return false, nil
					}
					return s.templates.Exists(c, t.ID)
				}, func(c context.Context, exists bool) error {
					t := withTemplateTimestamps(t, s.now())
					if exists {
						_, err := s.templates.Update(c, t)
						return err
					}
					_, err := s.templates.Create(c, t)
					return err
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import snapshot %s: %w", snap.ID, err)
	}

	if !opts.DryRun {
		s.purgeCaches()
	}
	s.log.InfoContext(ctx, "snapshot imported",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Bool("dry_run", opts.DryRun),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", len(result.Errors)),
	)
	return result, nil
}

type importPlan struct {
	tools     bool
	templates bool
}

func (s *Service) planImport(snap *domain.Snapshot, opts ImportOptions) (importPlan, error) {
	var errs []domain.FieldError
	for _, c := range snap.Collections {
		if !snap.Data.Present(c) {
			errs = append(errs, domain.FieldError{Field: "data." + string(c), Message: "collection recorded but missing"})
		}
	}
	for _, c := range opts.Collections {
		if !snap.Data.Present(c) {
			errs = append(errs, domain.FieldError{Field: "collections", Message: fmt.Sprintf("%s not present in snapshot", c)})
		}
	}

	plan := importPlan{
		tools:     snap.Data.Present(domain.CollectionAITools) && opts.wants(domain.CollectionAITools),
		templates: snap.Data.Present(domain.CollectionTemplates) && opts.wants(domain.CollectionTemplates),
	}
	if !plan.tools && !plan.templates {
		errs = append(errs, domain.FieldError{Field: "collections", Message: "nothing to import"})
	}

	items := 0
	if plan.tools {
		items += len(snap.Data.AITools)
	}
	if plan.templates {
		items += len(snap.Data.Templates)
	}
	if s.cfg.MaxImportItems > 0 && items > s.cfg.MaxImportItems {
		errs = append(errs, domain.FieldError{Field: "data", Message: fmt.Sprintf("too many items (max %d)", s.cfg.MaxImportItems)})
	}

	if len(errs) > 0 {
		return importPlan{}, domain.NewValidationErrors(errs)
	}
	return plan, nil
}

func (s *Service) clear(ctx context.Context, plan importPlan) error {
	if plan.tools {
		n, err := s.tools.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("clear ai tools: %w", err)
		}
		s.log.InfoContext(ctx, "cleared ai tools before import", slog.Int("count", n))
	}
	if plan.templates {
		n, err := s.templates.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("clear templates: %w", err)
		}
		s.log.InfoContext(ctx, "cleared templates before import", slog.Int("count", n))
	}
	return nil
}

// applyItem validates, then inserts, overwrites or skips a single item inside
// its own savepoint. The outcome is recorded in result.
func (s *Service) applyItem(
	ctx context.Context,
	result *ImportResult,
	opts ImportOptions,
	collection domain.Collection,
	id uuid.UUID,
	validate func() error,
	exists func(context.Context) (bool, error),
	write func(context.Context, bool) error,
) {
	fail := func(err error) {
		result.Errors = append(result.Errors, ImportItemError{Collection: collection, ItemID: id.String(), Error: itemMessage(err)})
		s.metrics.imported(collection, "failed", 1)
	}

	if id == uuid.Nil {
		fail(domain.NewValidationError("id", "required"))
		return
	}
	if err := validate(); err != nil {
		fail(err)
		return
	}

	var (
		found   bool
		skipped bool
	)
	err := s.tx.RunInSavepoint(ctx, func(spCtx context.Context) error {
		var err error
		found, err = exists(spCtx)
		if err != nil {
			return err
		}
		if found && !opts.OverwriteExisting {
			skipped = true
			return nil
		}
		if opts.DryRun {
			return nil
		}
		return write(spCtx, found)
	})
	switch {
	case err != nil:
		fail(err)
	case skipped:
		result.Skipped++
		s.metrics.imported(collection, "skipped", 1)
	case found:
		result.Imported++
		result.Updated++
		s.metrics.imported(collection, "updated", 1)
	default:
		result.Imported++
		s.metrics.imported(collection, "created", 1)
	}
}

func itemMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) && len(ve.Errors) > 0 {
		msg := ""
		for i, fe := range ve.Errors {
			if i > 0 {
				msg += "; "
			}
			msg += fe.Field + ": " + fe.Message
		}
		return msg
	}
	return err.Error()
}

func withTimestamps(t domain.AITool, now time.Time) domain.AITool {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return t
}

func withTemplateTimestamps(t domain.Template, now time.Time) domain.Template {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return t
}

func importDetails(r *ImportResult, opts ImportOptions) map[string]any {
	d := map[string]any{
		"imported":          r.Imported,
		"updated":           r.Updated,
		"skipped":           r.Skipped,
		"failed":            len(r.Errors),
		"overwriteExisting": opts.OverwriteExisting,
		"clearExisting":     opts.ClearExisting,
	}
	if r.SafetyBackupID != nil {
		d["safetyBackupId"] = r.SafetyBackupID.String()
	}
	return d
}
