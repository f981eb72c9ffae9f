package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// ExportTools returns every tool matching the filter as a download document.
func (s *Service) ExportTools(ctx context.Context, f domain.ToolFilter) (domain.ToolExportDocument, error) {
	items, err := s.tools.ListAll(ctx, f)
	if err != nil {
		return domain.ToolExportDocument{}, fmt.Errorf("export tools: %w", err)
	}
	if items == nil {
		items = []domain.AITool{}
	}
	doc := domain.ToolExportDocument{
		ExportDate: s.now().UTC(),
		TotalItems: len(items),
		Data:       items,
	}

	if err := s.logAudit(ctx, domain.AuditActionExport, domain.AuditResourceAITool, nil, map[string]any{
		"count": len(items),
	}); err != nil {
		s.log.WarnContext(ctx, "export audit failed", slog.String("error", err.Error()))
	}
	return doc, nil
}

// ImportTools writes the tools of an export document in one transaction.
// Items without an id get a new one. Existing ids are replaced only when
// overwrite is set. Any invalid item rejects the whole document.
func (s *Service) ImportTools(ctx context.Context, doc domain.ToolExportDocument, overwrite bool) (ImportSummary, error) {
	tools, err := s.prepareTools(doc.Data)
	if err != nil {
		return ImportSummary{}, err
	}

	var written int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var upsertErr error
		written, upsertErr = s.tools.BulkUpsert(txCtx, tools, overwrite)
		if upsertErr != nil {
			return fmt.Errorf("import tools: %w", upsertErr)
		}
		return s.logAudit(txCtx, domain.AuditActionImport, domain.AuditResourceAITool, nil, map[string]any{
			"received":  len(tools),
			"written":   written,
			"overwrite": overwrite,
		})
	})
	if err != nil {
		return ImportSummary{}, err
	}
	s.Purge()

	sum := ImportSummary{Received: len(tools), Written: written, Skipped: len(tools) - written}
	s.log.InfoContext(ctx, "tools imported",
		slog.Int("received", sum.Received),
		slog.Int("written", sum.Written),
		slog.Bool("overwrite", overwrite),
	)
	return sum, nil
}

// ExportTemplates returns every template matching the filter as a download document.
func (s *Service) ExportTemplates(ctx context.Context, f domain.TemplateFilter) (domain.TemplateExportDocument, error) {
	items, err := s.templates.ListAll(ctx, f)
	if err != nil {
		return domain.TemplateExportDocument{}, fmt.Errorf("export templates: %w", err)
	}
	if items == nil {
		items = []domain.Template{}
	}
	doc := domain.TemplateExportDocument{
		ExportDate:     s.now().UTC(),
		TotalTemplates: len(items),
		Templates:      items,
	}

	if err := s.logAudit(ctx, domain.AuditActionExport, domain.AuditResourceTemplate, nil, map[string]any{
		"count": len(items),
	}); err != nil {
		s.log.WarnContext(ctx, "export audit failed", slog.String("error", err.Error()))
	}
	return doc, nil
}

// ImportTemplates writes the templates of an export document in one transaction.
func (s *Service) ImportTemplates(ctx context.Context, doc domain.TemplateExportDocument, overwrite bool) (ImportSummary, error) {
	tpls, err := s.prepareTemplates(doc.Templates)
	if err != nil {
		return ImportSummary{}, err
	}

	var written int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var upsertErr error
		written, upsertErr = s.templates.BulkUpsert(txCtx, tpls, overwrite)
		if upsertErr != nil {
			return fmt.Errorf("import templates: %w", upsertErr)
		}
		return s.logAudit(txCtx, domain.AuditActionImport, domain.AuditResourceTemplate, nil, map[string]any{
			"received":  len(tpls),
			"written":   written,
			"overwrite": overwrite,
		})
	})
	if err != nil {
		return ImportSummary{}, err
	}
	s.Purge()

	sum := ImportSummary{Received: len(tpls), Written: written, Skipped: len(tpls) - written}
	s.log.InfoContext(ctx, "templates imported",
		slog.Int("received", sum.Received),
		slog.Int("written", sum.Written),
		slog.Bool("overwrite", overwrite),
	)
	return sum, nil
}

func (s *Service) prepareTools(items []domain.AITool) ([]domain.AITool, error) {
	if err := checkDocumentSize("data", len(items)); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	seen := make(map[uuid.UUID]bool, len(items))
	out := make([]domain.AITool, len(items))
	var errs []domain.FieldError
	for i, t := range items {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		stamp(&t.CreatedAt, &t.UpdatedAt, now)
		prefix := fmt.Sprintf("data[%d]", i)
		if seen[t.ID] {
			errs = append(errs, domain.FieldError{Field: prefix + ".id", Message: "duplicate id"})
		}
		seen[t.ID] = true
		errs = append(errs, prefixed(prefix, t.Validate())...)
		out[i] = t
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	return out, nil
}

func (s *Service) prepareTemplates(items []domain.Template) ([]domain.Template, error) {
	if err := checkDocumentSize("templates", len(items)); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	seen := make(map[uuid.UUID]bool, len(items))
	out := make([]domain.Template, len(items))
	var errs []domain.FieldError
	for i, t := range items {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		stamp(&t.CreatedAt, &t.UpdatedAt, now)
		if t.Variables == nil {
			t.Variables = []domain.TemplateVariable{}
		}
		if t.RecommendedToolIDs == nil {
			t.RecommendedToolIDs = []uuid.UUID{}
		}
		prefix := fmt.Sprintf("templates[%d]", i)
		if seen[t.ID] {
			errs = append(errs, domain.FieldError{Field: prefix + ".id", Message: "duplicate id"})
		}
		seen[t.ID] = true
		errs = append(errs, prefixed(prefix, t.Validate())...)
		out[i] = t
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	return out, nil
}

func checkDocumentSize(field string, n int) error {
	switch {
	case n == 0:
		return domain.NewValidationError(field, "document contains no items")
	case n > MaxImportItems:
		return domain.NewValidationError(field, fmt.Sprintf("at most %d items per import", MaxImportItems))
	}
	return nil
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// prefixed re-roots the field errors of an item validation under prefix.
func prefixed(prefix string, err error) []domain.FieldError {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]domain.FieldError, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = domain.FieldError{Field: prefix + "." + fe.Field, Message: fe.Message}
	}
	return out
}
