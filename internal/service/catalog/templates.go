package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// ListTemplates returns one page of templates matching the filter.
func (s *Service) ListTemplates(ctx context.Context, f domain.TemplateFilter) (TemplatePage, error) {
	key := cacheKey("templates", f)
	if page, ok := s.templatePages.Get(key); ok {
		return page, nil
	}
	gen := s.templatePages.Generation()

	items, total, err := s.templates.List(ctx, f)
	if err != nil {
		return TemplatePage{}, fmt.Errorf("list templates: %w", err)
	}
	page := TemplatePage{Items: items, Total: total}
	s.templatePages.AddIfCurrent(key, page, gen)
	return page, nil
}

// GetTemplate returns a template by id.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// CreateTemplate validates and stores a new template.
func (s *Service) CreateTemplate(ctx context.Context, in TemplateInput) (*domain.Template, error) {
	now := s.now().UTC()
	tpl := domain.Template{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	in.apply(&tpl)
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Template
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkToolRefs(txCtx, tpl.RecommendedToolIDs); err != nil {
			return err
		}
		var createErr error
		created, createErr = s.templates.Create(txCtx, tpl)
		if createErr != nil {
			return fmt.Errorf("create template: %w", createErr)
		}
		return s.logAudit(txCtx, domain.AuditActionCreate, domain.AuditResourceTemplate, &created.ID, map[string]any{
			"name": created.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	s.Purge()

	s.log.InfoContext(ctx, "template created",
		slog.String("template_id", created.ID.String()),
		slog.String("name", created.Name),
	)
	return created, nil
}

// UpdateTemplate replaces the editable fields of a template. Usage count is kept.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, in TemplateInput) (*domain.Template, error) {
	var updated *domain.Template
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		old, getErr := s.templates.GetByID(txCtx, id)
		if getErr != nil {
			return fmt.Errorf("get template: %w", getErr)
		}

		next := *old
		in.apply(&next)
		next.UpdatedAt = s.now().UTC()
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.checkToolRefs(txCtx, next.RecommendedToolIDs); err != nil {
			return err
		}

		var updateErr error
		updated, updateErr = s.templates.Update(txCtx, next)
		if updateErr != nil {
			return fmt.Errorf("update template: %w", updateErr)
		}

		changes := templateChanges(old, updated)
		if len(changes) == 0 {
			return nil
		}
		return s.logAudit(txCtx, domain.AuditActionUpdate, domain.AuditResourceTemplate, &id, changes)
	})
	if err != nil {
		return nil, err
	}
	s.Purge()

	s.log.InfoContext(ctx, "template updated", slog.String("template_id", id.String()))
	return updated, nil
}

// DeleteTemplate removes a template together with its ratings.
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.templates.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		if err := s.ratings.DeleteByItems(txCtx, domain.ItemTypeTemplate, []uuid.UUID{id}); err != nil {
			return fmt.Errorf("delete template ratings: %w", err)
		}
		return s.logAudit(txCtx, domain.AuditActionDelete, domain.AuditResourceTemplate, &id, nil)
	})
	if err != nil {
		return err
	}
	s.Purge()

	s.log.InfoContext(ctx, "template deleted", slog.String("template_id", id.String()))
	return nil
}

// BulkDeleteTemplates removes many templates and their ratings.
func (s *Service) BulkDeleteTemplates(ctx context.Context, ids []uuid.UUID) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	var n int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var deleteErr error
		n, deleteErr = s.templates.DeleteByIDs(txCtx, ids)
		if deleteErr != nil {
			return fmt.Errorf("bulk delete templates: %w", deleteErr)
		}
		if err := s.ratings.DeleteByItems(txCtx, domain.ItemTypeTemplate, ids); err != nil {
			return fmt.Errorf("delete template ratings: %w", err)
		}
		return s.logAudit(txCtx, domain.AuditActionBulkDelete, domain.AuditResourceTemplate, nil, map[string]any{
			"ids":     idStrings(ids),
			"deleted": n,
		})
	})
	if err != nil {
		return 0, err
	}
	s.Purge()

	s.log.InfoContext(ctx, "templates bulk deleted", slog.Int("requested", len(ids)), slog.Int("deleted", n))
	return n, nil
}

// UseTemplate counts one use of a template by a teacher.
func (s *Service) UseTemplate(ctx context.Context, id uuid.UUID) error {
	if err := s.templates.IncrementUsage(ctx, id); err != nil {
		return fmt.Errorf("increment template usage: %w", err)
	}
	s.templatePages.Purge()
	return nil
}

// checkToolRefs rejects recommended tool ids that do not exist.
func (s *Service) checkToolRefs(ctx context.Context, ids []uuid.UUID) error {
	var errs []domain.FieldError
	for i, id := range ids {
		ok, err := s.tools.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("check recommended tool: %w", err)
		}
		if !ok {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("recommendedToolIds[%d]", i),
				Message: "unknown tool",
			})
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func templateChanges(old, updated *domain.Template) map[string]any {
	changes := make(map[string]any)
	diff := func(field string, a, b any) {
		changes[field] = map[string]any{"old": a, "new": b}
	}
	if old.Name != updated.Name {
		diff("name", old.Name, updated.Name)
	}
	if old.Description != updated.Description {
		diff("description", old.Description, updated.Description)
	}
	if old.Subject != updated.Subject {
		diff("subject", old.Subject, updated.Subject)
	}
	if !slices.Equal(old.GradeLevels, updated.GradeLevels) {
		diff("gradeLevels", old.GradeLevels, updated.GradeLevels)
	}
	if old.OutputType != updated.OutputType {
		diff("outputType", old.OutputType, updated.OutputType)
	}
	if old.Content != updated.Content {
		changes["content"] = map[string]any{"changed": true}
	}
	if !slices.Equal(old.Variables, updated.Variables) {
		changes["variables"] = map[string]any{"old": len(old.Variables), "new": len(updated.Variables)}
	}
	if !slices.Equal(old.Tags, updated.Tags) {
		diff("tags", old.Tags, updated.Tags)
	}
	if old.Difficulty != updated.Difficulty {
		diff("difficulty", old.Difficulty, updated.Difficulty)
	}
	if !slices.Equal(old.RecommendedToolIDs, updated.RecommendedToolIDs) {
		diff("recommendedToolIds", idStrings(old.RecommendedToolIDs), idStrings(updated.RecommendedToolIDs))
	}
	return changes
}
