package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// ListTools returns one page of tools matching the filter.
func (s *Service) ListTools(ctx context.Context, f domain.ToolFilter) (ToolPage, error) {
	key := cacheKey("tools", f)
	if page, ok := s.toolPages.Get(key); ok {
		return page, nil
	}
	gen := s.toolPages.Generation()

	items, total, err := s.tools.List(ctx, f)
	if err != nil {
		return ToolPage{}, fmt.Errorf("list tools: %w", err)
	}
	page := ToolPage{Items: items, Total: total}
	s.toolPages.AddIfCurrent(key, page, gen)
	return page, nil
}

// GetTool returns a tool by id.
func (s *Service) GetTool(ctx context.Context, id uuid.UUID) (*domain.AITool, error) {
	t, err := s.tools.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tool: %w", err)
	}
	return t, nil
}

// CreateTool validates and stores a new tool.
func (s *Service) CreateTool(ctx context.Context, in ToolInput) (*domain.AITool, error) {
	now := s.now().UTC()
	tool := domain.AITool{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	in.apply(&tool)
	if err := tool.Validate(); err != nil {
		return nil, err
	}

	var created *domain.AITool
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.tools.Create(txCtx, tool)
		if createErr != nil {
			return fmt.Errorf("create tool: %w", createErr)
		}
		return s.logAudit(txCtx, domain.AuditActionCreate, domain.AuditResourceAITool, &created.ID, map[string]any{
			"name": created.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	s.Purge()

	s.log.InfoContext(ctx, "tool created",
		slog.String("tool_id", created.ID.String()),
		slog.String("name", created.Name),
	)
	return created, nil
}

// UpdateTool replaces the editable fields of a tool.
func (s *Service) UpdateTool(ctx context.Context, id uuid.UUID, in ToolInput) (*domain.AITool, error) {
	var updated *domain.AITool
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		old, getErr := s.tools.GetByID(txCtx, id)
		if getErr != nil {
			return fmt.Errorf("get tool: %w", getErr)
		}

		next := *old
		in.apply(&next)
		next.UpdatedAt = s.now().UTC()
		if err := next.Validate(); err != nil {
			return err
		}

		var updateErr error
		updated, updateErr = s.tools.Update(txCtx, next)
		if updateErr != nil {
			return fmt.Errorf("update tool: %w", updateErr)
		}

		changes := toolChanges(old, updated)
		if len(changes) == 0 {
			return nil
		}
		return s.logAudit(txCtx, domain.AuditActionUpdate, domain.AuditResourceAITool, &id, changes)
	})
	if err != nil {
		return nil, err
	}
	s.Purge()

	s.log.InfoContext(ctx, "tool updated", slog.String("tool_id", id.String()))
	return updated, nil
}

// DeleteTool removes a tool together with its ratings.
func (s *Service) DeleteTool(ctx context.Context, id uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tools.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete tool: %w", err)
		}
		if err := s.ratings.DeleteByItems(txCtx, domain.ItemTypeAITool, []uuid.UUID{id}); err != nil {
			return fmt.Errorf("delete tool ratings: %w", err)
		}
		return s.logAudit(txCtx, domain.AuditActionDelete, domain.AuditResourceAITool, &id, nil)
	})
	if err != nil {
		return err
	}
	s.Purge()

	s.log.InfoContext(ctx, "tool deleted", slog.String("tool_id", id.String()))
	return nil
}

// BulkUpdateTools applies a patch to many tools. Returns the number updated.
func (s *Service) BulkUpdateTools(ctx context.Context, ids []uuid.UUID, patch domain.ToolPatch) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}

	var n int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		n, updateErr = s.tools.BulkUpdate(txCtx, ids, patch)
		if updateErr != nil {
			return fmt.Errorf("bulk update tools: %w", updateErr)
		}
		return s.logAudit(txCtx, domain.AuditActionBulkUpdate, domain.AuditResourceAITool, nil, map[string]any{
			"ids":     idStrings(ids),
			"updated": n,
			"patch":   patchDetails(patch),
		})
	})
	if err != nil {
		return 0, err
	}
	s.Purge()

	s.log.InfoContext(ctx, "tools bulk updated", slog.Int("requested", len(ids)), slog.Int("updated", n))
	return n, nil
}

// BulkDeleteTools removes many tools and their ratings. Returns the number deleted.
func (s *Service) BulkDeleteTools(ctx context.Context, ids []uuid.UUID) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	var n int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var deleteErr error
		n, deleteErr = s.tools.DeleteByIDs(txCtx, ids)
		if deleteErr != nil {
			return fmt.Errorf("bulk delete tools: %w", deleteErr)
		}
		if err := s.ratings.DeleteByItems(txCtx, domain.ItemTypeAITool, ids); err != nil {
			return fmt.Errorf("delete tool ratings: %w", err)
		}
		return s.logAudit(txCtx, domain.AuditActionBulkDelete, domain.AuditResourceAITool, nil, map[string]any{
			"ids":     idStrings(ids),
			"deleted": n,
		})
	})
	if err != nil {
		return 0, err
	}
	s.Purge()

	s.log.InfoContext(ctx, "tools bulk deleted", slog.Int("requested", len(ids)), slog.Int("deleted", n))
	return n, nil
}

func toolChanges(old, updated *domain.AITool) map[string]any {
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
	if old.URL != updated.URL {
		diff("url", old.URL, updated.URL)
	}
	if old.Category != updated.Category {
		diff("category", old.Category, updated.Category)
	}
	if !slices.Equal(old.Subjects, updated.Subjects) {
		diff("subjects", old.Subjects, updated.Subjects)
	}
	if !slices.Equal(old.GradeLevels, updated.GradeLevels) {
		diff("gradeLevels", old.GradeLevels, updated.GradeLevels)
	}
	if !slices.Equal(old.Features, updated.Features) {
		diff("features", old.Features, updated.Features)
	}
	if !slices.Equal(old.UseCases, updated.UseCases) {
		diff("useCases", old.UseCases, updated.UseCases)
	}
	if old.PricingModel != updated.PricingModel {
		diff("pricingModel", old.PricingModel, updated.PricingModel)
	}
	if old.Difficulty != updated.Difficulty {
		diff("difficulty", old.Difficulty, updated.Difficulty)
	}
	if old.VietnameseSupport != updated.VietnameseSupport {
		diff("vietnameseSupport", old.VietnameseSupport, updated.VietnameseSupport)
	}
	if old.Popularity != updated.Popularity {
		diff("popularity", old.Popularity, updated.Popularity)
	}
	if old.Trending != updated.Trending {
		diff("trending", old.Trending, updated.Trending)
	}
	return changes
}

func patchDetails(p domain.ToolPatch) map[string]any {
	out := map[string]any{}
	if p.Category != nil {
		out["category"] = *p.Category
	}
	if p.Difficulty != nil {
		out["difficulty"] = *p.Difficulty
	}
	if p.PricingModel != nil {
		out["pricingModel"] = *p.PricingModel
	}
	if p.Trending != nil {
		out["trending"] = *p.Trending
	}
	return out
}
