package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

// RateTool stores the caller's 1..5 rating of a tool, replacing an earlier one.
func (s *Service) RateTool(ctx context.Context, id uuid.UUID, rating int) error {
	return s.rate(ctx, domain.ItemTypeAITool, id, rating, s.tools.Exists)
}

// RateTemplate stores the caller's 1..5 rating of a template.
func (s *Service) RateTemplate(ctx context.Context, id uuid.UUID, rating int) error {
	return s.rate(ctx, domain.ItemTypeTemplate, id, rating, s.templates.Exists)
}

func (s *Service) rate(
	ctx context.Context,
	itemType domain.ItemType,
	id uuid.UUID,
	rating int,
	exists func(context.Context, uuid.UUID) (bool, error),
) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	found, err := exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check %s: %w", itemType, err)
	}
	if !found {
		return fmt.Errorf("%s %s: %w", itemType, id, domain.ErrNotFound)
	}

	if err := s.ratings.Upsert(ctx, domain.Rating{
		ItemType:  itemType,
		ItemID:    id,
		UserID:    userID,
		Rating:    rating,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	s.dashboard.Purge()
	return nil
}
