// Package recommend ranks catalog items against a teacher's criteria.
// Candidates are narrowed by hard constraints in the repository query and
// ordered by a weighted soft score.
package recommend

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

type toolRepo interface {
	ListAll(ctx context.Context, f domain.ToolFilter) ([]domain.AITool, error)
}

type templateRepo interface {
	ListAll(ctx context.Context, f domain.TemplateFilter) ([]domain.Template, error)
}

type engagementRepo interface {
	EngagementByIDs(ctx context.Context, itemType domain.ItemType, ids []uuid.UUID) (map[uuid.UUID]domain.Engagement, error)
}

// Weights are the coefficients of the soft score.
type Weights struct {
	Difficulty    float64
	Category      float64
	Popularity    float64
	TrendingBonus float64
}

// Config holds scoring and limit settings.
type Config struct {
	Weights      Weights
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the scoring used when none is configured.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Difficulty:    0.3,
			Category:      0.3,
			Popularity:    0.4,
			TrendingBonus: 0.1,
		},
		DefaultLimit: 10,
		MaxLimit:     50,
	}
}

// Service implements recommendation lookups.
type Service struct {
	tools     toolRepo
	templates templateRepo
	ratings   engagementRepo
	cfg       Config
	log       *slog.Logger
}

// NewService creates a recommendation service. Zero limits fall back to DefaultConfig.
func NewService(
	log *slog.Logger,
	tools toolRepo,
	templates templateRepo,
	ratings engagementRepo,
	cfg Config,
) *Service {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	return &Service{
		tools:     tools,
		templates: templates,
		ratings:   ratings,
		cfg:       cfg,
		log:       log.With("service", "recommend"),
	}
}

func (s *Service) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.cfg.DefaultLimit
	case requested > s.cfg.MaxLimit:
		return s.cfg.MaxLimit
	default:
		return requested
	}
}

// engagement batch-loads rating aggregates. A failure degrades to no rating
// signal rather than failing the lookup.
func (s *Service) engagement(ctx context.Context, itemType domain.ItemType, ids []uuid.UUID) map[uuid.UUID]domain.Engagement {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.Engagement{}
	}
	out, err := loadEngagement(ctx, newEngagementLoader(s.ratings, itemType), ids)
	if err != nil {
		s.log.WarnContext(ctx, "engagement unavailable",
			slog.String("item_type", string(itemType)),
			slog.String("error", err.Error()),
		)
		return map[uuid.UUID]domain.Engagement{}
	}
	return out
}
