package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// ToolCriteria describes what a teacher is looking for. Subject, GradeLevel
// and VietnameseOnly are hard constraints; Category and Difficulty only
// affect the score. Empty fields do not constrain.
type ToolCriteria struct {
	Subject        string
	GradeLevel     string
	Category       *domain.ToolCategory
	Difficulty     *domain.Difficulty
	VietnameseOnly bool
	Limit          int
}

// Validate checks enum values and the limit.
func (c ToolCriteria) Validate() error {
	var errs []domain.FieldError
	if c.Category != nil && !c.Category.IsValid() {
		errs = append(errs, domain.FieldError{Field: "category", Message: "invalid value"})
	}
	if c.Difficulty != nil && !c.Difficulty.IsValid() {
		errs = append(errs, domain.FieldError{Field: "difficulty", Message: "invalid value"})
	}
	if c.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (c ToolCriteria) filter() domain.ToolFilter {
	var f domain.ToolFilter
	if s := strings.TrimSpace(c.Subject); s != "" {
		f.Subjects = []string{s}
	}
	if g := strings.TrimSpace(c.GradeLevel); g != "" {
		f.GradeLevels = []string{g}
	}
	f.VietnameseOnly = c.VietnameseOnly
	return f
}

// ScoredTool is a candidate tool with its soft score.
type ScoredTool struct {
	Tool       domain.AITool
	Score      float64
	Engagement domain.Engagement
}

// RecommendTools returns tools passing the hard constraints, best first.
// No match yields an empty slice.
func (s *Service) RecommendTools(ctx context.Context, c ToolCriteria) ([]ScoredTool, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.tools.ListAll(ctx, c.filter())
	if err != nil {
		return nil, fmt.Errorf("list tool candidates: %w", err)
	}

	ids := make([]uuid.UUID, len(candidates))
	maxPopularity := 0
	for i, t := range candidates {
		ids[i] = t.ID
		maxPopularity = max(maxPopularity, t.Popularity)
	}
	stats := s.engagement(ctx, domain.ItemTypeAITool, ids)

	w := s.cfg.Weights
	out := make([]ScoredTool, 0, len(candidates))
	for _, t := range candidates {
		e := stats[t.ID]
		score := w.Difficulty*difficultyMatch(c.Difficulty, t.Difficulty) +
			w.Category*categoryRelevance(c.Category, t.Category) +
			w.Popularity*popularityScore(t.Popularity, maxPopularity, e, t.Trending, w.TrendingBonus)
		out = append(out, ScoredTool{Tool: t, Score: score, Engagement: e})
	}

	sortRanked(out, func(st ScoredTool) ranked {
		return ranked{score: st.Score, name: st.Tool.Name, id: st.Tool.ID}
	})
	if n := s.limit(c.Limit); len(out) > n {
		out = out[:n]
	}

	s.log.DebugContext(ctx, "tools recommended",
		slog.Int("candidates", len(candidates)),
		slog.Int("returned", len(out)),
	)
	return out, nil
}
