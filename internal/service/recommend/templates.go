package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// TemplateCriteria describes the template a teacher needs. Subject,
// GradeLevel and OutputType are hard constraints; Difficulty only affects
// the score.
type TemplateCriteria struct {
	Subject    string
	GradeLevel string
	OutputType *domain.OutputType
	Difficulty *domain.Difficulty
	Limit      int
}

// Validate checks enum values and the limit.
func (c TemplateCriteria) Validate() error {
	var errs []domain.FieldError
	if c.OutputType != nil && !c.OutputType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "outputType", Message: "invalid value"})
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

func (c TemplateCriteria) filter() domain.TemplateFilter {
	var f domain.TemplateFilter
	if s := strings.TrimSpace(c.Subject); s != "" {
		f.Subjects = []string{s}
	}
	if g := strings.TrimSpace(c.GradeLevel); g != "" {
		f.GradeLevels = []string{g}
	}
	if c.OutputType != nil {
		f.OutputTypes = []domain.OutputType{*c.OutputType}
	}
	return f
}

// outputRelevance stands in for category relevance. Output type is a hard
// constraint, so every survivor matches exactly when one was requested.
func (c TemplateCriteria) outputRelevance() float64 {
	if c.OutputType == nil {
		return matchPartial
	}
	return matchExact
}

// ScoredTemplate is a candidate template with its soft score.
type ScoredTemplate struct {
	Template   domain.Template
	Score      float64
	Engagement domain.Engagement
}

// RecommendTemplates returns templates passing the hard constraints, best
// first. Usage count stands in for popularity; recent rating activity marks
// a template as trending.
func (s *Service) RecommendTemplates(ctx context.Context, c TemplateCriteria) ([]ScoredTemplate, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.templates.ListAll(ctx, c.filter())
	if err != nil {
		return nil, fmt.Errorf("list template candidates: %w", err)
	}

	ids := make([]uuid.UUID, len(candidates))
	maxUsage := 0
	for i, t := range candidates {
		ids[i] = t.ID
		maxUsage = max(maxUsage, t.UsageCount)
	}
	stats := s.engagement(ctx, domain.ItemTypeTemplate, ids)

	w := s.cfg.Weights
	relevance := c.outputRelevance()
	out := make([]ScoredTemplate, 0, len(candidates))
	for _, t := range candidates {
		e := stats[t.ID]
		trending := e.RecentCount >= trendingRecentRatings
		score := w.Difficulty*difficultyMatch(c.Difficulty, t.Difficulty) +
			w.Category*relevance +
			w.Popularity*popularityScore(t.UsageCount, maxUsage, e, trending, w.TrendingBonus)
		out = append(out, ScoredTemplate{Template: t, Score: score, Engagement: e})
	}

	sortRanked(out, func(st ScoredTemplate) ranked {
		return ranked{score: st.Score, name: st.Template.Name, id: st.Template.ID}
	})
	if n := s.limit(c.Limit); len(out) > n {
		out = out[:n]
	}

	s.log.DebugContext(ctx, "templates recommended",
		slog.Int("candidates", len(candidates)),
		slog.Int("returned", len(out)),
	)
	return out, nil
}
