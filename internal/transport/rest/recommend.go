package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/recommend"
)

type recommendService interface {
	RecommendTools(ctx context.Context, c recommend.ToolCriteria) ([]recommend.ScoredTool, error)
	RecommendTemplates(ctx context.Context, c recommend.TemplateCriteria) ([]recommend.ScoredTemplate, error)
}

// RecommendHandler serves the public recommendation lookup.
type RecommendHandler struct {
	svc recommendService
	log *slog.Logger
}

// NewRecommendHandler creates a RecommendHandler.
func NewRecommendHandler(svc recommendService, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{svc: svc, log: logger.With("handler", "recommend")}
}

type engagementResponse struct {
	RatingAvg   float64 `json:"ratingAvg"`
	RatingCount int     `json:"ratingCount"`
}

type scoredToolResponse struct {
	domain.AITool
	Score      float64            `json:"score"`
	Engagement engagementResponse `json:"engagement"`
}

type scoredTemplateResponse struct {
	domain.Template
	Score      float64            `json:"score"`
	Engagement engagementResponse `json:"engagement"`
}

type recommendationsResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Tools ranks AI tools for the given teaching context.
// GET /api/recommendations/tools?subject=&grade=&category=&difficulty=&vietnamese=&limit=
func (h *RecommendHandler) Tools(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	criteria := recommend.ToolCriteria{
		Subject:        q.str("subject"),
		GradeLevel:     q.str("grade"),
		Category:       enumPtr[domain.ToolCategory](q.optStr("category")),
		Difficulty:     enumPtr[domain.Difficulty](q.optStr("difficulty")),
		VietnameseOnly: q.bool("vietnamese"),
		Limit:          q.int("limit", 0),
	}
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	scored, err := h.svc.RecommendTools(r.Context(), criteria)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	items := make([]scoredToolResponse, 0, len(scored))
	for _, s := range scored {
		items = append(items, scoredToolResponse{
			AITool:     s.Tool,
			Score:      s.Score,
			Engagement: engagementResponse{RatingAvg: s.Engagement.RatingAvg, RatingCount: s.Engagement.RatingCount},
		})
	}
	writeJSON(w, http.StatusOK, recommendationsResponse[scoredToolResponse]{Items: items, Total: len(items)})
}

// Templates ranks templates for the given teaching context.
// GET /api/recommendations/templates?subject=&grade=&outputType=&difficulty=&limit=
func (h *RecommendHandler) Templates(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	criteria := recommend.TemplateCriteria{
		Subject:    q.str("subject"),
		GradeLevel: q.str("grade"),
		OutputType: enumPtr[domain.OutputType](q.optStr("outputType")),
		Difficulty: enumPtr[domain.Difficulty](q.optStr("difficulty")),
		Limit:      q.int("limit", 0),
	}
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	scored, err := h.svc.RecommendTemplates(r.Context(), criteria)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	items := make([]scoredTemplateResponse, 0, len(scored))
	for _, s := range scored {
		items = append(items, scoredTemplateResponse{
			Template:   s.Template,
			Score:      s.Score,
			Engagement: engagementResponse{RatingAvg: s.Engagement.RatingAvg, RatingCount: s.Engagement.RatingCount},
		})
	}
	writeJSON(w, http.StatusOK, recommendationsResponse[scoredTemplateResponse]{Items: items, Total: len(items)})
}
