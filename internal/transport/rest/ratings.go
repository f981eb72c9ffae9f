package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type ratingService interface {
	RateTool(ctx context.Context, id uuid.UUID, rating int) error
	RateTemplate(ctx context.Context, id uuid.UUID, rating int) error
	UseTemplate(ctx context.Context, id uuid.UUID) error
}

// RatingHandler serves the public rating and usage endpoints.
type RatingHandler struct {
	svc  ratingService
	bind *binder
	log  *slog.Logger
}

// NewRatingHandler creates a RatingHandler.
func NewRatingHandler(svc ratingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{svc: svc, bind: newBinder(0), log: logger.With("handler", "rating")}
}

type rateRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// RateTool records the caller's rating of an AI tool.
// POST /api/ai-tools/{id}/ratings
func (h *RatingHandler) RateTool(w http.ResponseWriter, r *http.Request) {
	h.rate(w, r, h.svc.RateTool)
}

// RateTemplate records the caller's rating of a template.
// POST /api/templates/{id}/ratings
func (h *RatingHandler) RateTemplate(w http.ResponseWriter, r *http.Request) {
	h.rate(w, r, h.svc.RateTemplate)
}

func (h *RatingHandler) rate(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, int) error) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	var req rateRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := fn(r.Context(), id, req.Rating); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	noContent(w)
}

// UseTemplate counts one use of a template.
// POST /api/templates/{id}/use
func (h *RatingHandler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.svc.UseTemplate(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	noContent(w)
}
