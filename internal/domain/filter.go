package domain

import (
	"time"

	"github.com/google/uuid"
)

// ToolFilter contains filtering/pagination parameters for AI tool queries.
// Slice fields match when the item shares at least one value.
type ToolFilter struct {
	IDs            []uuid.UUID
	Search         *string
	Categories     []ToolCategory
	Subjects       []string
	GradeLevels    []string
	Difficulty     *Difficulty
	PricingModel   *PricingModel
	Trending       *bool
	VietnameseOnly bool
	Limit          int
	Offset         int
}

// TemplateFilter contains filtering/pagination parameters for template queries.
type TemplateFilter struct {
	IDs         []uuid.UUID
	Search      *string
	Subjects    []string
	GradeLevels []string
	OutputTypes []OutputType
	Difficulty  *Difficulty
	Tags        []string
	Limit       int
	Offset      int
}

// AuditFilter contains filtering/pagination parameters for audit log queries.
type AuditFilter struct {
	ActorID  *uuid.UUID
	Action   *AuditAction
	Resource *AuditResource
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}
