package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// ToolInput holds the editable fields of an AI tool.
type ToolInput struct {
	Name              string
	Description       string
	URL               string
	Category          domain.ToolCategory
	Subjects          []string
	GradeLevels       []string
	Features          []string
	UseCases          []string
	PricingModel      domain.PricingModel
	Difficulty        domain.Difficulty
	VietnameseSupport bool
	Popularity        int
	Trending          bool
}

// apply copies the input onto t, trimming free text.
func (in ToolInput) apply(t *domain.AITool) {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = strings.TrimSpace(in.Description)
	t.URL = strings.TrimSpace(in.URL)
	t.Category = in.Category
	t.Subjects = trimAll(in.Subjects)
	t.GradeLevels = trimAll(in.GradeLevels)
	t.Features = trimAll(in.Features)
	t.UseCases = trimAll(in.UseCases)
	t.PricingModel = in.PricingModel
	t.Difficulty = in.Difficulty
	t.VietnameseSupport = in.VietnameseSupport
	t.Popularity = in.Popularity
	t.Trending = in.Trending
}

// TemplateInput holds the editable fields of a template.
type TemplateInput struct {
	Name               string
	Description        string
	Subject            string
	GradeLevels        []string
	OutputType         domain.OutputType
	Content            string
	Variables          []domain.TemplateVariable
	Tags               []string
	Difficulty         domain.Difficulty
	RecommendedToolIDs []uuid.UUID
}

func (in TemplateInput) apply(t *domain.Template) {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = strings.TrimSpace(in.Description)
	t.Subject = strings.TrimSpace(in.Subject)
	t.GradeLevels = trimAll(in.GradeLevels)
	t.OutputType = in.OutputType
	t.Content = in.Content
	t.Variables = in.Variables
	if t.Variables == nil {
		t.Variables = []domain.TemplateVariable{}
	}
	t.Tags = trimAll(in.Tags)
	t.Difficulty = in.Difficulty
	t.RecommendedToolIDs = in.RecommendedToolIDs
	if t.RecommendedToolIDs == nil {
		t.RecommendedToolIDs = []uuid.UUID{}
	}
}

// ToolPage is one page of a tool listing.
type ToolPage struct {
	Items []domain.AITool
	Total int
}

// TemplatePage is one page of a template listing.
type TemplatePage struct {
	Items []domain.Template
	Total int
}

// ImportSummary reports the outcome of a catalog document import.
type ImportSummary struct {
	Received int
	Written  int
	Skipped  int
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
