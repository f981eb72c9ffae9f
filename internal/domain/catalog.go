package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength bounds the display name of catalog items.
const MaxNameLength = 200

// AITool is a catalog record describing an AI product teachers can use.
type AITool struct {
	ID                uuid.UUID    `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	URL               string       `json:"url,omitempty"`
	Category          ToolCategory `json:"category"`
	Subjects          []string     `json:"subjects"`
	GradeLevels       []string     `json:"gradeLevels"`
	Features          []string     `json:"features"`
	UseCases          []string     `json:"useCases"`
	PricingModel      PricingModel `json:"pricingModel"`
	Difficulty        Difficulty   `json:"difficulty"`
	VietnameseSupport bool         `json:"vietnameseSupport"`
	Popularity        int          `json:"popularity"`
	Trending          bool         `json:"trending"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Validate checks the structural invariants of an AI tool.
func (t AITool) Validate() error {
	var errs []FieldError

	errs = append(errs, validateName(t.Name)...)
	if !t.Category.IsValid() {
		errs = append(errs, FieldError{Field: "category", Message: "invalid value"})
	}
	errs = append(errs, validateTags("subjects", t.Subjects)...)
	errs = append(errs, validateTags("gradeLevels", t.GradeLevels)...)
	if !t.PricingModel.IsValid() {
		errs = append(errs, FieldError{Field: "pricingModel", Message: "invalid value"})
	}
	if !t.Difficulty.IsValid() {
		errs = append(errs, FieldError{Field: "difficulty", Message: "invalid value"})
	}
	if t.URL != "" {
		if u, err := url.Parse(t.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{Field: "url", Message: "must be an absolute URL"})
		}
	}
	if t.Popularity < 0 {
		errs = append(errs, FieldError{Field: "popularity", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Matches reports whether the tool satisfies every set field of the filter.
// Pagination fields are ignored.
func (t AITool) Matches(f ToolFilter) bool {
	if len(f.IDs) > 0 && !containsID(f.IDs, t.ID) {
		return false
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if c == t.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Subjects) > 0 && !intersectsFold(f.Subjects, t.Subjects) {
		return false
	}
	if len(f.GradeLevels) > 0 && !intersectsFold(f.GradeLevels, t.GradeLevels) {
		return false
	}
	if f.Difficulty != nil && *f.Difficulty != t.Difficulty {
		return false
	}
	if f.PricingModel != nil && *f.PricingModel != t.PricingModel {
		return false
	}
	if f.Trending != nil && *f.Trending != t.Trending {
		return false
	}
	if f.VietnameseOnly && !t.VietnameseSupport {
		return false
	}
	if f.Search != nil && *f.Search != "" {
		q := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// TemplateVariable is a placeholder a teacher fills in before using a template.
type TemplateVariable struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Template is a reusable prompt with {{variable}} placeholders.
type Template struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Subject            string             `json:"subject"`
	GradeLevels        []string           `json:"gradeLevels"`
	OutputType         OutputType         `json:"outputType"`
	Content            string             `json:"content"`
	Variables          []TemplateVariable `json:"variables"`
	Tags               []string           `json:"tags"`
	Difficulty         Difficulty         `json:"difficulty"`
	RecommendedToolIDs []uuid.UUID        `json:"recommendedToolIds"`
	UsageCount         int                `json:"usageCount"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Validate checks the structural invariants of a template.
func (t Template) Validate() error {
	var errs []FieldError

	errs = append(errs, validateName(t.Name)...)
	if strings.TrimSpace(t.Subject) == "" {
		errs = append(errs, FieldError{Field: "subject", Message: "required"})
	}
	errs = append(errs, validateTags("gradeLevels", t.GradeLevels)...)
	if !t.OutputType.IsValid() {
		errs = append(errs, FieldError{Field: "outputType", Message: "invalid value"})
	}
	if strings.TrimSpace(t.Content) == "" {
		errs = append(errs, FieldError{Field: "content", Message: "required"})
	}
	if !t.Difficulty.IsValid() {
		errs = append(errs, FieldError{Field: "difficulty", Message: "invalid value"})
	}
	for i, v := range t.Variables {
		if strings.TrimSpace(v.Name) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("variables[%d].name", i), Message: "required"})
		}
	}
	for i, tag := range t.Tags {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("tags[%d]", i), Message: "must not be blank"})
		}
	}
	if t.UsageCount < 0 {
		errs = append(errs, FieldError{Field: "usageCount", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Matches reports whether the template satisfies every set field of the filter.
func (t Template) Matches(f TemplateFilter) bool {
	if len(f.IDs) > 0 && !containsID(f.IDs, t.ID) {
		return false
	}
	if len(f.Subjects) > 0 && !intersectsFold(f.Subjects, []string{t.Subject}) {
		return false
	}
	if len(f.GradeLevels) > 0 && !intersectsFold(f.GradeLevels, t.GradeLevels) {
		return false
	}
	if len(f.OutputTypes) > 0 {
		found := false
		for _, o := range f.OutputTypes {
			if o == t.OutputType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Difficulty != nil && *f.Difficulty != t.Difficulty {
		return false
	}
	if len(f.Tags) > 0 && !intersectsFold(f.Tags, t.Tags) {
		return false
	}
	if f.Search != nil && *f.Search != "" {
		q := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// ToolPatch carries the fields a bulk update may change. Nil fields are left untouched.
type ToolPatch struct {
	Category     *ToolCategory
	Difficulty   *Difficulty
	PricingModel *PricingModel
	Trending     *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p ToolPatch) IsEmpty() bool {
	return p.Category == nil && p.Difficulty == nil && p.PricingModel == nil && p.Trending == nil
}

// Validate checks the enum values carried by the patch.
func (p ToolPatch) Validate() error {
	var errs []FieldError
	if p.IsEmpty() {
		errs = append(errs, FieldError{Field: "patch", Message: "at least one field required"})
	}
	if p.Category != nil && !p.Category.IsValid() {
		errs = append(errs, FieldError{Field: "category", Message: "invalid value"})
	}
	if p.Difficulty != nil && !p.Difficulty.IsValid() {
		errs = append(errs, FieldError{Field: "difficulty", Message: "invalid value"})
	}
	if p.PricingModel != nil && !p.PricingModel.IsValid() {
		errs = append(errs, FieldError{Field: "pricingModel", Message: "invalid value"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// ToolExportDocument is the downloadable JSON file produced by the AI tool export.
type ToolExportDocument struct {
	ExportDate time.Time `json:"exportDate"`
	TotalItems int       `json:"totalItems"`
	Data       []AITool  `json:"data"`
}

// TemplateExportDocument is the downloadable JSON file produced by the template export.
type TemplateExportDocument struct {
	ExportDate     time.Time  `json:"exportDate"`
	TotalTemplates int        `json:"totalTemplates"`
	Templates      []Template `json:"templates"`
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func validateName(name string) []FieldError {
	name = strings.TrimSpace(name)
	if name == "" {
		return []FieldError{{Field: "name", Message: "required"}}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return []FieldError{{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxNameLength)}}
	}
	return nil
}

func validateTags(field string, values []string) []FieldError {
	if len(values) == 0 {
		return []FieldError{{Field: field, Message: "at least one value required"}}
	}
	var errs []FieldError
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("%s[%d]", field, i), Message: "must not be blank"})
		}
	}
	return errs
}

func intersectsFold(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(w), strings.TrimSpace(h)) {
				return true
			}
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
