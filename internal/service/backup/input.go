package backup

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const maxLabelLength = 200

// CreateBackupInput holds the parameters for a new snapshot.
type CreateBackupInput struct {
	Label            string
	Description      string
	Kind             domain.SnapshotKind // defaults to MANUAL
	IncludeAITools   bool
	IncludeTemplates bool
}

// Validate checks all fields and collects all errors.
func (i CreateBackupInput) Validate() error {
	var errs []domain.FieldError
	if utf8.RuneCountInString(strings.TrimSpace(i.Label)) > maxLabelLength {
		errs = append(errs, domain.FieldError{Field: "label", Message: fmt.Sprintf("max %d characters", maxLabelLength)})
	}
	if i.Kind != "" && !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "invalid value"})
	}
	if !i.IncludeAITools && !i.IncludeTemplates {
		errs = append(errs, domain.FieldError{Field: "collections", Message: "at least one collection must be included"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ExportOptions selects and filters the exported collections.
// Only the filter fields that make sense for exports are honoured:
// categories, subjects and grade levels for tools; subjects, grade levels and
// output types for templates.
type ExportOptions struct {
	IncludeAITools   bool
	IncludeTemplates bool
	Tools            domain.ToolFilter
	Templates        domain.TemplateFilter

	// Save also persists the export as an EXPORT backup.
	Save        bool
	Label       string
	Description string
}

// Validate checks all fields and collects all errors.
func (o ExportOptions) Validate() error {
	var errs []domain.FieldError
	if !o.IncludeAITools && !o.IncludeTemplates {
		errs = append(errs, domain.FieldError{Field: "collections", Message: "at least one collection must be included"})
	}
	for i, c := range o.Tools.Categories {
		if !c.IsValid() {
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("categories[%d]", i), Message: "invalid value"})
		}
	}
	for i, t := range o.Templates.OutputTypes {
		if !t.IsValid() {
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("outputTypes[%d]", i), Message: "invalid value"})
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(o.Label)) > maxLabelLength {
		errs = append(errs, domain.FieldError{Field: "label", Message: fmt.Sprintf("max %d characters", maxLabelLength)})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (o ExportOptions) toolFilter() domain.ToolFilter {
	return domain.ToolFilter{
		Categories:  o.Tools.Categories,
		Subjects:    o.Tools.Subjects,
		GradeLevels: o.Tools.GradeLevels,
	}
}

func (o ExportOptions) templateFilter() domain.TemplateFilter {
	return domain.TemplateFilter{
		Subjects:    o.Templates.Subjects,
		GradeLevels: o.Templates.GradeLevels,
		OutputTypes: o.Templates.OutputTypes,
	}
}

// ImportOptions controls how a snapshot is applied to the live catalog.
type ImportOptions struct {
	OverwriteExisting        bool
	DryRun                   bool
	CreateBackupBeforeImport bool
	// ClearExisting wipes the imported collections before writing. A dry run
	// counts items as if the collections were already empty.
	ClearExisting bool
	// Collections restricts the import. Empty means every collection present in the snapshot.
	Collections []domain.Collection
}

// Validate checks all fields and collects all errors.
func (o ImportOptions) Validate() error {
	var errs []domain.FieldError
	for i, c := range o.Collections {
		if !c.IsValid() {
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("collections[%d]", i), Message: "unknown collection"})
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (o ImportOptions) wants(c domain.Collection) bool {
	if len(o.Collections) == 0 {
		return true
	}
	for _, v := range o.Collections {
		if v == c {
			return true
		}
	}
	return false
}

// ImportItemError reports a single item that could not be applied.
type ImportItemError struct {
	Collection domain.Collection
	ItemID     string
	Error      string
}

// ImportResult reports the outcome of an import.
// Imported counts inserted plus updated items; Updated is the overwritten subset.
type ImportResult struct {
	Imported       int
	Updated        int
	Skipped        int
	Errors         []ImportItemError
	DryRun         bool
	SafetyBackupID *uuid.UUID
}

// VerificationResult reports the integrity of a stored snapshot.
type VerificationResult struct {
	Valid         bool
	Problems      []string
	ItemCount     int
	ChecksumMatch bool
}
