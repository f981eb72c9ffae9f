package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion is the format version written into every snapshot.
const SnapshotVersion = "1.0"

// Snapshot is an immutable point-in-time capture of catalog collections.
type Snapshot struct {
	ID          uuid.UUID    `json:"id"`
	Version     string       `json:"version"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
	Kind        SnapshotKind `json:"kind"`
	CreatedAt   time.Time    `json:"createdAt"`
	CreatedBy   *uuid.UUID   `json:"createdBy,omitempty"`
	Collections []Collection `json:"collections"`
	Data        SnapshotData `json:"data"`
	TotalItems  int          `json:"totalItems"`
}

// Includes reports whether the snapshot records the collection as included.
func (s *Snapshot) Includes(c Collection) bool {
	for _, v := range s.Collections {
		if v == c {
			return true
		}
	}
	return false
}

// SnapshotData holds the captured rows. A nil slice means the collection
// was not included; a non-nil empty slice means it was included and empty.
type SnapshotData struct {
	AITools   []AITool
	Templates []Template
}

// Count returns the number of items across all collections.
func (d SnapshotData) Count() int {
	return len(d.AITools) + len(d.Templates)
}

// Present reports whether the collection's key exists in the data.
func (d SnapshotData) Present(c Collection) bool {
	switch c {
	case CollectionAITools:
		return d.AITools != nil
	case CollectionTemplates:
		return d.Templates != nil
	}
	return false
}

func (d SnapshotData) MarshalJSON() ([]byte, error) {
	type wire struct {
		AITools   *[]AITool   `json:"aiTools,omitempty"`
		Templates *[]Template `json:"templates,omitempty"`
	}
	var w wire
	if d.AITools != nil {
		w.AITools = &d.AITools
	}
	if d.Templates != nil {
		w.Templates = &d.Templates
	}
	return json.Marshal(w)
}

func (d *SnapshotData) UnmarshalJSON(b []byte) error {
	var w struct {
		AITools   []AITool   `json:"aiTools"`
		Templates []Template `json:"templates"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	d.AITools = w.AITools
	d.Templates = w.Templates
	return nil
}

// Validate checks the snapshot envelope before it is imported.
func (s *Snapshot) Validate() error {
	var errs []FieldError

	if s.Version == "" {
		errs = append(errs, FieldError{Field: "version", Message: "required"})
	} else if s.Version != SnapshotVersion {
		errs = append(errs, FieldError{Field: "version", Message: fmt.Sprintf("unsupported version %q", s.Version)})
	}
	for i, c := range s.Collections {
		if !c.IsValid() {
			errs = append(errs, FieldError{Field: fmt.Sprintf("collections[%d]", i), Message: "unknown collection"})
		}
	}
	if len(s.Collections) == 0 && s.Data.AITools == nil && s.Data.Templates == nil {
		errs = append(errs, FieldError{Field: "data", Message: "snapshot contains no collections"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// BackupInfo is the persisted metadata of a snapshot.
type BackupInfo struct {
	ID          uuid.UUID
	Label       string
	Description string
	Kind        SnapshotKind
	Collections []Collection
	TotalItems  int
	SizeBytes   int64
	Checksum    string
	BlobKey     string
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
}

// BackupTotals aggregates the stored backups.
type BackupTotals struct {
	Count          int
	TotalSizeBytes int64
	NewestAt       *time.Time
	OldestAt       *time.Time
}
