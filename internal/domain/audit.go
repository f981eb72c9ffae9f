package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is an append-only record of an administrative mutation.
type AuditLogEntry struct {
	ID        uuid.UUID
	ActorID   *uuid.UUID // nil for system actions (scheduler)
	Action    AuditAction
	Resource  AuditResource
	TargetID  *string
	Details   map[string]any
	IPAddress *string
	CreatedAt time.Time
}

// AuditStats summarises the audit log.
type AuditStats struct {
	Total      int
	Last24h    int
	Last7d     int
	ByAction   map[AuditAction]int
	ByResource map[AuditResource]int
}

// Rating is a user's 1..5 score for a catalog item.
type Rating struct {
	ItemType  ItemType
	ItemID    uuid.UUID
	UserID    uuid.UUID
	Rating    int
	CreatedAt time.Time
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Engagement aggregates ratings of one catalog item.
type Engagement struct {
	RatingAvg   float64
	RatingCount int
	RecentCount int // ratings in the last 30 days
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	AIToolCount     int
	TemplateCount   int
	TrendingTools   int
	BackupCount     int
	BackupSizeBytes int64
	RatingCount     int
	AuditEntries24h int
	LatestBackupAt  *time.Time
	ToolsByCategory map[ToolCategory]int
	TemplatesByType map[OutputType]int
}
