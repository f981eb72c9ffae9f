package domain

// ToolCategory classifies an AI tool by what it produces.
type ToolCategory string

const (
	ToolCategoryTextGeneration  ToolCategory = "TEXT_GENERATION"
	ToolCategoryPresentation    ToolCategory = "PRESENTATION"
	ToolCategoryImageGeneration ToolCategory = "IMAGE_GENERATION"
	ToolCategoryVideo           ToolCategory = "VIDEO"
	ToolCategoryAssessment      ToolCategory = "ASSESSMENT"
	ToolCategoryDataAnalysis    ToolCategory = "DATA_ANALYSIS"
	ToolCategoryResearch        ToolCategory = "RESEARCH"
	ToolCategoryOther           ToolCategory = "OTHER"
)

func (c ToolCategory) String() string { return string(c) }

func (c ToolCategory) IsValid() bool {
	switch c {
	case ToolCategoryTextGeneration, ToolCategoryPresentation, ToolCategoryImageGeneration,
		ToolCategoryVideo, ToolCategoryAssessment, ToolCategoryDataAnalysis,
		ToolCategoryResearch, ToolCategoryOther:
		return true
	}
	return false
}

// PricingModel describes how an AI tool is paid for.
type PricingModel string

const (
	PricingModelFree     PricingModel = "FREE"
	PricingModelFreemium PricingModel = "FREEMIUM"
	PricingModelPaid     PricingModel = "PAID"
)

func (p PricingModel) String() string { return string(p) }

func (p PricingModel) IsValid() bool {
	switch p {
	case PricingModelFree, PricingModelFreemium, PricingModelPaid:
		return true
	}
	return false
}

// Difficulty is the skill level a tool or template expects from a teacher.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

func (d Difficulty) String() string { return string(d) }

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Rank returns the ordinal position of the difficulty (0-based), or -1 if invalid.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	}
	return -1
}

// OutputType is the kind of artifact a template produces.
type OutputType string

const (
	OutputTypeLessonPlan   OutputType = "LESSON_PLAN"
	OutputTypePresentation OutputType = "PRESENTATION"
	OutputTypeAssessment   OutputType = "ASSESSMENT"
	OutputTypeInteractive  OutputType = "INTERACTIVE"
	OutputTypeResearch     OutputType = "RESEARCH"
)

func (o OutputType) String() string { return string(o) }

func (o OutputType) IsValid() bool {
	switch o {
	case OutputTypeLessonPlan, OutputTypePresentation, OutputTypeAssessment,
		OutputTypeInteractive, OutputTypeResearch:
		return true
	}
	return false
}

// Collection names a catalog collection inside a snapshot.
type Collection string

const (
	CollectionAITools   Collection = "aiTools"
	CollectionTemplates Collection = "templates"
)

func (c Collection) String() string { return string(c) }

func (c Collection) IsValid() bool {
	switch c {
	case CollectionAITools, CollectionTemplates:
		return true
	}
	return false
}

// SnapshotKind records what produced a snapshot.
type SnapshotKind string

const (
	SnapshotKindManual    SnapshotKind = "MANUAL"
	SnapshotKindScheduled SnapshotKind = "SCHEDULED"
	SnapshotKindPreImport SnapshotKind = "PRE_IMPORT"
	SnapshotKindExport    SnapshotKind = "EXPORT"
)

func (k SnapshotKind) String() string { return string(k) }

func (k SnapshotKind) IsValid() bool {
	switch k {
	case SnapshotKindManual, SnapshotKindScheduled, SnapshotKindPreImport, SnapshotKindExport:
		return true
	}
	return false
}

// ScheduleFrequency is how often scheduled backups run.
type ScheduleFrequency string

const (
	FrequencyDaily   ScheduleFrequency = "daily"
	FrequencyWeekly  ScheduleFrequency = "weekly"
	FrequencyMonthly ScheduleFrequency = "monthly"
)

func (f ScheduleFrequency) String() string { return string(f) }

func (f ScheduleFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// RunStatus is the outcome of the last scheduler run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

func (s RunStatus) String() string { return string(s) }

// SchedulerState is the current position of the backup scheduler.
type SchedulerState string

const (
	SchedulerStateIdle    SchedulerState = "IDLE"
	SchedulerStateDue     SchedulerState = "DUE"
	SchedulerStateRunning SchedulerState = "RUNNING"
	SchedulerStateFailed  SchedulerState = "FAILED"
)

func (s SchedulerState) String() string { return string(s) }

// AuditAction represents the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate         AuditAction = "CREATE"
	AuditActionUpdate         AuditAction = "UPDATE"
	AuditActionDelete         AuditAction = "DELETE"
	AuditActionBulkUpdate     AuditAction = "BULK_UPDATE"
	AuditActionBulkDelete     AuditAction = "BULK_DELETE"
	AuditActionImport         AuditAction = "IMPORT"
	AuditActionExport         AuditAction = "EXPORT"
	AuditActionBackupCreate   AuditAction = "BACKUP_CREATE"
	AuditActionBackupDelete   AuditAction = "BACKUP_DELETE"
	AuditActionBackupRestore  AuditAction = "BACKUP_RESTORE"
	AuditActionScheduleUpdate AuditAction = "SCHEDULE_UPDATE"
	AuditActionAuditCleanup   AuditAction = "AUDIT_CLEANUP"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete,
		AuditActionBulkUpdate, AuditActionBulkDelete, AuditActionImport, AuditActionExport,
		AuditActionBackupCreate, AuditActionBackupDelete, AuditActionBackupRestore,
		AuditActionScheduleUpdate, AuditActionAuditCleanup:
		return true
	}
	return false
}

// AuditResource identifies the kind of entity an audit entry refers to.
type AuditResource string

const (
	AuditResourceAITool   AuditResource = "AI_TOOL"
	AuditResourceTemplate AuditResource = "TEMPLATE"
	AuditResourceBackup   AuditResource = "BACKUP"
	AuditResourceSchedule AuditResource = "SCHEDULE"
	AuditResourceAuditLog AuditResource = "AUDIT_LOG"
)

func (r AuditResource) String() string { return string(r) }

func (r AuditResource) IsValid() bool {
	switch r {
	case AuditResourceAITool, AuditResourceTemplate, AuditResourceBackup,
		AuditResourceSchedule, AuditResourceAuditLog:
		return true
	}
	return false
}

// ItemType identifies which catalog collection a rating belongs to.
type ItemType string

const (
	ItemTypeAITool   ItemType = "AI_TOOL"
	ItemTypeTemplate ItemType = "TEMPLATE"
)

func (t ItemType) String() string { return string(t) }

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeAITool, ItemTypeTemplate:
		return true
	}
	return false
}

// UserRole represents the authorization level of a user.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}
