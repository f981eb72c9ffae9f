package domain

import "testing"

func TestToolCategory_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category ToolCategory
		want     bool
	}{
		{ToolCategoryTextGeneration, true},
		{ToolCategoryPresentation, true},
		{ToolCategoryImageGeneration, true},
		{ToolCategoryVideo, true},
		{ToolCategoryAssessment, true},
		{ToolCategoryDataAnalysis, true},
		{ToolCategoryResearch, true},
		{ToolCategoryOther, true},
		{ToolCategory("CHAT"), false},
		{ToolCategory(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			t.Parallel()
			if got := tt.category.IsValid(); got != tt.want {
				t.Errorf("ToolCategory(%q).IsValid() = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestDifficulty_Rank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    Difficulty
		want int
	}{
		{DifficultyBeginner, 0},
		{DifficultyIntermediate, 1},
		{DifficultyAdvanced, 2},
		{Difficulty("EXPERT"), -1},
	}
	for _, tt := range tests {
		if got := tt.d.Rank(); got != tt.want {
			t.Errorf("Difficulty(%q).Rank() = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestOutputType_IsValid(t *testing.T) {
	t.Parallel()

	for _, o := range []OutputType{OutputTypeLessonPlan, OutputTypePresentation, OutputTypeAssessment, OutputTypeInteractive, OutputTypeResearch} {
		if !o.IsValid() {
			t.Errorf("OutputType(%q).IsValid() = false", o)
		}
	}
	if OutputType("ESSAY").IsValid() {
		t.Error("OutputType(ESSAY).IsValid() = true")
	}
}

func TestScheduleFrequency_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		f    ScheduleFrequency
		want bool
	}{
		{FrequencyDaily, true},
		{FrequencyWeekly, true},
		{FrequencyMonthly, true},
		{ScheduleFrequency("DAILY"), false},
		{ScheduleFrequency("hourly"), false},
	}
	for _, tt := range tests {
		if got := tt.f.IsValid(); got != tt.want {
			t.Errorf("ScheduleFrequency(%q).IsValid() = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestAuditAction_IsValid(t *testing.T) {
	t.Parallel()

	if !AuditActionBackupRestore.IsValid() {
		t.Error("BACKUP_RESTORE should be valid")
	}
	if AuditAction("LOGIN").IsValid() {
		t.Error("LOGIN should be invalid")
	}
	if got := AuditActionAuditCleanup.String(); got != "AUDIT_CLEANUP" {
		t.Errorf("got %q, want AUDIT_CLEANUP", got)
	}
}

func TestAuditResource_IsValid(t *testing.T) {
	t.Parallel()

	for _, r := range []AuditResource{AuditResourceAITool, AuditResourceTemplate, AuditResourceBackup, AuditResourceSchedule, AuditResourceAuditLog} {
		if !r.IsValid() {
			t.Errorf("AuditResource(%q).IsValid() = false", r)
		}
	}
	if AuditResource("USER").IsValid() {
		t.Error("USER should be invalid")
	}
}

func TestUserRole_IsAdmin(t *testing.T) {
	t.Parallel()

	if !UserRoleAdmin.IsAdmin() {
		t.Error("admin role should be admin")
	}
	if UserRoleUser.IsAdmin() {
		t.Error("user role should not be admin")
	}
	if UserRole("root").IsValid() {
		t.Error("root should be invalid")
	}
}
