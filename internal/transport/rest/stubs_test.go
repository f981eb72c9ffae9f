package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/audit"
	"github.com/heartmarshall/eduprompt-backend/internal/service/backup"
	"github.com/heartmarshall/eduprompt-backend/internal/service/catalog"
	"github.com/heartmarshall/eduprompt-backend/internal/service/recommend"
	"github.com/heartmarshall/eduprompt-backend/internal/service/scheduler"
)

// Stubs below implement the handler interfaces with overridable funcs.
// Calling a method whose func is unset panics so unexpected calls surface.

type recommendStub struct {
	tools     func(ctx context.Context, c recommend.ToolCriteria) ([]recommend.ScoredTool, error)
	templates func(ctx context.Context, c recommend.TemplateCriteria) ([]recommend.ScoredTemplate, error)
}

var _ recommendService = (*recommendStub)(nil)

func (s *recommendStub) RecommendTools(ctx context.Context, c recommend.ToolCriteria) ([]recommend.ScoredTool, error) {
	return s.tools(ctx, c)
}

func (s *recommendStub) RecommendTemplates(ctx context.Context, c recommend.TemplateCriteria) ([]recommend.ScoredTemplate, error) {
	return s.templates(ctx, c)
}

type ratingStub struct {
	rateTool     func(ctx context.Context, id uuid.UUID, rating int) error
	rateTemplate func(ctx context.Context, id uuid.UUID, rating int) error
	use          func(ctx context.Context, id uuid.UUID) error
}

var _ ratingService = (*ratingStub)(nil)

func (s *ratingStub) RateTool(ctx context.Context, id uuid.UUID, rating int) error {
	return s.rateTool(ctx, id, rating)
}

func (s *ratingStub) RateTemplate(ctx context.Context, id uuid.UUID, rating int) error {
	return s.rateTemplate(ctx, id, rating)
}

func (s *ratingStub) UseTemplate(ctx context.Context, id uuid.UUID) error {
	return s.use(ctx, id)
}

type catalogStub struct {
	listTools       func(ctx context.Context, f domain.ToolFilter) (catalog.ToolPage, error)
	getTool         func(ctx context.Context, id uuid.UUID) (*domain.AITool, error)
	createTool      func(ctx context.Context, in catalog.ToolInput) (*domain.AITool, error)
	updateTool      func(ctx context.Context, id uuid.UUID, in catalog.ToolInput) (*domain.AITool, error)
	deleteTool      func(ctx context.Context, id uuid.UUID) error
	bulkUpdateTools func(ctx context.Context, ids []uuid.UUID, patch domain.ToolPatch) (int, error)
	bulkDeleteTools func(ctx context.Context, ids []uuid.UUID) (int, error)
	exportTools     func(ctx context.Context, f domain.ToolFilter) (domain.ToolExportDocument, error)
	importTools     func(ctx context.Context, doc domain.ToolExportDocument, overwrite bool) (catalog.ImportSummary, error)

	listTemplates       func(ctx context.Context, f domain.TemplateFilter) (catalog.TemplatePage, error)
	getTemplate         func(ctx context.Context, id uuid.UUID) (*domain.Template, error)
	createTemplate      func(ctx context.Context, in catalog.TemplateInput) (*domain.Template, error)
	updateTemplate      func(ctx context.Context, id uuid.UUID, in catalog.TemplateInput) (*domain.Template, error)
	deleteTemplate      func(ctx context.Context, id uuid.UUID) error
	bulkDeleteTemplates func(ctx context.Context, ids []uuid.UUID) (int, error)
	exportTemplates     func(ctx context.Context, f domain.TemplateFilter) (domain.TemplateExportDocument, error)
	importTemplates     func(ctx context.Context, doc domain.TemplateExportDocument, overwrite bool) (catalog.ImportSummary, error)

	dashboard func(ctx context.Context) (domain.DashboardStats, error)
}

var _ catalogService = (*catalogStub)(nil)

func (s *catalogStub) ListTools(ctx context.Context, f domain.ToolFilter) (catalog.ToolPage, error) {
	return s.listTools(ctx, f)
}

func (s *catalogStub) GetTool(ctx context.Context, id uuid.UUID) (*domain.AITool, error) {
	return s.getTool(ctx, id)
}

func (s *catalogStub) CreateTool(ctx context.Context, in catalog.ToolInput) (*domain.AITool, error) {
	return s.createTool(ctx, in)
}

func (s *catalogStub) UpdateTool(ctx context.Context, id uuid.UUID, in catalog.ToolInput) (*domain.AITool, error) {
	return s.updateTool(ctx, id, in)
}

func (s *catalogStub) DeleteTool(ctx context.Context, id uuid.UUID) error {
	return s.deleteTool(ctx, id)
}

func (s *catalogStub) BulkUpdateTools(ctx context.Context, ids []uuid.UUID, patch domain.ToolPatch) (int, error) {
	return s.bulkUpdateTools(ctx, ids, patch)
}

func (s *catalogStub) BulkDeleteTools(ctx context.Context, ids []uuid.UUID) (int, error) {
	return s.bulkDeleteTools(ctx, ids)
}

func (s *catalogStub) ExportTools(ctx context.Context, f domain.ToolFilter) (domain.ToolExportDocument, error) {
	return s.exportTools(ctx, f)
}

func (s *catalogStub) ImportTools(ctx context.Context, doc domain.ToolExportDocument, overwrite bool) (catalog.ImportSummary, error) {
	return s.importTools(ctx, doc, overwrite)
}

func (s *catalogStub) ListTemplates(ctx context.Context, f domain.TemplateFilter) (catalog.TemplatePage, error) {
	return s.listTemplates(ctx, f)
}

func (s *catalogStub) GetTemplate(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	return s.getTemplate(ctx, id)
}

func (s *catalogStub) CreateTemplate(ctx context.Context, in catalog.TemplateInput) (*domain.Template, error) {
	return s.createTemplate(ctx, in)
}

func (s *catalogStub) UpdateTemplate(ctx context.Context, id uuid.UUID, in catalog.TemplateInput) (*domain.Template, error) {
	return s.updateTemplate(ctx, id, in)
}

func (s *catalogStub) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return s.deleteTemplate(ctx, id)
}

func (s *catalogStub) BulkDeleteTemplates(ctx context.Context, ids []uuid.UUID) (int, error) {
	return s.bulkDeleteTemplates(ctx, ids)
}

func (s *catalogStub) ExportTemplates(ctx context.Context, f domain.TemplateFilter) (domain.TemplateExportDocument, error) {
	return s.exportTemplates(ctx, f)
}

func (s *catalogStub) ImportTemplates(ctx context.Context, doc domain.TemplateExportDocument, overwrite bool) (catalog.ImportSummary, error) {
	return s.importTemplates(ctx, doc, overwrite)
}

func (s *catalogStub) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	return s.dashboard(ctx)
}

type backupStub struct {
	create  func(ctx context.Context, in backup.CreateBackupInput) (*domain.Snapshot, error)
	get     func(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error)
	list    func(ctx context.Context) ([]domain.BackupInfo, error)
	del     func(ctx context.Context, id uuid.UUID) error
	verify  func(ctx context.Context, id uuid.UUID) (*backup.VerificationResult, error)
	export  func(ctx context.Context, opts backup.ExportOptions) (*domain.Snapshot, error)
	imp     func(ctx context.Context, snap *domain.Snapshot, opts backup.ImportOptions) (*backup.ImportResult, error)
	restore func(ctx context.Context, id uuid.UUID, opts backup.ImportOptions) (*backup.ImportResult, error)
}

var _ backupService = (*backupStub)(nil)

func (s *backupStub) CreateBackup(ctx context.Context, in backup.CreateBackupInput) (*domain.Snapshot, error) {
	return s.create(ctx, in)
}

func (s *backupStub) GetBackupData(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error) {
	return s.get(ctx, id)
}

func (s *backupStub) ListBackups(ctx context.Context) ([]domain.BackupInfo, error) {
	return s.list(ctx)
}

func (s *backupStub) DeleteBackup(ctx context.Context, id uuid.UUID) error {
	return s.del(ctx, id)
}

func (s *backupStub) VerifyBackup(ctx context.Context, id uuid.UUID) (*backup.VerificationResult, error) {
	return s.verify(ctx, id)
}

func (s *backupStub) ExportData(ctx context.Context, opts backup.ExportOptions) (*domain.Snapshot, error) {
	return s.export(ctx, opts)
}

func (s *backupStub) ImportData(ctx context.Context, snap *domain.Snapshot, opts backup.ImportOptions) (*backup.ImportResult, error) {
	return s.imp(ctx, snap, opts)
}

func (s *backupStub) RestoreBackup(ctx context.Context, id uuid.UUID, opts backup.ImportOptions) (*backup.ImportResult, error) {
	return s.restore(ctx, id, opts)
}

type schedulerStub struct {
	getConfig    func(ctx context.Context) (domain.ScheduleConfig, error)
	updateConfig func(ctx context.Context, in scheduler.UpdateConfigInput) (domain.ScheduleConfig, error)
	runNow       func(ctx context.Context) (*domain.RunResult, error)
	stats        func(ctx context.Context) (scheduler.Stats, error)
}

var _ schedulerService = (*schedulerStub)(nil)

func (s *schedulerStub) GetConfig(ctx context.Context) (domain.ScheduleConfig, error) {
	return s.getConfig(ctx)
}

func (s *schedulerStub) UpdateConfig(ctx context.Context, in scheduler.UpdateConfigInput) (domain.ScheduleConfig, error) {
	return s.updateConfig(ctx, in)
}

func (s *schedulerStub) RunBackupNow(ctx context.Context) (*domain.RunResult, error) {
	return s.runNow(ctx)
}

func (s *schedulerStub) GetBackupStats(ctx context.Context) (scheduler.Stats, error) {
	return s.stats(ctx)
}

type auditStub struct {
	list    func(ctx context.Context, f domain.AuditFilter) (audit.Page, error)
	byUser  func(ctx context.Context, userID uuid.UUID, limit, offset int) (audit.Page, error)
	stats   func(ctx context.Context) (domain.AuditStats, error)
	cleanup func(ctx context.Context, days int) (int, error)
}

var _ auditService = (*auditStub)(nil)

func (s *auditStub) List(ctx context.Context, f domain.AuditFilter) (audit.Page, error) {
	return s.list(ctx, f)
}

func (s *auditStub) ByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (audit.Page, error) {
	return s.byUser(ctx, userID, limit, offset)
}

func (s *auditStub) Stats(ctx context.Context) (domain.AuditStats, error) {
	return s.stats(ctx)
}

func (s *auditStub) Cleanup(ctx context.Context, days int) (int, error) {
	return s.cleanup(ctx, days)
}
