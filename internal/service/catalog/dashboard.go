package catalog

import (
	"context"
	"fmt"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const dashboardKey = "dashboard"

// Dashboard returns the admin overview.
func (s *Service) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	if st, ok := s.dashboard.Get(dashboardKey); ok {
		return st, nil
	}
	gen := s.dashboard.Generation()

	byCategory, trending, err := s.tools.CountByCategory(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count tools: %w", err)
	}
	byType, err := s.templates.CountByOutputType(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count templates: %w", err)
	}
	ratings, err := s.ratings.Count(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count ratings: %w", err)
	}
	totals, err := s.backups.Totals(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("backup totals: %w", err)
	}
	audit, err := s.auditLog.Stats(ctx, s.now().UTC())
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("audit stats: %w", err)
	}

	st := domain.DashboardStats{
		TrendingTools:   trending,
		BackupCount:     totals.Count,
		BackupSizeBytes: totals.TotalSizeBytes,
		RatingCount:     ratings,
		AuditEntries24h: audit.Last24h,
		LatestBackupAt:  totals.NewestAt,
		ToolsByCategory: byCategory,
		TemplatesByType: byType,
	}
	for _, n := range byCategory {
		st.AIToolCount += n
	}
	for _, n := range byType {
		st.TemplateCount += n
	}

	s.dashboard.AddIfCurrent(dashboardKey, st, gen)
	return st, nil
}
