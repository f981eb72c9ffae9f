package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// NewAITool returns a valid AI tool with a unique name. It is not persisted.
func NewAITool() domain.AITool {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.AITool{
		ID:           uuid.New(),
		Name:         "Tool " + uniqueSuffix(),
		Description:  "Seeded tool",
		URL:          "https://example.com/tool",
		Category:     domain.ToolCategoryTextGeneration,
		Subjects:     []string{"Toán"},
		GradeLevels:  []string{"10"},
		Features:     []string{"chat"},
		UseCases:     []string{"lesson planning"},
		PricingModel: domain.PricingModelFree,
		Difficulty:   domain.DifficultyBeginner,
		Popularity:   10,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTemplate returns a valid template with a unique name. It is not persisted.
func NewTemplate() domain.Template {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Template{
		ID:                 uuid.New(),
		Name:               "Template " + uniqueSuffix(),
		Description:        "Seeded template",
		Subject:            "Toán",
		GradeLevels:        []string{"10"},
		OutputType:         domain.OutputTypeLessonPlan,
		Content:            "Soạn giáo án về {{topic}}",
		Variables:          []domain.TemplateVariable{{Name: "topic", Label: "Chủ đề", Type: "text", Required: true}},
		Tags:               []string{"giáo án"},
		Difficulty:         domain.DifficultyBeginner,
		RecommendedToolIDs: []uuid.UUID{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// SeedAITool inserts an AI tool, applying the optional mutators first.
func SeedAITool(t *testing.T, pool *pgxpool.Pool, mutate ...func(*domain.AITool)) domain.AITool {
	t.Helper()

	tool := NewAITool()
	for _, m := range mutate {
		m(&tool)
	}

	features, _ := json.Marshal(tool.Features)
	useCases, _ := json.Marshal(tool.UseCases)

	_, err := pool.Exec(context.Background(),
		`INSERT INTO ai_tools (id, name, description, url, category, subjects, grade_levels, features, use_cases,
		                       pricing_model, difficulty, vietnamese_support, popularity, trending, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		tool.ID, tool.Name, tool.Description, tool.URL, string(tool.Category), tool.Subjects, tool.GradeLevels,
		features, useCases, string(tool.PricingModel), string(tool.Difficulty), tool.VietnameseSupport,
		tool.Popularity, tool.Trending, tool.CreatedAt, tool.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAITool: %v", err)
	}

	return tool
}

// SeedTemplate inserts a template, applying the optional mutators first.
func SeedTemplate(t *testing.T, pool *pgxpool.Pool, mutate ...func(*domain.Template)) domain.Template {
	t.Helper()

	tpl := NewTemplate()
	for _, m := range mutate {
		m(&tpl)
	}

	variables, _ := json.Marshal(tpl.Variables)
	toolIDs := make([]string, len(tpl.RecommendedToolIDs))
	for i, id := range tpl.RecommendedToolIDs {
		toolIDs[i] = id.String()
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO templates (id, name, description, subject, grade_levels, output_type, content, variables, tags,
		                        difficulty, recommended_tool_ids, usage_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::uuid[], $12, $13, $14)`,
		tpl.ID, tpl.Name, tpl.Description, tpl.Subject, tpl.GradeLevels, string(tpl.OutputType), tpl.Content,
		variables, tpl.Tags, string(tpl.Difficulty), toolIDs, tpl.UsageCount, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTemplate: %v", err)
	}

	return tpl
}

// SeedBackup inserts a backup metadata row created at the given time.
func SeedBackup(t *testing.T, pool *pgxpool.Pool, createdAt time.Time) domain.BackupInfo {
	t.Helper()

	id := uuid.New()
	info := domain.BackupInfo{
		ID:          id,
		Label:       "Backup " + uniqueSuffix(),
		Kind:        domain.SnapshotKindManual,
		Collections: []domain.Collection{domain.CollectionAITools},
		TotalItems:  1,
		SizeBytes:   128,
		Checksum:    "deadbeef",
		BlobKey:     "backups/" + id.String() + ".json",
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO backups (id, label, description, kind, collections, total_items, size_bytes, checksum, blob_key, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		info.ID, info.Label, info.Description, string(info.Kind), []string{"aiTools"}, info.TotalItems,
		info.SizeBytes, info.Checksum, info.BlobKey, nil, info.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedBackup: %v", err)
	}

	return info
}
