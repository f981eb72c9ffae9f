package config

import (
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata" // schedule timezone must resolve in minimal images
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Blob.validate(); err != nil {
		return fmt.Errorf("blob: %w", err)
	}

	if err := c.Backup.validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	if err := c.Recommend.validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be > 0 (got %d)", c.Cache.Size)
	}

	return nil
}

func (b *BlobConfig) validate() error {
	switch strings.ToLower(b.Driver) {
	case "fs":
		if b.FSRoot == "" {
			return fmt.Errorf("fs_root is required for the fs driver")
		}
	case "s3":
		if b.S3Bucket == "" {
			return fmt.Errorf("s3_bucket is required for the s3 driver")
		}
		if (b.S3AccessKeyID == "") != (b.S3SecretAccessKey == "") {
			return fmt.Errorf("s3 access key id and secret must be set together")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown driver %q (want fs, s3 or memory)", b.Driver)
	}
	return nil
}

func (b *BackupConfig) validate() error {
	if b.SchedulerInterval < 0 {
		return fmt.Errorf("scheduler_interval must be >= 0 (got %s)", b.SchedulerInterval)
	}
	if b.MaxImportItems <= 0 {
		return fmt.Errorf("max_import_items must be > 0 (got %d)", b.MaxImportItems)
	}
	if b.BlobPrefix != "" && !strings.HasSuffix(b.BlobPrefix, "/") {
		b.BlobPrefix += "/"
	}

	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", b.Timezone, err)
	}
	b.Location = loc

	return nil
}

func (r *RecommendConfig) validate() error {
	for name, w := range map[string]float64{
		"difficulty_weight": r.DifficultyWeight,
		"category_weight":   r.CategoryWeight,
		"popularity_weight": r.PopularityWeight,
		"trending_bonus":    r.TrendingBonus,
	} {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%s must be >= 0 (got %v)", name, w)
		}
	}
	if r.DifficultyWeight+r.CategoryWeight+r.PopularityWeight == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	if r.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be > 0 (got %d)", r.DefaultLimit)
	}
	if r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("max_limit (%d) must be >= default_limit (%d)", r.MaxLimit, r.DefaultLimit)
	}
	return nil
}
