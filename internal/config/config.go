package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Blob      BlobConfig      `yaml:"blob"`
	Backup    BackupConfig    `yaml:"backup"`
	Recommend RecommendConfig `yaml:"recommend"`
	Cache     CacheConfig     `yaml:"cache"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"33554432"`
	// TrustProxy makes client IP resolution honor X-Forwarded-For and X-Real-Ip.
	TrustProxy bool `yaml:"trust_proxy" env:"SERVER_TRUST_PROXY" env-default:"false"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
}

// AuthConfig holds access token settings. Tokens are issued elsewhere;
// this service only verifies them (catalogctl can mint one for operators).
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"eduprompt"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	PublicPerMinute int           `yaml:"public_per_minute" env:"RATE_LIMIT_PUBLIC_PER_MINUTE" env-default:"120"`
	AdminPerMinute  int           `yaml:"admin_per_minute"  env:"RATE_LIMIT_ADMIN_PER_MINUTE"  env-default:"60"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}

// BlobConfig selects and configures the snapshot blob store.
type BlobConfig struct {
	Driver string `yaml:"driver" env:"BLOB_DRIVER" env-default:"fs"`
	FSRoot string `yaml:"fs_root" env:"BLOB_FS_ROOT" env-default:"./data/blobs"`

	S3Bucket          string `yaml:"s3_bucket"            env:"BLOB_S3_BUCKET"`
	S3Region          string `yaml:"s3_region"            env:"BLOB_S3_REGION"            env-default:"us-east-1"`
	S3Endpoint        string `yaml:"s3_endpoint"          env:"BLOB_S3_ENDPOINT"`
	S3UsePathStyle    bool   `yaml:"s3_use_path_style"    env:"BLOB_S3_USE_PATH_STYLE"    env-default:"false"`
	S3AccessKeyID     string `yaml:"s3_access_key_id"     env:"BLOB_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key" env:"BLOB_S3_SECRET_ACCESS_KEY"`
}

// BackupConfig holds backup and scheduler settings.
type BackupConfig struct {
	BlobPrefix        string        `yaml:"blob_prefix"         env:"BACKUP_BLOB_PREFIX"         env-default:"backups/"`
	SchedulerInterval time.Duration `yaml:"scheduler_interval"  env:"BACKUP_SCHEDULER_INTERVAL"  env-default:"0s"`
	MaxImportItems    int           `yaml:"max_import_items"    env:"BACKUP_MAX_IMPORT_ITEMS"    env-default:"10000"`
	Timezone          string        `yaml:"timezone"            env:"BACKUP_TIMEZONE"            env-default:"Asia/Ho_Chi_Minh"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// RecommendConfig holds recommendation scoring parameters.
type RecommendConfig struct {
	DifficultyWeight float64 `yaml:"difficulty_weight" env:"RECOMMEND_DIFFICULTY_WEIGHT" env-default:"0.3"`
	CategoryWeight   float64 `yaml:"category_weight"   env:"RECOMMEND_CATEGORY_WEIGHT"   env-default:"0.3"`
	PopularityWeight float64 `yaml:"popularity_weight" env:"RECOMMEND_POPULARITY_WEIGHT" env-default:"0.4"`
	TrendingBonus    float64 `yaml:"trending_bonus"    env:"RECOMMEND_TRENDING_BONUS"    env-default:"0.1"`
	DefaultLimit     int     `yaml:"default_limit"     env:"RECOMMEND_DEFAULT_LIMIT"     env-default:"10"`
	MaxLimit         int     `yaml:"max_limit"         env:"RECOMMEND_MAX_LIMIT"         env-default:"50"`
}

// CacheConfig holds read cache settings.
type CacheConfig struct {
	Size int           `yaml:"size" env:"CACHE_SIZE" env-default:"256"`
	TTL  time.Duration `yaml:"ttl"  env:"CACHE_TTL"  env-default:"5m"`
}

// Origins returns the configured CORS origins as a list.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
