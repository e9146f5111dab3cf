package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"talib.app/backend/pkg/database"
	"talib.app/backend/pkg/storage"
)

type Config struct {
	AppEnv         string
	AppVersion     string
	Port           string
	LogLevel       string
	AllowedOrigins []string
	FrontendURL    string

	Database database.Config
	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	Storage       storage.Config
	MaxUploadSize int64

	MeiliSearchHost string
	MeiliMasterKey  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	RateLimitListing time.Duration
	RateLimitReport  time.Duration

	SeedAdminUsername string
	SeedAdminEmail    string
	SeedAdminPassword string
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		AppVersion:     getEnv("APP_VERSION", "1.0.0"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),

		Database: database.Config{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "talib"),
			LogSQL:   getEnv("DB_LOG_SQL", "false") == "true",
		},
		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		Storage: storage.Config{
			Driver:              getEnv("STORAGE_DRIVER", "local"),
			LocalDir:            getEnv("UPLOAD_DIR", "uploads"),
			PublicBaseURL:       os.Getenv("PUBLIC_BASE_URL"),
			CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
			CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			S3Bucket:            os.Getenv("S3_BUCKET"),
			S3Region:            getEnv("S3_REGION", "ap-southeast-1"),
			S3Endpoint:          os.Getenv("S3_ENDPOINT"),
			S3AccessKey:         os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey:         os.Getenv("S3_SECRET_KEY"),
			S3PublicURL:         os.Getenv("S3_PUBLIC_URL"),
		},

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		SeedAdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@talib.app"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	ttlMinutes, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "1440"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %q", os.Getenv("JWT_TTL_MINUTES"))
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute

	maxUploadMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "5"))
	if err != nil || maxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	cfg.MaxUploadSize = int64(maxUploadMB) << 20

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	cfg.Database.MaxConns = maxConns

	cfg.RateLimitListing, err = parseDuration(getEnv("RATE_LIMIT_LISTING", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LISTING: %w", err)
	}
	cfg.RateLimitReport, err = parseDuration(getEnv("RATE_LIMIT_REPORT", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REPORT: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "change-me"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
