package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port               string
	DatabaseURL        string
	SupabaseURL        string
	SupabaseServiceKey string
	JWTSecret          string
	JWTIssuer          string
	JWTTTLSeconds      int64
	CorsOrigins        []string
	LogMode            string
	LogDir             string
	LogRetentionDays   int
	PassingScore       int
	DiskPath           string
}

// Load reads the environment. Missing required variables panic so the process
// never starts half-configured.
func Load() Config {
	return Config{
		Port:               envOr("PORT", "8080"),
		DatabaseURL:        mustEnv("DATABASE_URL"),
		SupabaseURL:        strings.TrimRight(mustEnv("SUPABASE_URL"), "/"),
		SupabaseServiceKey: mustEnv("SUPABASE_SERVICE_KEY"),
		JWTSecret:          mustEnv("JWT_SECRET"),
		JWTIssuer:          envOr("JWT_ISSUER", "hoctap"),
		JWTTTLSeconds:      int64(envOrInt("JWT_TTL_SECONDS", 604800)),
		CorsOrigins:        parseCSV(envOr("CORS_ORIGINS", "")),
		LogMode:            envOr("LOG_MODE", "development"),
		LogDir:             envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays:   clamp(envOrInt("LOG_RETENTION_DAYS", 7), 1, 7),
		PassingScore:       clamp(envOrInt("PASSING_SCORE", 60), 0, 100),
		DiskPath:           envOr("METRICS_DISK_PATH", "/"),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
