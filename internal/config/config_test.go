package config

import (
	"reflect"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/hoctap")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("JWT_TTL_SECONDS", "")
	t.Setenv("LOG_RETENTION_DAYS", "")
	t.Setenv("PASSING_SCORE", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port: got %q", cfg.Port)
	}
	if cfg.SupabaseURL != "https://example.supabase.co" {
		t.Fatalf("SupabaseURL should lose the trailing slash, got %q", cfg.SupabaseURL)
	}
	if cfg.JWTTTLSeconds != 604800 {
		t.Fatalf("JWTTTLSeconds: got %d", cfg.JWTTTLSeconds)
	}
	if cfg.LogRetentionDays != 7 || cfg.PassingScore != 60 {
		t.Fatalf("unexpected defaults: retention=%d passing=%d", cfg.LogRetentionDays, cfg.PassingScore)
	}
	if cfg.CorsOrigins != nil {
		t.Fatalf("CorsOrigins: got %v", cfg.CorsOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("LOG_RETENTION_DAYS", "30")
	t.Setenv("PASSING_SCORE", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("Port: got %q", cfg.Port)
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(cfg.CorsOrigins, want) {
		t.Fatalf("CorsOrigins: got %v want %v", cfg.CorsOrigins, want)
	}
	if cfg.LogRetentionDays != 7 {
		t.Fatalf("LogRetentionDays should clamp to 7, got %d", cfg.LogRetentionDays)
	}
	if cfg.PassingScore != 60 {
		t.Fatalf("PassingScore should fall back to 60, got %d", cfg.PassingScore)
	}
}

func TestLoadPanicsWithoutSupabase(t *testing.T) {
	for _, key := range []string{"SUPABASE_URL", "SUPABASE_SERVICE_KEY"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "  ")
			defer func() {
				r := recover()
				if r == nil {
					t.Fatalf("expected panic for missing %s", key)
				}
				if msg, _ := r.(string); msg != "missing env var: "+key {
					t.Fatalf("unexpected panic: %v", r)
				}
			}()
			_ = Load()
		})
	}
}
