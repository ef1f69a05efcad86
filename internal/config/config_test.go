package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want 8080", cfg.Port)
	}
	if cfg.DBName != "trade_account_db" {
		t.Errorf("DBName: got %q", cfg.DBName)
	}
	if cfg.JWTExpireHours != 24 {
		t.Errorf("JWTExpireHours: got %d, want 24", cfg.JWTExpireHours)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env: got %q, want dev", cfg.Env)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins: got %v, want none", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRE_HOURS", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, http://localhost:3000")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port: got %q, want 9090", cfg.Port)
	}
	if cfg.JWTExpireHours != 1 {
		t.Errorf("JWTExpireHours: got %d, want 1", cfg.JWTExpireHours)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigins: got %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidate_ProdRequiresRealSecret(t *testing.T) {
	t.Setenv("ENV", "prod")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for default JWT secret in prod")
	}

	t.Setenv("JWT_SECRET", "an-actual-secret")
	cfg = Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDatabaseURL(t *testing.T) {
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASS", "p@ss")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "trades")

	got := Load().DatabaseURL()
	want := "postgres://u:p%40ss@db:5433/trades?sslmode=disable"
	if got != want {
		t.Errorf("DatabaseURL: got %q, want %q", got, want)
	}
}
