package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadFrom_ReadsDotEnvAndDefaults(t *testing.T) {
	for _, k := range []string{"ADMIN_EMAIL", "ADMIN_PASSWORD", "SESSION_SECRET", "DB_PATH", "PORT", "APP_ENV", "LOG_LEVEL", "MIGRATIONS_DIR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	path := writeDotEnv(t, `
# comment
ADMIN_EMAIL=admin@example.com
export ADMIN_PASSWORD=secret
SESSION_SECRET="s3cr3t"
`)

	cfg, warnings, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.AdminEmail != "admin@example.com" {
		t.Fatalf("AdminEmail=%q", cfg.AdminEmail)
	}
	if cfg.AdminPassword != "secret" {
		t.Fatalf("AdminPassword=%q", cfg.AdminPassword)
	}
	if cfg.SessionSecret != "s3cr3t" {
		t.Fatalf("SessionSecret=%q", cfg.SessionSecret)
	}
	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort || cfg.MigrationsDir != defaultMigrationsDir {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected default env to be development")
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestLoadFrom_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "Production")

	path := writeDotEnv(t, "PORT=1234\n")

	cfg, _, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "9090")
	}
	if cfg.IsDev() {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
}

func TestLoadFrom_MissingFileWarns(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("SESSION_SECRET", "")

	_, warnings, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", warnings)
	}
}
