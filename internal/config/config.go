package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultEnv           = "development"
	defaultLogLevel      = "info"
	defaultMigrationsDir = "migrations"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	Env           string
	LogLevel      string
	MigrationsDir string
}

// Load reads environment variables and returns a populated Config.
// Values from a local .env file are used only for variables that are not
// already set.
func Load() (Config, []string, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. The returned warnings list
// settings that are missing but not fatal.
func LoadFrom(dotenvPath string) (Config, []string, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil, err
	}

	cfg := Config{
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        getenv("DB_PATH", defaultDBPath),
		Port:          getenv("PORT", defaultPort),
		Env:           strings.ToLower(getenv("APP_ENV", defaultEnv)),
		LogLevel:      strings.ToLower(getenv("LOG_LEVEL", defaultLogLevel)),
		MigrationsDir: getenv("MIGRATIONS_DIR", defaultMigrationsDir),
	}

	var warnings []string
	if cfg.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set")
	}

	return cfg, warnings, nil
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
