package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/money-model/internal/presets"
	"github.com/Simplici0/money-model/internal/store"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := store.Migrate(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	catalog, err := presets.Load()
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}

	cfg := Config{
		AdminEmail:    "admin@moneymodel.test",
		AdminPassword: "12345",
		Catalog:       catalog,
	}

	wantFirst := 1 + len(catalog.Keys())
	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != wantFirst {
				t.Fatalf("expected %d inserts in first run, got %d", wantFirst, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, "admin@moneymodel.test", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM scenarios WHERE preset_key IS NOT NULL`, nil, len(catalog.Keys()))
	assertCount(t, database, `SELECT COUNT(*) FROM scenarios WHERE preset_key = ?`, "gym", 1)

	var hash string
	if err := database.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, "admin@moneymodel.test").Scan(&hash); err != nil {
		t.Fatalf("query admin hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("12345")); err != nil {
		t.Fatalf("expected admin hash to match password: %v", err)
	}

	var gymID int64
	if err := database.QueryRow(`SELECT id FROM scenarios WHERE preset_key = 'gym'`).Scan(&gymID); err != nil {
		t.Fatalf("query gym scenario: %v", err)
	}
	gym, err := store.NewScenarios(database).Get(ctx, gymID)
	if err != nil {
		t.Fatalf("load gym scenario: %v", err)
	}
	if gym.Inputs.TotalCAC() != 350 {
		t.Fatalf("gym CAC=%v, want 350", gym.Inputs.TotalCAC())
	}
}

func TestRunSkipsAdminWithoutCredentials(t *testing.T) {
	database, err := store.Open(filepath.Join(t.TempDir(), "seed-empty.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()
	if err := store.Migrate(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	stats, err := Run(context.Background(), database, Config{})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 0 {
		t.Fatalf("expected no inserts, got %d", stats.Inserts)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM users`, nil, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
