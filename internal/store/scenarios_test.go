package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Simplici0/money-model/internal/costs"
	"github.com/Simplici0/money-model/internal/moneymodel"
	"github.com/Simplici0/money-model/internal/projection"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "store-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := Migrate(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func sampleScenario(name string) Scenario {
	return Scenario{
		Name:        name,
		Description: "monthly membership funnel",
		Inputs: moneymodel.FunnelInputs{
			AdSpend:                200,
			AttractionOfferRevenue: 600,
			UpsellRevenue:          300,
			UpsellTakeRate:         50,
		},
		Controls: projection.DefaultControls(),
	}
}

func TestScenarios_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewScenarios(newTestDB(t))

	id, err := repo.Create(ctx, sampleScenario("Gym"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Gym" || got.Inputs.UpsellTakeRate != 50 || got.Controls != projection.DefaultControls() {
		t.Fatalf("unexpected scenario: %+v", got)
	}
	if got.PresetKey != "" {
		t.Fatalf("expected empty preset key, got %q", got.PresetKey)
	}

	got.Inputs.AdSpend = 250
	got.Controls.Periods = 24
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	again, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if again.Inputs.AdSpend != 250 || again.Controls.Periods != 24 {
		t.Fatalf("update not persisted: %+v", again)
	}
}

func TestScenarios_MissingReturnsErrNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewScenarios(newTestDB(t))

	if _, err := repo.Get(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	s := sampleScenario("ghost")
	s.ID = 99
	if err := repo.Update(ctx, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
	item := costs.Item{ID: "x", Name: "Rent", Amount: 1, Category: costs.CategoryOverhead}
	if err := repo.AddCostItem(ctx, 99, item); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddCostItem: expected ErrNotFound, got %v", err)
	}
}

func TestScenarios_ListFiltersByNameAndDescription(t *testing.T) {
	ctx := context.Background()
	repo := NewScenarios(newTestDB(t))

	for _, name := range []string{"Casa gym", "Agency retainer", "Course launch"} {
		if _, err := repo.Create(ctx, sampleScenario(name)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(all))
	}
	if all[0].Name != "Course launch" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	byName, err := repo.List(ctx, "Agency")
	if err != nil {
		t.Fatalf("List by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Agency retainer" {
		t.Fatalf("unexpected name filter result: %+v", byName)
	}

	byDescription, err := repo.List(ctx, "membership")
	if err != nil {
		t.Fatalf("List by description: %v", err)
	}
	if len(byDescription) != 3 {
		t.Fatalf("expected description filter to match all, got %d", len(byDescription))
	}
}

func TestScenarios_CostItemsLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewScenarios(newTestDB(t))

	id, err := repo.Create(ctx, sampleScenario("Gym"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var b costs.Breakdown
	first, _ := b.Add(costs.Item{Name: "Setter", Amount: 60, Category: costs.CategorySales})
	second, _ := b.Add(costs.Item{Name: "Rent", Amount: 50, Category: costs.CategoryOverhead})
	third, _ := b.Add(costs.Item{Name: "Closer", Amount: 40, Category: costs.CategorySales})
	for _, it := range []costs.Item{first, second, third} {
		if err := repo.AddCostItem(ctx, id, it); err != nil {
			t.Fatalf("AddCostItem: %v", err)
		}
	}

	items, err := repo.ListCostItems(ctx, id)
	if err != nil {
		t.Fatalf("ListCostItems: %v", err)
	}
	if len(items) != 3 || items[0].ID != first.ID || items[2].ID != third.ID {
		t.Fatalf("unexpected item order: %+v", items)
	}

	third.Amount = 45
	if err := repo.UpdateCostItem(ctx, id, third); err != nil {
		t.Fatalf("UpdateCostItem: %v", err)
	}

	if err := repo.DeleteCostItem(ctx, id, first.ID); err != nil {
		t.Fatalf("DeleteCostItem: %v", err)
	}
	if err := repo.DeleteCostItem(ctx, id, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	items, err = repo.ListCostItems(ctx, id)
	if err != nil {
		t.Fatalf("ListCostItems: %v", err)
	}
	loaded, err := costs.NewBreakdown(items)
	if err != nil {
		t.Fatalf("NewBreakdown: %v", err)
	}
	if got := loaded.Total(costs.CategorySales); got != 45 {
		t.Fatalf("sales total=%v, want 45", got)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	items, err = repo.ListCostItems(ctx, id)
	if err != nil {
		t.Fatalf("ListCostItems after delete: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected cost items removed with scenario, got %d", len(items))
	}
}
