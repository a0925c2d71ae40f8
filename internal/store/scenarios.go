package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/money-model/internal/costs"
	"github.com/Simplici0/money-model/internal/moneymodel"
	"github.com/Simplici0/money-model/internal/projection"
)

// ErrNotFound is returned when a scenario or cost item does not exist.
var ErrNotFound = errors.New("not found")

// Scenario is a saved set of funnel inputs plus the projection controls last
// used with it.
type Scenario struct {
	ID          int64
	Name        string
	Description string
	PresetKey   string
	Inputs      moneymodel.FunnelInputs
	Controls    projection.Controls
	CreatedAt   string
	UpdatedAt   string
}

// ScenarioListItem is the row shown in scenario listings.
type ScenarioListItem struct {
	ID        int64
	Name      string
	PresetKey string
	UpdatedAt string
	Inputs    moneymodel.FunnelInputs
}

// Scenarios is the scenario repository.
type Scenarios struct {
	db *sql.DB
}

func NewScenarios(db *sql.DB) *Scenarios {
	return &Scenarios{db: db}
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Create inserts s and returns its new ID.
func (r *Scenarios) Create(ctx context.Context, s Scenario) (int64, error) {
	return CreateScenario(ctx, r.db, s)
}

// CreateScenario inserts s using db, which may be a transaction.
func CreateScenario(ctx context.Context, db execer, s Scenario) (int64, error) {
	inputsJSON, err := json.Marshal(s.Inputs)
	if err != nil {
		return 0, fmt.Errorf("encode scenario inputs: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO scenarios (name, description, preset_key, inputs_json, initial_customers, periods, reinvestment_rate_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.Name, s.Description, nullString(s.PresetKey), string(inputsJSON),
		s.Controls.InitialCustomers, s.Controls.Periods, s.Controls.ReinvestmentRatePct)
	if err != nil {
		return 0, fmt.Errorf("insert scenario: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read scenario id: %w", err)
	}
	return id, nil
}

// Get loads a scenario by ID.
func (r *Scenarios) Get(ctx context.Context, id int64) (Scenario, error) {
	var s Scenario
	var inputsJSON string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(preset_key, ''), inputs_json,
			initial_customers, periods, reinvestment_rate_pct, created_at, updated_at
		FROM scenarios
		WHERE id = ?
	`, id).Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.PresetKey,
		&inputsJSON,
		&s.Controls.InitialCustomers,
		&s.Controls.Periods,
		&s.Controls.ReinvestmentRatePct,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, fmt.Errorf("scenario %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("query scenario: %w", err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &s.Inputs); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario inputs: %w", err)
	}
	return s, nil
}

// List returns scenarios whose name or description contains query, most
// recently updated first. An empty query lists everything.
func (r *Scenarios) List(ctx context.Context, query string) ([]ScenarioListItem, error) {
	search := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(preset_key, ''), updated_at, inputs_json
		FROM scenarios
		WHERE (? = '' OR name LIKE ? OR COALESCE(description, '') LIKE ?)
		ORDER BY datetime(updated_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	items := make([]ScenarioListItem, 0)
	for rows.Next() {
		var item ScenarioListItem
		var inputsJSON string
		if err := rows.Scan(&item.ID, &item.Name, &item.PresetKey, &item.UpdatedAt, &inputsJSON); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		if err := json.Unmarshal([]byte(inputsJSON), &item.Inputs); err != nil {
			return nil, fmt.Errorf("decode scenario %d inputs: %w", item.ID, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	return items, nil
}

// Update overwrites name, description, inputs and controls of s.ID.
func (r *Scenarios) Update(ctx context.Context, s Scenario) error {
	inputsJSON, err := json.Marshal(s.Inputs)
	if err != nil {
		return fmt.Errorf("encode scenario inputs: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE scenarios
		SET
			name = ?,
			description = ?,
			inputs_json = ?,
			initial_customers = ?,
			periods = ?,
			reinvestment_rate_pct = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, s.Name, s.Description, string(inputsJSON),
		s.Controls.InitialCustomers, s.Controls.Periods, s.Controls.ReinvestmentRatePct, s.ID)
	if err != nil {
		return fmt.Errorf("update scenario: %w", err)
	}
	return expectOneRow(result, "scenario", s.ID)
}

// Delete removes a scenario and its cost items.
func (r *Scenarios) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete scenario: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cost_items WHERE scenario_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete scenario cost items: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete scenario: %w", err)
	}
	if err := expectOneRow(result, "scenario", id); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete scenario: %w", err)
	}
	return nil
}

// AddCostItem appends an already validated item to a scenario.
func (r *Scenarios) AddCostItem(ctx context.Context, scenarioID int64, item costs.Item) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM scenarios WHERE id = ?)`, scenarioID).Scan(&exists); err != nil {
		return fmt.Errorf("check scenario existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("scenario %d: %w", scenarioID, ErrNotFound)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cost_items (id, scenario_id, category, name, amount, description, position)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM cost_items WHERE scenario_id = ?))
	`, item.ID, scenarioID, string(item.Category), item.Name, item.Amount, item.Description, scenarioID)
	if err != nil {
		return fmt.Errorf("insert cost item: %w", err)
	}

	return r.touch(ctx, scenarioID)
}

// UpdateCostItem rewrites name, amount and description of one item.
func (r *Scenarios) UpdateCostItem(ctx context.Context, scenarioID int64, item costs.Item) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cost_items
		SET name = ?, amount = ?, description = ?
		WHERE id = ? AND scenario_id = ?
	`, item.Name, item.Amount, item.Description, item.ID, scenarioID)
	if err != nil {
		return fmt.Errorf("update cost item: %w", err)
	}
	if err := expectOneRow(result, "cost item", item.ID); err != nil {
		return err
	}
	return r.touch(ctx, scenarioID)
}

// ListCostItems returns a scenario's items in insertion order.
func (r *Scenarios) ListCostItems(ctx context.Context, scenarioID int64) ([]costs.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, name, amount, COALESCE(description, '')
		FROM cost_items
		WHERE scenario_id = ?
		ORDER BY position ASC
	`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("query cost items: %w", err)
	}
	defer rows.Close()

	items := make([]costs.Item, 0)
	for rows.Next() {
		var it costs.Item
		var category string
		if err := rows.Scan(&it.ID, &category, &it.Name, &it.Amount, &it.Description); err != nil {
			return nil, fmt.Errorf("scan cost item: %w", err)
		}
		it.Category = costs.Category(category)
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost items: %w", err)
	}
	return items, nil
}

// DeleteCostItem removes one item from a scenario.
func (r *Scenarios) DeleteCostItem(ctx context.Context, scenarioID int64, itemID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cost_items WHERE id = ? AND scenario_id = ?`, itemID, scenarioID)
	if err != nil {
		return fmt.Errorf("delete cost item: %w", err)
	}
	if err := expectOneRow(result, "cost item", itemID); err != nil {
		return err
	}
	return r.touch(ctx, scenarioID)
}

func (r *Scenarios) touch(ctx context.Context, scenarioID int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE scenarios SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, scenarioID); err != nil {
		return fmt.Errorf("touch scenario: %w", err)
	}
	return nil
}

func expectOneRow(result sql.Result, what string, id any) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
