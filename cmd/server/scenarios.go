package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/money-model/internal/costs"
	"github.com/Simplici0/money-model/internal/export"
	"github.com/Simplici0/money-model/internal/moneymodel"
	"github.com/Simplici0/money-model/internal/presets"
	"github.com/Simplici0/money-model/internal/projection"
	"github.com/Simplici0/money-model/internal/store"
)

// evaluation is everything derived from a scenario on read.
type evaluation struct {
	Inputs        moneymodel.FunnelInputs
	Result        moneymodel.Result
	Insights      []moneymodel.Insight
	Records       []projection.Record
	Summary       projection.Summary
	DetailedCosts bool
	Breakdown     *costs.Breakdown
}

type scenarioListRow struct {
	store.ScenarioListItem
	Result moneymodel.Result
}

type scenariosViewData struct {
	baseViewData
	Query     string
	Scenarios []scenarioListRow
	Presets   []presets.Preset
}

type categoryView struct {
	Category costs.Category
	Total    float64
	Items    []costs.Item
}

type scenarioViewData struct {
	baseViewData
	Scenario     store.Scenario
	Eval         evaluation
	HealthyRatio float64
	MaxPeriods   int
	Fields       []formField
	Categories   []categoryView
}

// evaluate derives the effective inputs, result and projection. When items is
// non-empty the cost fields come from the item totals instead of in.
func (s *server) evaluate(in moneymodel.FunnelInputs, items []costs.Item, c projection.Controls) (evaluation, error) {
	b, err := costs.NewBreakdown(items)
	if err != nil {
		return evaluation{}, fmt.Errorf("build cost breakdown: %w", err)
	}

	ev := evaluation{Inputs: in, Breakdown: b, DetailedCosts: len(items) > 0}
	if ev.DetailedCosts {
		ev.Inputs = b.Apply(in)
	}

	ev.Result = moneymodel.Calculate(ev.Inputs)
	ev.Insights = moneymodel.Insights(ev.Result)
	ev.Records = projection.Simulate(ev.Inputs, ev.Result, c)
	ev.Summary = projection.Summarize(ev.Records)

	s.metrics.ObserveCalculation(ev.Result.IsHealthy)
	if len(ev.Records) > 0 {
		s.metrics.ObserveProjection(len(ev.Records))
	}
	return ev, nil
}

func (s *server) loadEvaluation(ctx context.Context, sc store.Scenario) (evaluation, error) {
	items, err := s.scenarios.ListCostItems(ctx, sc.ID)
	if err != nil {
		return evaluation{}, err
	}
	return s.evaluate(sc.Inputs, items, sc.Controls)
}

func (s *server) handleScenariosList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := s.scenarios.List(r.Context(), query)
	if err != nil {
		s.log.Error("list scenarios", zap.Error(err))
		http.Error(w, "failed to load scenarios", http.StatusInternalServerError)
		return
	}

	rows := make([]scenarioListRow, 0, len(items))
	for _, item := range items {
		costItems, err := s.scenarios.ListCostItems(r.Context(), item.ID)
		if err != nil {
			s.log.Error("list cost items", zap.Int64("scenario", item.ID), zap.Error(err))
			http.Error(w, "failed to load scenarios", http.StatusInternalServerError)
			return
		}
		in := item.Inputs
		if len(costItems) > 0 {
			b, err := costs.NewBreakdown(costItems)
			if err != nil {
				s.log.Error("build cost breakdown", zap.Int64("scenario", item.ID), zap.Error(err))
				http.Error(w, "failed to load scenarios", http.StatusInternalServerError)
				return
			}
			in = b.Apply(in)
		}
		rows = append(rows, scenarioListRow{ScenarioListItem: item, Result: moneymodel.Calculate(in)})
	}

	s.renderTemplate(w, "scenarios.html", scenariosViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:     query,
		Scenarios: rows,
		Presets:   s.catalog.All(),
	})
}

func (s *server) handleScenarioCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/scenarios?error=name+is+required", http.StatusSeeOther)
		return
	}

	sc := store.Scenario{Name: name, Controls: projection.DefaultControls()}
	if key := strings.TrimSpace(r.FormValue("preset")); key != "" {
		p, err := s.catalog.Get(key)
		if err != nil {
			http.Redirect(w, r, "/scenarios?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		sc.Description = p.Description
		sc.Inputs = p.Inputs
	}

	id, err := s.scenarios.Create(r.Context(), sc)
	if err != nil {
		s.log.Error("create scenario", zap.Error(err))
		http.Error(w, "failed to create scenario", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, scenarioPath(id)+"?success=Scenario+created", http.StatusSeeOther)
}

func (s *server) handleScenarioShow(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scenarioFromRequest(w, r)
	if !ok {
		return
	}

	ev, err := s.loadEvaluation(r.Context(), sc)
	if err != nil {
		s.log.Error("evaluate scenario", zap.Int64("scenario", sc.ID), zap.Error(err))
		http.Error(w, "failed to evaluate scenario", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "scenario.html", scenarioViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Scenario:     sc,
		Eval:         ev,
		HealthyRatio: moneymodel.HealthyRatio,
		MaxPeriods:   projection.MaxPeriods,
		Fields:       funnelFormFields(sc.Inputs),
		Categories:   categoryViews(ev.Breakdown),
	})
}

func categoryViews(b *costs.Breakdown) []categoryView {
	out := make([]categoryView, 0, len(costs.Categories))
	for _, c := range costs.Categories {
		out = append(out, categoryView{Category: c, Total: b.Total(c), Items: b.Items(c)})
	}
	return out
}

func (s *server) handleScenarioUpdate(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scenarioFromRequest(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirectWithError(w, r, scenarioPath(sc.ID), errors.New("name is required"))
		return
	}

	inputs, err := parseFunnelForm(r)
	if err != nil {
		redirectWithError(w, r, scenarioPath(sc.ID), err)
		return
	}
	controls, err := parseControlsForm(r)
	if err != nil {
		redirectWithError(w, r, scenarioPath(sc.ID), err)
		return
	}

	sc.Name = name
	sc.Description = strings.TrimSpace(r.FormValue("description"))
	sc.Inputs = inputs
	sc.Controls = controls
	if err := s.scenarios.Update(r.Context(), sc); err != nil {
		s.storeError(w, r, "update scenario", err)
		return
	}

	http.Redirect(w, r, scenarioPath(sc.ID)+"?success=Scenario+saved", http.StatusSeeOther)
}

func (s *server) handleScenarioDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := s.scenarios.Delete(r.Context(), id); err != nil {
		s.storeError(w, r, "delete scenario", err)
		return
	}

	http.Redirect(w, r, "/scenarios?success=Scenario+deleted", http.StatusSeeOther)
}

func (s *server) handleCostItemCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	item, err := parseCostItemForm(r, true)
	if err != nil {
		redirectWithError(w, r, scenarioPath(id), err)
		return
	}

	var b costs.Breakdown
	item, err = b.Add(item)
	if err != nil {
		redirectWithError(w, r, scenarioPath(id), err)
		return
	}

	if err := s.scenarios.AddCostItem(r.Context(), id, item); err != nil {
		s.storeError(w, r, "add cost item", err)
		return
	}

	http.Redirect(w, r, scenarioPath(id)+"?success=Cost+item+added", http.StatusSeeOther)
}

func (s *server) handleCostItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	item, err := parseCostItemForm(r, false)
	if err != nil {
		redirectWithError(w, r, scenarioPath(id), err)
		return
	}
	item.ID = chi.URLParam(r, "itemID")

	if err := s.scenarios.UpdateCostItem(r.Context(), id, item); err != nil {
		s.storeError(w, r, "update cost item", err)
		return
	}

	http.Redirect(w, r, scenarioPath(id)+"?success=Cost+item+saved", http.StatusSeeOther)
}

func (s *server) handleCostItemDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := s.scenarios.DeleteCostItem(r.Context(), id, chi.URLParam(r, "itemID")); err != nil {
		s.storeError(w, r, "delete cost item", err)
		return
	}

	http.Redirect(w, r, scenarioPath(id)+"?success=Cost+item+removed", http.StatusSeeOther)
}

func (s *server) handleScenarioExport(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scenarioFromRequest(w, r)
	if !ok {
		return
	}

	ev, err := s.loadEvaluation(r.Context(), sc)
	if err != nil {
		s.log.Error("evaluate scenario", zap.Int64("scenario", sc.ID), zap.Error(err))
		http.Error(w, "failed to evaluate scenario", http.StatusInternalServerError)
		return
	}

	setCSVHeaders(w, export.Filename("money-model", time.Now()))
	if err := export.WriteResultCSV(w, ev.Inputs, ev.Result); err != nil {
		s.log.Error("write result csv", zap.Int64("scenario", sc.ID), zap.Error(err))
	}
}

func (s *server) handleProjectionExport(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scenarioFromRequest(w, r)
	if !ok {
		return
	}

	ev, err := s.loadEvaluation(r.Context(), sc)
	if err != nil {
		s.log.Error("evaluate scenario", zap.Int64("scenario", sc.ID), zap.Error(err))
		http.Error(w, "failed to evaluate scenario", http.StatusInternalServerError)
		return
	}

	setCSVHeaders(w, export.Filename("money-model-projection", time.Now()))
	if err := export.WriteProjectionCSV(w, ev.Records); err != nil {
		s.log.Error("write projection csv", zap.Int64("scenario", sc.ID), zap.Error(err))
	}
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// scenarioFromRequest loads the {id} scenario, writing 400/404/500 itself on failure.
func (s *server) scenarioFromRequest(w http.ResponseWriter, r *http.Request) (store.Scenario, bool) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return store.Scenario{}, false
	}

	sc, err := s.scenarios.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "load scenario", err)
		return store.Scenario{}, false
	}
	return sc, true
}

func (s *server) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	s.log.Error(op, zap.String("rid", requestIDFrom(r.Context())), zap.Error(err))
	http.Error(w, "failed to "+op, http.StatusInternalServerError)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid scenario id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func scenarioPath(id int64) string {
	return "/scenarios/" + strconv.FormatInt(id, 10)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}
