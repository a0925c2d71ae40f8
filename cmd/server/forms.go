package main

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/money-model/internal/costs"
	"github.com/Simplici0/money-model/internal/moneymodel"
	"github.com/Simplici0/money-model/internal/projection"
)

type fieldKind int

const (
	kindAmount fieldKind = iota
	kindPercent
)

// funnelField binds one form input to a FunnelInputs field.
type funnelField struct {
	Name  string
	Label string
	kind  fieldKind
	ptr   func(*moneymodel.FunnelInputs) *float64
}

var funnelFields = []funnelField{
	{"ad_spend", "Ad spend", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.AdSpend }},
	{"sales_costs", "Sales costs", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.SalesCosts }},
	{"overhead_allocation", "Overhead allocation", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.OverheadAllocation }},
	{"attraction_offer_revenue", "Attraction offer revenue", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.AttractionOfferRevenue }},
	{"attraction_offer_costs", "Attraction offer costs", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.AttractionOfferCosts }},
	{"upsell_revenue", "Upsell revenue", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.UpsellRevenue }},
	{"upsell_costs", "Upsell costs", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.UpsellCosts }},
	{"upsell_take_rate", "Upsell take rate (%)", kindPercent, func(in *moneymodel.FunnelInputs) *float64 { return &in.UpsellTakeRate }},
	{"downsell_revenue", "Downsell revenue", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.DownsellRevenue }},
	{"downsell_costs", "Downsell costs", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.DownsellCosts }},
	{"downsell_take_rate", "Downsell take rate (%)", kindPercent, func(in *moneymodel.FunnelInputs) *float64 { return &in.DownsellTakeRate }},
	{"continuity_first_payment", "Continuity first payment", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.ContinuityFirstPayment }},
	{"continuity_costs", "Continuity costs", kindAmount, func(in *moneymodel.FunnelInputs) *float64 { return &in.ContinuityCosts }},
	{"continuity_take_rate", "Continuity take rate (%)", kindPercent, func(in *moneymodel.FunnelInputs) *float64 { return &in.ContinuityTakeRate }},
}

// formField is a funnel field with its current value, for rendering.
type formField struct {
	Name  string
	Label string
	Value float64
}

func funnelFormFields(in moneymodel.FunnelInputs) []formField {
	out := make([]formField, len(funnelFields))
	for i, f := range funnelFields {
		out[i] = formField{Name: f.Name, Label: f.Label, Value: *f.ptr(&in)}
	}
	return out
}

// parseFunnelForm reads every funnel field. Blank fields are zero; amounts
// must be non-negative and take rates within 0-100.
func parseFunnelForm(r *http.Request) (moneymodel.FunnelInputs, error) {
	var in moneymodel.FunnelInputs
	for _, f := range funnelFields {
		raw := strings.TrimSpace(r.FormValue(f.Name))
		if raw == "" {
			continue
		}

		var value float64
		var err error
		switch f.kind {
		case kindPercent:
			value, err = parsePercent(raw, f.Name)
		default:
			value, err = parseNonNegativeFloat(raw, f.Name)
		}
		if err != nil {
			return in, err
		}
		*f.ptr(&in) = value
	}
	return in, nil
}

// parseControlsForm reads the projection controls and checks their ranges.
func parseControlsForm(r *http.Request) (projection.Controls, error) {
	c := projection.DefaultControls()

	var err error
	if raw := strings.TrimSpace(r.FormValue("initial_customers")); raw != "" {
		if c.InitialCustomers, err = parseInt(raw, "initial_customers"); err != nil {
			return c, err
		}
	}
	if raw := strings.TrimSpace(r.FormValue("periods")); raw != "" {
		if c.Periods, err = parseInt(raw, "periods"); err != nil {
			return c, err
		}
	}
	if raw := strings.TrimSpace(r.FormValue("reinvestment_rate_pct")); raw != "" {
		if c.ReinvestmentRatePct, err = parsePercent(raw, "reinvestment_rate_pct"); err != nil {
			return c, err
		}
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// parseCostItemForm reads a cost line item. category is ignored when
// withCategory is false (updates keep the item's category).
func parseCostItemForm(r *http.Request, withCategory bool) (costs.Item, error) {
	item := costs.Item{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if item.Name == "" {
		return item, fmt.Errorf("name is required")
	}

	if withCategory {
		category, err := costs.ParseCategory(r.FormValue("category"))
		if err != nil {
			return item, fmt.Errorf("category must be one of sales, attraction, upsell, downsell, continuity, overhead")
		}
		item.Category = category
	}

	amount, err := parsePositiveFloat(r.FormValue("amount"), "amount")
	if err != nil {
		return item, err
	}
	item.Amount = amount
	return item, nil
}

func parseFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

func parseInt(raw, field string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	return value, nil
}

// validateInputs applies the form rules to inputs that arrive as JSON.
func validateInputs(in moneymodel.FunnelInputs) error {
	for _, f := range funnelFields {
		value := *f.ptr(&in)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%s must be numeric", f.Name)
		}
		if value < 0 {
			return fmt.Errorf("%s must be greater than or equal to 0", f.Name)
		}
		if f.kind == kindPercent && value > 100 {
			return fmt.Errorf("%s must be between 0 and 100", f.Name)
		}
	}
	return nil
}
