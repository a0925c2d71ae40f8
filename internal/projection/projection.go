// Package projection simulates how a funnel's unit economics compound over
// successive acquisition periods when profit is reinvested into acquisition.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/Simplici0/money-model/internal/moneymodel"
)

// MaxPeriods is the longest projection accepted by Controls.Validate.
const MaxPeriods = 36

// ErrInvalidControls is returned by Controls.Validate.
var ErrInvalidControls = errors.New("invalid projection controls")

// Controls are the simulation knobs chosen by the caller.
type Controls struct {
	InitialCustomers    int     `json:"initialCustomers"`
	Periods             int     `json:"periods"`
	ReinvestmentRatePct float64 `json:"reinvestmentRatePct"`
}

// DefaultControls returns a 12 period projection seeded with 10 customers and
// full reinvestment.
func DefaultControls() Controls {
	return Controls{InitialCustomers: 10, Periods: 12, ReinvestmentRatePct: 100}
}

// Validate checks the documented control ranges. Simulate itself does not call it.
func (c Controls) Validate() error {
	if c.InitialCustomers < 1 {
		return fmt.Errorf("%w: initial customers must be at least 1", ErrInvalidControls)
	}
	if c.Periods < 1 || c.Periods > MaxPeriods {
		return fmt.Errorf("%w: periods must be between 1 and %d", ErrInvalidControls, MaxPeriods)
	}
	if c.ReinvestmentRatePct < 0 || c.ReinvestmentRatePct > 100 || math.IsNaN(c.ReinvestmentRatePct) {
		return fmt.Errorf("%w: reinvestment rate must be between 0 and 100", ErrInvalidControls)
	}
	return nil
}

// Revenue is one period's revenue split by offer stream.
type Revenue struct {
	Attraction float64 `json:"attraction"`
	Upsell     float64 `json:"upsell"`
	Downsell   float64 `json:"downsell"`
	Continuity float64 `json:"continuity"`
	Total      float64 `json:"total"`
}

// Costs is one period's spend split by source.
type Costs struct {
	Acquisition float64 `json:"acquisition"`
	Fulfillment float64 `json:"fulfillment"`
	Total       float64 `json:"total"`
}

// Record is the outcome of one simulated period. Customer counts are whole
// numbers held in float64 so very large budgets saturate instead of wrapping.
type Record struct {
	Period                   int     `json:"period"`
	NewCustomers             float64 `json:"newCustomers"`
	TotalCustomersCumulative float64 `json:"totalCustomersCumulative"`
	Revenue                  Revenue `json:"revenue"`
	Costs                    Costs   `json:"costs"`
	Profit                   float64 `json:"profit"`
	CumulativeProfit         float64 `json:"cumulativeProfit"`
	// FundedRatioSnapshot is the single-period funded ratio, copied as-is.
	FundedRatioSnapshot float64 `json:"fundedRatioSnapshot"`
}

// Simulate runs exactly c.Periods periods. Period 1's acquisition budget is
// InitialCustomers * TotalCAC; afterwards only ReinvestmentRatePct of a
// positive profit is carried into the next period's budget.
//
// Continuity revenue is collected from every customer acquired so far, while
// fulfillment cost is charged only for new customers at the single-period
// CostsPeriod, which already contains one continuity cost per customer.
//
// NOTE: the active base's recurring continuity cost is never charged, so
// continuity profit grows with the whole base. Confirm the intended cost model
// before changing this; TestSimulate_ContinuityCostNotScaledByActiveBase pins it.
func Simulate(in moneymodel.FunnelInputs, res moneymodel.Result, c Controls) []Record {
	if c.Periods <= 0 {
		return []Record{}
	}

	records := make([]Record, 0, c.Periods)

	var cumulativeCustomers float64
	var cumulativeProfit float64
	available := float64(c.InitialCustomers) * res.TotalCAC

	for p := 1; p <= c.Periods; p++ {
		newCustomers := acquire(available, res.TotalCAC)
		cumulativeCustomers += newCustomers

		n := newCustomers
		rev := Revenue{
			Attraction: n * in.AttractionOfferRevenue,
			Upsell:     n * in.UpsellRevenue * (in.UpsellTakeRate / 100),
			Downsell:   n * in.DownsellRevenue * (in.DownsellTakeRate / 100),
			Continuity: cumulativeCustomers * in.ContinuityFirstPayment * (in.ContinuityTakeRate / 100),
		}
		rev.Total = rev.Attraction + rev.Upsell + rev.Downsell + rev.Continuity

		cost := Costs{
			Acquisition: n * res.TotalCAC,
			Fulfillment: n * res.CostsPeriod,
		}
		cost.Total = cost.Acquisition + cost.Fulfillment

		profit := rev.Total - cost.Total
		cumulativeProfit += profit

		available = math.Max(0, profit*(c.ReinvestmentRatePct/100))

		records = append(records, Record{
			Period:                   p,
			NewCustomers:             newCustomers,
			TotalCustomersCumulative: cumulativeCustomers,
			Revenue:                  rev,
			Costs:                    cost,
			Profit:                   profit,
			CumulativeProfit:         cumulativeProfit,
			FundedRatioSnapshot:      res.CustomersFundedRatio,
		})
	}

	return records
}

// acquire returns floor(budget / cac). A zero CAC buys nobody, as does a
// quotient that is not finite. A negative CAC is divided like any other, so a
// negative seed budget buys back the initial cohort.
func acquire(budget, cac float64) float64 {
	if cac == 0 {
		return 0
	}
	n := math.Floor(budget / cac)
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	return n
}
