// Package export writes unit-economics results and projections as flat
// comma-separated reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Simplici0/money-model/internal/moneymodel"
	"github.com/Simplici0/money-model/internal/projection"
)

const reportTitle = "Money Model Calculator Results"

// Filename returns the download name for a report generated at t.
func Filename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, t.Format("2006-01-02"))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteResultCSV writes the fixed three-section report: acquisition costs,
// per-offer performance (take-rate weighted) and key metrics.
func WriteResultCSV(w io.Writer, in moneymodel.FunnelInputs, res moneymodel.Result) error {
	rows := [][]string{
		{reportTitle},
		{"=============================="},
		{"Customer Acquisition Costs"},
		{"Ad Spend", num(in.AdSpend)},
		{"Sales Costs", num(in.SalesCosts)},
		{"Overhead Allocation", num(in.OverheadAllocation)},
		{"Total CAC", num(res.TotalCAC)},
		{""},
		{"Offer Performance"},
	}

	offers := res.Offers
	if len(offers) == 0 {
		offers = moneymodel.Calculate(in).Offers
	}
	for i, o := range offers {
		label := offerLabel(o.Stream)
		rows = append(rows,
			[]string{label + " Revenue", num(o.Revenue)},
			[]string{label + " Costs", num(o.Cost)},
			[]string{label + " Profit", num(o.Profit)},
		)
		if i < len(offers)-1 {
			rows = append(rows, []string{""})
		}
	}

	rows = append(rows,
		[]string{""},
		[]string{"Key Metrics"},
		[]string{"Total Revenue (30 Days)", num(res.RevenuePeriod)},
		[]string{"Total Costs (30 Days)", num(res.CostsPeriod)},
		[]string{"Net Profit (30 Days)", num(res.ProfitPeriod)},
		[]string{"Customers Paid For", num(res.CustomersFundedRatio)},
		[]string{"Cash Multiplier", num(res.CashMultiplier)},
		[]string{"Profit Margin", num(res.ProfitMarginPct) + "%"},
		[]string{"Model Health", moneymodel.HealthLabel(res)},
	)

	return writeAll(w, rows)
}

var projectionHeader = []string{
	"Period",
	"New Customers",
	"Total Customers",
	"Attraction Revenue",
	"Upsell Revenue",
	"Downsell Revenue",
	"Continuity Revenue",
	"Total Revenue",
	"Acquisition Costs",
	"Fulfillment Costs",
	"Total Costs",
	"Profit",
	"Cumulative Profit",
	"Customers Paid For",
}

// WriteProjectionCSV writes one row per projected period under a header row.
func WriteProjectionCSV(w io.Writer, records []projection.Record) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, projectionHeader)
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Period),
			num(r.NewCustomers),
			num(r.TotalCustomersCumulative),
			num(r.Revenue.Attraction),
			num(r.Revenue.Upsell),
			num(r.Revenue.Downsell),
			num(r.Revenue.Continuity),
			num(r.Revenue.Total),
			num(r.Costs.Acquisition),
			num(r.Costs.Fulfillment),
			num(r.Costs.Total),
			num(r.Profit),
			num(r.CumulativeProfit),
			num(r.FundedRatioSnapshot),
		})
	}
	return writeAll(w, rows)
}

func offerLabel(s moneymodel.Stream) string {
	switch s {
	case moneymodel.StreamAttraction:
		return "Attraction"
	case moneymodel.StreamUpsell:
		return "Upsell"
	case moneymodel.StreamDownsell:
		return "Downsell"
	case moneymodel.StreamContinuity:
		return "Continuity"
	default:
		return string(s)
	}
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
