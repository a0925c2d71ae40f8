package projection

import "math"

// Summary condenses a projection into headline figures.
type Summary struct {
	Periods          int     `json:"periods"`
	TotalCustomers   float64 `json:"totalCustomers"`
	CumulativeProfit float64 `json:"cumulativeProfit"`
	// AvgGrowthPct is the compound per-period growth of the customer base
	// between the first and last period.
	AvgGrowthPct float64 `json:"avgGrowthPct"`
}

// Summarize reads the last record and derives the average growth rate. It is
// zero for fewer than two periods or when the first period acquired nobody.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	first := records[0]
	last := records[len(records)-1]
	s := Summary{
		Periods:          len(records),
		TotalCustomers:   last.TotalCustomersCumulative,
		CumulativeProfit: last.CumulativeProfit,
	}

	if len(records) > 1 && first.TotalCustomersCumulative > 0 {
		ratio := last.TotalCustomersCumulative / first.TotalCustomersCumulative
		s.AvgGrowthPct = (math.Pow(ratio, 1/float64(len(records)-1)) - 1) * 100
	}

	return s
}
