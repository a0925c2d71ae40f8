package moneymodel

import "fmt"

// Level grades an insight for display.
type Level string

const (
	LevelGood    Level = "good"
	LevelWarning Level = "warning"
	LevelBad     Level = "bad"
	LevelInfo    Level = "info"
)

// Insight is a short human-readable observation about a Result.
type Insight struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Margin bands used when grading ProfitMarginPct.
const (
	StrongMarginPct   = 30.0
	ModerateMarginPct = 15.0
)

// Insights grades the funded ratio, cash multiplier and profit margin.
func Insights(r Result) []Insight {
	out := make([]Insight, 0, 3)

	switch {
	case r.CustomersFundedRatio >= HealthyRatio:
		out = append(out, Insight{LevelGood, "Your model is scalable! Each customer generates enough profit to acquire 2+ more customers."})
	case r.CustomersFundedRatio >= 1:
		out = append(out, Insight{LevelWarning, "You're breaking even but not scaling. Improve offers to reach 2.0+ ratio."})
	default:
		out = append(out, Insight{LevelBad, "You're losing money on each customer. Review your CAC and pricing strategy."})
	}

	out = append(out, Insight{LevelInfo, fmt.Sprintf(
		"Your cash multiplier is %.2fx, meaning you generate $%.2f for every $1 spent on customer acquisition.",
		r.CashMultiplier, r.CashMultiplier,
	)})

	switch {
	case r.ProfitMarginPct >= StrongMarginPct:
		out = append(out, Insight{LevelGood, "Strong profit margin indicates healthy pricing and cost structure."})
	case r.ProfitMarginPct >= ModerateMarginPct:
		out = append(out, Insight{LevelWarning, "Moderate profit margin. Consider optimizing costs or increasing prices."})
	default:
		out = append(out, Insight{LevelBad, "Low profit margin. Focus on reducing costs or increasing average order value."})
	}

	return out
}

// HealthLabel is the one-word health verdict used in reports.
func HealthLabel(r Result) string {
	if r.IsHealthy {
		return "Healthy"
	}
	return "Needs Improvement"
}
