package moneymodel

// HealthyRatio is the funded ratio at which a funnel pays for at least two
// new customers per acquired customer.
const HealthyRatio = 2.0

// FunnelInputs is one acquisition cycle's numbers. Take rates are percentages
// (0-100 intended); nothing here is validated.
type FunnelInputs struct {
	AdSpend            float64 `json:"adSpend" yaml:"adSpend"`
	SalesCosts         float64 `json:"salesCosts" yaml:"salesCosts"`
	OverheadAllocation float64 `json:"overheadAllocation" yaml:"overheadAllocation"`

	AttractionOfferRevenue float64 `json:"attractionOfferRevenue" yaml:"attractionOfferRevenue"`
	AttractionOfferCosts   float64 `json:"attractionOfferCosts" yaml:"attractionOfferCosts"`

	UpsellRevenue  float64 `json:"upsellRevenue" yaml:"upsellRevenue"`
	UpsellCosts    float64 `json:"upsellCosts" yaml:"upsellCosts"`
	UpsellTakeRate float64 `json:"upsellTakeRate" yaml:"upsellTakeRate"`

	DownsellRevenue  float64 `json:"downsellRevenue" yaml:"downsellRevenue"`
	DownsellCosts    float64 `json:"downsellCosts" yaml:"downsellCosts"`
	DownsellTakeRate float64 `json:"downsellTakeRate" yaml:"downsellTakeRate"`

	ContinuityFirstPayment float64 `json:"continuityFirstPayment" yaml:"continuityFirstPayment"`
	ContinuityCosts        float64 `json:"continuityCosts" yaml:"continuityCosts"`
	ContinuityTakeRate     float64 `json:"continuityTakeRate" yaml:"continuityTakeRate"`
}

// TotalCAC returns the customer acquisition cost.
func (in FunnelInputs) TotalCAC() float64 {
	return in.AdSpend + in.SalesCosts + in.OverheadAllocation
}

// Result holds the single-period unit economics derived from FunnelInputs.
type Result struct {
	TotalCAC      float64 `json:"totalCAC"`
	RevenuePeriod float64 `json:"revenuePeriod"`
	CostsPeriod   float64 `json:"costsPeriod"`
	ProfitPeriod  float64 `json:"profitPeriod"`

	CustomersFundedRatio float64 `json:"customersFundedRatio"`
	IsHealthy            bool    `json:"isHealthy"`
	CashMultiplier       float64 `json:"cashMultiplier"`
	ProfitMarginPct      float64 `json:"profitMarginPct"`

	AttractionProfit float64 `json:"attractionProfit"`
	UpsellProfit     float64 `json:"upsellProfit"`
	DownsellProfit   float64 `json:"downsellProfit"`
	ContinuityProfit float64 `json:"continuityProfit"`

	// Offers lists the weighted per-stream lines in funnel order.
	Offers []Offer `json:"offers"`
}

// Stream names one of the four offers in the funnel.
type Stream string

const (
	StreamAttraction Stream = "attraction"
	StreamUpsell     Stream = "upsell"
	StreamDownsell   Stream = "downsell"
	StreamContinuity Stream = "continuity"
)

// Offer is a single stream's take-rate weighted revenue and cost.
type Offer struct {
	Stream   Stream  `json:"stream"`
	TakeRate float64 `json:"takeRate"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Profit   float64 `json:"profit"`
}
