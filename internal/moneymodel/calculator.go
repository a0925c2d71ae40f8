package moneymodel

// Calculate computes the unit economics of one acquisition cycle.
//
// It never fails: a zero CAC yields a zero funded ratio and cash multiplier,
// and zero revenue yields a zero profit margin.
func Calculate(in FunnelInputs) Result {
	totalCAC := in.TotalCAC()

	offers := []Offer{
		weighted(StreamAttraction, in.AttractionOfferRevenue, in.AttractionOfferCosts, 100),
		weighted(StreamUpsell, in.UpsellRevenue, in.UpsellCosts, in.UpsellTakeRate),
		weighted(StreamDownsell, in.DownsellRevenue, in.DownsellCosts, in.DownsellTakeRate),
		weighted(StreamContinuity, in.ContinuityFirstPayment, in.ContinuityCosts, in.ContinuityTakeRate),
	}

	var revenue, costs float64
	for _, o := range offers {
		revenue += o.Revenue
		costs += o.Cost
	}
	profit := revenue - costs - totalCAC

	fundedRatio := 0.0
	cashMultiplier := 0.0
	if totalCAC > 0 {
		fundedRatio = profit / totalCAC
		cashMultiplier = revenue / totalCAC
	}

	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}

	return Result{
		TotalCAC:             totalCAC,
		RevenuePeriod:        revenue,
		CostsPeriod:          costs,
		ProfitPeriod:         profit,
		CustomersFundedRatio: fundedRatio,
		IsHealthy:            fundedRatio >= HealthyRatio,
		CashMultiplier:       cashMultiplier,
		ProfitMarginPct:      margin,
		AttractionProfit:     offers[0].Profit,
		UpsellProfit:         offers[1].Profit,
		DownsellProfit:       offers[2].Profit,
		ContinuityProfit:     offers[3].Profit,
		Offers:               offers,
	}
}

// weighted scales an offer by its take rate. The attraction offer is passed a
// rate of 100 and is left unscaled so its values stay exact.
func weighted(stream Stream, revenue, cost, takeRate float64) Offer {
	if stream != StreamAttraction {
		revenue *= takeRate / 100
		cost *= takeRate / 100
	}
	return Offer{
		Stream:   stream,
		TakeRate: takeRate,
		Revenue:  revenue,
		Cost:     cost,
		Profit:   revenue - cost,
	}
}
