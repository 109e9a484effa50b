package risk

import (
	"math"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// financialStability penalizes thin margins, weak returns, high leverage
// and sub-1 current ratio; rewards stable revenue growth.
func financialStability(in Inputs) domain.CategoryScore {
	score := 30.0 // baseline
	var factors []string
	present := 0
	const required = 4

	if v, ok := latestRatio(in, domain.NetMarginPct); ok {
		present++
		if v < 5 {
			score += 20
			factors = append(factors, "net margin below 5%")
		}
	}
	if v, ok := latestRatio(in, domain.ReturnOnEquity); ok {
		present++
		if v < 10 {
			score += 15
			factors = append(factors, "ROE below 10%")
		}
	}
	if v, ok := latestRatio(in, domain.DebtToEquity); ok {
		present++
		if v > 2 {
			score += 20
			factors = append(factors, "debt-to-equity above 2.0")
		}
	}
	if v, ok := latestRatio(in, domain.CurrentRatio); ok {
		present++
		if v < 1 {
			score += 15
			factors = append(factors, "current ratio below 1.0")
		}
	}

	if stableGrowth(in) {
		score -= 10
		factors = append(factors, "stable revenue growth across periods")
	}

	var recs []string
	if score >= 50 {
		recs = append(recs, "review leverage and margin trends before further exposure")
	}

	return domain.CategoryScore{
		Score:           clamp(score),
		Weight:          domain.CategoryWeights[domain.FinancialStability],
		Confidence:      float64(present) / required,
		Factors:         factors,
		Recommendations: recs,
	}
}

func stableGrowth(in Inputs) bool {
	var growths []float64
	for _, h := range in.Horizontal {
		if g := h.Growth[domain.TotalRevenue]; g != nil {
			growths = append(growths, *g)
		}
	}
	if len(growths) == 0 {
		return false
	}
	for _, g := range growths {
		if g < 0 {
			return false
		}
	}
	return true
}

// liquidityRisk scores on the latest current/quick/cash ratios. It has no
// working-capital trend factor.
func liquidityRisk(in Inputs) domain.CategoryScore {
	score := 20.0
	var factors []string
	present := 0
	const required = 3

	if v, ok := latestRatio(in, domain.CurrentRatio); ok {
		present++
		if v < 1.2 {
			score += 25
			factors = append(factors, "current ratio below 1.2")
		}
	}
	if v, ok := latestRatio(in, domain.QuickRatio); ok {
		present++
		if v < 0.8 {
			score += 25
			factors = append(factors, "quick ratio below 0.8")
		}
	}
	if v, ok := latestRatio(in, domain.CashRatio); ok {
		present++
		if v < 0.2 {
			score += 20
			factors = append(factors, "cash ratio below 0.2")
		}
	}

	var recs []string
	if score >= 50 {
		recs = append(recs, "monitor short-term obligations coverage closely")
	}

	return domain.CategoryScore{
		Score:           clamp(score),
		Weight:          domain.CategoryWeights[domain.LiquidityRisk],
		Confidence:      float64(present) / required,
		Factors:         factors,
		Recommendations: recs,
	}
}

// operationalRisk scores on asset-turnover trend and cost-of-revenue
// ratio volatility across periods.
func operationalRisk(in Inputs) domain.CategoryScore {
	score := 25.0
	var factors []string
	present := 0
	const required = 2

	if v, ok := latestRatio(in, domain.AssetTurnover); ok {
		present++
		if v < 0.5 {
			score += 20
			factors = append(factors, "asset turnover below 0.5x")
		}
	}

	var corRatios []float64
	for _, period := range in.Periods {
		if byName, ok := in.Ratios[period]; ok {
			if v := byName[domain.GrossMarginPct]; v != nil {
				corRatios = append(corRatios, *v)
			}
		}
	}
	if len(corRatios) >= 2 {
		present++
		if stdDev(corRatios) > 5 {
			score += 25
			factors = append(factors, "gross margin volatility above 5 points across periods")
		}
	}

	return domain.CategoryScore{
		Score:      clamp(score),
		Weight:     domain.CategoryWeights[domain.OperationalRisk],
		Confidence: float64(present) / required,
		Factors:    factors,
	}
}

// marketRisk scores on revenue volatility, with an optional injected
// sentiment score; absent sentiment defaults to a neutral 30 per spec.
func marketRisk(in Inputs) domain.CategoryScore {
	var revGrowths []float64
	for _, h := range in.Horizontal {
		if g := h.Growth[domain.TotalRevenue]; g != nil {
			revGrowths = append(revGrowths, *g)
		}
	}

	volScore := 30.0
	present := 0
	const required = 2
	if len(revGrowths) >= 2 {
		present++
		sd := stdDev(revGrowths)
		volScore = clamp(sd * 2)
	}

	var factors []string
	sentiment := 30.0
	if in.SentimentScore != nil {
		present++
		sentiment = *in.SentimentScore
		factors = append(factors, "external sentiment score incorporated")
	} else {
		factors = append(factors, "no external sentiment available; using neutral baseline")
	}

	score := 0.6*volScore + 0.4*sentiment

	return domain.CategoryScore{
		Score:      clamp(score),
		Weight:     domain.CategoryWeights[domain.MarketRisk],
		Confidence: float64(present) / required,
		Factors:    factors,
	}
}

// growthSustainability scores on the sign/magnitude of revenue and profit
// growth. It has no reinvestment measure.
func growthSustainability(in Inputs) domain.CategoryScore {
	score := 30.0
	var factors []string
	present := 0
	const required = 2

	var revGrowth, profitGrowth *float64
	for _, h := range in.Horizontal {
		if g := h.Growth[domain.TotalRevenue]; g != nil {
			revGrowth = g
		}
		if g := h.Growth[domain.NetProfit]; g != nil {
			profitGrowth = g
		}
	}

	if revGrowth != nil {
		present++
		switch {
		case *revGrowth < -10:
			score += 35
			factors = append(factors, "revenue contracting more than 10%")
		case *revGrowth < 0:
			score += 15
			factors = append(factors, "revenue declining")
		}
	}
	if profitGrowth != nil {
		present++
		if *profitGrowth < 0 {
			score += 20
			factors = append(factors, "net profit declining")
		}
	}

	return domain.CategoryScore{
		Score:      clamp(score),
		Weight:     domain.CategoryWeights[domain.GrowthSustainability],
		Confidence: float64(present) / required,
		Factors:    factors,
	}
}

// complianceRisk derives from 100 - compliance.overall_score when
// available; otherwise a placeholder 30 with reduced confidence, so the
// job stays degraded-but-success rather than failing (spec.md §9(b)).
func complianceRisk(in Inputs) domain.CategoryScore {
	if in.ComplianceScore != nil {
		return domain.CategoryScore{
			Score:      clamp(100 - *in.ComplianceScore),
			Weight:     domain.CategoryWeights[domain.ComplianceRisk],
			Confidence: 1.0,
		}
	}
	return domain.CategoryScore{
		Score:      30,
		Weight:     domain.CategoryWeights[domain.ComplianceRisk],
		Confidence: 0.2,
		Factors:    []string{"compliance assessment unavailable; placeholder score used"},
	}
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
