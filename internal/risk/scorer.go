// Package risk implements the composite risk scorer (C5): six weighted
// categories fused into an overall 0-100 score, mirroring the teacher's
// application/pipeline weighted composite scorer but inverted — here,
// higher means riskier — and fixed to the six categories of spec.md §4.5.
package risk

import (
	"github.com/rs/zerolog/log"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Inputs bundles everything the six category scorers read. Every field is
// optional; its absence degrades confidence, never drops the category.
type Inputs struct {
	Ratios        domain.RatioSet
	Horizontal    map[string]domain.HorizontalAnalysis
	Altman        domain.AltmanResult
	Beneish       domain.BeneishResult
	ComplianceScore *float64 // nil when compliance wasn't run yet
	SentimentScore  *float64 // nil => neutral 30, per spec.md §4.5
	Periods       []string  // ascending period keys, for trend/volatility
}

// Scorer computes the composite RiskAssessment for one company.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

// Score fuses the six category scores into the overall assessment.
// Σ weights is fixed at 1.0 by construction (domain.CategoryWeights).
func (s *Scorer) Score(companyID string, in Inputs) domain.RiskAssessment {
	categories := map[domain.RiskCategory]domain.CategoryScore{
		domain.FinancialStability:   financialStability(in),
		domain.LiquidityRisk:        liquidityRisk(in),
		domain.OperationalRisk:      operationalRisk(in),
		domain.MarketRisk:           marketRisk(in),
		domain.GrowthSustainability: growthSustainability(in),
		domain.ComplianceRisk:       complianceRisk(in),
	}

	overall := 0.0
	for _, cs := range categories {
		overall += cs.Score * cs.Weight
	}

	level := domain.ClassifyRiskLevel(overall)
	log.Info().Str("company", companyID).Float64("overall_score", overall).Str("level", string(level)).Msg("risk assessment computed")

	return domain.RiskAssessment{
		CompanyID:                companyID,
		OverallScore:             overall,
		Level:                    level,
		CategoryScores:           categories,
		InvestmentRecommendation: domain.RecommendationFor(level),
		MonitoringFrequency:      domain.MonitoringFor(level),
	}
}

// clamp keeps a category score within [0, 100].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// latestRatio returns the most recent non-nil value for name across
// in.Periods (assumed ascending), and whether one was found.
func latestRatio(in Inputs, name domain.RatioName) (float64, bool) {
	for i := len(in.Periods) - 1; i >= 0; i-- {
		if byName, ok := in.Ratios[in.Periods[i]]; ok {
			if v := byName[name]; v != nil {
				return *v, true
			}
		}
	}
	return 0, false
}
