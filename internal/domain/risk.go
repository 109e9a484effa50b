package domain

import "time"

// RiskCategory enumerates the six weighted risk categories fused by the
// composite risk scorer (C5).
type RiskCategory string

const (
	FinancialStability   RiskCategory = "FINANCIAL_STABILITY"
	MarketRisk           RiskCategory = "MARKET_RISK"
	OperationalRisk      RiskCategory = "OPERATIONAL_RISK"
	GrowthSustainability RiskCategory = "GROWTH_SUSTAINABILITY"
	ComplianceRisk       RiskCategory = "COMPLIANCE_RISK"
	LiquidityRisk        RiskCategory = "LIQUIDITY_RISK"
)

// CategoryWeights are fixed and must sum to exactly 1.0.
var CategoryWeights = map[RiskCategory]float64{
	FinancialStability:   0.25,
	MarketRisk:           0.20,
	OperationalRisk:      0.15,
	GrowthSustainability: 0.15,
	ComplianceRisk:       0.15,
	LiquidityRisk:        0.10,
}

// RiskLevel is the banded classification of OverallScore.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ClassifyRiskLevel applies the fixed thresholds: <30 LOW, 30-49 MEDIUM,
// 50-69 HIGH, >=70 CRITICAL.
func ClassifyRiskLevel(score float64) RiskLevel {
	switch {
	case score < 30:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 70:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RecommendationFor and MonitoringFor implement the table in spec.md §6.
func RecommendationFor(level RiskLevel) string {
	switch level {
	case RiskLow:
		return "RECOMMENDED"
	case RiskMedium:
		return "CAUTION"
	case RiskHigh:
		return "AVOID"
	default:
		return "STRONG AVOID"
	}
}

func MonitoringFor(level RiskLevel) string {
	switch level {
	case RiskLow:
		return "QUARTERLY"
	case RiskMedium:
		return "MONTHLY"
	case RiskHigh:
		return "WEEKLY"
	default:
		return "DAILY"
	}
}

// CategoryScore is one category's contribution to the overall assessment.
type CategoryScore struct {
	Score           float64
	Weight          float64
	Confidence      float64
	Factors         []string
	Recommendations []string
}

// RiskAssessment is the composite verdict produced by C5.
type RiskAssessment struct {
	CompanyID               string
	OverallScore            float64
	Level                   RiskLevel
	CategoryScores          map[RiskCategory]CategoryScore
	InvestmentRecommendation string
	MonitoringFrequency      string
}

// Framework enumerates the regulatory rule packs evaluated by C6.
type Framework string

const (
	IndAS         Framework = "INDAS"
	SEBI          Framework = "SEBI"
	CompaniesAct  Framework = "COMPANIES_ACT"
	RBI           Framework = "RBI"
)

// ComplianceStatus is the banded classification of OverallScore.
type ComplianceStatus string

const (
	Compliant           ComplianceStatus = "COMPLIANT"
	PartiallyCompliant   ComplianceStatus = "PARTIALLY_COMPLIANT"
	NonCompliant         ComplianceStatus = "NON_COMPLIANT"
)

// ClassifyComplianceStatus applies the fixed thresholds: >=85 COMPLIANT,
// 60-84 PARTIALLY_COMPLIANT, <60 NON_COMPLIANT.
func ClassifyComplianceStatus(score float64) ComplianceStatus {
	switch {
	case score >= 85:
		return Compliant
	case score >= 60:
		return PartiallyCompliant
	default:
		return NonCompliant
	}
}

// Violation is one rule breach detected by the compliance validator.
type Violation struct {
	Framework           Framework
	Severity            Severity
	Description         string
	RegulatoryReference string
	DetectedValue       float64
	Threshold           float64
}

// ComplianceAssessment is the composite verdict produced by C6.
type ComplianceAssessment struct {
	CompanyID       string
	OverallScore    float64
	Status          ComplianceStatus
	FrameworkScores map[Framework]float64
	Violations      []Violation
	Recommendations []string
	NextReviewDate  time.Time
}

// ViolationsSummary counts violations by severity, mirroring the original
// IRIS compliance report's violations_summary block.
func (c ComplianceAssessment) ViolationsSummary() map[Severity]int {
	out := map[Severity]int{SeverityCritical: 0, SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0}
	for _, v := range c.Violations {
		out[v.Severity]++
	}
	return out
}
