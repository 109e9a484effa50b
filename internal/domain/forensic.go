package domain

import "time"

// AltmanClassification is the pure function of z_score against the two
// fixed cutoffs {1.81, 2.99}.
type AltmanClassification string

const (
	AltmanSafe     AltmanClassification = "SAFE"
	AltmanGrey     AltmanClassification = "GREY"
	AltmanDistress AltmanClassification = "DISTRESS"
)

// AltmanLargeSentinel is the finite value X4 clamps to when total
// liabilities is zero (would otherwise be +Inf).
const AltmanLargeSentinel = 1e6

// AltmanScore is the five-ratio manufacturing-variant Z-Score for one
// period where both the income and balance statements are available.
type AltmanScore struct {
	Period         string
	X1, X2, X3, X4, X5 float64
	Z              float64
	Classification AltmanClassification
	TLClamped      bool // true when X4 used AltmanLargeSentinel (TL == 0)
}

// AltmanResult is the current score plus its ascending history.
type AltmanResult struct {
	Current *AltmanScore
	History []AltmanScore
}

// BeneishClassification flags the M-Score threshold crossing.
type BeneishClassification string

const (
	BeneishLikelyManipulator BeneishClassification = "LIKELY_MANIPULATOR"
	BeneishLow               BeneishClassification = "LOW"
)

// BeneishThreshold is the fixed M-Score cutoff: M > threshold flags likely
// manipulation.
const BeneishThreshold = -1.78

// BeneishScore is the eight-variable M-Score for one consecutive period
// pair. Any variable whose inputs were unavailable defaults to 1 (neutral)
// and is recorded in DefaultedVars.
type BeneishScore struct {
	Period                                     string
	DSRI, GMI, AQI, SGI, DEPI, SGAI, LVGI, TATA float64
	M                                          float64
	Classification                             BeneishClassification
	DefaultedVars                              []string
	RevenueZeroFlag                            bool
}

// BeneishResult is the current score plus its ascending history.
type BeneishResult struct {
	Current *BeneishScore
	History []BeneishScore
}

// BenfordCriticalValue95 is the chi-square critical value at 95%
// confidence with 8 degrees of freedom (9 first-digit bins).
const BenfordCriticalValue95 = 15.507

// BenfordResult is the first-digit chi-square goodness-of-fit test over
// all positive, finite magnitudes collected across a company's statements.
type BenfordResult struct {
	Success        bool
	Reason         string // set when Success is false (N < 10)
	N              int
	ObservedPct    map[int]float64 // digit 1..9 -> observed frequency %
	ExpectedPct    map[int]float64 // digit 1..9 -> log10(1+1/d) * 100
	ChiSquare      float64
	CriticalValue  float64
	IsAnomalous    bool
	Interpretation string
}

// AnomalyType enumerates the rule-based anomaly categories, extensible by
// registering additional rules under new type tags.
type AnomalyType string

const (
	RevenueDecline        AnomalyType = "REVENUE_DECLINE"
	ProfitCashDivergence  AnomalyType = "PROFIT_CASH_DIVERGENCE"
	ReceivablesBuildup    AnomalyType = "RECEIVABLES_BUILDUP"
	BenfordViolation      AnomalyType = "BENFORD_VIOLATION"
)

// Severity is the ordered label shared by anomalies and compliance
// violations.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Anomaly is one rule firing for one applicable period.
type Anomaly struct {
	Type        AnomalyType
	Severity    Severity
	Period      string
	Description string
	Evidence    map[string]interface{}
}

// ForensicResult bundles every C2/C3/C4 output for one company as of
// AnalysisDate.
type ForensicResult struct {
	CompanyID    string
	AnalysisDate time.Time
	Vertical     map[string]VerticalAnalysis   // statement key -> result
	Horizontal   map[string]HorizontalAnalysis // pair key -> result
	Ratios       RatioSet
	Altman       AltmanResult
	Beneish      BeneishResult
	Benford      BenfordResult
	Anomalies    []Anomaly
}

// KeyFindings summarizes the result the way a report renderer would
// headline it, mirroring the original IRIS forensic_service's
// _extract_key_findings.
func (r ForensicResult) KeyFindings() []string {
	var findings []string
	if len(r.Anomalies) > 0 {
		findings = append(findings, "anomalies detected")
	}
	if r.Benford.Success && r.Benford.IsAnomalous {
		findings = append(findings, "Benford's Law indicates potential data manipulation")
	}
	if r.Altman.Current != nil && r.Altman.Current.Classification == AltmanDistress {
		findings = append(findings, "Altman Z-Score indicates high bankruptcy risk")
	}
	if r.Beneish.Current != nil && r.Beneish.Current.Classification == BeneishLikelyManipulator {
		findings = append(findings, "Beneish M-Score suggests potential earnings manipulation")
	}
	return findings
}

// RedFlags lists the high/critical-severity signals the way the original
// IRIS forensic_service's _extract_red_flags did.
func (r ForensicResult) RedFlags() []string {
	var flags []string
	for _, a := range r.Anomalies {
		if a.Severity == SeverityHigh || a.Severity == SeverityCritical {
			flags = append(flags, string(a.Type)+": "+a.Description)
		}
	}
	if r.Benford.Success && r.Benford.IsAnomalous {
		flags = append(flags, "Benford's Law violation detected")
	}
	if r.Altman.Current != nil && r.Altman.Current.Classification == AltmanDistress {
		flags = append(flags, "high bankruptcy risk (Altman Z-Score)")
	}
	return flags
}
