// Package anomaly implements the rule-based anomaly detector (C4): a
// declarative, order-independent, extensible registry of rules, each
// evaluating the statement series and yielding zero or one Anomaly per
// applicable period. The engine never raises.
package anomaly

import "github.com/Rishikoli/IRIS1-sub001/internal/domain"

// Rule is the contract every anomaly rule implements — extending the
// detector means writing one of these and registering it.
type Rule interface {
	Type() domain.AnomalyType
	Evaluate(statements []domain.FinancialStatement) []domain.Anomaly
}

// DefaultRegistry is the built-in rule set from spec.md §4.4. Order does
// not affect the result; rules are independent.
func DefaultRegistry() []Rule {
	return []Rule{
		RevenueDeclineRule{},
		ProfitCashDivergenceRule{},
		ReceivablesBuildupRule{},
	}
}

// Result is the engine's never-raising aggregate output.
type Result struct {
	Success           bool
	Anomalies         []domain.Anomaly
	AnomaliesDetected int
}

// Detect runs every rule in the registry over the statement series and
// aggregates their findings. Benford-driven anomalies are appended
// separately by the orchestrator once C3's chi-square result is known
// (see AppendBenfordAnomaly), since this engine only sees statements.
func Detect(statements []domain.FinancialStatement, registry []Rule) Result {
	if registry == nil {
		registry = DefaultRegistry()
	}
	var all []domain.Anomaly
	for _, rule := range registry {
		all = append(all, rule.Evaluate(statements)...)
	}
	return Result{Success: true, Anomalies: all, AnomaliesDetected: len(all)}
}

// AppendBenfordAnomaly appends a BENFORD_VIOLATION anomaly to an existing
// result when C3's Benford test flagged is_anomalous, per spec.md §4.4.
func AppendBenfordAnomaly(res Result, chiSquare, critical float64, isAnomalous bool) Result {
	if !isAnomalous {
		return res
	}
	res.Anomalies = append(res.Anomalies, domain.Anomaly{
		Type:        domain.BenfordViolation,
		Severity:    domain.SeverityMedium,
		Description: "first-digit distribution deviates from Benford's Law",
		Evidence: map[string]interface{}{
			"chi_square":     chiSquare,
			"critical_value": critical,
		},
	})
	res.AnomaliesDetected = len(res.Anomalies)
	return res
}
