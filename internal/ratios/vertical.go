// Package ratios implements the vertical/horizontal decomposition and the
// fourteen named financial ratios (C2). All computation is decimal-internal;
// values are rounded and converted to float64 only at the output boundary.
package ratios

import (
	"github.com/shopspring/decimal"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Vertical computes the common-size decomposition of a single statement:
// every line as a percentage of its base (total_revenue for income
// statements, total_assets for balance sheets). Cash-flow statements have
// no base in spec.md §4.2 and are skipped. A zero or absent base reports
// an error scoped to this statement only.
func Vertical(s domain.FinancialStatement) domain.VerticalAnalysis {
	period := s.PeriodKey()

	var base domain.CanonicalField
	switch s.StatementType {
	case domain.Income:
		base = domain.TotalRevenue
	case domain.Balance:
		base = domain.TotalAssets
	default:
		return domain.VerticalAnalysis{Period: period, Error: "vertical analysis not defined for cash-flow statements"}
	}

	baseVal, ok := s.Get(base)
	if !ok || baseVal.IsZero() {
		return domain.VerticalAnalysis{Period: period, Error: "base value (" + string(base) + ") is zero or absent"}
	}

	lines := make(map[domain.CanonicalField]float64, len(s.Data))
	hundred := decimal.NewFromInt(100)
	for field, val := range s.Data {
		pct := val.Div(baseVal).Mul(hundred).Round(2)
		f, _ := pct.Float64()
		lines[field] = f
	}
	return domain.VerticalAnalysis{Period: period, Lines: lines}
}

// VerticalAll runs Vertical over every statement, keyed by
// "<period end>_<statement type>", and never lets one statement's failure
// affect another's result.
func VerticalAll(statements []domain.FinancialStatement) map[string]domain.VerticalAnalysis {
	out := make(map[string]domain.VerticalAnalysis, len(statements))
	for _, s := range statements {
		out[s.PeriodKey()+"_"+string(s.StatementType)] = Vertical(s)
	}
	return out
}
