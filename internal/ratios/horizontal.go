package ratios

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Horizontal pairs statements of the same type in ascending period order
// and computes period-over-period growth for every canonical field
// present in both periods; a field missing from either period gets no
// entry. A zero previous value yields a null growth
// (nil pointer), never zero and never an error.
func Horizontal(statements []domain.FinancialStatement) map[string]domain.HorizontalAnalysis {
	byType := make(map[domain.StatementType][]domain.FinancialStatement)
	for _, s := range statements {
		byType[s.StatementType] = append(byType[s.StatementType], s)
	}

	out := make(map[string]domain.HorizontalAnalysis)
	for stype, group := range byType {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PeriodEnd.Before(group[j].PeriodEnd)
		})
		for i := 1; i < len(group); i++ {
			prev, curr := group[i-1], group[i]
			key := prev.PeriodKey() + "_to_" + curr.PeriodKey() + "_" + string(stype)
			out[key] = pairGrowth(key, prev, curr)
		}
	}
	return out
}

func pairGrowth(key string, prev, curr domain.FinancialStatement) domain.HorizontalAnalysis {
	fields := make(map[domain.CanonicalField]bool)
	for f := range prev.Data {
		fields[f] = true
	}
	for f := range curr.Data {
		fields[f] = true
	}

	growth := make(map[domain.CanonicalField]*float64, len(fields))
	hundred := decimal.NewFromInt(100)
	for f := range fields {
		prevVal, havePrev := prev.Get(f)
		currVal, haveCurr := curr.Get(f)
		if !havePrev || !haveCurr {
			continue
		}
		if prevVal.IsZero() {
			growth[f] = nil
			continue
		}
		pct := currVal.Sub(prevVal).Div(prevVal).Mul(hundred).Round(2)
		v, _ := pct.Float64()
		growth[f] = &v
	}
	return domain.HorizontalAnalysis{Key: key, Growth: growth}
}
