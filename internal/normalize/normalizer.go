package normalize

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Normalize maps raw, source-tagged statements to the canonical schema:
// unrecognized fields are dropped (not an error), values are coerced to
// decimal.Decimal, non-finite values are dropped, and values that are
// semantically non-negative are dropped when negative. The result is
// sorted ascending by period end. Empty input, or input with no
// canonical fields at all, returns an empty slice and logs a warning
// event rather than raising.
func Normalize(raw []domain.SourceStatement, source SourceTag) []domain.FinancialStatement {
	if len(raw) == 0 {
		log.Warn().Str("source", string(source)).Msg("normalize: empty input")
		return nil
	}

	out := make([]domain.FinancialStatement, 0, len(raw))
	anyCanonicalField := false

	for _, s := range raw {
		data := make(map[domain.CanonicalField]decimal.Decimal)
		for name, v := range s.Fields {
			field, ok := canonicalize(source, name)
			if !ok {
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if v < 0 && !domain.AllowsNegative(field) {
				continue
			}
			data[field] = decimal.NewFromFloat(v)
			anyCanonicalField = true
		}
		out = append(out, domain.FinancialStatement{
			StatementType: s.StatementType,
			PeriodEnd:     s.PeriodEnd,
			Currency:      s.Currency,
			Data:          data,
		})
	}

	if !anyCanonicalField {
		log.Warn().Str("source", string(source)).Msg("normalize: no canonical fields found in input")
		return nil
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodEnd.Before(out[j].PeriodEnd)
	})
	return out
}

// CheckBalanceSheet reports whether total_assets ≈ total_liabilities +
// total_equity within BalanceSheetTolerance (1% of total_assets), along
// with any violation messages. It never rejects the statement — callers
// decide what to do with the report.
func CheckBalanceSheet(s domain.FinancialStatement) (bool, []string) {
	if s.StatementType != domain.Balance {
		return true, nil
	}

	ta, haveTA := s.Get(domain.TotalAssets)
	tl, haveTL := s.Get(domain.TotalLiabilities)
	te, haveTE := s.Get(domain.TotalEquity)
	if !haveTA || !haveTL || !haveTE {
		return true, []string{"balance sheet check skipped: missing total_assets, total_liabilities, or total_equity"}
	}

	sum := tl.Add(te)
	diff := ta.Sub(sum).Abs()
	tolerance := ta.Abs().Mul(decimal.NewFromFloat(domain.BalanceSheetTolerance))

	if diff.GreaterThan(tolerance) {
		msg := "total_assets does not reconcile with total_liabilities + total_equity beyond 1% tolerance"
		return false, []string{msg}
	}
	return true, nil
}
