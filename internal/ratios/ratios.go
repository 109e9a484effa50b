package ratios

import (
	"github.com/shopspring/decimal"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Compute produces the RatioSet for every period present across the
// supplied statements. Each period mixes the income statement and the
// balance sheet sharing that period_end; a ratio whose inputs are missing
// or whose denominator is zero is nil — never NaN, never Inf.
func Compute(statements []domain.FinancialStatement) domain.RatioSet {
	byPeriod := make(map[string]struct {
		income  *domain.FinancialStatement
		balance *domain.FinancialStatement
	})

	for i := range statements {
		s := &statements[i]
		entry := byPeriod[s.PeriodKey()]
		switch s.StatementType {
		case domain.Income:
			entry.income = s
		case domain.Balance:
			entry.balance = s
		}
		byPeriod[s.PeriodKey()] = entry
	}

	out := make(domain.RatioSet, len(byPeriod))
	for period, entry := range byPeriod {
		out[period] = computePeriod(entry.income, entry.balance)
	}
	return out
}

func computePeriod(income, balance *domain.FinancialStatement) map[domain.RatioName]*float64 {
	r := make(map[domain.RatioName]*float64)

	get := func(s *domain.FinancialStatement, f domain.CanonicalField) (decimal.Decimal, bool) {
		if s == nil {
			return decimal.Zero, false
		}
		return s.Get(f)
	}

	div := func(num, den decimal.Decimal, haveNum, haveDen bool) *float64 {
		if !haveNum || !haveDen || den.IsZero() {
			return nil
		}
		v, _ := num.Div(den).Round(6).Float64()
		return &v
	}
	pct := func(num, den decimal.Decimal, haveNum, haveDen bool) *float64 {
		if !haveNum || !haveDen || den.IsZero() {
			return nil
		}
		v, _ := num.Div(den).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		return &v
	}
	roundVal := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		d := decimal.NewFromFloat(*v).Round(2)
		f, _ := d.Float64()
		return &f
	}

	ca, haveCA := get(balance, domain.CurrentAssets)
	cl, haveCL := get(balance, domain.CurrentLiabilities)
	inv, haveInv := get(balance, domain.Inventory)
	cash, haveCash := get(balance, domain.CashAndEquivalents)
	ta, haveTA := get(balance, domain.TotalAssets)
	tl, haveTL := get(balance, domain.TotalLiabilities)
	te, haveTE := get(balance, domain.TotalEquity)
	ar, haveAR := get(balance, domain.AccountsReceivable)

	rev, haveRev := get(income, domain.TotalRevenue)
	cor, haveCOR := get(income, domain.CostOfRevenue)
	gp, haveGP := get(income, domain.GrossProfit)
	np, haveNP := get(income, domain.NetProfit)
	opInc, haveOpInc := get(income, domain.OperatingIncome)
	intExp, haveIntExp := get(income, domain.InterestExpense)

	// Liquidity
	r[domain.CurrentRatio] = roundVal(div(ca, cl, haveCA, haveCL))
	quickNum := ca.Sub(inv)
	r[domain.QuickRatio] = roundVal(div(quickNum, cl, haveCA && haveInv, haveCL))
	r[domain.CashRatio] = roundVal(div(cash, cl, haveCash, haveCL))

	// Profitability
	r[domain.GrossMarginPct] = pct(gp, rev, haveGP, haveRev)
	r[domain.NetMarginPct] = pct(np, rev, haveNP, haveRev)
	r[domain.ReturnOnEquity] = pct(np, te, haveNP, haveTE)
	r[domain.ReturnOnAssets] = pct(np, ta, haveNP, haveTA)

	// Leverage
	r[domain.DebtToEquity] = roundVal(div(tl, te, haveTL, haveTE))
	r[domain.DebtToAssets] = roundVal(div(tl, ta, haveTL, haveTA))
	r[domain.InterestCoverage] = roundVal(div(opInc, intExp, haveOpInc, haveIntExp))

	// Efficiency
	r[domain.AssetTurnover] = roundVal(div(rev, ta, haveRev, haveTA))
	r[domain.ReceivablesTurnover] = roundVal(div(rev, ar, haveRev, haveAR))
	r[domain.InventoryTurnover] = roundVal(div(cor, inv, haveCOR, haveInv))
	dso := div(ar, rev, haveAR, haveRev)
	if dso != nil {
		scaled := *dso * 365
		r[domain.DaysSalesOutstanding] = roundVal(&scaled)
	} else {
		r[domain.DaysSalesOutstanding] = nil
	}

	return r
}
