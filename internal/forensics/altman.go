// Package forensics implements the statistical forensic library (C3):
// Altman Z-Score, Beneish M-Score, and Benford's Law first-digit
// chi-square test.
package forensics

import (
	"sort"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Altman computes the manufacturing-variant Z-Score for every period
// where both an income statement and a balance sheet are available,
// returning the most recent as Current and the full ascending series as
// History.
func Altman(statements []domain.FinancialStatement) domain.AltmanResult {
	pairs := pairByPeriod(statements)

	var history []domain.AltmanScore
	for _, p := range pairs {
		if p.income == nil || p.balance == nil {
			continue
		}
		score, ok := altmanForPeriod(p.period, *p.income, *p.balance)
		if ok {
			history = append(history, score)
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Period < history[j].Period })

	res := domain.AltmanResult{History: history}
	if len(history) > 0 {
		cur := history[len(history)-1]
		res.Current = &cur
	}
	return res
}

func altmanForPeriod(period string, income, balance domain.FinancialStatement) (domain.AltmanScore, bool) {
	ca, okCA := balance.Get(domain.CurrentAssets)
	cl, okCL := balance.Get(domain.CurrentLiabilities)
	re, okRE := balance.Get(domain.RetainedEarnings)
	ta, okTA := balance.Get(domain.TotalAssets)
	eq, okEQ := balance.Get(domain.TotalEquity)
	tl, okTL := balance.Get(domain.TotalLiabilities)
	ebit, okEBIT := income.Get(domain.OperatingIncome)
	sales, okSales := income.Get(domain.TotalRevenue)

	if !okCA || !okCL || !okRE || !okTA || !okEQ || !okTL || !okEBIT || !okSales || ta.IsZero() {
		return domain.AltmanScore{}, false
	}

	wc := ca.Sub(cl)
	x1, _ := wc.Div(ta).Float64()
	x2, _ := re.Div(ta).Float64()
	x3, _ := ebit.Div(ta).Float64()
	x5, _ := sales.Div(ta).Float64()

	var x4 float64
	clamped := false
	if tl.IsZero() {
		x4 = domain.AltmanLargeSentinel
		clamped = true
	} else {
		x4, _ = eq.Div(tl).Float64()
	}

	z := 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*x4 + 1.0*x5

	var class domain.AltmanClassification
	switch {
	case z > 2.99:
		class = domain.AltmanSafe
	case z >= 1.81:
		class = domain.AltmanGrey
	default:
		class = domain.AltmanDistress
	}

	return domain.AltmanScore{
		Period: period,
		X1:     x1, X2: x2, X3: x3, X4: x4, X5: x5,
		Z:              z,
		Classification: class,
		TLClamped:      clamped,
	}, true
}

type periodPair struct {
	period  string
	income  *domain.FinancialStatement
	balance *domain.FinancialStatement
}

// pairByPeriod groups statements by period_end, returned in ascending
// order, shared by Altman and Beneish.
func pairByPeriod(statements []domain.FinancialStatement) []periodPair {
	idx := make(map[string]*periodPair)
	var order []string
	for i := range statements {
		s := &statements[i]
		key := s.PeriodKey()
		p, ok := idx[key]
		if !ok {
			p = &periodPair{period: key}
			idx[key] = p
			order = append(order, key)
		}
		switch s.StatementType {
		case domain.Income:
			p.income = s
		case domain.Balance:
			p.balance = s
		}
	}
	sort.Strings(order)
	out := make([]periodPair, 0, len(order))
	for _, k := range order {
		out = append(out, *idx[k])
	}
	return out
}
