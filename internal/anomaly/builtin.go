package anomaly

import "github.com/Rishikoli/IRIS1-sub001/internal/domain"

// RevenueDeclineRule fires when revenue drops more than 20% period over
// period.
type RevenueDeclineRule struct{}

func (RevenueDeclineRule) Type() domain.AnomalyType { return domain.RevenueDecline }

func (RevenueDeclineRule) Evaluate(statements []domain.FinancialStatement) []domain.Anomaly {
	var out []domain.Anomaly
	for _, pair := range consecutivePairs(statements, domain.Income) {
		prevRev, okPrev := pair.prev.Get(domain.TotalRevenue)
		currRev, okCurr := pair.curr.Get(domain.TotalRevenue)
		if !okPrev || !okCurr {
			continue
		}
		prevF, _ := prevRev.Float64()
		currF, _ := currRev.Float64()
		if prevF <= 0 {
			continue
		}
		growth := (currF - prevF) / prevF
		if growth < -0.20 {
			out = append(out, domain.Anomaly{
				Type:        domain.RevenueDecline,
				Severity:    domain.SeverityHigh,
				Period:      pair.curr.PeriodKey(),
				Description: "revenue declined more than 20% period over period",
				Evidence: map[string]interface{}{
					"previous_revenue": prevF,
					"current_revenue":  currF,
					"growth_rate":       growth * 100,
				},
			})
		}
	}
	return out
}

// ProfitCashDivergenceRule fires when net profit is positive but
// operating cash flow covers less than half of it.
type ProfitCashDivergenceRule struct{}

func (ProfitCashDivergenceRule) Type() domain.AnomalyType { return domain.ProfitCashDivergence }

func (ProfitCashDivergenceRule) Evaluate(statements []domain.FinancialStatement) []domain.Anomaly {
	var out []domain.Anomaly
	for _, s := range statements {
		if s.StatementType != domain.Income {
			continue
		}
		np, okNP := s.Get(domain.NetProfit)
		if !okNP {
			continue
		}
		npF, _ := np.Float64()
		if npF <= 0 {
			continue
		}
		ocf, okOCF := statementFieldAcrossTypes(statements, s.PeriodKey(), domain.OperatingCashFlow)
		if !okOCF {
			continue
		}
		ratio := ocf / npF
		if ratio < 0.5 {
			out = append(out, domain.Anomaly{
				Type:        domain.ProfitCashDivergence,
				Severity:    domain.SeverityMedium,
				Period:      s.PeriodKey(),
				Description: "operating cash flow covers less than half of reported net profit",
				Evidence: map[string]interface{}{
					"net_profit":           npF,
					"operating_cash_flow":  ocf,
					"cash_to_profit_ratio": ratio,
				},
			})
		}
	}
	return out
}

// ReceivablesBuildupRule fires when accounts receivable exceeds 25% of
// revenue for a period.
type ReceivablesBuildupRule struct{}

func (ReceivablesBuildupRule) Type() domain.AnomalyType { return domain.ReceivablesBuildup }

func (ReceivablesBuildupRule) Evaluate(statements []domain.FinancialStatement) []domain.Anomaly {
	var out []domain.Anomaly
	for _, s := range statements {
		if s.StatementType != domain.Income {
			continue
		}
		rev, okRev := s.Get(domain.TotalRevenue)
		if !okRev {
			continue
		}
		revF, _ := rev.Float64()
		if revF <= 0 {
			continue
		}
		ar, okAR := statementFieldAcrossTypes(statements, s.PeriodKey(), domain.AccountsReceivable)
		if !okAR {
			continue
		}
		ratio := ar / revF
		if ratio > 0.25 {
			out = append(out, domain.Anomaly{
				Type:        domain.ReceivablesBuildup,
				Severity:    domain.SeverityMedium,
				Period:      s.PeriodKey(),
				Description: "accounts receivable exceeds 25% of revenue",
				Evidence: map[string]interface{}{
					"accounts_receivable":      ar,
					"total_revenue":            revF,
					"receivables_to_revenue":   ratio,
				},
			})
		}
	}
	return out
}

type pair struct {
	prev domain.FinancialStatement
	curr domain.FinancialStatement
}

func consecutivePairs(statements []domain.FinancialStatement, stype domain.StatementType) []pair {
	var group []domain.FinancialStatement
	for _, s := range statements {
		if s.StatementType == stype {
			group = append(group, s)
		}
	}
	var out []pair
	for i := 1; i < len(group); i++ {
		out = append(out, pair{prev: group[i-1], curr: group[i]})
	}
	return out
}

// statementFieldAcrossTypes finds field on any statement sharing period,
// regardless of statement type — accounts_receivable/operating_cash_flow
// live on the balance sheet / cash-flow statement, not the income
// statement whose period anchors these rules.
func statementFieldAcrossTypes(statements []domain.FinancialStatement, period string, field domain.CanonicalField) (float64, bool) {
	for _, s := range statements {
		if s.PeriodKey() != period {
			continue
		}
		if v, ok := s.GetFloat(field); ok {
			return v, true
		}
	}
	return 0, false
}
