package domain

// RatioName enumerates the fourteen named financial ratios computed by
// the ratio engine (C2).
type RatioName string

const (
	CurrentRatio        RatioName = "current_ratio"
	QuickRatio          RatioName = "quick_ratio"
	CashRatio           RatioName = "cash_ratio"
	GrossMarginPct      RatioName = "gross_margin_pct"
	NetMarginPct        RatioName = "net_margin_pct"
	ReturnOnEquity      RatioName = "roe"
	ReturnOnAssets      RatioName = "roa"
	DebtToEquity        RatioName = "debt_to_equity"
	DebtToAssets        RatioName = "debt_to_assets"
	InterestCoverage    RatioName = "interest_coverage"
	AssetTurnover       RatioName = "asset_turnover"
	ReceivablesTurnover RatioName = "receivables_turnover"
	InventoryTurnover   RatioName = "inventory_turnover"
	DaysSalesOutstanding RatioName = "days_sales_outstanding"
)

// RatioSet maps period_end -> ratio name -> value. A nil value means the
// inputs were absent or the denominator was zero; it is never NaN or Inf.
type RatioSet map[string]map[RatioName]*float64

// VerticalAnalysis is the common-size decomposition of one statement
// against its base (total_revenue for income, total_assets for balance).
// On a zero/absent base, Error is set and Lines is nil — the failure is
// scoped to this statement and never poisons sibling periods.
type VerticalAnalysis struct {
	Period string
	Lines  map[CanonicalField]float64
	Error  string
}

// HorizontalAnalysis is the period-over-period growth decomposition for
// one consecutive pair of same-type statements, keyed by the caller as
// "{prev_period}_to_{curr_period}_{statement_type}". A nil growth value
// means prev was zero (null, not zero, not an error).
type HorizontalAnalysis struct {
	Key    string
	Growth map[CanonicalField]*float64
}
