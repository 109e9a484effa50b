package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementType distinguishes the three financial statement kinds.
type StatementType string

const (
	Income   StatementType = "INCOME"
	Balance  StatementType = "BALANCE"
	CashFlow StatementType = "CASHFLOW"
)

// BalanceSheetTolerance is the relative tolerance applied when checking
// total_assets ≈ total_liabilities + total_equity (1% of total_assets).
const BalanceSheetTolerance = 0.01

// FinancialStatement is an immutable, normalized statement: canonical
// fields only, decimal-valued, never mutated after construction.
type FinancialStatement struct {
	StatementType StatementType
	PeriodEnd     time.Time
	Currency      string
	Data          map[CanonicalField]decimal.Decimal
}

// Get returns the value for f and whether it was present.
func (s FinancialStatement) Get(f CanonicalField) (decimal.Decimal, bool) {
	v, ok := s.Data[f]
	return v, ok
}

// GetFloat returns f as a float64 (0 if absent) — used wherever a
// computation runs in float64, such as the Beneish variables, the anomaly
// rules and numeric library calls (chi-square, log10).
func (s FinancialStatement) GetFloat(f CanonicalField) (float64, bool) {
	v, ok := s.Data[f]
	if !ok {
		return 0, false
	}
	fv, _ := v.Float64()
	return fv, true
}

// PeriodKey formats the period end the way every cross-period map key in
// this engine expects: ISO date, no time component.
func (s FinancialStatement) PeriodKey() string {
	return s.PeriodEnd.Format("2006-01-02")
}

// Clone returns a statement with an independent copy of Data, preserving
// immutability guarantees when a caller needs to build a derived copy.
func (s FinancialStatement) Clone() FinancialStatement {
	data := make(map[CanonicalField]decimal.Decimal, len(s.Data))
	for k, v := range s.Data {
		data[k] = v
	}
	return FinancialStatement{
		StatementType: s.StatementType,
		PeriodEnd:     s.PeriodEnd,
		Currency:      s.Currency,
		Data:          data,
	}
}

// SourceStatement is the open, source-native shape the normalizer accepts
// at its boundary — field names here are whatever the ingest source used.
type SourceStatement struct {
	StatementType StatementType
	PeriodEnd     time.Time
	Currency      string
	Fields        map[string]float64
}
