package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

func balanceStmt(period time.Time, data map[domain.CanonicalField]float64) domain.FinancialStatement {
	d := make(map[domain.CanonicalField]decimal.Decimal, len(data))
	for k, v := range data {
		d[k] = decimal.NewFromFloat(v)
	}
	return domain.FinancialStatement{StatementType: domain.Balance, PeriodEnd: period, Currency: "INR", Data: d}
}

var np1 = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
var np2 = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

func TestNormalizeMapsKnownFieldsToCanonicalNames(t *testing.T) {
	raw := []domain.SourceStatement{
		{
			StatementType: domain.Income,
			PeriodEnd:     np1,
			Currency:      "INR",
			Fields: map[string]float64{
				"total_revenue": 1000,
				"net_profit":    100,
			},
		},
	}
	out := Normalize(raw, SourceYahoo)
	require.Len(t, out, 1)
	v, ok := out[0].Get(domain.TotalRevenue)
	require.True(t, ok)
	f, _ := v.Float64()
	assert.Equal(t, 1000.0, f)
}

func TestNormalizeDropsUnmappedFieldsSilently(t *testing.T) {
	raw := []domain.SourceStatement{
		{
			StatementType: domain.Income,
			PeriodEnd:     np1,
			Fields: map[string]float64{
				"total_revenue":      1000,
				"some_unknown_field": 42,
			},
		},
	}
	out := Normalize(raw, SourceYahoo)
	require.Len(t, out, 1)
	_, ok := out[0].Data["some_unknown_field"]
	assert.False(t, ok)
	assert.Len(t, out[0].Data, 1)
}

func TestNormalizeDropsNonFiniteValues(t *testing.T) {
	raw := []domain.SourceStatement{
		{
			StatementType: domain.Income,
			PeriodEnd:     np1,
			Fields: map[string]float64{
				"total_revenue": math.NaN(),
				"net_profit":    math.Inf(1),
				"tax_expense":   500,
			},
		},
	}
	out := Normalize(raw, SourceYahoo)
	require.Len(t, out, 1)
	_, hasRev := out[0].Get(domain.TotalRevenue)
	_, hasNP := out[0].Get(domain.NetProfit)
	_, hasTax := out[0].Get(domain.TaxExpense)
	assert.False(t, hasRev)
	assert.False(t, hasNP)
	assert.True(t, hasTax)
}

func TestNormalizeDropsIllegalNegativeValues(t *testing.T) {
	raw := []domain.SourceStatement{
		{
			StatementType: domain.Balance,
			PeriodEnd:     np1,
			Fields: map[string]float64{
				"total_assets": -500,
				"net_ppe":      300,
			},
		},
	}
	out := Normalize(raw, SourceYahoo)
	require.Len(t, out, 1)
	_, hasAssets := out[0].Get(domain.TotalAssets)
	_, hasPPE := out[0].Get(domain.PropertyPlantEquipment)
	assert.False(t, hasAssets)
	assert.True(t, hasPPE)
}

func TestNormalizeAllowsNegativeOnPermittedFields(t *testing.T) {
	raw := []domain.SourceStatement{
		{
			StatementType: domain.Income,
			PeriodEnd:     np1,
			Fields: map[string]float64{
				"net_profit": -200,
				"ebit":       -150,
			},
		},
	}
	out := Normalize(raw, SourceYahoo)
	require.Len(t, out, 1)
	v, ok := out[0].Get(domain.NetProfit)
	require.True(t, ok)
	f, _ := v.Float64()
	assert.Equal(t, -200.0, f)
}

func TestNormalizeReturnsNilOnEmptyInput(t *testing.T) {
	out := Normalize(nil, SourceYahoo)
	assert.Nil(t, out)
}

func TestNormalizeReturnsNilWhenNoFieldsMapAtAll(t *testing.T) {
	raw := []domain.SourceStatement{
		{
			StatementType: domain.Income,
			PeriodEnd:     np1,
			Fields: map[string]float64{
				"totally_unrecognized_field": 1,
			},
		},
	}
	out := Normalize(raw, SourceYahoo)
	assert.Nil(t, out)
}

func TestNormalizeSortsAscendingByPeriodEnd(t *testing.T) {
	raw := []domain.SourceStatement{
		{StatementType: domain.Income, PeriodEnd: np2, Fields: map[string]float64{"total_revenue": 1100}},
		{StatementType: domain.Income, PeriodEnd: np1, Fields: map[string]float64{"total_revenue": 1000}},
	}
	out := Normalize(raw, SourceYahoo)
	require.Len(t, out, 2)
	assert.True(t, out[0].PeriodEnd.Before(out[1].PeriodEnd))
}

func TestNormalizeAppliesSourceSpecificOverrides(t *testing.T) {
	raw := []domain.SourceStatement{
		{
			StatementType: domain.Income,
			PeriodEnd:     np1,
			Fields: map[string]float64{
				"total_income": 2000,
				"pat":          150,
			},
		},
	}
	out := Normalize(raw, SourceNSE)
	require.Len(t, out, 1)
	v, ok := out[0].Get(domain.TotalRevenue)
	require.True(t, ok)
	f, _ := v.Float64()
	assert.Equal(t, 2000.0, f)

	pat, ok := out[0].Get(domain.NetProfit)
	require.True(t, ok)
	patF, _ := pat.Float64()
	assert.Equal(t, 150.0, patF)
}

func TestCheckBalanceSheetPassesWithinTolerance(t *testing.T) {
	s := balanceStmt(np1, map[domain.CanonicalField]float64{
		domain.TotalAssets:      1000,
		domain.TotalLiabilities: 600,
		domain.TotalEquity:      400,
	})
	ok, violations := CheckBalanceSheet(s)
	assert.True(t, ok)
	assert.Empty(t, violations)
}

func TestCheckBalanceSheetFlagsViolationBeyondTolerance(t *testing.T) {
	s := balanceStmt(np1, map[domain.CanonicalField]float64{
		domain.TotalAssets:      1000,
		domain.TotalLiabilities: 600,
		domain.TotalEquity:      300,
	})
	ok, violations := CheckBalanceSheet(s)
	assert.False(t, ok)
	assert.NotEmpty(t, violations)
}

func TestCheckBalanceSheetSkipsWhenFieldsMissing(t *testing.T) {
	s := balanceStmt(np1, map[domain.CanonicalField]float64{domain.TotalAssets: 1000})
	ok, violations := CheckBalanceSheet(s)
	assert.True(t, ok)
	assert.NotEmpty(t, violations)
}

func TestCheckBalanceSheetSkipsNonBalanceStatements(t *testing.T) {
	s := domain.FinancialStatement{StatementType: domain.Income, PeriodEnd: np1}
	ok, violations := CheckBalanceSheet(s)
	assert.True(t, ok)
	assert.Empty(t, violations)
}
