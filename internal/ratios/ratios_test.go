package ratios

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

func stmt(stype domain.StatementType, period time.Time, data map[domain.CanonicalField]float64) domain.FinancialStatement {
	d := make(map[domain.CanonicalField]decimal.Decimal, len(data))
	for k, v := range data {
		d[k] = decimal.NewFromFloat(v)
	}
	return domain.FinancialStatement{StatementType: stype, PeriodEnd: period, Currency: "INR", Data: d}
}

var p1 = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
var p2 = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

func TestVerticalComputesCommonSizePercentages(t *testing.T) {
	income := stmt(domain.Income, p1, map[domain.CanonicalField]float64{
		domain.TotalRevenue: 1000,
		domain.NetProfit:    100,
	})
	v := Vertical(income)
	require.Empty(t, v.Error)
	assert.Equal(t, "2024-03-31", v.Period)
	assert.Equal(t, 10.0, v.Lines[domain.NetProfit])
	assert.Equal(t, 100.0, v.Lines[domain.TotalRevenue])
}

func TestVerticalReportsErrorOnZeroBase(t *testing.T) {
	income := stmt(domain.Income, p1, map[domain.CanonicalField]float64{
		domain.TotalRevenue: 0,
		domain.NetProfit:    10,
	})
	v := Vertical(income)
	assert.NotEmpty(t, v.Error)
	assert.Nil(t, v.Lines)
}

func TestVerticalSkipsCashFlowStatements(t *testing.T) {
	cf := stmt(domain.CashFlow, p1, map[domain.CanonicalField]float64{domain.OperatingCashFlow: 50})
	v := Vertical(cf)
	assert.NotEmpty(t, v.Error)
}

func TestHorizontalComputesPeriodOverPeriodGrowth(t *testing.T) {
	prev := stmt(domain.Income, p1, map[domain.CanonicalField]float64{domain.TotalRevenue: 1000})
	curr := stmt(domain.Income, p2, map[domain.CanonicalField]float64{domain.TotalRevenue: 1100})

	result := Horizontal([]domain.FinancialStatement{prev, curr})
	key := "2024-03-31_to_2025-03-31_INCOME"
	ha, ok := result[key]
	require.True(t, ok)
	require.NotNil(t, ha.Growth[domain.TotalRevenue])
	assert.InDelta(t, 10.0, *ha.Growth[domain.TotalRevenue], 0.01)
}

func TestHorizontalNullsGrowthWhenPreviousIsZero(t *testing.T) {
	prev := stmt(domain.Income, p1, map[domain.CanonicalField]float64{domain.NetProfit: 0})
	curr := stmt(domain.Income, p2, map[domain.CanonicalField]float64{domain.NetProfit: 50})

	result := Horizontal([]domain.FinancialStatement{prev, curr})
	key := "2024-03-31_to_2025-03-31_INCOME"
	ha := result[key]
	assert.Nil(t, ha.Growth[domain.NetProfit])
}

func TestHorizontalSkipsFieldsMissingFromEitherPeriod(t *testing.T) {
	prev := stmt(domain.Income, p1, map[domain.CanonicalField]float64{domain.TotalRevenue: 1000})
	curr := stmt(domain.Income, p2, map[domain.CanonicalField]float64{domain.NetProfit: 50})

	result := Horizontal([]domain.FinancialStatement{prev, curr})
	key := "2024-03-31_to_2025-03-31_INCOME"
	ha := result[key]
	_, hasRevenue := ha.Growth[domain.TotalRevenue]
	_, hasProfit := ha.Growth[domain.NetProfit]
	assert.False(t, hasRevenue)
	assert.False(t, hasProfit)
}

func TestComputeProducesExpectedRatios(t *testing.T) {
	income := stmt(domain.Income, p1, map[domain.CanonicalField]float64{
		domain.TotalRevenue:    1000,
		domain.CostOfRevenue:   600,
		domain.GrossProfit:     400,
		domain.NetProfit:       80,
		domain.OperatingIncome: 120,
		domain.InterestExpense: 20,
	})
	balance := stmt(domain.Balance, p1, map[domain.CanonicalField]float64{
		domain.CurrentAssets:      900,
		domain.CurrentLiabilities: 500,
		domain.Inventory:          200,
		domain.CashAndEquivalents: 150,
		domain.TotalAssets:        2000,
		domain.TotalLiabilities:   1200,
		domain.TotalEquity:        800,
		domain.AccountsReceivable: 180,
	})

	set := Compute([]domain.FinancialStatement{income, balance})
	ratios, ok := set["2024-03-31"]
	require.True(t, ok)

	require.NotNil(t, ratios[domain.CurrentRatio])
	assert.InDelta(t, 1.8, *ratios[domain.CurrentRatio], 0.001)

	require.NotNil(t, ratios[domain.QuickRatio])
	assert.InDelta(t, 1.4, *ratios[domain.QuickRatio], 0.001)

	require.NotNil(t, ratios[domain.NetMarginPct])
	assert.InDelta(t, 8.0, *ratios[domain.NetMarginPct], 0.001)

	require.NotNil(t, ratios[domain.DebtToEquity])
	assert.InDelta(t, 1.5, *ratios[domain.DebtToEquity], 0.001)

	require.NotNil(t, ratios[domain.InterestCoverage])
	assert.InDelta(t, 6.0, *ratios[domain.InterestCoverage], 0.001)
}

func TestComputeReturnsNilRatioOnZeroDenominator(t *testing.T) {
	income := stmt(domain.Income, p1, map[domain.CanonicalField]float64{domain.NetProfit: 80})
	balance := stmt(domain.Balance, p1, map[domain.CanonicalField]float64{domain.CurrentLiabilities: 0})

	set := Compute([]domain.FinancialStatement{income, balance})
	ratios := set["2024-03-31"]
	assert.Nil(t, ratios[domain.CurrentRatio])
}

func TestComputeGroupsByPeriodAcrossStatementTypes(t *testing.T) {
	income1 := stmt(domain.Income, p1, map[domain.CanonicalField]float64{domain.TotalRevenue: 1000})
	balance1 := stmt(domain.Balance, p1, map[domain.CanonicalField]float64{domain.TotalAssets: 2000})
	income2 := stmt(domain.Income, p2, map[domain.CanonicalField]float64{domain.TotalRevenue: 1100})
	balance2 := stmt(domain.Balance, p2, map[domain.CanonicalField]float64{domain.TotalAssets: 2100})

	set := Compute([]domain.FinancialStatement{income1, balance1, income2, balance2})
	assert.Len(t, set, 2)
	require.NotNil(t, set["2024-03-31"][domain.AssetTurnover])
	require.NotNil(t, set["2025-03-31"][domain.AssetTurnover])
}
