package forensics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

func fstmt(stype domain.StatementType, period time.Time, data map[domain.CanonicalField]float64) domain.FinancialStatement {
	d := make(map[domain.CanonicalField]decimal.Decimal, len(data))
	for k, v := range data {
		d[k] = decimal.NewFromFloat(v)
	}
	return domain.FinancialStatement{StatementType: stype, PeriodEnd: period, Currency: "INR", Data: d}
}

var fp1 = time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)
var fp2 = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
var fp3 = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

func TestAltmanClassifiesSafeAboveUpperCutoff(t *testing.T) {
	income := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{
		domain.OperatingIncome: 500,
		domain.TotalRevenue:    2000,
	})
	balance := fstmt(domain.Balance, fp1, map[domain.CanonicalField]float64{
		domain.CurrentAssets:      900,
		domain.CurrentLiabilities: 200,
		domain.RetainedEarnings:   800,
		domain.TotalAssets:        1000,
		domain.TotalEquity:        700,
		domain.TotalLiabilities:   300,
	})

	res := Altman([]domain.FinancialStatement{income, balance})
	require.NotNil(t, res.Current)
	assert.Equal(t, domain.AltmanSafe, res.Current.Classification)
	assert.Greater(t, res.Current.Z, 2.99)
	assert.False(t, res.Current.TLClamped)
}

func TestAltmanClassifiesDistressBelowLowerCutoff(t *testing.T) {
	income := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{
		domain.OperatingIncome: -100,
		domain.TotalRevenue:    500,
	})
	balance := fstmt(domain.Balance, fp1, map[domain.CanonicalField]float64{
		domain.CurrentAssets:      100,
		domain.CurrentLiabilities: 400,
		domain.RetainedEarnings:   -200,
		domain.TotalAssets:        1000,
		domain.TotalEquity:        100,
		domain.TotalLiabilities:   900,
	})

	res := Altman([]domain.FinancialStatement{income, balance})
	require.NotNil(t, res.Current)
	assert.Equal(t, domain.AltmanDistress, res.Current.Classification)
	assert.Less(t, res.Current.Z, 1.81)
}

func TestAltmanClampsX4WhenTotalLiabilitiesZero(t *testing.T) {
	income := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{
		domain.OperatingIncome: 100,
		domain.TotalRevenue:    1000,
	})
	balance := fstmt(domain.Balance, fp1, map[domain.CanonicalField]float64{
		domain.CurrentAssets:      500,
		domain.CurrentLiabilities: 100,
		domain.RetainedEarnings:   300,
		domain.TotalAssets:        1000,
		domain.TotalEquity:        1000,
		domain.TotalLiabilities:   0,
	})

	res := Altman([]domain.FinancialStatement{income, balance})
	require.NotNil(t, res.Current)
	assert.True(t, res.Current.TLClamped)
	assert.Equal(t, domain.AltmanLargeSentinel, res.Current.X4)
}

func TestAltmanSkipsPeriodsMissingOneStatement(t *testing.T) {
	income := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{domain.TotalRevenue: 1000})
	res := Altman([]domain.FinancialStatement{income})
	assert.Nil(t, res.Current)
	assert.Empty(t, res.History)
}

func TestAltmanHistoryIsAscendingWithCurrentAsLatest(t *testing.T) {
	mk := func(p time.Time, z float64) (domain.FinancialStatement, domain.FinancialStatement) {
		income := fstmt(domain.Income, p, map[domain.CanonicalField]float64{
			domain.OperatingIncome: z * 100,
			domain.TotalRevenue:    2000,
		})
		balance := fstmt(domain.Balance, p, map[domain.CanonicalField]float64{
			domain.CurrentAssets:      900,
			domain.CurrentLiabilities: 200,
			domain.RetainedEarnings:   800,
			domain.TotalAssets:        1000,
			domain.TotalEquity:        700,
			domain.TotalLiabilities:   300,
		})
		return income, balance
	}
	i1, b1 := mk(fp1, 1)
	i2, b2 := mk(fp2, 2)

	res := Altman([]domain.FinancialStatement{i2, b2, i1, b1})
	require.Len(t, res.History, 2)
	assert.Equal(t, "2023-03-31", res.History[0].Period)
	assert.Equal(t, "2024-03-31", res.History[1].Period)
	require.NotNil(t, res.Current)
	assert.Equal(t, "2024-03-31", res.Current.Period)
}

func TestMScoreMatchesLinearDiscriminantFormula(t *testing.T) {
	m := MScore(1, 1, 1, 1, 1, 1, 1, 1)
	expected := -4.84 + 0.92 + 0.528 + 0.404 + 0.892 + 0.115 - 0.172 - 0.327 + 4.679
	assert.InDelta(t, expected, m, 1e-9)
}

func TestBeneishDefaultsMissingVariableToNeutralAndRecordsIt(t *testing.T) {
	prevIncome := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{
		domain.TotalRevenue: 1000,
	})
	prevBalance := fstmt(domain.Balance, fp1, map[domain.CanonicalField]float64{
		domain.AccountsReceivable: 100,
	})
	currIncome := fstmt(domain.Income, fp2, map[domain.CanonicalField]float64{
		domain.TotalRevenue: 1100,
	})
	currBalance := fstmt(domain.Balance, fp2, map[domain.CanonicalField]float64{
		domain.AccountsReceivable: 150,
	})

	res := Beneish([]domain.FinancialStatement{prevIncome, prevBalance, currIncome, currBalance})
	require.NotNil(t, res.Current)
	assert.Contains(t, res.Current.DefaultedVars, "GMI")
	assert.Contains(t, res.Current.DefaultedVars, "AQI")
	assert.Contains(t, res.Current.DefaultedVars, "SGAI")
	assert.Contains(t, res.Current.DefaultedVars, "LVGI")
	assert.Contains(t, res.Current.DefaultedVars, "TATA")
}

func TestBeneishFlagsRevenueZero(t *testing.T) {
	prevIncome := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{domain.TotalRevenue: 0})
	prevBalance := fstmt(domain.Balance, fp1, map[domain.CanonicalField]float64{domain.AccountsReceivable: 50})
	currIncome := fstmt(domain.Income, fp2, map[domain.CanonicalField]float64{domain.TotalRevenue: 500})
	currBalance := fstmt(domain.Balance, fp2, map[domain.CanonicalField]float64{domain.AccountsReceivable: 60})

	res := Beneish([]domain.FinancialStatement{prevIncome, prevBalance, currIncome, currBalance})
	require.NotNil(t, res.Current)
	assert.True(t, res.Current.RevenueZeroFlag)
}

func TestBeneishClassifiesLikelyManipulatorAboveThreshold(t *testing.T) {
	prevIncome := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{
		domain.TotalRevenue: 1000,
		domain.GrossProfit:  400,
	})
	prevBalance := fstmt(domain.Balance, fp1, map[domain.CanonicalField]float64{
		domain.AccountsReceivable: 50,
		domain.TotalAssets:        1000,
	})
	currIncome := fstmt(domain.Income, fp2, map[domain.CanonicalField]float64{
		domain.TotalRevenue: 3000,
		domain.GrossProfit:  300,
	})
	currBalance := fstmt(domain.Balance, fp2, map[domain.CanonicalField]float64{
		domain.AccountsReceivable: 900,
		domain.TotalAssets:        1000,
	})

	res := Beneish([]domain.FinancialStatement{prevIncome, prevBalance, currIncome, currBalance})
	require.NotNil(t, res.Current)
	assert.Greater(t, res.Current.M, domain.BeneishThreshold)
	assert.Equal(t, domain.BeneishLikelyManipulator, res.Current.Classification)
}

func TestBeneishHistorySpansConsecutivePairsOnly(t *testing.T) {
	mk := func(p time.Time) (domain.FinancialStatement, domain.FinancialStatement) {
		income := fstmt(domain.Income, p, map[domain.CanonicalField]float64{domain.TotalRevenue: 1000})
		balance := fstmt(domain.Balance, p, map[domain.CanonicalField]float64{domain.AccountsReceivable: 100})
		return income, balance
	}
	i1, b1 := mk(fp1)
	i2, b2 := mk(fp2)
	i3, b3 := mk(fp3)

	res := Beneish([]domain.FinancialStatement{i1, b1, i2, b2, i3, b3})
	require.Len(t, res.History, 2)
	assert.Equal(t, "2023-03-31_to_2024-03-31", res.History[0].Period)
	assert.Equal(t, "2024-03-31_to_2025-03-31", res.History[1].Period)
}

func TestBenfordFailsBelowMinimumSampleSize(t *testing.T) {
	income := fstmt(domain.Income, fp1, map[domain.CanonicalField]float64{
		domain.TotalRevenue: 1000,
		domain.NetProfit:    100,
	})
	res := Benford([]domain.FinancialStatement{income})
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Reason)
}

func TestBenfordSucceedsWithSufficientSamplesAndReportsCriticalValue(t *testing.T) {
	data := map[domain.CanonicalField]float64{
		domain.TotalRevenue:           1234,
		domain.CostOfRevenue:          2345,
		domain.GrossProfit:            3456,
		domain.NetProfit:              4567,
		domain.OperatingIncome:        5678,
		domain.InterestExpense:        6789,
		domain.TaxExpense:             1122,
		domain.EBITDA:                 2233,
		domain.DepreciationAndAmortization: 3344,
		domain.TotalAssets:            4455,
		domain.CurrentAssets:          5566,
	}
	income := fstmt(domain.Income, fp1, data)
	res := Benford([]domain.FinancialStatement{income})
	require.True(t, res.Success)
	assert.Equal(t, domain.BenfordCriticalValue95, res.CriticalValue)
	assert.Equal(t, 15.507, res.CriticalValue)
	assert.GreaterOrEqual(t, res.N, benfordMinSamples)
}

func TestBenfordIgnoresNonPositiveAndNonFiniteValues(t *testing.T) {
	data := map[domain.CanonicalField]float64{
		domain.TotalRevenue:    -100,
		domain.NetProfit:       0,
		domain.OperatingIncome: 500,
	}
	income := fstmt(domain.Income, fp1, data)
	res := Benford([]domain.FinancialStatement{income})
	assert.False(t, res.Success)
}

func TestFirstDigitExtractsLeadingSignificantDigit(t *testing.T) {
	assert.Equal(t, 1, firstDigit(1234))
	assert.Equal(t, 9, firstDigit(9.87))
	assert.Equal(t, 5, firstDigit(0.0567))
}
