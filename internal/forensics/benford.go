package forensics

import (
	"fmt"
	"math"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// benfordMinSamples is the minimum count of positive, finite magnitudes
// required to run the chi-square test.
const benfordMinSamples = 10

// Benford collects every positive, finite canonical numeric value across
// all supplied statements and runs the first-digit chi-square
// goodness-of-fit test against the expected Benford distribution.
func Benford(statements []domain.FinancialStatement) domain.BenfordResult {
	var magnitudes []float64
	for _, s := range statements {
		for _, f := range domain.CanonicalFields {
			v, ok := s.GetFloat(f)
			if !ok {
				continue
			}
			if v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
				magnitudes = append(magnitudes, v)
			}
		}
	}

	if len(magnitudes) < benfordMinSamples {
		return domain.BenfordResult{
			Success: false,
			Reason:  fmt.Sprintf("need at least %d positive magnitudes, got %d", benfordMinSamples, len(magnitudes)),
		}
	}

	var counts [10]int // index 1..9
	for _, v := range magnitudes {
		d := firstDigit(v)
		counts[d]++
	}

	n := float64(len(magnitudes))
	observed := make(map[int]float64, 9)
	expected := make(map[int]float64, 9)
	chiSquare := 0.0
	for d := 1; d <= 9; d++ {
		obsPct := float64(counts[d]) / n * 100
		expPct := math.Log10(1+1.0/float64(d)) * 100
		observed[d] = obsPct
		expected[d] = expPct

		obsCount := float64(counts[d])
		expCount := expPct / 100 * n
		if expCount > 0 {
			chiSquare += (obsCount - expCount) * (obsCount - expCount) / expCount
		}
	}

	isAnomalous := chiSquare > domain.BenfordCriticalValue95
	interpretation := "digit distribution is consistent with Benford's Law"
	if isAnomalous {
		interpretation = "digit distribution deviates from Benford's Law beyond the 95% critical value"
	}

	return domain.BenfordResult{
		Success:        true,
		N:              len(magnitudes),
		ObservedPct:    observed,
		ExpectedPct:    expected,
		ChiSquare:      chiSquare,
		CriticalValue:  domain.BenfordCriticalValue95,
		IsAnomalous:    isAnomalous,
		Interpretation: interpretation,
	}
}

// firstDigit returns the leading significant digit (1-9) of a positive
// finite value.
func firstDigit(v float64) int {
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}
