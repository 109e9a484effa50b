package forensics

import "github.com/Rishikoli/IRIS1-sub001/internal/domain"

// Beneish computes the eight-variable M-Score for every consecutive
// (t-1, t) period pair where both periods have an income statement and a
// balance sheet, returning the most recent as Current and the ascending
// series as History. A variable that cannot be computed (missing input,
// or a t-1 denominator of zero) defaults to 1 (neutral) and is recorded
// in DefaultedVars; a zero-revenue period is flagged via RevenueZeroFlag.
func Beneish(statements []domain.FinancialStatement) domain.BeneishResult {
	pairs := pairByPeriod(statements)

	complete := make([]periodPair, 0, len(pairs))
	for _, p := range pairs {
		if p.income != nil && p.balance != nil {
			complete = append(complete, p)
		}
	}

	var history []domain.BeneishScore
	for i := 1; i < len(complete); i++ {
		prev, curr := complete[i-1], complete[i]
		score := beneishForPair(prev, curr)
		history = append(history, score)
	}

	res := domain.BeneishResult{History: history}
	if len(history) > 0 {
		cur := history[len(history)-1]
		res.Current = &cur
	}
	return res
}

// MScore applies the Beneish linear discriminant to the eight variables
// directly — factored out so the formula itself is independently
// testable against spec.md's worked examples.
func MScore(dsri, gmi, aqi, sgi, depi, sgai, lvgi, tata float64) float64 {
	return -4.84 + 0.92*dsri + 0.528*gmi + 0.404*aqi + 0.892*sgi + 0.115*depi - 0.172*sgai - 0.327*lvgi + 4.679*tata
}

func beneishForPair(prev, curr periodPair) domain.BeneishScore {
	key := prev.period + "_to_" + curr.period
	var defaulted []string

	ratio := func(name string, num, den, numPrev, denPrev float64, okAll bool) float64 {
		if !okAll || den == 0 || denPrev == 0 {
			defaulted = append(defaulted, name)
			return 1
		}
		return (num / den) / (numPrev / denPrev)
	}

	f := func(s *domain.FinancialStatement, field domain.CanonicalField) (float64, bool) {
		if s == nil {
			return 0, false
		}
		return s.GetFloat(field)
	}

	revenueZero := false
	salesT, okSalesT := f(curr.income, domain.TotalRevenue)
	salesP, okSalesP := f(prev.income, domain.TotalRevenue)
	if (okSalesT && salesT == 0) || (okSalesP && salesP == 0) {
		revenueZero = true
	}

	arT, okArT := f(curr.balance, domain.AccountsReceivable)
	arP, okArP := f(prev.balance, domain.AccountsReceivable)
	dsri := ratio("DSRI", arT, salesT, arP, salesP, okArT && okSalesT && okArP && okSalesP)

	gpT, okGpT := f(curr.income, domain.GrossProfit)
	gpP, okGpP := f(prev.income, domain.GrossProfit)
	var gmT, gmP float64
	var okGmT, okGmP bool
	if okGpT && okSalesT && salesT != 0 {
		gmT, okGmT = gpT/salesT, true
	}
	if okGpP && okSalesP && salesP != 0 {
		gmP, okGmP = gpP/salesP, true
	}
	gmi := 1.0
	if okGmT && okGmP && gmT != 0 {
		gmi = gmP / gmT
	} else {
		defaulted = append(defaulted, "GMI")
	}

	caT, okCaT := f(curr.balance, domain.CurrentAssets)
	caP, okCaP := f(prev.balance, domain.CurrentAssets)
	ppeT, okPpeT := f(curr.balance, domain.PropertyPlantEquipment)
	ppeP, okPpeP := f(prev.balance, domain.PropertyPlantEquipment)
	taT, okTaT := f(curr.balance, domain.TotalAssets)
	taP, okTaP := f(prev.balance, domain.TotalAssets)
	aqi := 1.0
	if okCaT && okPpeT && okTaT && taT != 0 && okCaP && okPpeP && okTaP && taP != 0 {
		aqT := 1 - (caT+ppeT)/taT
		aqP := 1 - (caP+ppeP)/taP
		if aqP != 0 {
			aqi = aqT / aqP
		} else {
			defaulted = append(defaulted, "AQI")
		}
	} else {
		defaulted = append(defaulted, "AQI")
	}

	sgi := 1.0
	if okSalesT && okSalesP && salesP != 0 {
		sgi = salesT / salesP
	} else {
		defaulted = append(defaulted, "SGI")
	}

	depT, okDepT := f(curr.income, domain.DepreciationAndAmortization)
	depP, okDepP := f(prev.income, domain.DepreciationAndAmortization)
	depi := 1.0
	if okDepT && okPpeT && okDepP && okPpeP {
		denT := depT + ppeT
		denP := depP + ppeP
		if denT != 0 && denP != 0 {
			rateT := depT / denT
			rateP := depP / denP
			if rateT != 0 {
				depi = rateP / rateT
			} else {
				defaulted = append(defaulted, "DEPI")
			}
		} else {
			defaulted = append(defaulted, "DEPI")
		}
	} else {
		defaulted = append(defaulted, "DEPI")
	}

	sgaT, okSgaT := f(curr.income, domain.SellingGeneralAdminExpenses)
	sgaP, okSgaP := f(prev.income, domain.SellingGeneralAdminExpenses)
	sgai := ratio("SGAI", sgaT, salesT, sgaP, salesP, okSgaT && okSalesT && okSgaP && okSalesP)

	ltdT, okLtdT := f(curr.balance, domain.LongTermDebt)
	ltdP, okLtdP := f(prev.balance, domain.LongTermDebt)
	clT, okClT := f(curr.balance, domain.CurrentLiabilities)
	clP, okClP := f(prev.balance, domain.CurrentLiabilities)
	lvgi := 1.0
	if okLtdT && okClT && okTaT && taT != 0 && okLtdP && okClP && okTaP && taP != 0 {
		levT := (ltdT + clT) / taT
		levP := (ltdP + clP) / taP
		if levP != 0 {
			lvgi = levT / levP
		} else {
			defaulted = append(defaulted, "LVGI")
		}
	} else {
		defaulted = append(defaulted, "LVGI")
	}

	tata := 1.0
	cashT, okCashT := f(curr.balance, domain.CashAndEquivalents)
	cashP, okCashP := f(prev.balance, domain.CashAndEquivalents)
	depCurT, okDepCurT := f(curr.income, domain.DepreciationAndAmortization)
	if okCaT && okClT && okCaP && okClP && okCashT && okCashP && okDepCurT && okTaT && taT != 0 {
		wcT := caT - clT
		wcP := caP - clP
		tata = (wcT - wcP - cashT + cashP - depCurT) / taT
	} else {
		defaulted = append(defaulted, "TATA")
	}

	m := MScore(dsri, gmi, aqi, sgi, depi, sgai, lvgi, tata)

	class := domain.BeneishLow
	if m > domain.BeneishThreshold {
		class = domain.BeneishLikelyManipulator
	}

	return domain.BeneishScore{
		Period: key,
		DSRI:   dsri, GMI: gmi, AQI: aqi, SGI: sgi, DEPI: depi, SGAI: sgai, LVGI: lvgi, TATA: tata,
		M:                m,
		Classification:    class,
		DefaultedVars:     defaulted,
		RevenueZeroFlag:   revenueZero,
	}
}
