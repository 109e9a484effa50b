package normalize

import "github.com/Rishikoli/IRIS1-sub001/internal/domain"

// SourceTag identifies the ingest source whose native field names the
// mapping table below translates from.
type SourceTag string

const (
	SourceYahoo SourceTag = "yahoo"
	SourceNSE   SourceTag = "nse"
	SourceBSE   SourceTag = "bse"
	SourceFMP   SourceTag = "fmp"
)

// baseMapping is the explicit many-to-one mapping from source-specific
// field names to canonical names. Every source shares a common core
// (income/balance/cash-flow line items are named almost identically
// across Yahoo/NSE/BSE/FMP exports) with small per-source spelling
// differences, so the table is built from a shared base plus per-source
// overrides.
var baseMapping = map[string]domain.CanonicalField{
	"total_revenue":      domain.TotalRevenue,
	"revenue":            domain.TotalRevenue,
	"net_sales":          domain.TotalRevenue,
	"cost_of_revenue":    domain.CostOfRevenue,
	"cost_of_goods_sold": domain.CostOfRevenue,
	"gross_profit":       domain.GrossProfit,
	"operating_income":   domain.OperatingIncome,
	"ebit":               domain.OperatingIncome,
	"net_profit":         domain.NetProfit,
	"net_income":         domain.NetProfit,
	"profit_after_tax":   domain.NetProfit,
	"interest_expense":   domain.InterestExpense,
	"finance_costs":      domain.InterestExpense,
	"tax_expense":        domain.TaxExpense,
	"income_tax_expense": domain.TaxExpense,
	"ebitda":             domain.EBITDA,
	"depreciation":       domain.DepreciationAndAmortization,
	"depreciation_and_amortization": domain.DepreciationAndAmortization,
	"sga_expenses":       domain.SellingGeneralAdminExpenses,
	"selling_general_admin_expenses": domain.SellingGeneralAdminExpenses,
	"other_income":       domain.OtherIncome,
	"exceptional_items":  domain.ExceptionalItems,

	"total_assets":             domain.TotalAssets,
	"current_assets":           domain.CurrentAssets,
	"non_current_assets":       domain.NonCurrentAssets,
	"cash_and_equivalents":     domain.CashAndEquivalents,
	"cash_and_cash_equivalents": domain.CashAndEquivalents,
	"accounts_receivable":      domain.AccountsReceivable,
	"trade_receivables":        domain.AccountsReceivable,
	"inventory":                domain.Inventory,
	"inventories":              domain.Inventory,
	"property_plant_equipment": domain.PropertyPlantEquipment,
	"net_ppe":                  domain.PropertyPlantEquipment,
	"goodwill":                 domain.Goodwill,
	"intangible_assets":        domain.IntangibleAssets,
	"prepaid_expenses":         domain.PrepaidExpenses,
	"other_current_assets":     domain.OtherCurrentAssets,
	"long_term_investments":    domain.LongTermInvestments,
	"short_term_investments":   domain.ShortTermInvestments,
	"current_liabilities":      domain.CurrentLiabilities,
	"non_current_liabilities":  domain.NonCurrentLiabilities,
	"total_liabilities":        domain.TotalLiabilities,
	"total_equity":             domain.TotalEquity,
	"stockholders_equity":      domain.TotalEquity,
	"retained_earnings":        domain.RetainedEarnings,
	"accounts_payable":         domain.AccountsPayable,
	"trade_payables":           domain.AccountsPayable,
	"short_term_debt":          domain.ShortTermDebt,
	"current_debt":             domain.ShortTermDebt,
	"long_term_debt":           domain.LongTermDebt,
	"other_current_liabilities": domain.OtherCurrentLiabilities,
	"provisions":               domain.Provisions,
	"minority_interest":        domain.MinorityInterest,
	"share_capital":            domain.ShareCapital,
	"securities_premium":       domain.SecuritiesPremium,

	"operating_cash_flow":      domain.OperatingCashFlow,
	"cash_from_operations":     domain.OperatingCashFlow,
	"capital_expenditure":      domain.CapitalExpenditure,
	"capex":                    domain.CapitalExpenditure,
	"dividends_paid":           domain.DividendsPaid,
}

// sourceOverrides holds per-source spellings that differ from the base
// table (NSE/BSE corporate filings use Ind AS line-item names; FMP and
// Yahoo use US-GAAP-flavored names already covered by the base table).
var sourceOverrides = map[SourceTag]map[string]domain.CanonicalField{
	SourceNSE: {
		"total_income":       domain.TotalRevenue,
		"pbt":                domain.OperatingIncome,
		"pat":                domain.NetProfit,
		"other_equity":       domain.RetainedEarnings,
		"trade_payables_nse": domain.AccountsPayable,
	},
	SourceBSE: {
		"total_income":  domain.TotalRevenue,
		"pbt":           domain.OperatingIncome,
		"pat":           domain.NetProfit,
		"sundry_debtors": domain.AccountsReceivable,
		"sundry_creditors": domain.AccountsPayable,
	},
}

// canonicalize maps a source-native field name to its canonical field,
// preferring a per-source override over the shared base table. Fields
// not present in either table are reported as unmapped (caller drops
// them silently; the normalizer never errors on an unknown field).
func canonicalize(source SourceTag, name string) (domain.CanonicalField, bool) {
	if overrides, ok := sourceOverrides[source]; ok {
		if f, ok := overrides[name]; ok {
			return f, true
		}
	}
	f, ok := baseMapping[name]
	return f, ok
}
