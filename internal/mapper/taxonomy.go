package mapper

// DefaultTaxonomy maps common ULB statement labels to canonical
// taxonomy paths. Extendable per deployment; passed to NewMapper by the
// pipeline when no custom dictionary is configured.
var DefaultTaxonomy = map[string]string{
	"Plant & Machinery":          "balance_sheet.assets.non_current_assets.plant_machinery",
	"Land":                       "balance_sheet.assets.non_current_assets.land",
	"Buildings":                  "balance_sheet.assets.non_current_assets.buildings",
	"Roads & Bridges":            "balance_sheet.assets.non_current_assets.roads_bridges",
	"Vehicles":                   "balance_sheet.assets.non_current_assets.vehicles",
	"Office Equipment":           "balance_sheet.assets.non_current_assets.office_equipment",
	"Sundry Debtors":             "balance_sheet.assets.current_assets.sundry_debtors",
	"Cash and Bank Balances":     "balance_sheet.assets.current_assets.cash_bank",
	"Investments":                "balance_sheet.assets.investments",
	"Municipal Fund":             "balance_sheet.liabilities.reserves.municipal_fund",
	"Earmarked Funds":            "balance_sheet.liabilities.reserves.earmarked_funds",
	"Grants & Contributions":     "balance_sheet.liabilities.grants_contributions",
	"Secured Loans":              "balance_sheet.liabilities.secured_loans",
	"Unsecured Loans":            "balance_sheet.liabilities.unsecured_loans",
	"Sundry Creditors":           "balance_sheet.liabilities.current_liabilities.sundry_creditors",
	"Provisions":                 "balance_sheet.liabilities.provisions",
	"Property Tax":               "income_expenditure.income.tax_revenue.property_tax",
	"Water Charges":              "income_expenditure.income.fees_user_charges.water_charges",
	"Rental Income":              "income_expenditure.income.rental_income",
	"Establishment Expenses":     "income_expenditure.expenditure.establishment",
	"Administrative Expenses":    "income_expenditure.expenditure.administrative",
	"Operations & Maintenance":   "income_expenditure.expenditure.operations_maintenance",
	"Interest & Finance Charges": "income_expenditure.expenditure.interest_finance",
	"Depreciation":               "income_expenditure.expenditure.depreciation",
}
