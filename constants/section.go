package constants

// Section labels a page with the statement it belongs to.
type Section string

const (
	SectionBalanceSheet              Section = "BALANCE_SHEET"
	SectionBalanceSheetSchedule      Section = "BALANCE_SHEET_SCHEDULE"
	SectionIncomeExpenditure         Section = "INCOME_EXPENDITURE"
	SectionIncomeExpenditureSchedule Section = "INCOME_EXPENDITURE_SCHEDULE"
	SectionCashFlow                  Section = "CASH_FLOW"
	SectionAuditReport               Section = "AUDIT_REPORT"
	SectionOther                     Section = "OTHER/ANNEXURE" // fallback for pages no rule matched
)

// IsSchedule reports whether the section holds supporting schedules
// rather than a primary statement.
func (s Section) IsSchedule() bool {
	return s == SectionBalanceSheetSchedule || s == SectionIncomeExpenditureSchedule
}
