package classify

import "github.com/ulbdigitize/afs-digitizer/constants"

// SectionRule binds one statement section to the keywords that signal
// it. Rules are matched as an ordered list: on tied scores the
// earliest-declared section wins, which keeps classification
// deterministic and lets alternate rule sets be injected under test.
type SectionRule struct {
	Section  constants.Section
	Keywords []string
}

// DefaultRules is the standard rule set for ULB annual reports.
var DefaultRules = []SectionRule{
	{Section: constants.SectionBalanceSheet, Keywords: []string{"balance sheet", "equity and liabilities", "assets"}},
	{Section: constants.SectionBalanceSheetSchedule, Keywords: []string{"schedule", "notes to balance sheet"}},
	{Section: constants.SectionIncomeExpenditure, Keywords: []string{"income and expenditure", "surplus", "deficit"}},
	{Section: constants.SectionIncomeExpenditureSchedule, Keywords: []string{"notes to income", "schedule"}},
	{Section: constants.SectionCashFlow, Keywords: []string{"cash flow", "net increase in cash"}},
	{Section: constants.SectionAuditReport, Keywords: []string{"independent auditor", "true and fair", "qualified opinion"}},
}

// DefaultThreshold is the page confidence below which a document is
// flagged for manual review.
const DefaultThreshold = 0.75
