package pipeline

import (
	"strings"

	"github.com/ulbdigitize/afs-digitizer/internal/numeric"
	"github.com/ulbdigitize/afs-digitizer/internal/tables"
	"github.com/ulbdigitize/afs-digitizer/internal/validate"
)

// Labeled-total phrase sets, first match wins. Phrases are matched as
// lowercase substrings of the row's particulars.
var (
	phrasesTotalAssets = []string{"total assets", "total application of funds"}
	phrasesTotalEquity = []string{"total equity and liabilities", "total liabilities", "total sources of funds"}
	phrasesCFOpening   = []string{"at the beginning", "opening balance"}
	phrasesCFClosing   = []string{"at the end", "closing balance"}
	phrasesCFNet       = []string{"net increase", "net decrease", "net change"}
	phrasesIERevenue   = []string{"total income", "total revenue"}
	phrasesIEExpense   = []string{"total expenditure", "total expense"}
	phrasesIESurplus   = []string{"surplus", "deficit"}
)

// findTotal scans a statement for the first row whose particulars
// contain one of the phrases and whose current amount parses.
func findTotal(st *tables.Statement, phrases []string) (float64, bool) {
	if st == nil {
		return 0, false
	}
	for _, row := range st.Rows {
		lower := strings.ToLower(row.Particulars)
		for _, phrase := range phrases {
			if !strings.Contains(lower, phrase) {
				continue
			}
			parsed := numeric.ParseAmount(row.CurrentAmount)
			if parsed.Value != nil {
				return *parsed.Value, true
			}
		}
	}
	return 0, false
}

// runChecks applies every arithmetic rule whose operands the structured
// statements actually carry. Rules with missing operands are skipped,
// never failed.
func runChecks(v *validate.FinancialValidator, balanceSheet, incomeExpenditure, cashFlow *tables.Statement) []validate.Finding {
	var findings []validate.Finding

	if assets, ok := findTotal(balanceSheet, phrasesTotalAssets); ok {
		if equity, ok := findTotal(balanceSheet, phrasesTotalEquity); ok {
			findings = append(findings, v.CheckBalanceSheet(assets, equity))
		}
	}

	if opening, ok := findTotal(cashFlow, phrasesCFOpening); ok {
		if closing, ok := findTotal(cashFlow, phrasesCFClosing); ok {
			if net, ok := findTotal(cashFlow, phrasesCFNet); ok {
				findings = append(findings, v.CheckCashFlow(opening, net, closing))
			}
		}
	}

	if revenue, ok := findTotal(incomeExpenditure, phrasesIERevenue); ok {
		if expense, ok := findTotal(incomeExpenditure, phrasesIEExpense); ok {
			if surplus, ok := findTotal(incomeExpenditure, phrasesIESurplus); ok {
				findings = append(findings, v.CheckIncomeExpenditure(revenue, 0, expense, surplus))
			}
		}
	}

	findings = append(findings, crossfootChecks(v, map[string]*tables.Statement{
		"BALANCE_SHEET":      balanceSheet,
		"INCOME_EXPENDITURE": incomeExpenditure,
	})...)

	return findings
}

// crossfootChecks verifies a statement whose last row is a grand total
// against the sum of the rows above it. Needs at least two parseable
// child amounts to be meaningful.
func crossfootChecks(v *validate.FinancialValidator, statements map[string]*tables.Statement) []validate.Finding {
	var findings []validate.Finding
	for _, name := range []string{"BALANCE_SHEET", "INCOME_EXPENDITURE"} {
		st := statements[name]
		if st == nil || len(st.Rows) < 3 {
			continue
		}
		last := st.Rows[len(st.Rows)-1]
		if !strings.Contains(strings.ToLower(last.Particulars), "total") {
			continue
		}
		parent := numeric.ParseAmount(last.CurrentAmount)
		if parent.Value == nil {
			continue
		}
		childSum := 0.0
		children := 0
		subtotals := false
		for _, row := range st.Rows[:len(st.Rows)-1] {
			// Intermediate subtotals would double-count; skip the whole
			// check rather than guess the hierarchy.
			if strings.Contains(strings.ToLower(row.Particulars), "total") {
				subtotals = true
				break
			}
			if parsed := numeric.ParseAmount(row.CurrentAmount); parsed.Value != nil {
				childSum += *parsed.Value
				children++
			}
		}
		if subtotals || children < 2 {
			continue
		}
		findings = append(findings, v.CheckCrossfoot("CROSSFOOT_"+name, *parent.Value, childSum))
	}
	return findings
}
