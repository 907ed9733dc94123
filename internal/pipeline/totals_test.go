package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulbdigitize/afs-digitizer/constants"
	"github.com/ulbdigitize/afs-digitizer/internal/tables"
	"github.com/ulbdigitize/afs-digitizer/internal/validate"
)

func statement(rows ...tables.Row) *tables.Statement {
	return &tables.Statement{
		ParticularsLabel: "Particulars",
		CurrentLabel:     "2023-24",
		PreviousLabel:    "2022-23",
		Rows:             rows,
	}
}

func TestFindTotal(t *testing.T) {
	st := statement(
		tables.Row{Particulars: "Property Tax", CurrentAmount: "1,200.00"},
		tables.Row{Particulars: "Total Assets", CurrentAmount: "7,500.00"},
	)

	value, ok := findTotal(st, phrasesTotalAssets)
	require.True(t, ok)
	assert.InDelta(t, 7500, value, 1e-9)

	_, ok = findTotal(st, phrasesTotalEquity)
	assert.False(t, ok)

	_, ok = findTotal(nil, phrasesTotalAssets)
	assert.False(t, ok)
}

func TestRunChecksSkipsMissingOperands(t *testing.T) {
	v := validate.NewFinancialValidator(1)

	// Balance sheet with only one side; no rule has full operands.
	bs := statement(tables.Row{Particulars: "Total Assets", CurrentAmount: "7,500.00"})
	findings := runChecks(v, bs, nil, nil)
	assert.Empty(t, findings)
}

func TestRunChecksCashFlow(t *testing.T) {
	v := validate.NewFinancialValidator(1)
	cf := statement(
		tables.Row{Particulars: "Cash at the beginning of the year", CurrentAmount: "500.00"},
		tables.Row{Particulars: "Net increase in cash", CurrentAmount: "200.00"},
		tables.Row{Particulars: "Cash at the end of the year", CurrentAmount: "700.00"},
	)

	findings := runChecks(v, nil, nil, cf)
	require.Len(t, findings, 1)
	assert.Equal(t, validate.RuleCashFlow, findings[0].Rule)
	assert.Equal(t, constants.ValidationPassed, findings[0].Status)
}

func TestCrossfootCheck(t *testing.T) {
	v := validate.NewFinancialValidator(1)
	bs := statement(
		tables.Row{Particulars: "Land", CurrentAmount: "3,000.00"},
		tables.Row{Particulars: "Buildings", CurrentAmount: "2,000.00"},
		tables.Row{Particulars: "Grand Total", CurrentAmount: "5,500.00"},
	)

	findings := crossfootChecks(v, map[string]*tables.Statement{"BALANCE_SHEET": bs})
	require.Len(t, findings, 1)
	assert.Equal(t, "CROSSFOOT_BALANCE_SHEET", findings[0].Rule)
	assert.Equal(t, constants.ValidationFailed, findings[0].Status)
	assert.Equal(t, constants.SeverityMedium, findings[0].Severity)
	assert.InDelta(t, -500, findings[0].Variance, 1e-9)
}

func TestCrossfootSkipsSubtotals(t *testing.T) {
	v := validate.NewFinancialValidator(1)
	bs := statement(
		tables.Row{Particulars: "Total Fixed Assets", CurrentAmount: "5,000.00"},
		tables.Row{Particulars: "Current Assets", CurrentAmount: "2,500.00"},
		tables.Row{Particulars: "Total Assets", CurrentAmount: "7,500.00"},
	)

	findings := crossfootChecks(v, map[string]*tables.Statement{"BALANCE_SHEET": bs})
	assert.Empty(t, findings)
}
