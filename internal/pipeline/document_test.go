package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulbdigitize/afs-digitizer/constants"
	"github.com/ulbdigitize/afs-digitizer/internal/classify"
	"github.com/ulbdigitize/afs-digitizer/internal/tables"
)

func TestBuildStatementRenumbersGrids(t *testing.T) {
	doc := classify.Document{PageMap: []classify.PageClassification{
		{Page: 1, Section: constants.SectionOther},
		{Page: 2, Section: constants.SectionOther},
		{Page: 3, Section: constants.SectionCashFlow},
	}}
	pageTexts := []string{
		"cover page",
		"annexure",
		"Receipts and Payments Summary\nnarrative below the title",
	}
	// Collaborator grids carry document page numbers; the statement is
	// built from the compacted section slice.
	grids := []tables.Grid{{Page: 3, Index: 1, Rows: [][]string{
		{"Total Receipts", "1,200.00"},
		{"Total Payments", "900.00"},
	}}}

	st := buildStatement(doc, constants.SectionCashFlow, pageTexts, grids)
	require.NotNil(t, st)
	require.Len(t, st.Rows, 2)
	assert.Equal(t, "1,200.00", st.Rows[0].CurrentAmount)

	// Title inference must still see the grid's page text.
	assert.Equal(t, "Receipts and Payments Summary", st.ParticularsLabel)
}

func TestBuildStatementDropsForeignGrids(t *testing.T) {
	doc := classify.Document{PageMap: []classify.PageClassification{
		{Page: 1, Section: constants.SectionBalanceSheet},
		{Page: 2, Section: constants.SectionCashFlow},
	}}
	pageTexts := []string{"balance sheet page", "cash flow page"}
	grids := []tables.Grid{{Page: 1, Index: 1, Rows: [][]string{
		{"Fixed Assets", "5,000.00"},
		{"Current Assets", "2,500.00"},
	}}}

	st := buildStatement(doc, constants.SectionCashFlow, pageTexts, grids)
	require.NotNil(t, st)
	// The other section's grid contributes nothing; no text tables
	// either, so the per-line fallback kicks in.
	for _, row := range st.Rows {
		assert.NotContains(t, row.Particulars, "Fixed Assets")
	}
}
