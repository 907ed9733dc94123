package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ulbdigitize/afs-digitizer/internal/tables"
)

func TestExportStatementsXLSX(t *testing.T) {
	statements := map[string]*tables.Statement{
		"Balance Sheet": {
			ParticularsLabel: "Particulars",
			CurrentLabel:     "2023-24",
			PreviousLabel:    "2022-23",
			Rows: []tables.Row{
				{AccountCode: "110010100", Particulars: "Property Tax", CurrentAmount: "1,200.00", PreviousAmount: "900.00"},
			},
		},
		"Cash Flow": {
			ParticularsLabel: "Particulars",
			CurrentLabel:     "2023-24",
			PreviousLabel:    "2022-23",
			Rows: []tables.Row{
				{AccountCode: "110000000", Particulars: "Opening Balance", CurrentAmount: "500.00"},
			},
		},
	}

	svc := NewService(nil)
	data, err := svc.ExportStatementsXLSX(context.Background(), "job-1", statements)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Balance Sheet")
	assert.Contains(t, sheets, "Cash Flow")
	assert.NotContains(t, sheets, "Income and Expenditure")
	assert.NotContains(t, sheets, "Sheet1")

	head, err := f.GetCellValue("Balance Sheet", "C1")
	require.NoError(t, err)
	assert.Equal(t, "Current Year Amount (2023-24)", head)

	code, err := f.GetCellValue("Balance Sheet", "A2")
	require.NoError(t, err)
	assert.Equal(t, "110010100", code)

	amount, err := f.GetCellValue("Balance Sheet", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1,200.00", amount)
}

func TestExportStatementsXLSXEmpty(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ExportStatementsXLSX(context.Background(), "job-1", nil)
	assert.Error(t, err)
}
