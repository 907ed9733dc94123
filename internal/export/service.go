package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ulbdigitize/afs-digitizer/internal/tables"
)

// SheetOrder fixes the statement sheets' order inside the workbook.
var SheetOrder = []string{"Balance Sheet", "Income and Expenditure", "Cash Flow"}

// Service produces XLSX bytes for digitized statements.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportStatementsXLSX returns an XLSX workbook (as bytes) with one
// sheet per structured statement, in SheetOrder. Statements missing
// from the map are skipped.
func (s *Service) ExportStatementsXLSX(ctx context.Context, jobID string, statements map[string]*tables.Statement) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	written := 0
	totalRows := 0
	for _, name := range SheetOrder {
		st, ok := statements[name]
		if !ok || st == nil {
			continue
		}
		if err := writeSheet(f, name, st); err != nil {
			return nil, err
		}
		written++
		totalRows += len(st.Rows)
	}
	if written == 0 {
		return nil, fmt.Errorf("no statements to export")
	}

	// Drop excelize's default sheet when it was not reused.
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}
	first, _ := f.GetSheetIndex(firstWrittenSheet(statements))
	if first != -1 {
		f.SetActiveSheet(first)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", jobID,
		"sheets", written,
		"rows", totalRows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func firstWrittenSheet(statements map[string]*tables.Statement) string {
	for _, name := range SheetOrder {
		if st, ok := statements[name]; ok && st != nil {
			return name
		}
	}
	return ""
}

func writeSheet(f *excelize.File, sheet string, st *tables.Statement) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}

	headers := []string{
		"Account Code",
		st.ParticularsLabel,
		fmt.Sprintf("Current Year Amount (%s)", st.CurrentLabel),
		fmt.Sprintf("Previous Year Amount (%s)", st.PreviousLabel),
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range st.Rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.AccountCode)
		write(2, truncate(r.Particulars, 140))
		write(3, r.CurrentAmount)
		write(4, r.PreviousAmount)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // account code
	_ = f.SetColWidth(sheet, "B", "B", 48) // particulars
	_ = f.SetColWidth(sheet, "C", "D", 26) // amounts
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
