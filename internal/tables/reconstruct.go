// Package tables reconstructs row/column grids from page text and
// structures them into account-coded statement lines. Every decision
// here is heuristic and deterministic; nothing is raised as an error,
// unusable input just yields fewer rows.
package tables

import (
	"regexp"
	"strings"
)

// Table is one reconstructed (or collaborator-supplied) grid. Rows are
// always rectangular: short rows are padded with empty strings. Headers
// is set only when a header line was absorbed during reconstruction.
type Table struct {
	Page    int        `json:"page"`
	Index   int        `json:"index"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// Grid is a pre-parsed table supplied by the extraction collaborator.
type Grid struct {
	Page  int
	Index int
	Rows  [][]string
}

var (
	reColumnSplit = regexp.MustCompile(`\t+|\s{2,}`)
	reWhitespace2 = regexp.MustCompile(`\s{2,}`)
	reDigit       = regexp.MustCompile(`\d`)
)

// Reconstruct prefers precise collaborator grids and falls back to the
// text heuristic when none are supplied (or all are empty).
func Reconstruct(grids []Grid, pageTexts []string) []Table {
	if tables := fromGrids(grids); len(tables) > 0 {
		return tables
	}
	return FromText(pageTexts)
}

func fromGrids(grids []Grid) []Table {
	var tables []Table
	for _, g := range grids {
		var rows [][]string
		for _, row := range g.Rows {
			cleaned := make([]string, len(row))
			any := false
			for i, cell := range row {
				cleaned[i] = strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
				if cleaned[i] != "" {
					any = true
				}
			}
			if any {
				rows = append(rows, cleaned)
			}
		}
		if len(rows) == 0 {
			continue
		}
		tables = append(tables, Table{Page: g.Page, Index: g.Index, Rows: padRows(rows)})
	}
	return tables
}

// FromText reconstructs tables from raw page text. A line is row-like
// if it carries a column delimiter (a pipe, or a run of two or more
// whitespace characters) and at least one digit. Contiguous row-like
// lines form a table; the single non-row-like line immediately above
// may be absorbed as a header when it splits into the same column
// count as the first data row and carries no digits.
func FromText(pageTexts []string) []Table {
	var tables []Table

	for pageIdx, text := range pageTexts {
		page := pageIdx + 1
		nextIndex := 1

		var headers []string
		var current [][]string
		pending := "" // candidate header: last non-row-like line directly above

		flush := func() {
			if len(current) >= 2 || (headers != nil && len(current) >= 1) {
				tables = append(tables, Table{
					Page:    page,
					Index:   nextIndex,
					Headers: headers,
					Rows:    padRows(current),
				})
				nextIndex++
			}
			headers = nil
			current = nil
		}

		for _, raw := range strings.Split(text, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				flush()
				pending = ""
				continue
			}
			if isRowLike(line) {
				cols := SplitColumns(line)
				if len(current) == 0 && pending != "" {
					hcols := SplitColumns(pending)
					if len(hcols) == len(cols) && !reDigit.MatchString(pending) {
						headers = hcols
					}
				}
				current = append(current, cols)
				pending = ""
				continue
			}
			flush()
			pending = line
		}
		flush()
	}

	return tables
}

func isRowLike(line string) bool {
	if !strings.Contains(line, "|") && !reWhitespace2.MatchString(line) {
		return false
	}
	return reDigit.MatchString(line)
}

// SplitColumns breaks one line into trimmed, non-empty column values.
// Pipe-delimited lines split on the pipes; otherwise runs of two or
// more whitespace characters separate columns.
func SplitColumns(line string) []string {
	var chunks []string
	if strings.Contains(line, "|") {
		chunks = strings.Split(line, "|")
	} else {
		chunks = reColumnSplit.Split(line, -1)
	}
	var cols []string
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}
