package tables

import (
	"regexp"
	"strconv"
	"strings"
)

// Row is one structured statement line.
type Row struct {
	AccountCode    string `json:"account_code"`
	Particulars    string `json:"particulars"`
	CurrentAmount  string `json:"current_amount"`
	PreviousAmount string `json:"previous_amount"`
}

// Statement is the structured output of one statement's tables: the
// derived column labels plus the account-coded lines.
type Statement struct {
	ParticularsLabel string `json:"particulars_label"`
	CurrentLabel     string `json:"current_label"`
	PreviousLabel    string `json:"previous_label"`
	Rows             []Row  `json:"rows"`
}

// Synthetic account codes are unique within one Structure call only.
const (
	accountCodeBase = 110000000
	accountCodeStep = 100
)

var (
	reAmountToken  = regexp.MustCompile(`[(\-]?\d[\d,]*(?:\.\d+)?-?\)?`)
	rePopTrailing  = regexp.MustCompile(`([(\-]?\d[\d,]*(?:\.\d+)?-?\)?)\s*$`)
	reYearHeader   = regexp.MustCompile(`(?i)(?:19|20)\d{2}(?:\s*-\s*(?:19|20)?\d{2})?|FY\s*\d{2,4}`)
	reAccountCode  = regexp.MustCompile(`^\s*(\d{6,12})\s+(.+)$`)
	reOnlyDigits   = regexp.MustCompile(`^\d+$`)
	labelKeywords  = []string{"particular", "description", "head"}
	unitOnlyTokens = map[string]struct{}{"": {}, "rs": {}, "inr": {}, "dr": {}, "cr": {}}
)

// cell classification: a cell is either a single amount (possibly with
// a unit marker) or free text that belongs to the particulars.
type cellKind int

const (
	cellText cellKind = iota
	cellAmount
)

type classifiedCell struct {
	kind    cellKind
	text    string
	amounts []string
}

// classifyCell is a pure function deciding Amount vs Text. A cell is
// amount-only when removing its single amount token leaves nothing but
// a known unit marker.
func classifyCell(cell string) classifiedCell {
	tokens := extractAmountTokens(cell)
	if len(tokens) == 1 {
		leftover := strings.ToLower(strings.TrimSpace(strings.Replace(cell, tokens[0], "", 1)))
		if _, ok := unitOnlyTokens[leftover]; ok {
			return classifiedCell{kind: cellAmount, amounts: tokens}
		}
	}
	return classifiedCell{kind: cellText, text: cell}
}

// Structure converts reconstructed tables into statement lines:
// (account code, particulars, current amount, previous amount). When no
// table yields a usable row it falls back to splitting raw page lines.
func Structure(tabs []Table, pageTexts []string) Statement {
	st := Statement{
		ParticularsLabel: "Particulars",
		CurrentLabel:     "Current Year",
		PreviousLabel:    "Previous Year",
	}

	if len(tabs) > 0 {
		header, _ := headerAndData(tabs[0])
		title := inferTableTitle(tabs[0], header, pageTexts)
		applyLabels(&st, header, title)

		generated := 0
		var rows []Row
		for _, t := range tabs {
			_, data := headerAndData(t)
			for _, cells := range data {
				if row, ok := buildRow(cells, &generated); ok {
					rows = append(rows, row)
				}
			}
		}
		if len(rows) > 0 {
			st.Rows = rows
			return st
		}
	}

	generated := 0
	for _, text := range pageTexts {
		for _, raw := range strings.Split(text, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			if row, ok := buildRow([]string{line}, &generated); ok {
				st.Rows = append(st.Rows, row)
			}
		}
	}
	return st
}

func buildRow(cells []string, generated *int) (Row, bool) {
	particulars, current, previous := splitParticularsAndAmounts(cells)
	if particulars == "" && current == "" && previous == "" {
		return Row{}, false
	}
	code, cleaned := extractAccountCode(particulars)
	if code == "" {
		code = strconv.Itoa(accountCodeBase + *generated*accountCodeStep)
	}
	*generated++
	return Row{
		AccountCode:    code,
		Particulars:    cleaned,
		CurrentAmount:  current,
		PreviousAmount: previous,
	}, true
}

// headerAndData separates a table into its header cells (absorbed
// during reconstruction, or detected within the first 3 rows) and its
// data rows with padding cells dropped.
func headerAndData(t Table) ([]string, [][]string) {
	rows := normalizeRows(t.Rows)
	if len(t.Headers) > 0 {
		return t.Headers, rows
	}
	if idx, ok := detectHeaderRow(rows); ok {
		return rows[idx], rows[idx+1:]
	}
	return nil, rows
}

func normalizeRows(rows [][]string) [][]string {
	var out [][]string
	for _, row := range rows {
		var clean []string
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				clean = append(clean, cell)
			}
		}
		if len(clean) > 0 {
			out = append(out, clean)
		}
	}
	return out
}

// detectHeaderRow finds a header within the first 3 rows: the first
// cell names the label column, or at least one other cell looks like a
// year/period.
func detectHeaderRow(rows [][]string) (int, bool) {
	limit := len(rows)
	if limit > 3 {
		limit = 3
	}
	for idx := 0; idx < limit; idx++ {
		row := rows[idx]
		if len(row) < 2 {
			continue
		}
		first := strings.ToLower(row[0])
		for _, kw := range labelKeywords {
			if strings.Contains(first, kw) {
				return idx, true
			}
		}
		for _, cell := range row[1:] {
			if reYearHeader.MatchString(cell) {
				return idx, true
			}
		}
	}
	return 0, false
}

func applyLabels(st *Statement, header []string, title string) {
	if title != "" {
		st.ParticularsLabel = title
	}
	if len(header) == 0 {
		return
	}
	if first := strings.TrimSpace(header[0]); first != "" {
		st.ParticularsLabel = first
	}
	var periods []string
	for _, cell := range header[1:] {
		if cell = strings.TrimSpace(cell); cell != "" {
			periods = append(periods, cell)
		}
	}
	switch {
	case len(periods) >= 2:
		st.CurrentLabel = periods[len(periods)-2]
		st.PreviousLabel = periods[len(periods)-1]
	case len(periods) == 1:
		st.CurrentLabel = periods[0]
	}
}

// inferTableTitle walks the table's page backwards from the header
// anchor to the nearest non-empty line, defaulting to the page's first
// line.
func inferTableTitle(t Table, header []string, pageTexts []string) string {
	pageIdx := t.Page - 1
	if pageIdx < 0 || pageIdx >= len(pageTexts) {
		return ""
	}
	var lines []string
	for _, raw := range strings.Split(pageTexts[pageIdx], "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	anchor := ""
	if len(header) > 0 {
		anchor = strings.TrimSpace(header[0])
	}
	if anchor != "" {
		for idx, line := range lines {
			if strings.Contains(strings.ToLower(line), strings.ToLower(anchor)) {
				for back := idx - 1; back >= 0; back-- {
					if lines[back] != "" {
						return lines[back]
					}
				}
				break
			}
		}
	}
	return lines[0]
}

// splitParticularsAndAmounts assembles the particulars text from text
// cells, collects amounts from amount-only cells, then detaches any
// amounts still glued to the end of the particulars. The last two
// values become (current, previous); a single value is current only.
func splitParticularsAndAmounts(row []string) (string, string, string) {
	var clean []string
	for _, cell := range row {
		if cell = strings.TrimSpace(cell); cell != "" {
			clean = append(clean, cell)
		}
	}
	if len(clean) == 0 {
		return "", "", ""
	}

	particularsParts := []string{clean[0]}
	var detected []string
	for _, cell := range clean[1:] {
		switch c := classifyCell(cell); c.kind {
		case cellAmount:
			detected = append(detected, c.amounts...)
		default:
			particularsParts = append(particularsParts, c.text)
		}
	}
	particulars := strings.TrimSpace(strings.Join(particularsParts, " "))

	// Current-year amounts often ride on the particulars cell; strip
	// them off the tail in original order.
	var trailing []string
	for {
		updated, token := popTrailingAmount(particulars)
		if token == "" {
			break
		}
		trailing = append([]string{token}, trailing...)
		particulars = updated
	}

	all := append(trailing, detected...)
	current, previous := "", ""
	switch {
	case len(all) >= 2:
		current = all[len(all)-2]
		previous = all[len(all)-1]
	case len(all) == 1:
		current = all[0]
	}
	return strings.TrimSpace(particulars), current, previous
}

// extractAmountTokens finds amount-shaped tokens that stand alone, i.e.
// are not glued to letters or digits on either side.
func extractAmountTokens(text string) []string {
	var out []string
	for _, loc := range reAmountToken.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isAlnum(text[start-1]) {
			continue
		}
		// Give back optional trailing punctuation rather than reject a
		// token that only collides through its "-" or ")" suffix.
		for end < len(text) && isAlnum(text[end]) {
			last := text[end-1]
			if last != '-' && last != ')' {
				break
			}
			end--
		}
		if end < len(text) && isAlnum(text[end]) {
			continue
		}
		if token := text[start:end]; looksLikeAmount(token) {
			out = append(out, token)
		}
	}
	return out
}

func popTrailingAmount(text string) (string, string) {
	m := rePopTrailing.FindStringSubmatchIndex(text)
	if m == nil {
		return text, ""
	}
	start, end := m[2], m[3]
	if start > 0 && isAlnum(text[start-1]) {
		return text, ""
	}
	token := text[start:end]
	if !looksLikeAmount(token) {
		return text, ""
	}
	return strings.TrimRight(text[:start], " \t"), token
}

// looksLikeAmount rejects bare 4-digit years (1900-2099) unless the
// token carries amount punctuation.
func looksLikeAmount(token string) bool {
	stripped := strings.TrimSpace(token)
	var digits strings.Builder
	for _, r := range stripped {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return false
	}
	if strings.ContainsAny(stripped, ",.") ||
		strings.HasSuffix(stripped, "-") ||
		strings.HasPrefix(stripped, "(") ||
		strings.HasSuffix(stripped, ")") {
		return true
	}
	if digits.Len() == 4 {
		if year, err := strconv.Atoi(digits.String()); err == nil && year >= 1900 && year <= 2099 {
			return false
		}
	}
	return reOnlyDigits.MatchString(stripped)
}

func extractAccountCode(particulars string) (string, string) {
	m := reAccountCode.FindStringSubmatch(particulars)
	if m == nil {
		return "", particulars
	}
	return m[1], strings.TrimSpace(m[2])
}

func isAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
