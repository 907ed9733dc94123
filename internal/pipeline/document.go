package pipeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ulbdigitize/afs-digitizer/constants"
	"github.com/ulbdigitize/afs-digitizer/internal/classify"
	"github.com/ulbdigitize/afs-digitizer/internal/entity"
	"github.com/ulbdigitize/afs-digitizer/internal/linker"
	"github.com/ulbdigitize/afs-digitizer/internal/numeric"
	"github.com/ulbdigitize/afs-digitizer/internal/tables"
)

// statementSections maps the primary statement sections to their
// workbook sheet / confidence keys.
var statementSections = []struct {
	Section constants.Section
	Key     string
	Sheet   string
}{
	{constants.SectionBalanceSheet, "balance_sheet", "Balance Sheet"},
	{constants.SectionIncomeExpenditure, "income_expenditure", "Income and Expenditure"},
	{constants.SectionCashFlow, "cash_flow", "Cash Flow"},
}

var reScheduleHeading = regexp.MustCompile(`(?i)schedule\s*[-: ]\s*([a-z0-9-]+)`)

const (
	maxAmountSamples  = 25
	maxMappingSamples = 25
)

// sectionPages returns the 1-based page numbers carrying the section.
func sectionPages(doc classify.Document, section constants.Section) []int {
	var pages []int
	for _, pc := range doc.PageMap {
		if pc.Section == section {
			pages = append(pages, pc.Page)
		}
	}
	return pages
}

// buildStatement reconstructs and structures one statement from its
// classified pages. Nil when the document has no pages for it.
func buildStatement(doc classify.Document, section constants.Section, pageTexts []string, grids []tables.Grid) *tables.Statement {
	pages := sectionPages(doc, section)
	if len(pages) == 0 {
		return nil
	}
	// texts is the compacted per-section slice; grids arrive with
	// document page numbers and must be renumbered to match, or title
	// inference would index past the slice.
	local := make(map[int]int, len(pages))
	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		local[page] = i + 1
		texts = append(texts, pageTexts[page-1])
	}
	var sectionGrids []tables.Grid
	for _, g := range grids {
		if localPage, ok := local[g.Page]; ok {
			g.Page = localPage
			sectionGrids = append(sectionGrids, g)
		}
	}
	tabs := tables.Reconstruct(sectionGrids, texts)
	st := tables.Structure(tabs, texts)
	return &st
}

// deriveScheduleIndex scans pages classified as supporting schedules
// for "Schedule X" headings, producing the {id -> page refs} index the
// linker resolves against.
func deriveScheduleIndex(doc classify.Document, pageTexts []string) map[string][]string {
	index := make(map[string][]string)
	for _, pc := range doc.PageMap {
		if !pc.Section.IsSchedule() {
			continue
		}
		m := reScheduleHeading.FindStringSubmatch(pageTexts[pc.Page-1])
		if m == nil {
			continue
		}
		id := strings.ToUpper(m[1])
		index[id] = append(index[id], "page_"+strconv.Itoa(pc.Page))
	}
	return index
}

// derivePeriods normalizes the statements' current/previous header
// labels into FY period strings, deduplicated, current before previous.
func derivePeriods(statements map[string]*tables.Statement) []string {
	periods := []string{}
	seen := make(map[string]bool)
	add := func(label string) {
		if fy, ok := numeric.NormalizePeriod(label); ok && !seen[fy] {
			seen[fy] = true
			periods = append(periods, fy)
		}
	}
	for _, sec := range statementSections {
		if st := statements[sec.Key]; st != nil {
			add(st.CurrentLabel)
		}
	}
	for _, sec := range statementSections {
		if st := statements[sec.Key]; st != nil {
			add(st.PreviousLabel)
		}
	}
	return periods
}

// confidenceMeta averages page confidences overall and per section
// present in the document.
func confidenceMeta(doc classify.Document, statements map[string]*tables.Statement, auditPresent bool) entity.ConfidenceMeta {
	meta := entity.ConfidenceMeta{ByStatement: map[string]float64{}}
	if len(doc.PageMap) == 0 {
		return meta
	}

	total := 0.0
	for _, pc := range doc.PageMap {
		total += pc.Confidence
	}
	meta.Overall = round2(total / float64(len(doc.PageMap)))

	average := func(section constants.Section) (float64, bool) {
		sum, n := 0.0, 0
		for _, pc := range doc.PageMap {
			if pc.Section == section {
				sum += pc.Confidence
				n++
			}
		}
		if n == 0 {
			return 0, false
		}
		return round2(sum / float64(n)), true
	}

	for _, sec := range statementSections {
		if statements[sec.Key] == nil {
			continue
		}
		if avg, ok := average(sec.Section); ok {
			meta.ByStatement[sec.Key] = avg
		}
	}
	if auditPresent {
		if avg, ok := average(constants.SectionAuditReport); ok {
			meta.ByStatement["audit_report"] = avg
		}
	}
	return meta
}

// sampleAmounts parses a bounded sample of raw amounts for the
// evidence index.
func sampleAmounts(statements map[string]*tables.Statement) []numeric.ParsedAmount {
	samples := []numeric.ParsedAmount{}
	for _, sec := range statementSections {
		st := statements[sec.Key]
		if st == nil {
			continue
		}
		for _, row := range st.Rows {
			if len(samples) >= maxAmountSamples {
				return samples
			}
			if strings.TrimSpace(row.CurrentAmount) == "" {
				continue
			}
			samples = append(samples, numeric.ParseAmount(row.CurrentAmount))
		}
	}
	return samples
}

// lineItems collects every structured row's particulars, in statement
// order, for schedule-reference detection.
func lineItems(statements map[string]*tables.Statement) []string {
	var items []string
	for _, sec := range statementSections {
		st := statements[sec.Key]
		if st == nil {
			continue
		}
		for _, row := range st.Rows {
			if row.Particulars != "" {
				items = append(items, row.Particulars)
			}
		}
	}
	return items
}

// mergeReviewReasons folds the component review signals in fixed
// order: classification, validation, schedule linking, audit.
func mergeReviewReasons(doc classify.Document, validation []string, links linker.Result, auditReasons []string) []string {
	reasons := []string{}
	reasons = append(reasons, doc.ReviewReasons...)
	reasons = append(reasons, validation...)
	reasons = append(reasons, links.ReviewReasons...)
	reasons = append(reasons, auditReasons...)
	return reasons
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
