// Package numeric parses free-text amount and period strings from
// financial statements into typed values.
package numeric

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ulbdigitize/afs-digitizer/constants"
)

// ParsedAmount is the typed result of parsing one raw amount string.
type ParsedAmount struct {
	Raw      string                `json:"raw"`
	Value    *float64              `json:"value"`
	Status   constants.ParseStatus `json:"status"`
	Warnings []string              `json:"warnings"`
}

var (
	reFootnote    = regexp.MustCompile(`[*#]+$`)
	reYearRange   = regexp.MustCompile(`(20\d{2})\s*[-/]\s*(\d{2,4})`)
	reMarchEnding = regexp.MustCompile(`31\s*march\s*(20\d{2})`)
)

// ParseAmount interprets a raw cell value. Blank or "-" cells are a
// legitimate "no value" (status blank); anything unparsable is recorded
// as invalid rather than returned as an error.
func ParseAmount(raw string) ParsedAmount {
	text := strings.TrimSpace(raw)
	if text == "" || text == "-" {
		return ParsedAmount{Raw: raw, Status: constants.ParseBlank, Warnings: []string{}}
	}

	warnings := []string{}
	cleaned := reFootnote.ReplaceAllString(text, "")
	if cleaned != text {
		warnings = append(warnings, "FOOTNOTE_MARKER_REMOVED")
	}

	negative := strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")")
	cleaned = strings.Trim(cleaned, "()")
	cleaned = strings.ReplaceAll(cleaned, "₹", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "–", "-")
	cleaned = strings.TrimSpace(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return ParsedAmount{
			Raw:      raw,
			Status:   constants.ParseInvalid,
			Warnings: append(warnings, "UNPARSABLE"),
		}
	}

	if negative {
		value = -value
	}
	return ParsedAmount{Raw: raw, Value: &value, Status: constants.ParseParsed, Warnings: warnings}
}

// NormalizePeriod maps a free-text column header to an "FYyyyy-yy"
// period label. Handles explicit ranges ("2023-24", "2023/2024") and
// year-ended phrasing ("for the year ended 31 March 2024").
func NormalizePeriod(header string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(header))

	if m := reYearRange.FindStringSubmatch(h); m != nil {
		y1, y2 := m[1], m[2]
		if len(y2) == 4 {
			y2 = y2[2:]
		}
		return "FY" + y1 + "-" + y2, true
	}

	if m := reMarchEnding.FindStringSubmatch(h); m != nil {
		year, _ := strconv.Atoi(m[1])
		prev := strconv.Itoa(year - 1)
		return "FY" + prev + "-" + m[1][2:], true
	}
	return "", false
}
