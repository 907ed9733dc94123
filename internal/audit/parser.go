// Package audit extracts structured evidence from auditor report
// narrative text with fixed phrase rules.
package audit

import (
	"regexp"
	"strings"
)

// EvidenceBlock is a labeled excerpt supporting one extracted fact.
type EvidenceBlock struct {
	Label      string  `json:"label"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Report is the structured reading of one auditor report.
type Report struct {
	Opinion              string          `json:"opinion"`
	BasisForOpinion      string          `json:"basis_for_opinion"`
	KeyAuditMatters      []string        `json:"key_audit_matters"`
	EmphasisOfMatter     string          `json:"emphasis_of_matter"`
	RequiresManualReview bool            `json:"requires_manual_review"`
	ReviewReasons        []string        `json:"review_reasons"`
	EvidenceBlocks       []EvidenceBlock `json:"evidence_blocks"`
}

var (
	reOpinion    = regexp.MustCompile(`(?i)(unmodified opinion|qualified opinion|adverse opinion|disclaimer of opinion)`)
	reParagraphs = regexp.MustCompile(`\n\s*\n`)
)

// Parser is a rule-based reader for auditor reports.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse splits the report into paragraphs on blank lines and extracts
// the opinion, its basis, key audit matters and any emphasis of matter.
// A missing opinion is not an error: the report is flagged for manual
// review instead.
func (p *Parser) Parse(reportText string) Report {
	var paragraphs []string
	for _, part := range reParagraphs.Split(reportText, -1) {
		if part = strings.TrimSpace(part); part != "" {
			paragraphs = append(paragraphs, part)
		}
	}

	opinion, opinionFound := extractOpinion(reportText)
	basis := extractBasis(paragraphs)
	keyMatters := extractKeyAuditMatters(paragraphs)

	var evidence []EvidenceBlock
	if opinionFound {
		evidence = append(evidence, EvidenceBlock{Label: "opinion", Text: opinion, Confidence: 0.95})
	}
	if basis != "" {
		evidence = append(evidence, EvidenceBlock{Label: "basis", Text: basis, Confidence: 0.9})
	}
	for _, matter := range keyMatters {
		evidence = append(evidence, EvidenceBlock{Label: "key_audit_matter", Text: matter, Confidence: 0.88})
	}

	report := Report{
		Opinion:          opinion,
		BasisForOpinion:  basis,
		KeyAuditMatters:  keyMatters,
		EmphasisOfMatter: extractEmphasis(paragraphs),
		ReviewReasons:    []string{},
		EvidenceBlocks:   evidence,
	}
	if !opinionFound {
		report.Opinion = "UNKNOWN"
		report.RequiresManualReview = true
		report.ReviewReasons = []string{"AUDIT_OPINION_NOT_FOUND"}
	}
	return report
}

func extractOpinion(text string) (string, bool) {
	m := reOpinion.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return titleCase(m[1]), true
}

func extractBasis(paragraphs []string) string {
	for _, paragraph := range paragraphs {
		lower := strings.ToLower(paragraph)
		if strings.Contains(lower, "basis for") && strings.Contains(lower, "opinion") {
			return paragraph
		}
	}
	return ""
}

func extractKeyAuditMatters(paragraphs []string) []string {
	var matters []string
	for _, paragraph := range paragraphs {
		if strings.Contains(strings.ToLower(paragraph), "key audit matter") {
			matters = append(matters, paragraph)
		}
	}
	return matters
}

func extractEmphasis(paragraphs []string) string {
	for _, paragraph := range paragraphs {
		if strings.Contains(strings.ToLower(paragraph), "emphasis of matter") {
			return paragraph
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
