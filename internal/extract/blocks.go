// Package extract adapts the upstream text-extraction collaborator's
// output (per-page texts, optional table grids) into typed blocks and
// computes source-file provenance. It never parses PDF binary structure.
package extract

import (
	"regexp"
	"strings"
)

// Block is one page's raw text plus provenance.
type Block struct {
	Page       int        `json:"page"`
	Text       string     `json:"text"`
	BBox       [4]float64 `json:"bbox"`
	Source     string     `json:"source"`
	Confidence float64    `json:"confidence"`
}

// Source labels for extraction blocks.
const (
	SourcePDFText = "pdf_text"
	SourceOCR     = "ocr"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans line endings and excess blank lines. Conservative:
// runs of spaces and tabs are column delimiters downstream and must
// survive untouched.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// TextBlocks wraps native text-layer pages as extraction blocks.
func TextBlocks(pageTexts []string) []Block {
	return makeBlocks(pageTexts, SourcePDFText, 0.99)
}

// OCRBlocks wraps OCR'd pages as extraction blocks with the lower
// confidence OCR output carries.
func OCRBlocks(pageTexts []string) []Block {
	return makeBlocks(pageTexts, SourceOCR, 0.85)
}

func makeBlocks(pageTexts []string, source string, confidence float64) []Block {
	blocks := make([]Block, 0, len(pageTexts))
	for i, text := range pageTexts {
		blocks = append(blocks, Block{
			Page:       i + 1,
			Text:       Normalize(text),
			BBox:       [4]float64{0, 0, 1, 1},
			Source:     source,
			Confidence: confidence,
		})
	}
	return blocks
}
