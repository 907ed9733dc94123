// Package classify assigns each page a statement-section label with a
// confidence score, using a deterministic keyword scorer.
package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/ulbdigitize/afs-digitizer/constants"
)

// PageClassification is one label per page.
type PageClassification struct {
	Page       int               `json:"page"`
	Section    constants.Section `json:"section"`
	Confidence float64           `json:"confidence"`
	Signals    []string          `json:"signals"`
}

// Document aggregates per-page classifications with the manual-review
// signal for low-confidence pages.
type Document struct {
	PageMap              []PageClassification `json:"page_map"`
	RequiresManualReview bool                 `json:"requires_manual_review"`
	ReviewReasons        []string             `json:"review_reasons"`
}

// Classifier scores pages against an ordered, immutable rule set. One
// Aho-Corasick pass finds every keyword; scoring and tie-breaking
// follow rule declaration order.
type Classifier struct {
	rules     []SectionRule
	threshold float64
	matcher   *ahocorasick.Matcher
	keywords  []string // unique lowercased keywords, matcher order
	ruleRefs  [][]int  // keyword index -> indices of rules carrying it
}

// NewClassifier builds the keyword matcher. The same keyword may appear
// under several sections (e.g. "schedule"), so matcher patterns are
// deduplicated with per-pattern rule references, and each hit scores
// every section that declares it.
func NewClassifier(rules []SectionRule, threshold float64) *Classifier {
	c := &Classifier{rules: rules, threshold: threshold}

	index := make(map[string]int)
	for ruleIdx, rule := range rules {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(kw)
			if i, ok := index[kw]; ok {
				c.ruleRefs[i] = append(c.ruleRefs[i], ruleIdx)
				continue
			}
			index[kw] = len(c.keywords)
			c.keywords = append(c.keywords, kw)
			c.ruleRefs = append(c.ruleRefs, []int{ruleIdx})
		}
	}
	c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	return c
}

// ClassifyPage scores one page's text. No keyword hit yields the
// OTHER/ANNEXURE fallback at confidence 0.5 with no signals.
func (c *Classifier) ClassifyPage(page int, text string) PageClassification {
	lower := strings.ToLower(text)

	// Match mutates shared trie state; one Classifier serves concurrent
	// pages, so the thread-safe variant is required.
	matched := make(map[string]bool)
	for _, kwIdx := range c.matcher.MatchThreadSafe([]byte(lower)) {
		matched[c.keywords[kwIdx]] = true
	}

	scores := make([]int, len(c.rules))
	hits := make([][]string, len(c.rules))
	total := 0
	for ruleIdx, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if matched[strings.ToLower(kw)] {
				scores[ruleIdx]++
				hits[ruleIdx] = append(hits[ruleIdx], strings.ToLower(kw))
				total++
			}
		}
	}

	if total == 0 {
		return PageClassification{Page: page, Section: constants.SectionOther, Confidence: 0.5, Signals: []string{}}
	}

	// Declaration order breaks ties: only a strictly greater score
	// moves the winner.
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	return PageClassification{
		Page:       page,
		Section:    c.rules[best].Section,
		Confidence: round2(float64(scores[best]) / float64(total)),
		Signals:    hits[best],
	}
}

// ClassifyDocument labels every page and flags manual review for any
// page below the configured threshold, one reason per such page.
func (c *Classifier) ClassifyDocument(pageTexts []string) Document {
	doc := Document{ReviewReasons: []string{}}
	for i, text := range pageTexts {
		pc := c.ClassifyPage(i+1, text)
		doc.PageMap = append(doc.PageMap, pc)
		if pc.Confidence < c.threshold {
			doc.RequiresManualReview = true
			doc.ReviewReasons = append(doc.ReviewReasons, fmt.Sprintf("LOW_CLASSIFICATION_CONFIDENCE_PAGE_%d", pc.Page))
		}
	}
	return doc
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
