// Package linker detects "Schedule/Note" cross-references on statement
// lines and resolves them against the document's supporting schedules.
package linker

import (
	"math"
	"regexp"
	"strings"
)

// Reference is one detected schedule cross-reference.
type Reference struct {
	LineItem   string  `json:"line_item"`
	ScheduleID string  `json:"schedule_id"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

// Target is the resolved side of a linked reference.
type Target struct {
	PageRefs   []string `json:"page_refs"`
	AnchorText string   `json:"anchor_text"`
}

// LinkedReference pairs a reference with its resolved target.
type LinkedReference struct {
	Reference
	Target Target `json:"target"`
}

// UnlinkedReference carries the reason a reference stayed unresolved.
type UnlinkedReference struct {
	Reference
	Reason string `json:"reason"`
}

// Result is the full linking outcome for one document.
type Result struct {
	Linked               []LinkedReference   `json:"linked"`
	Unlinked             []UnlinkedReference `json:"unlinked"`
	RequiresManualReview bool                `json:"requires_manual_review"`
	ReviewReasons        []string            `json:"review_reasons"`
}

var reSchedule = regexp.MustCompile(`(?i)(?:schedule|sch\.?|note)\s*([a-z0-9-]+)`)

// Linker matches line items against the schedule reference pattern.
type Linker struct{}

func NewLinker() *Linker {
	return &Linker{}
}

// DetectReferences scans line items for schedule references; ids are
// uppercased.
func (l *Linker) DetectReferences(lineItems []string) []Reference {
	var refs []Reference
	for _, item := range lineItems {
		m := reSchedule.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		refs = append(refs, Reference{
			LineItem:   item,
			ScheduleID: strings.ToUpper(m[1]),
			Evidence:   m[0],
			Confidence: confidence(item, m[0]),
		})
	}
	return refs
}

// BuildIndex keys the caller-supplied schedule pages by uppercased id.
func (l *Linker) BuildIndex(schedulePages map[string][]string) map[string]Target {
	index := make(map[string]Target, len(schedulePages))
	for id, pages := range schedulePages {
		anchor := ""
		if len(pages) > 0 {
			anchor = pages[0]
		}
		index[strings.ToUpper(id)] = Target{PageRefs: pages, AnchorText: anchor}
	}
	return index
}

// Link resolves detected references against the schedule index. A
// missing target leaves the reference unlinked and flags manual review.
func (l *Linker) Link(lineItems []string, schedulePages map[string][]string) Result {
	refs := l.DetectReferences(lineItems)
	index := l.BuildIndex(schedulePages)

	result := Result{ReviewReasons: []string{}}
	for _, ref := range refs {
		if target, ok := index[ref.ScheduleID]; ok {
			result.Linked = append(result.Linked, LinkedReference{Reference: ref, Target: target})
			continue
		}
		result.Unlinked = append(result.Unlinked, UnlinkedReference{Reference: ref, Reason: "SCHEDULE_NOT_FOUND"})
		result.ReviewReasons = append(result.ReviewReasons, "UNLINKED_SCHEDULE_"+ref.ScheduleID)
	}
	result.RequiresManualReview = len(result.Unlinked) > 0
	return result
}

// confidence: base 0.75, +0.10 for "note" evidence, +0.10 for a digit
// in the evidence, -0.10 for line items under 12 characters, capped at
// 0.99.
func confidence(item, evidence string) float64 {
	base := 0.75
	if strings.Contains(strings.ToLower(evidence), "note") {
		base += 0.1
	}
	if strings.ContainsAny(evidence, "0123456789") {
		base += 0.1
	}
	if len(item) < 12 {
		base -= 0.1
	}
	return math.Round(math.Min(base, 0.99)*100) / 100
}
