// Package mapper resolves free-text line-item labels to canonical
// taxonomy paths through a three-tier lookup: exact, normalized, fuzzy.
package mapper

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultFuzzyThreshold is the minimum similarity ratio the fuzzy tier
// accepts.
const DefaultFuzzyThreshold = 0.86

// Resolution methods, in tier order.
const (
	MethodDictionary = "dictionary"
	MethodNormalized = "normalized"
	MethodFuzzy      = "fuzzy"
	MethodUnmapped   = "unmapped"
)

// Resolution is the outcome of mapping one label.
type Resolution struct {
	Label      string  `json:"label"`
	MappedTo   *string `json:"mapped_to"`
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
}

// Mapper holds the canonical dictionary. Keys are kept in sorted order
// so fuzzy ties resolve the same way on every run.
type Mapper struct {
	dictionary     map[string]string
	normalized     map[string]string
	sortedKeys     []string
	fuzzyThreshold float64
}

var reNonAlnum = regexp.MustCompile(`[^a-z0-9 ]`)
var reSpaces = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	s = strings.ToLower(s)
	s = reNonAlnum.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NewMapper builds a mapper over label -> canonical-path entries.
func NewMapper(dictionary map[string]string, fuzzyThreshold float64) *Mapper {
	m := &Mapper{
		dictionary:     dictionary,
		normalized:     make(map[string]string, len(dictionary)),
		fuzzyThreshold: fuzzyThreshold,
	}
	for k, v := range dictionary {
		m.normalized[normalize(k)] = v
		m.sortedKeys = append(m.sortedKeys, k)
	}
	sort.Strings(m.sortedKeys)
	return m
}

// Resolve maps one label. First tier that matches wins; no tier
// matching yields method "unmapped" with a null target.
func (m *Mapper) Resolve(label string) Resolution {
	if target, ok := m.dictionary[label]; ok {
		return Resolution{Label: label, MappedTo: &target, Method: MethodDictionary, Confidence: 1.0}
	}

	norm := normalize(label)
	if target, ok := m.normalized[norm]; ok {
		return Resolution{Label: label, MappedTo: &target, Method: MethodNormalized, Confidence: 0.95}
	}

	bestKey := ""
	bestRatio := 0.0
	for _, key := range m.sortedKeys {
		if ratio := similarity(norm, normalize(key)); ratio > bestRatio {
			bestRatio = ratio
			bestKey = key
		}
	}
	if bestRatio >= m.fuzzyThreshold {
		target := m.dictionary[bestKey]
		return Resolution{Label: label, MappedTo: &target, Method: MethodFuzzy, Confidence: round2(bestRatio)}
	}

	return Resolution{Label: label, Method: MethodUnmapped}
}

// similarity is an edit-distance ratio in [0,1]: 1 - dist/maxLen.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
