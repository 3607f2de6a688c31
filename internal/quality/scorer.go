// Package quality scores the plausibility of an extracted record. The score
// is independent of parser confidence: confidence says how sure a parser was
// about the row it read, quality says whether the text that came out of the
// document looks like a real protocol at all.
package quality

import (
	"strings"

	"github.com/rxlab/protoextract/internal/rules"
)

const (
	// Reasonable band for extracted characters per page. Below the floor the
	// extraction likely lost most of the page; far above the ceiling it
	// likely picked up garbage.
	minCharsPerPage = 200.0
	maxCharsPerPage = 6000.0

	densityWeight = 30.0
	keywordWeight = 40.0
	inkWeight     = 30.0

	// Extractions that are mostly whitespace are garbage regardless of size.
	minInkRatio = 0.5
)

// Scorer combines structural and lexical signals into a 0-100 score.
type Scorer struct {
	keywords []string
}

// NewScorer builds a scorer using the rule set's structural keyword list.
func NewScorer(set *rules.RuleSet) *Scorer {
	return &Scorer{keywords: set.StructureKeywords}
}

// Score rates content extracted over pageCount pages.
func (s *Scorer) Score(content string, pageCount int) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	if pageCount < 1 {
		pageCount = 1
	}

	score := s.densityScore(content, pageCount) +
		s.keywordScore(content) +
		s.inkScore(content)

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return int(score)
}

// densityScore rewards a sane average of extracted characters per page.
func (s *Scorer) densityScore(content string, pageCount int) float64 {
	perPage := float64(len(content)) / float64(pageCount)
	switch {
	case perPage >= minCharsPerPage && perPage <= maxCharsPerPage:
		return densityWeight
	case perPage >= minCharsPerPage/2 && perPage <= maxCharsPerPage*2:
		return densityWeight / 2
	default:
		return 0
	}
}

// keywordScore rewards the presence of the section keywords a real protocol
// carries (indication, inclusion criteria, treatment, contraindication,
// monitoring, prescriber). Matching is diacritic-insensitive.
func (s *Scorer) keywordScore(content string) float64 {
	if len(s.keywords) == 0 {
		return 0
	}
	folded := rules.Fold(content)
	found := 0
	for _, kw := range s.keywords {
		if strings.Contains(folded, rules.Fold(kw)) {
			found++
		}
	}
	return keywordWeight * float64(found) / float64(len(s.keywords))
}

// inkScore rejects whitespace-heavy extractions.
func (s *Scorer) inkScore(content string) float64 {
	total := len([]rune(content))
	if total == 0 {
		return 0
	}
	ink := 0
	for _, r := range content {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			ink++
		}
	}
	ratio := float64(ink) / float64(total)
	if ratio < minInkRatio {
		return 0
	}
	return inkWeight * ratio
}
