package protocol

import (
	"strings"

	"github.com/rxlab/protoextract/internal/rules"
)

// maxContinuationLines is how many following lines a free-text title may
// absorb when a long title wraps.
const maxContinuationLines = 2

// FreeTextParser is the fallback discovery strategy: it anchors on a code
// at line start in the page-by-page plain text. It has no columnar
// corroboration, so its candidates carry a fixed, lower confidence.
type FreeTextParser struct {
	rules *rules.RuleSet
}

// NewFreeTextParser creates a parser over the given rule set.
func NewFreeTextParser(set *rules.RuleSet) *FreeTextParser {
	return &FreeTextParser{rules: set}
}

// Parse walks the per-page plain text and yields one candidate per
// code-anchored line.
func (p *FreeTextParser) Parse(pageTexts []string) []Candidate {
	var candidates []Candidate
	for pageIdx, pageText := range pageTexts {
		lines := strings.Split(pageText, "\n")
		for i := 0; i < len(lines); i++ {
			cand, consumed, ok := p.parseLine(lines, i, pageIdx+1)
			if !ok {
				continue
			}
			candidates = append(candidates, cand)
			i += consumed
		}
	}
	return candidates
}

func (p *FreeTextParser) parseLine(lines []string, idx, page int) (Candidate, int, bool) {
	m := codeAtLineRe.FindStringSubmatch(lines[idx])
	if m == nil {
		return Candidate{}, 0, false
	}
	code, remainder := m[1], m[2]

	titleParts := []string{remainder}
	consumed := 0
	for j := idx + 1; j <= idx+maxContinuationLines && j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" || codeAtLineRe.MatchString(lines[j]) || p.rules.IsJunk(next) {
			break
		}
		titleParts = append(titleParts, next)
		consumed++
	}

	title, dci := extractDCI(strings.Join(titleParts, " "))
	title = cleanTitle(title)
	if title == "" || p.rules.IsJunk(title) {
		return Candidate{}, 0, false
	}

	cand := Candidate{
		Code:       code,
		Title:      title,
		DCI:        dci,
		Content:    strings.Join(append([]string{lines[idx]}, titleParts[1:]...), "\n"),
		PageNumber: page,
		Confidence: textConfidence,
		Source:     SourceText,
	}
	return cand, consumed, true
}
