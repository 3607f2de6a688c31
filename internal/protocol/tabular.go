package protocol

import (
	"strings"

	"github.com/rxlab/protoextract/internal/rules"
	"github.com/rxlab/protoextract/internal/tables"
)

// Confidence bonuses for tabular candidates. The sum is not clamped here;
// records clamp to 100 when frozen.
const (
	bonusStrictCode   = 10
	bonusTitleLength  = 10
	bonusTitleLetters = 10
	bonusCleanTitle   = 5
)

// TabularParser walks reconstructed table rows and extracts one candidate
// per row that carries a protocol code.
type TabularParser struct {
	rules     *rules.RuleSet
	validator *rules.TitleValidator
}

// NewTabularParser creates a parser over the given rule set.
func NewTabularParser(set *rules.RuleSet) *TabularParser {
	return &TabularParser{
		rules:     set,
		validator: rules.NewTitleValidator(set),
	}
}

// ParseTable extracts candidates from one reconstructed table. Rows without
// a code, and rows whose best title is a junk fragment, are discarded; a bad
// row never affects its neighbors.
func (p *TabularParser) ParseTable(table *tables.Table) []Candidate {
	if table == nil {
		return nil
	}

	var candidates []Candidate
	for _, row := range table.Rows {
		if cand, ok := p.parseRow(row, table.Page); ok {
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

func (p *TabularParser) parseRow(row tables.Row, page int) (Candidate, bool) {
	rowText := row.Text()
	code, _, ok := FindCode(rowText)
	if !ok {
		return Candidate{}, false
	}

	title := p.extractTitle(row, rowText, code)
	title, dci := extractDCI(title)
	title = cleanTitle(title)

	if title == "" || p.rules.IsJunk(title) {
		return Candidate{}, false
	}

	cand := Candidate{
		Code:       code,
		Title:      title,
		DCI:        dci,
		Content:    rowText,
		PageNumber: page,
		Confidence: p.score(code, title),
		Source:     SourceTable,
	}
	return cand, true
}

// extractTitle tries the title locations in fixed order, first success wins:
// the remainder of the code's own cell, the next cell, the previous cell,
// any other non-code cell, and finally the whole row with the code removed.
func (p *TabularParser) extractTitle(row tables.Row, rowText, code string) string {
	codeCell := -1
	for i, cell := range row.Cells {
		if strings.Contains(cell.Text, code) {
			codeCell = i
			break
		}
	}

	if codeCell >= 0 {
		remainder := strings.Replace(row.Cells[codeCell].Text, code, "", 1)
		if t := p.usable(remainder); t != "" {
			return t
		}
		if codeCell+1 < len(row.Cells) {
			if t := p.usable(row.Cells[codeCell+1].Text); t != "" {
				return t
			}
		}
		if codeCell > 0 {
			if t := p.usable(row.Cells[codeCell-1].Text); t != "" {
				return t
			}
		}
	}

	for i, cell := range row.Cells {
		if i == codeCell {
			continue
		}
		if _, _, hasCode := FindCode(cell.Text); hasCode {
			continue
		}
		if t := p.usable(cell.Text); t != "" {
			return t
		}
	}

	return strings.Replace(rowText, code, "", 1)
}

// usable cleans a candidate title and rejects trivial or junk text.
func (p *TabularParser) usable(s string) string {
	t := cleanTitle(s)
	if !usableTitle(t) || p.rules.IsJunk(t) {
		return ""
	}
	return t
}

// score starts from the tabular base confidence and adds the structural
// bonuses: strict code shape, sane title length, at least three consecutive
// letters, and absence of corruption fragments.
func (p *TabularParser) score(code, title string) int {
	confidence := tableBaseConfidence
	if IsStrictCode(code) {
		confidence += bonusStrictCode
	}
	if titleLengthOK(title) {
		confidence += bonusTitleLength
	}
	if hasConsecutiveLetters(title) {
		confidence += bonusTitleLetters
	}
	if corrupted, _ := p.validator.IsCorrupted(title); !corrupted {
		confidence += bonusCleanTitle
	}
	return confidence
}
