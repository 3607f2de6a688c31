package protocol

import (
	"strings"

	"github.com/rxlab/protoextract/internal/pdfio"
	"github.com/rxlab/protoextract/internal/rules"
)

// Kind is the document classification that gates the candidate parsers.
type Kind string

const (
	KindList   Kind = "list"
	KindSingle Kind = "single"
)

// Classification thresholds. A document is a multi-protocol list when it
// shows enough distinct codes or enough tabular shape; anything else is one
// full protocol and the parsers are skipped.
const (
	listCodeCount        = 5
	tabularCodeLines     = 10
	tabularSpacedLines   = 20
	tabularMinCodes      = 2
	longDocumentPages    = 50
	longDocumentCodes    = 3
	headKeywordLineCount = 20
)

// Classifier decides list vs. single before any parser runs.
type Classifier struct {
	rules *rules.RuleSet
}

// NewClassifier creates a classifier over the given rule set.
func NewClassifier(set *rules.RuleSet) *Classifier {
	return &Classifier{rules: set}
}

// Classify inspects the document name/title and the extracted text.
func (c *Classifier) Classify(layout *pdfio.DocumentLayout, docName string) Kind {
	if c.nameSuggestsList(docName) {
		return KindList
	}

	codes := DistinctCodes(layout.PlainText)
	if len(codes) > listCodeCount {
		return KindList
	}

	lines := layout.Lines()
	if c.hasTabularShape(lines) && len(codes) > tabularMinCodes {
		return KindList
	}

	if layout.PageCount > longDocumentPages && len(codes) > longDocumentCodes {
		return KindList
	}

	if c.headMentionsList(lines) {
		return KindList
	}

	return KindSingle
}

func (c *Classifier) nameSuggestsList(docName string) bool {
	if docName == "" {
		return false
	}
	folded := rules.Fold(docName)
	for _, kw := range c.rules.ListKeywords {
		if strings.Contains(folded, rules.Fold(kw)) {
			return true
		}
	}
	return false
}

// hasTabularShape looks for the layout a summary table leaves in plain
// text: many code-prefixed lines, or many lines with deep internal spacing.
func (c *Classifier) hasTabularShape(lines []string) bool {
	codeLines, spacedLines := 0, 0
	for _, line := range lines {
		if codeAtLineRe.MatchString(line) {
			codeLines++
		}
		if strings.Contains(line, "    ") {
			spacedLines++
		}
	}
	return codeLines >= tabularCodeLines || spacedLines >= tabularSpacedLines
}

func (c *Classifier) headMentionsList(lines []string) bool {
	limit := len(lines)
	if limit > headKeywordLineCount {
		limit = headKeywordLineCount
	}
	head := rules.Fold(strings.Join(lines[:limit], "\n"))
	return strings.Contains(head, "lista") || strings.Contains(head, "protocoale")
}
