package protocol

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	edgePunctCutset = " \t\"'·•-–—:;,.*"
	titleMinLen     = 5
	titleMaxLen     = 300
	trivialTitleLen = 3
)

var (
	dciLabelRe      = regexp.MustCompile(`(?i)^\s*DCI\s*:?\s*`)
	dciSegmentRe    = regexp.MustCompile(`(?i)\bDCI\s*:?\s*([\p{L}0-9 +/-]{3,})\s*$`)
	parentheticalRe = regexp.MustCompile(`\(([^()]{3,})\)`)
	threeLettersRe  = regexp.MustCompile(`\p{L}{3}`)
)

// cleanTitle strips the noise a table cell or line remainder carries around
// a title: edge punctuation, wrapping parentheses, a leading "DCI:" label.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = dciLabelRe.ReplaceAllString(s, "")
	s = strings.Trim(s, edgePunctCutset)

	// Unwrap only fully parenthesized titles; "(X) plus Y" keeps its parens.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") &&
		!strings.Contains(s[1:len(s)-1], "(") && !strings.Contains(s[1:len(s)-1], ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.Trim(s, edgePunctCutset)
	return strings.TrimSpace(s)
}

// extractDCI pulls an active-substance name out of a title: either a
// "DCI:"-labeled tail or a parenthetical segment. The matched segment is
// removed from the title so the two fields don't duplicate each other.
func extractDCI(title string) (cleaned, dci string) {
	if m := dciSegmentRe.FindStringSubmatchIndex(title); m != nil {
		dci = strings.TrimSpace(title[m[2]:m[3]])
		cleaned = cleanTitle(title[:m[0]])
		if cleaned == "" {
			// Titles of the form "DCI: X" collapse to the substance itself.
			cleaned = dci
		}
		return cleaned, dci
	}

	if m := parentheticalRe.FindStringSubmatchIndex(title); m != nil {
		inner := strings.TrimSpace(title[m[2]:m[3]])
		if looksLikeSubstance(inner) {
			cleaned = cleanTitle(title[:m[0]] + title[m[1]:])
			if cleaned == "" {
				cleaned = inner
			}
			return cleaned, inner
		}
	}

	return cleanTitle(title), ""
}

// looksLikeSubstance accepts parenthetical content that reads like a drug
// name: mostly letters, mostly uppercase, no sentence punctuation.
func looksLikeSubstance(s string) bool {
	if len([]rune(s)) < 3 || strings.ContainsAny(s, ".;") {
		return false
	}
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters >= 3 && upper*2 >= letters
}

// usableTitle is the non-trivial gate used during title extraction: long
// enough to mean something, short enough to be a title.
func usableTitle(s string) bool {
	n := len([]rune(s))
	return n > trivialTitleLen && n < titleMaxLen
}

// titleLengthOK is the confidence-bonus band for title length.
func titleLengthOK(s string) bool {
	n := len([]rune(s))
	return n >= titleMinLen && n < titleMaxLen
}

// hasConsecutiveLetters reports at least three consecutive letters,
// diacritics included.
func hasConsecutiveLetters(s string) bool {
	return threeLettersRe.MatchString(s)
}
