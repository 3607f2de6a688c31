package rules

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	shortAcronymFloor = 4
	minTitleLen       = 5
	maxTitleLen       = 300
)

var (
	// Full pharmaceutical names end in a small family of Latin suffixes
	// (ORLISTATUM, METHYLPHENIDATUM, ADALIMUMABUM, AFATINIBUM).
	drugNameRe = regexp.MustCompile(`\b[A-ZĂÂÎȘȚŞŢ]{4,}(?:UM|MAB|NIB|IDE|INA)\b`)

	headerTitleRe = regexp.MustCompile(`(?i)cod(?:ul)?\s*\(\s*[A-Z0-9-]+\s*\)\s*:?\s*(?:DCI\s*:?\s*)?(.\S.*)`)

	sentenceRe = regexp.MustCompile(`^[A-ZĂÂÎȘȚŞŢ][\p{L}0-9 ,.\-–()/]{19,199}$`)
)

// CorrectionSource names where a repaired title came from.
type CorrectionSource string

const (
	SourceKnownTitle CorrectionSource = "known_title"
	SourceContent    CorrectionSource = "content"
	SourceNone       CorrectionSource = "none"
)

// Correction is the outcome of a repair attempt.
type Correction struct {
	Title     string
	Corrected bool
	Source    CorrectionSource
}

// TitleValidator detects corrupted titles via the rule set's signature
// taxonomy and repairs them conservatively: a title that matches no
// signature is never touched, even if a better one is derivable.
type TitleValidator struct {
	set *RuleSet
}

// NewTitleValidator creates a validator over the given rule set.
func NewTitleValidator(set *RuleSet) *TitleValidator {
	return &TitleValidator{set: set}
}

// IsCorrupted reports whether title matches any corruption signature, and
// which ones.
func (v *TitleValidator) IsCorrupted(title string) (bool, []string) {
	var matched []string
	trimmed := strings.TrimSpace(title)
	for _, sig := range v.set.Signatures {
		if v.matches(sig, trimmed) {
			matched = append(matched, sig.Name)
		}
	}
	return len(matched) > 0, matched
}

func (v *TitleValidator) matches(sig Signature, title string) bool {
	switch sig.Kind {
	case "regex":
		return sig.re != nil && sig.re.MatchString(title)
	case "builtin":
		return v.builtin(sig.Name, title)
	default:
		return false
	}
}

func (v *TitleValidator) builtin(name, title string) bool {
	if title == "" {
		return name == "digits_only"
	}
	first := []rune(title)[0]
	switch name {
	case "starts_lowercase":
		return unicode.IsLower(first)
	case "starts_punctuation":
		return unicode.IsPunct(first) || unicode.IsSymbol(first)
	case "digits_only":
		for _, r := range title {
			if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
				return false
			}
		}
		return true
	case "short_acronym":
		runes := []rune(title)
		if len(runes) >= shortAcronymFloor {
			return false
		}
		for _, r := range runes {
			if !unicode.IsUpper(r) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Correct attempts to repair a corrupted title. Priority order: the curated
// known-title table, then re-extraction from the record's own content, then
// give up and leave the title for manual review. Callers must check
// IsCorrupted first; Correct assumes the title needs repair.
func (v *TitleValidator) Correct(code, title, content string) Correction {
	if known, ok := v.set.KnownTitle(code); ok {
		return Correction{Title: known, Corrected: true, Source: SourceKnownTitle}
	}

	if extracted := v.titleFromContent(content); extracted != "" {
		return Correction{Title: extracted, Corrected: true, Source: SourceContent}
	}

	return Correction{Title: title, Corrected: false, Source: SourceNone}
}

// titleFromContent re-extracts a title from section content: the section
// header line first, then a pharmaceutical-suffix name, then a descriptive
// sentence for non-drug protocols.
func (v *TitleValidator) titleFromContent(content string) string {
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}

	for _, line := range lines[:limit] {
		if m := headerTitleRe.FindStringSubmatch(line); m != nil {
			if t := strings.TrimSpace(m[1]); usableTitle(t) {
				return t
			}
		}
	}

	for _, line := range lines[:limit] {
		if m := drugNameRe.FindString(line); m != "" {
			return m
		}
	}

	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		if sentenceRe.MatchString(trimmed) {
			return trimmed
		}
	}

	return ""
}

func usableTitle(t string) bool {
	n := len([]rune(t))
	return n >= minTitleLen && n < maxTitleLen
}
