package rules

import (
	"regexp"
	"strings"
	"unicode"
)

// Canonicalizer expands abbreviated active-substance tokens to their full
// pharmaceutical names. Expansion is idempotent: a token already preceded by
// its class prefix is left alone, so re-running over expanded output is a
// no-op.
type Canonicalizer struct {
	entries []drugEntry
}

type drugEntry struct {
	expansion DrugExpansion
	re        *regexp.Regexp
}

// NewCanonicalizer builds a canonicalizer from the rule set's dictionary.
func NewCanonicalizer(set *RuleSet) *Canonicalizer {
	c := &Canonicalizer{}
	for _, exp := range set.Drugs {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(exp.Short) + `\b`)
		if err != nil {
			continue
		}
		c.entries = append(c.entries, drugEntry{expansion: exp, re: re})
	}
	return c
}

// Expand replaces every abbreviated occurrence in s with the full name,
// preserving the casing pattern of the original token.
func (c *Canonicalizer) Expand(s string) string {
	for _, entry := range c.entries {
		s = c.expandOne(s, entry)
	}
	return s
}

func (c *Canonicalizer) expandOne(s string, entry drugEntry) string {
	locs := entry.re.FindAllStringIndex(s, -1)
	if locs == nil {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		token := s[loc[0]:loc[1]]
		if c.hasClassPrefix(s[:loc[0]], entry.expansion.ClassPrefix) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(applyCasing(entry.expansion.Full, token))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// hasClassPrefix reports whether the text before a match already ends with
// the canonical class prefix, meaning the token was expanded earlier.
func (c *Canonicalizer) hasClassPrefix(before, prefix string) bool {
	if prefix == "" {
		return false
	}
	trimmed := strings.TrimRight(before, " ")
	return strings.HasSuffix(Fold(trimmed), Fold(prefix))
}

// applyCasing shapes the replacement after the original token: all-caps
// stays all-caps, a capitalized token title-cases the replacement, anything
// else goes lowercase.
func applyCasing(replacement, original string) string {
	switch casingOf(original) {
	case "upper":
		return strings.ToUpper(replacement)
	case "title":
		return titleCase(replacement)
	default:
		return strings.ToLower(replacement)
	}
}

func casingOf(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return "lower"
	}
	allUpper := true
	for _, r := range runes {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			allUpper = false
			break
		}
	}
	if allUpper {
		return "upper"
	}
	if unicode.IsUpper(runes[0]) {
		return "title"
	}
	return "lower"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
