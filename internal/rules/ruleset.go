// Package rules holds the static, versioned rule data the pipeline consults:
// title corruption signatures, the curated known-title table, the drug-name
// dictionary, junk fragments, and the keyword lists used by the classifier
// and quality scorer. Rule sets are immutable once loaded and safe to share
// across concurrent pipeline invocations.
package rules

import (
	"fmt"
	"os"
	"regexp"

	"github.com/bytedance/sonic"
)

// Signature is a named predicate over a title string. Regex signatures carry
// their pattern as data so custom sets can extend the taxonomy without code
// changes; builtin signatures cover the checks a regex can't express well.
type Signature struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // "regex" or "builtin"
	Pattern string `json:"pattern,omitempty"`

	re *regexp.Regexp
}

// DrugExpansion maps an abbreviated active-substance token to its full
// pharmaceutical name. ClassPrefix guards against double expansion: a token
// already preceded by the prefix is left alone.
type DrugExpansion struct {
	Short       string `json:"short"`
	Full        string `json:"full"`
	ClassPrefix string `json:"class_prefix,omitempty"`
}

// RuleSet is the full static rule data, versioned as a unit.
type RuleSet struct {
	Version           string            `json:"version"`
	Signatures        []Signature       `json:"signatures"`
	KnownTitles       map[string]string `json:"known_titles"`
	Drugs             []DrugExpansion   `json:"drugs"`
	JunkFragments     []string          `json:"junk_fragments"`
	ListKeywords      []string          `json:"list_keywords"`
	StructureKeywords []string          `json:"structure_keywords"`

	junkRes []*regexp.Regexp
}

// DefaultRuleSet returns the curated built-in rules.
func DefaultRuleSet() *RuleSet {
	rs := &RuleSet{
		Version: "1.0",
		Signatures: []Signature{
			{Name: "starts_lowercase", Kind: "builtin"},
			{Name: "starts_punctuation", Kind: "builtin"},
			{Name: "short_acronym", Kind: "builtin"},
			{Name: "digits_only", Kind: "builtin"},
			{Name: "empty_code_reference", Kind: "regex", Pattern: `^\)?\s*:?\s*DCI\s*:?\s*$`},
			{Name: "header_fragment", Kind: "regex", Pattern: `(?i)^(nr\.?\s*crt|cod(ul)?\s+protocol|pozi[tț]ia|anexa\s+nr)`},
			{Name: "table_header_label", Kind: "regex", Pattern: `(?i)^(denumire(a)?\s*(protocol|dci)?|tip\s+diagnostic|observa[tț]ii|sublist[aă])\s*$`},
		},
		KnownTitles: map[string]string{
			"A001E":   "ORLISTATUM",
			"A016E":   "INSULINUM LISPRO",
			"A017E":   "METHYLPHENIDATUM",
			"A020E":   "PALIPERIDONUM",
			"A021E":   "ACIDUM TIOCTICUM",
			"B009I":   "CLOPIDOGRELUM",
			"H005E":   "SOMATROPINUM",
			"L01XE13": "AFATINIBUM",
			"N020G":   "ATOMOXETINUM",
		},
		Drugs: []DrugExpansion{
			{Short: "LISPRO", Full: "INSULINUM LISPRO", ClassPrefix: "INSULINUM"},
			{Short: "ASPART", Full: "INSULINUM ASPART", ClassPrefix: "INSULINUM"},
			{Short: "GLARGINE", Full: "INSULINUM GLARGINE", ClassPrefix: "INSULINUM"},
			{Short: "GLULIZINA", Full: "INSULINUM GLULIZINA", ClassPrefix: "INSULINUM"},
			{Short: "DETEMIR", Full: "INSULINUM DETEMIR", ClassPrefix: "INSULINUM"},
			{Short: "DEGLUDEC", Full: "INSULINUM DEGLUDEC", ClassPrefix: "INSULINUM"},
		},
		JunkFragments: []string{
			`(?i)^nr\.?\s*crt`,
			`(?i)^cod(ul)?\s+protocol`,
			`(?i)^denumire`,
			`(?i)^pozi[tț]ia`,
			`(?i)^anexa\s+nr`,
			`(?i)^pagina\s+\d+`,
			`(?i)^sublist[aă]`,
			`(?i)^tip\s+diagnostic`,
			`(?i)^lista\s+protocoalelor`,
		},
		ListKeywords: []string{
			"lista",
			"catalog",
			"protocoale terapeutice",
		},
		StructureKeywords: []string{
			"indicatii",
			"criterii de includere",
			"tratament",
			"contraindicatii",
			"monitorizare",
			"prescriptori",
		},
	}
	if err := rs.compile(); err != nil {
		// Default patterns are fixed; a compile failure here is a programming error.
		panic(err)
	}
	return rs
}

// LoadRuleSet reads a custom rule set from a JSON file and merges it over
// the defaults: signatures, drugs, and junk fragments are appended, known
// titles override per code, and a non-empty version replaces the default.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}

	var custom RuleSet
	if err := sonic.Unmarshal(data, &custom); err != nil {
		return nil, fmt.Errorf("failed to parse rule set: %w", err)
	}

	rs := DefaultRuleSet()
	if custom.Version != "" {
		rs.Version = custom.Version
	}
	rs.Signatures = append(rs.Signatures, custom.Signatures...)
	rs.Drugs = append(rs.Drugs, custom.Drugs...)
	rs.JunkFragments = append(rs.JunkFragments, custom.JunkFragments...)
	rs.ListKeywords = append(rs.ListKeywords, custom.ListKeywords...)
	rs.StructureKeywords = append(rs.StructureKeywords, custom.StructureKeywords...)
	for code, title := range custom.KnownTitles {
		rs.KnownTitles[code] = title
	}

	if err := rs.compile(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *RuleSet) compile() error {
	for i := range rs.Signatures {
		sig := &rs.Signatures[i]
		if sig.Kind != "regex" {
			continue
		}
		re, err := regexp.Compile(sig.Pattern)
		if err != nil {
			return fmt.Errorf("signature %q: %w", sig.Name, err)
		}
		sig.re = re
	}

	rs.junkRes = rs.junkRes[:0]
	for _, pattern := range rs.JunkFragments {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("junk fragment %q: %w", pattern, err)
		}
		rs.junkRes = append(rs.junkRes, re)
	}
	return nil
}

// IsJunk reports whether s matches any junk-fragment pattern.
func (rs *RuleSet) IsJunk(s string) bool {
	for _, re := range rs.junkRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// KnownTitle returns the curated canonical title for a code, if any.
func (rs *RuleSet) KnownTitle(code string) (string, bool) {
	title, ok := rs.KnownTitles[code]
	return title, ok
}
