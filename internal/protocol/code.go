// Package protocol discovers therapeutic-protocol entries in extracted PDF
// text: the code pattern, the tabular and free-text candidate parsers, the
// list/single classifier, the candidate merger, the content stitcher, and
// the pipeline service tying them together.
package protocol

import (
	"regexp"
	"sort"
)

// codeBody matches a protocol code: one or two uppercase letters, 2-4
// digits, up to 3 trailing uppercase letters, an optional 2-digit suffix,
// and an optional hyphenated suffix. Covers the simple shape (A001E), the
// ATC shape (L01XE13), and hyphenated variants (J012B-LAM).
const codeBody = `[A-Z]{1,2}[0-9]{2,4}[A-Z]{0,3}(?:[0-9]{2})?(?:-[A-Z0-9]{1,6})?`

var (
	codeRe       = regexp.MustCompile(`\b` + codeBody + `\b`)
	codeExactRe  = regexp.MustCompile(`^` + codeBody + `$`)
	codeAtLineRe = regexp.MustCompile(`^\s*(` + codeBody + `)\s+(\S.*)$`)

	// strictCodeRe is the classic protocol shape: letter(s), exactly three
	// digits, one trailing letter (A001E), or a full 7-char ATC code.
	strictCodeRe = regexp.MustCompile(`^(?:[A-Z][0-9]{3}[A-Z]|[A-Z][0-9]{2}[A-Z]{2}[0-9]{2})$`)
)

// FindCode returns the first protocol code in s and its position, or
// ok=false when none is present.
func FindCode(s string) (code string, start int, ok bool) {
	loc := codeRe.FindStringIndex(s)
	if loc == nil {
		return "", 0, false
	}
	return s[loc[0]:loc[1]], loc[0], true
}

// IsCode reports whether s is exactly a protocol code.
func IsCode(s string) bool {
	return codeExactRe.MatchString(s)
}

// IsStrictCode reports whether s has one of the two canonical code shapes.
// Strict codes earn a confidence bonus in the tabular parser.
func IsStrictCode(s string) bool {
	return strictCodeRe.MatchString(s)
}

// DistinctCodes returns the sorted set of distinct codes appearing in text.
func DistinctCodes(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range codeRe.FindAllString(text, -1) {
		seen[m] = struct{}{}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
