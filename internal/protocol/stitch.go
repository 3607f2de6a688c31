package protocol

import (
	"log"
	"regexp"
	"strings"
)

// Window caps for section collection. The header-anchored window is wide;
// the unanchored fallback is tighter because it has no structural end
// signal. Whatever window is applied ends up on the candidate for audit.
const (
	sectionWindowCap  = 500
	fallbackWindowCap = 200
	minSectionGain    = 100
	stitchPenalty     = 10
	dciSearchWindow   = 5
)

var (
	// Section headers look like "Protocol terapeutic ... cod (A001E): ...".
	// Documents repeat this line once in the summary table and again before
	// the full section; the second occurrence anchors the stitch.
	anyHeaderRe = regexp.MustCompile(`(?i)protocol(?:ul)?\s+terapeutic[^\n]*\bcod(?:ul)?\s*\(\s*` + codeBody + `\s*\)`)

	horizontalRuleRe = regexp.MustCompile(`^\s*[-_=*•]{6,}\s*$`)
	endMarkerRe      = regexp.MustCompile(`(?i)^\s*sf[aâ]r[sș]it`)

	afterCodeParenRe = regexp.MustCompile(`\)\s*:?\s*(.+)$`)
	dciAnywhereRe    = regexp.MustCompile(`(?i)\bDCI\b\s*:?\s*([\p{L}0-9 +/-]{3,})`)
)

// StitchResult reports what the stitcher did to one candidate.
type StitchResult struct {
	Replaced bool
	Fallback bool
}

// Stitcher replaces a candidate's short table-row content with the
// document's full free-text section for that code, when one exists.
type Stitcher struct {
	logger *log.Logger
}

// NewStitcher creates a stitcher. The logger is scoped, never global.
func NewStitcher(logger *log.Logger) *Stitcher {
	if logger == nil {
		logger = log.New(log.Writer(), "[Stitcher] ", log.LstdFlags)
	}
	return &Stitcher{logger: logger}
}

// Stitch locates the full section for the candidate's code in the document
// lines and swaps it in when it is materially longer than the current
// content. Content is never shortened; the fallback path lowers confidence
// because it has no structural anchor.
func (s *Stitcher) Stitch(c *Candidate, lines []string) StitchResult {
	headerRe := headerForCode(c.Code)

	start := -1
	for i, line := range lines {
		if headerRe.MatchString(line) {
			start = i
			break
		}
	}

	if start >= 0 {
		return s.stitchSection(c, lines, start)
	}
	return s.stitchFallback(c, lines)
}

// stitchSection collects from the header line to the next header (any
// code), a horizontal rule, or an end marker, capped at the section window.
func (s *Stitcher) stitchSection(c *Candidate, lines []string, start int) StitchResult {
	end := start + 1
	for end < len(lines) && end-start < sectionWindowCap {
		line := lines[end]
		if anyHeaderRe.MatchString(line) || horizontalRuleRe.MatchString(line) || endMarkerRe.MatchString(line) {
			break
		}
		end++
	}

	section := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	if len(section) <= len(c.Content)+minSectionGain {
		return StitchResult{}
	}

	c.Content = section
	c.StitchWindow = end - start
	s.rederiveTitle(c, lines, start)
	return StitchResult{Replaced: true}
}

// rederiveTitle refreshes title and DCI from the section header: the header
// line's own remainder first, then a drug-name-looking next line, then a
// short window scan for a DCI label.
func (s *Stitcher) rederiveTitle(c *Candidate, lines []string, headerIdx int) {
	header := lines[headerIdx]
	if pos := strings.Index(header, c.Code); pos >= 0 {
		if m := afterCodeParenRe.FindStringSubmatch(header[pos:]); m != nil {
			title, dci := extractDCI(m[1])
			title = cleanTitle(title)
			if usableTitle(title) {
				c.Title = title
				if dci != "" {
					c.DCI = dci
				}
				return
			}
		}
	}

	if headerIdx+1 < len(lines) {
		next := strings.TrimSpace(lines[headerIdx+1])
		if looksLikeSubstance(next) && usableTitle(next) {
			c.Title = next
			c.DCI = next
			return
		}
	}

	limit := headerIdx + dciSearchWindow
	if limit > len(lines) {
		limit = len(lines)
	}
	for _, line := range lines[headerIdx:limit] {
		if m := dciAnywhereRe.FindStringSubmatch(line); m != nil {
			dci := strings.TrimSpace(m[1])
			if usableTitle(dci) {
				c.DCI = dci
				if corruptedish := !usableTitle(c.Title); corruptedish {
					c.Title = dci
				}
				return
			}
		}
	}
}

// stitchFallback collects the lines following the first mention of the code
// up to the next distinct code or the fallback cap. It penalizes confidence:
// without a header anchor the window boundaries are guesses.
func (s *Stitcher) stitchFallback(c *Candidate, lines []string) StitchResult {
	start := -1
	for i, line := range lines {
		if strings.Contains(line, c.Code) {
			start = i
			break
		}
	}
	if start < 0 {
		return StitchResult{}
	}

	end := start + 1
	for end < len(lines) && end-start < fallbackWindowCap {
		if m := codeAtLineRe.FindStringSubmatch(lines[end]); m != nil && m[1] != c.Code {
			break
		}
		end++
	}

	section := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	if len(section) <= len(c.Content) {
		return StitchResult{}
	}

	c.Content = section
	c.StitchWindow = end - start
	c.Confidence -= stitchPenalty
	if c.Confidence < 0 {
		c.Confidence = 0
	}
	c.stitchPenalized = true
	s.logger.Printf("no section header for %s, fallback window of %d lines", c.Code, c.StitchWindow)
	return StitchResult{Replaced: true, Fallback: true}
}

func headerForCode(code string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)protocol(?:ul)?\s+terapeutic[^\n]*\bcod(?:ul)?\s*\(\s*` + regexp.QuoteMeta(code) + `\s*\)`)
}
