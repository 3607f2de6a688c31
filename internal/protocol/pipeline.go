package protocol

import (
	"fmt"
	"log"
	"strings"

	"github.com/rxlab/protoextract/internal/pdfio"
	"github.com/rxlab/protoextract/internal/quality"
	"github.com/rxlab/protoextract/internal/rules"
	"github.com/rxlab/protoextract/internal/tables"
)

const (
	// DefaultReviewThreshold marks records for manual review below it.
	DefaultReviewThreshold = 55

	// singleDocConfidence is the base confidence of a whole-document record.
	singleDocConfidence = 75

	// bestEffortCodeLines is how far into a single-protocol document the
	// pipeline looks for a code when the caller supplied none.
	bestEffortCodeLines = 40
)

// Options tunes the pipeline service.
type Options struct {
	MinGlyphHeight  float64
	TableOptions    tables.Options
	ReviewThreshold int
	RulesPath       string // optional custom rule-set JSON
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MinGlyphHeight:  pdfio.DefaultMinGlyphHeight,
		TableOptions:    tables.DefaultOptions(),
		ReviewThreshold: DefaultReviewThreshold,
	}
}

// Result is one whole-document pipeline run.
type Result struct {
	Kind     Kind     `json:"kind"`
	Records  []Record `json:"records"`
	Warnings []string `json:"warnings,omitempty"`
}

// Service runs the full extraction pipeline over one document at a time.
// It holds no per-document state: the same Service may process distinct
// documents from concurrent goroutines.
type Service struct {
	opts       Options
	reader     *pdfio.LayoutReader
	recon      *tables.Reconstructor
	ruleSet    *rules.RuleSet
	tabular    *TabularParser
	freetext   *FreeTextParser
	classifier *Classifier
	stitcher   *Stitcher
	validator  *rules.TitleValidator
	drugs      *rules.Canonicalizer
	scorer     *quality.Scorer
	logger     *log.Logger
}

// NewService wires the pipeline components.
func NewService(opts Options, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[Pipeline] ", log.LstdFlags)
	}
	if opts.ReviewThreshold <= 0 {
		opts.ReviewThreshold = DefaultReviewThreshold
	}

	ruleSet := rules.DefaultRuleSet()
	if opts.RulesPath != "" {
		loaded, err := rules.LoadRuleSet(opts.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rule set: %w", err)
		}
		ruleSet = loaded
	}

	return &Service{
		opts:       opts,
		reader:     pdfio.NewLayoutReader(opts.MinGlyphHeight, log.New(logger.Writer(), "[LayoutReader] ", logger.Flags())),
		recon:      tables.NewReconstructorWithOptions(opts.TableOptions),
		ruleSet:    ruleSet,
		tabular:    NewTabularParser(ruleSet),
		freetext:   NewFreeTextParser(ruleSet),
		classifier: NewClassifier(ruleSet),
		stitcher:   NewStitcher(log.New(logger.Writer(), "[Stitcher] ", logger.Flags())),
		validator:  rules.NewTitleValidator(ruleSet),
		drugs:      rules.NewCanonicalizer(ruleSet),
		scorer:     quality.NewScorer(ruleSet),
		logger:     logger,
	}, nil
}

// RuleSetVersion exposes the loaded rule-set version for audit output.
func (s *Service) RuleSetVersion() string {
	return s.ruleSet.Version
}

// Process runs the whole pipeline over one PDF's bytes. An unreadable
// document returns the layout reader's typed error; a readable document
// that yields no candidates returns an empty result, not an error.
func (s *Service) Process(data []byte, hints Hints) (*Result, error) {
	layout, err := s.reader.ExtractLayout(data)
	if err != nil {
		return nil, err
	}

	docName := hints.FileName
	if docName == "" {
		docName = hints.ExpectedTitle
	}
	kind := s.classifier.Classify(layout, docName)

	result := &Result{Kind: kind}
	if kind == KindSingle {
		result.Records = []Record{s.singleRecord(layout, hints)}
		return result, nil
	}

	candidates := s.discover(layout)
	if len(candidates) == 0 {
		return result, nil
	}

	merged := Merge(candidates)
	lines := layout.Lines()
	for i := range merged {
		s.enrich(&merged[i], lines, result)
		result.Records = append(result.Records, s.freeze(merged[i], layout.PageCount))
	}
	return result, nil
}

// discover runs the tabular strategy over every page, falling back to the
// free-text strategy when table reconstruction yields nothing.
func (s *Service) discover(layout *pdfio.DocumentLayout) []Candidate {
	var candidates []Candidate
	for _, page := range layout.Pages {
		table := s.recon.Reconstruct(page.Number, page.Items)
		candidates = append(candidates, s.tabular.ParseTable(table)...)
	}

	if len(candidates) == 0 {
		candidates = s.freetext.Parse(layout.PageTexts)
	}
	return candidates
}

// enrich runs the per-candidate stages: content stitching, title
// validation/correction, and drug-name canonicalization. Failures here are
// per-candidate and never abort the document.
func (s *Service) enrich(c *Candidate, lines []string, result *Result) {
	stitch := s.stitcher.Stitch(c, lines)
	if stitch.Fallback {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: section located without header anchor, window %d lines", c.Code, c.StitchWindow))
	}

	if corrupted, signatures := s.validator.IsCorrupted(c.Title); corrupted {
		correction := s.validator.Correct(c.Code, c.Title, c.Content)
		if correction.Corrected {
			c.Title = correction.Title
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: corrupted title left for review (%s)", c.Code, strings.Join(signatures, ", ")))
		}
	}

	c.Title = s.drugs.Expand(c.Title)
	if c.DCI != "" {
		c.DCI = s.drugs.Expand(c.DCI)
	}
}

// freeze clamps confidence and emits the immutable record.
func (s *Service) freeze(c Candidate, pageCount int) Record {
	confidence := c.Confidence
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	corrupted, _ := s.validator.IsCorrupted(c.Title)
	return Record{
		Code:         c.Code,
		Title:        c.Title,
		DCI:          c.DCI,
		Content:      c.Content,
		PageNumber:   c.PageNumber,
		Confidence:   confidence,
		QualityScore: s.scorer.Score(c.Content, pageCount),
		Source:       c.Source,
		StitchWindow: c.StitchWindow,
		NeedsReview:  confidence < s.opts.ReviewThreshold || corrupted,
	}
}

// singleRecord turns a single-protocol document into one whole-document
// record keyed by the caller's hint or a best-effort code scan.
func (s *Service) singleRecord(layout *pdfio.DocumentLayout, hints Hints) Record {
	code := hints.KnownCode
	if code == "" {
		code = s.bestEffortCode(layout)
	}

	title := hints.ExpectedTitle
	if title == "" {
		title = s.firstUsableLine(layout)
	}
	if corrupted, _ := s.validator.IsCorrupted(title); corrupted {
		if correction := s.validator.Correct(code, title, layout.PlainText); correction.Corrected {
			title = correction.Title
		}
	}
	title = s.drugs.Expand(title)

	confidence := singleDocConfidence
	if code == "" {
		confidence = 0
	}

	return Record{
		Code:         code,
		Title:        title,
		Content:      strings.TrimSpace(layout.PlainText),
		PageNumber:   1,
		Confidence:   confidence,
		QualityScore: s.scorer.Score(layout.PlainText, layout.PageCount),
		Source:       SourceText,
		NeedsReview:  code == "" || confidence < s.opts.ReviewThreshold,
	}
}

// bestEffortCode scans the head of the document for a strict code.
func (s *Service) bestEffortCode(layout *pdfio.DocumentLayout) string {
	lines := layout.Lines()
	limit := len(lines)
	if limit > bestEffortCodeLines {
		limit = bestEffortCodeLines
	}
	for _, line := range lines[:limit] {
		if code, _, ok := FindCode(line); ok && IsStrictCode(code) {
			return code
		}
	}
	return ""
}

func (s *Service) firstUsableLine(layout *pdfio.DocumentLayout) string {
	for _, line := range layout.Lines() {
		t := cleanTitle(line)
		if titleLengthOK(t) && !s.ruleSet.IsJunk(t) {
			return t
		}
	}
	return ""
}
