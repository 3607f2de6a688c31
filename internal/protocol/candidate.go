package protocol

// Source identifies which discovery strategy produced a candidate.
type Source string

const (
	SourceTable Source = "table"
	SourceText  Source = "text"
)

// Base confidence per strategy. Tabular extraction has columnar
// corroboration; free-text extraction does not.
const (
	tableBaseConfidence = 70
	textConfidence      = 60
)

// Candidate is an in-progress extracted protocol entry. Code never changes
// after creation; confidence is only raised, or lowered with a recorded
// reason (see Stitcher fallback).
type Candidate struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	DCI        string `json:"dci,omitempty"`
	Content    string `json:"content"`
	PageNumber int    `json:"page_number"`
	Confidence int    `json:"confidence"`
	Source     Source `json:"source"`

	// StitchWindow is the line count of the section window applied by the
	// stitcher, kept for downstream audit of possible truncation.
	StitchWindow int `json:"stitch_window,omitempty"`

	// stitchPenalized records that the fallback stitch path lowered
	// confidence, so the drop is auditable.
	stitchPenalized bool
}

// Record is the frozen pipeline output for one protocol.
type Record struct {
	Code         string `json:"code"`
	Title        string `json:"title"`
	DCI          string `json:"dci,omitempty"`
	Content      string `json:"content"`
	PageNumber   int    `json:"page_number"`
	Confidence   int    `json:"confidence"`
	QualityScore int    `json:"quality_score"`
	Source       Source `json:"source"`
	StitchWindow int    `json:"stitch_window,omitempty"`
	NeedsReview  bool   `json:"needs_review"`
}

// Hints carries optional caller knowledge about a document, used mostly for
// single-protocol documents whose code cannot be derived from a list table.
type Hints struct {
	ExpectedTitle string
	KnownCode     string
	FileName      string
}
