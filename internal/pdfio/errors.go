package pdfio

import (
	"errors"
	"fmt"
)

// Op identifies the extraction stage that failed.
type Op string

const (
	OpValidate Op = "validate"
	OpParse    Op = "parse"
	OpExtract  Op = "extract"
)

// ExtractionError is the typed failure surfaced when a document cannot be
// read at all. Per-page problems are recovered internally and never reach
// the caller as an ExtractionError.
type ExtractionError struct {
	Op   Op
	Page int // 0 when the failure is not page-scoped
	Err  error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("pdf %s failed on page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("pdf %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped cause
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsExtractionFailure reports whether err is (or wraps) an ExtractionError.
func IsExtractionFailure(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
