package pdfio

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// DefaultMinGlyphHeight filters page-number noise and hairline artifacts.
	DefaultMinGlyphHeight = 4.0

	// defaultGlyphHeight is assumed when the PDF reports no font size.
	defaultGlyphHeight = 12.0

	// maxTextSize bounds the plain text kept per document (10MB).
	maxTextSize = 10 * 1024 * 1024
)

// LayoutReader extracts plain text and positioned text runs from PDF bytes.
// Extraction is a pure, one-shot function of the bytes: no retries, no
// shared state, safe to call from concurrent goroutines.
type LayoutReader struct {
	minGlyphHeight float64
	logger         *log.Logger
}

// NewLayoutReader creates a layout reader with the given glyph-height floor.
// The logger is scoped to this reader; pass a silenced logger to suppress
// per-page extraction warnings.
func NewLayoutReader(minGlyphHeight float64, logger *log.Logger) *LayoutReader {
	if minGlyphHeight <= 0 {
		minGlyphHeight = DefaultMinGlyphHeight
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[LayoutReader] ", log.LstdFlags)
	}
	return &LayoutReader{
		minGlyphHeight: minGlyphHeight,
		logger:         logger,
	}
}

// ExtractLayout reads the document once and returns its plain text together
// with the positioned runs of every page. A malformed or unreadable document
// returns an *ExtractionError; a readable document with unreadable pages
// returns the pages that survived.
func (r *LayoutReader) ExtractLayout(data []byte) (*DocumentLayout, error) {
	if len(data) == 0 {
		return nil, &ExtractionError{Op: OpValidate, Err: fmt.Errorf("empty input")}
	}

	if err := r.validate(data); err != nil {
		return nil, &ExtractionError{Op: OpValidate, Err: err}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Op: OpParse, Err: err}
	}

	layout := &DocumentLayout{PageCount: reader.NumPage()}

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		pageText, items := r.extractPage(reader, pageNum)

		layout.PageTexts = append(layout.PageTexts, pageText)
		layout.Pages = append(layout.Pages, PageItems{Number: pageNum, Items: items})

		if builder.Len()+len(pageText) > maxTextSize {
			remaining := maxTextSize - builder.Len()
			if remaining > 0 {
				builder.WriteString(pageText[:remaining])
			}
			break
		}
		builder.WriteString(pageText)
		if !strings.HasSuffix(pageText, "\n") {
			builder.WriteString("\n")
		}
	}
	layout.PlainText = builder.String()

	if strings.TrimSpace(layout.PlainText) == "" && !layout.hasItems() {
		return nil, &ExtractionError{Op: OpExtract, Err: fmt.Errorf("no extractable text")}
	}

	return layout, nil
}

// validate runs pdfcpu's relaxed structural validation over the bytes so
// that corrupt documents fail before the glyph extractor sees them.
func (r *LayoutReader) validate(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("read context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("page count: %w", err)
	}
	return nil
}

// extractPage pulls plain text and positioned runs from one page. Failures
// are isolated to the page: a panic or extraction error yields empty output
// for that page only.
func (r *LayoutReader) extractPage(reader *pdf.Reader, pageNum int) (text string, items []TextItem) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("panic on page %d: %v", pageNum, rec)
			text, items = "", nil
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	if content, err := page.GetPlainText(nil); err == nil {
		text = content
	} else {
		r.logger.Printf("plain text extraction failed on page %d: %v", pageNum, err)
	}

	for _, run := range page.Content().Text {
		height := run.FontSize
		if height == 0 {
			height = defaultGlyphHeight
		}
		if height <= r.minGlyphHeight {
			continue
		}
		if strings.TrimSpace(run.S) == "" {
			continue
		}
		items = append(items, TextItem{
			Text:   run.S,
			X:      run.X,
			Y:      run.Y,
			Width:  run.W,
			Height: height,
		})
	}

	return text, items
}

func (d *DocumentLayout) hasItems() bool {
	for _, p := range d.Pages {
		if len(p.Items) > 0 {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
