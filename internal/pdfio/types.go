package pdfio

// TextItem is a single positioned run of text on a page. Coordinates are in
// PDF points with the origin at the lower-left corner of the page.
type TextItem struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageItems holds the positioned text runs of one page.
type PageItems struct {
	Number int        `json:"number"`
	Items  []TextItem `json:"items"`
}

// DocumentLayout is the full extraction output for one PDF: the plain text of
// the whole document, the per-page plain text, and the positioned runs. It is
// produced once per document and treated as immutable afterwards.
type DocumentLayout struct {
	PlainText string      `json:"plain_text"`
	PageTexts []string    `json:"page_texts"`
	Pages     []PageItems `json:"pages"`
	PageCount int         `json:"page_count"`
}

// Lines splits the document plain text into lines.
func (d *DocumentLayout) Lines() []string {
	return splitLines(d.PlainText)
}
