// Package tables recovers tabular structure from positioned text runs.
// PDF extraction yields glyph runs with coordinates but no table semantics;
// clustering x-positions into column bands and y-positions into row bands is
// how the grid is rebuilt.
package tables

import (
	"sort"
	"strings"

	"github.com/rxlab/protoextract/internal/pdfio"
)

const (
	// DefaultColumnTolerance is the pixel band within which x-positions are
	// considered the same column.
	DefaultColumnTolerance = 40.0

	// DefaultRowTolerance is the band within which y-positions are the same
	// line. Rows are much tighter than columns.
	DefaultRowTolerance = 8.0

	// DefaultCellMargin extends a column's span when assigning items to
	// cells, catching runs that start slightly outside the cluster.
	DefaultCellMargin = 30.0

	// DefaultMinColumnCluster is the minimum members for an x-cluster to
	// count as a column; smaller clusters are noise.
	DefaultMinColumnCluster = 3
)

// Options tunes the clustering tolerances.
type Options struct {
	ColumnTolerance  float64
	RowTolerance     float64
	CellMargin       float64
	MinColumnCluster int
}

// DefaultOptions returns the empirically chosen tolerances.
func DefaultOptions() Options {
	return Options{
		ColumnTolerance:  DefaultColumnTolerance,
		RowTolerance:     DefaultRowTolerance,
		CellMargin:       DefaultCellMargin,
		MinColumnCluster: DefaultMinColumnCluster,
	}
}

// Column is an inferred x-range shared by all rows of a page.
type Column struct {
	Index int     `json:"index"`
	MinX  float64 `json:"min_x"`
	MaxX  float64 `json:"max_x"`
}

// Cell is the text assigned to one row × column intersection.
type Cell struct {
	Text string `json:"text"`
	Col  int    `json:"col"`
	Row  int    `json:"row"`
}

// Row is one horizontal band of cells.
type Row struct {
	Index int     `json:"index"`
	Y     float64 `json:"y"`
	Cells []Cell  `json:"cells"`
}

// Table is the reconstructed grid of one page. The whole page is treated as
// a single table; multiple tables separated by vertical gaps are not split.
type Table struct {
	Page    int      `json:"page"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Text joins the non-empty cells of a row left to right.
func (r Row) Text() string {
	var parts []string
	for _, c := range r.Cells {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Reconstructor rebuilds tables from positioned runs, one page at a time.
type Reconstructor struct {
	opts Options
}

// NewReconstructor creates a reconstructor with default tolerances.
func NewReconstructor() *Reconstructor {
	return &Reconstructor{opts: DefaultOptions()}
}

// NewReconstructorWithOptions creates a reconstructor with custom tolerances.
func NewReconstructorWithOptions(opts Options) *Reconstructor {
	def := DefaultOptions()
	if opts.ColumnTolerance <= 0 {
		opts.ColumnTolerance = def.ColumnTolerance
	}
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = def.RowTolerance
	}
	if opts.CellMargin <= 0 {
		opts.CellMargin = def.CellMargin
	}
	if opts.MinColumnCluster <= 0 {
		opts.MinColumnCluster = def.MinColumnCluster
	}
	return &Reconstructor{opts: opts}
}

// Reconstruct builds the table for one page. A page without items yields nil
// rather than an error.
func (r *Reconstructor) Reconstruct(page int, items []pdfio.TextItem) *Table {
	if len(items) == 0 {
		return nil
	}

	columns := r.clusterColumns(items)
	rows := r.clusterRows(items)

	table := &Table{Page: page, Columns: columns}
	for rowIdx, rowItems := range rows {
		row := Row{Index: rowIdx, Y: rowItems[0].Y}
		cells := r.assignCells(rowIdx, rowItems, columns)
		row.Cells = cells
		table.Rows = append(table.Rows, row)
	}
	return table
}

// clusterColumns groups item x-positions into column bands. Clusters with
// fewer members than the floor are discarded as noise; if nothing survives,
// the page becomes one full-width column.
func (r *Reconstructor) clusterColumns(items []pdfio.TextItem) []Column {
	xs := make([]float64, 0, len(items))
	minX, maxX := items[0].X, items[0].X
	for _, it := range items {
		xs = append(xs, it.X)
		if it.X < minX {
			minX = it.X
		}
		if right := it.X + it.Width; right > maxX {
			maxX = right
		}
	}
	sort.Float64s(xs)

	type cluster struct {
		min, max float64
		count    int
	}
	var clusters []cluster
	current := cluster{min: xs[0], max: xs[0], count: 1}
	for _, x := range xs[1:] {
		if x-current.min <= r.opts.ColumnTolerance {
			current.max = x
			current.count++
			continue
		}
		clusters = append(clusters, current)
		current = cluster{min: x, max: x, count: 1}
	}
	clusters = append(clusters, current)

	var columns []Column
	for _, c := range clusters {
		if c.count < r.opts.MinColumnCluster {
			continue
		}
		columns = append(columns, Column{Index: len(columns), MinX: c.min, MaxX: c.max})
	}
	if len(columns) == 0 {
		columns = []Column{{Index: 0, MinX: minX, MaxX: maxX}}
	}
	return columns
}

// clusterRows sorts items top to bottom and groups them into lines.
func (r *Reconstructor) clusterRows(items []pdfio.TextItem) [][]pdfio.TextItem {
	sorted := make([]pdfio.TextItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		// PDF y grows upward, so descending y is top to bottom.
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]pdfio.TextItem
	current := []pdfio.TextItem{sorted[0]}
	currentY := sorted[0].Y
	for _, it := range sorted[1:] {
		if currentY-it.Y <= r.opts.RowTolerance {
			current = append(current, it)
			continue
		}
		rows = append(rows, current)
		current = []pdfio.TextItem{it}
		currentY = it.Y
	}
	rows = append(rows, current)
	return rows
}

// assignCells puts each item of a row into the nearest column whose extended
// span contains its x, then concatenates cell text left to right.
func (r *Reconstructor) assignCells(rowIdx int, rowItems []pdfio.TextItem, columns []Column) []Cell {
	byColumn := make([][]pdfio.TextItem, len(columns))
	for _, it := range rowItems {
		col := r.columnFor(it.X, columns)
		if col < 0 {
			continue
		}
		byColumn[col] = append(byColumn[col], it)
	}

	cells := make([]Cell, len(columns))
	for colIdx, colItems := range byColumn {
		sort.Slice(colItems, func(i, j int) bool { return colItems[i].X < colItems[j].X })
		var parts []string
		for _, it := range colItems {
			parts = append(parts, it.Text)
		}
		cells[colIdx] = Cell{
			Text: normalizeSpace(strings.Join(parts, " ")),
			Col:  colIdx,
			Row:  rowIdx,
		}
	}
	return cells
}

// columnFor returns the index of the closest column whose margin-extended
// span contains x, or -1 when none does.
func (r *Reconstructor) columnFor(x float64, columns []Column) int {
	best := -1
	bestDist := 0.0
	for i, col := range columns {
		if x < col.MinX-r.opts.CellMargin || x > col.MaxX+r.opts.CellMargin {
			continue
		}
		center := (col.MinX + col.MaxX) / 2
		dist := x - center
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
