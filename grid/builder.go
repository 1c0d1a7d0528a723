// Package grid reconstructs a rectangular logical grid from the declared
// rows of a source table.
//
// Cells are placed left to right at a per-row cursor that skips positions
// already claimed by row spans from earlier rows. A spanning cell is
// replicated to every position it covers; only the top-left copy is marked
// as the origin. Spans never overwrite a placed cell: a colliding span is
// truncated and counted in [model.Grid.Clipped]. Rows shorter than the
// widest row are right-padded with empty cells.
//
// Row spans may extend the grid past its last source row, but the rows
// added that way hold at most [MaxExtensionCells] cells; longer spans are
// truncated and counted as clipped.
package grid

import "github.com/tsawler/tabjson/model"

const (
	// MaxColSpan and MaxRowSpan are the largest spans honored, matching the
	// limits browsers apply to colspan and rowspan.
	MaxColSpan = 1000
	MaxRowSpan = 65534

	// MaxExtensionCells bounds the cells of rows that exist only because a
	// row span reaches past the last source row.
	MaxExtensionCells = 1 << 16
)

// builder is the mutable buffer used while placing cells.
type builder struct {
	rows    [][]model.Cell
	filled  [][]bool
	width   int
	clipped int

	// sourceRows is the number of declared rows; extended lists the
	// placements reaching past them.
	sourceRows int
	extended   []placement
}

// placement is the area a source cell was given.
type placement struct {
	row, col   int
	rows, cols int
	clipped    bool
}

// Build constructs the logical grid for src. It never fails: malformed
// spans degrade to best-effort placement.
func Build(src model.SourceTable) *model.Grid {
	b := &builder{sourceRows: len(src.Rows)}

	for r, row := range src.Rows {
		b.ensureRow(r)

		col := 0
		for _, cell := range row.Cells {
			col = b.nextFree(r, col)
			b.place(r, col, cell)
			col++
		}
	}

	return b.finish()
}

// ensureRow grows the buffer so that row r exists.
func (b *builder) ensureRow(r int) {
	for len(b.rows) <= r {
		b.rows = append(b.rows, nil)
		b.filled = append(b.filled, nil)
	}
}

// occupied reports whether position (r, c) already holds a cell.
func (b *builder) occupied(r, c int) bool {
	if r >= len(b.filled) {
		return false
	}
	return c < len(b.filled[r]) && b.filled[r][c]
}

// nextFree returns the first column at or after col that is free in row r.
func (b *builder) nextFree(r, col int) int {
	for b.occupied(r, col) {
		col++
	}
	return col
}

// set stores cell at (r, c), growing the row as needed.
func (b *builder) set(r, c int, cell model.Cell) {
	b.ensureRow(r)
	for len(b.rows[r]) <= c {
		b.rows[r] = append(b.rows[r], model.Cell{})
		b.filled[r] = append(b.filled[r], false)
	}
	b.rows[r][c] = cell
	b.filled[r][c] = true
	if c+1 > b.width {
		b.width = c + 1
	}
}

// place puts a source cell at (r, col) and replicates it over its effective
// span.
func (b *builder) place(r, col int, src model.SourceCell) {
	colSpan := Clamp(src.ColSpan, MaxColSpan)
	rowSpan := Clamp(src.RowSpan, MaxRowSpan)
	declared := rowSpan

	// Each row past the source rows costs a full grid width.
	width := max(b.width, col+colSpan)
	if limit := b.sourceRows + MaxExtensionCells/width - r; rowSpan > limit {
		rowSpan = max(1, limit)
	}

	// Truncate the column span at the first position already claimed by a
	// row span from above.
	cols := 1
	for cols < colSpan && !b.occupied(r, col+cols) {
		cols++
	}

	// Truncate the row span at the first row where any covered column is
	// already claimed.
	rows := 1
	for rows < rowSpan && b.rangeFree(r+rows, col, cols) {
		rows++
	}

	clipped := cols < colSpan || rows < declared
	if clipped {
		b.clipped++
	}
	if r+rows > b.sourceRows {
		b.extended = append(b.extended, placement{row: r, col: col, rows: rows, cols: cols, clipped: clipped})
	}

	for dr := 0; dr < rows; dr++ {
		for dc := 0; dc < cols; dc++ {
			b.set(r+dr, col+dc, model.Cell{
				Value:   src.Value,
				RowSpan: rows,
				ColSpan: cols,
				Origin:  dr == 0 && dc == 0,
			})
		}
	}
}

// rangeFree reports whether columns [col, col+n) of row r are all free.
func (b *builder) rangeFree(r, col, n int) bool {
	for c := col; c < col+n; c++ {
		if b.occupied(r, c) {
			return false
		}
	}
	return true
}

// trimExtension drops rows past the source rows that would exceed
// MaxExtensionCells at the final width, shortening the spans reaching
// into them.
func (b *builder) trimExtension() {
	limit := b.sourceRows + MaxExtensionCells/max(b.width, 1)
	if len(b.rows) <= limit {
		return
	}

	for _, p := range b.extended {
		if p.row+p.rows <= limit {
			continue
		}
		rows := limit - p.row
		for r := p.row; r < limit; r++ {
			for c := p.col; c < p.col+p.cols; c++ {
				b.rows[r][c].RowSpan = rows
			}
		}
		if !p.clipped {
			b.clipped++
		}
	}

	b.rows = b.rows[:limit]
	b.filled = b.filled[:limit]
}

// finish pads every row to the final width and returns the grid.
func (b *builder) finish() *model.Grid {
	b.trimExtension()

	g := &model.Grid{
		Rows:    make([][]model.Cell, len(b.rows)),
		Width:   b.width,
		Clipped: b.clipped,
	}

	for r, row := range b.rows {
		padded := make([]model.Cell, b.width)
		for c := range padded {
			if c < len(row) && b.filled[r][c] {
				padded[c] = row[c]
				continue
			}
			padded[c] = model.Cell{RowSpan: 1, ColSpan: 1}
		}
		g.Rows[r] = padded
	}

	return g
}

// Clamp normalizes a declared span: values below 1 become 1 and values
// above limit become limit.
func Clamp(span, limit int) int {
	if span < 1 {
		return 1
	}
	if span > limit {
		return limit
	}
	return span
}
