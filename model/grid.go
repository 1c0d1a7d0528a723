package model

// Cell is a single logical grid position.
type Cell struct {
	Value Value

	// RowSpan and ColSpan are the spans as placed, after clipping. Both are
	// at least 1 and only meaningful on the origin cell.
	RowSpan int
	ColSpan int

	// Origin is true at the top-left position where the cell was declared
	// and false at replicated or padded positions.
	Origin bool
}

// Text returns the textual value of the cell.
func (c Cell) Text() string {
	return c.Value.Text
}

// Grid is a rectangular array of cells for one table. Every row has Width
// cells.
type Grid struct {
	Rows  [][]Cell
	Width int

	// Clipped counts spans that were truncated to avoid overwriting an
	// already-placed cell.
	Clipped int
}

// Height returns the number of rows in the grid.
func (g *Grid) Height() int {
	return len(g.Rows)
}

// RowTexts returns the text of every cell in row i, or nil when i is out of
// range.
func (g *Grid) RowTexts(i int) []string {
	if i < 0 || i >= len(g.Rows) {
		return nil
	}
	texts := make([]string, len(g.Rows[i]))
	for j, c := range g.Rows[i] {
		texts[j] = c.Value.Text
	}
	return texts
}

// Origins returns the number of origin cells in the grid.
func (g *Grid) Origins() int {
	n := 0
	for _, row := range g.Rows {
		for _, c := range row {
			if c.Origin {
				n++
			}
		}
	}
	return n
}
