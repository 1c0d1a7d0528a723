package model

// SourceCell is a raw cell descriptor handed over by a table locator.
// Spans are as declared; values below 1 are treated as 1 by the grid
// builder.
type SourceCell struct {
	Value   Value
	RowSpan int
	ColSpan int

	// Header is true for cells declared as header cells (<th>).
	Header bool
}

// SourceRow is one declared row of a source table.
type SourceRow struct {
	Cells []SourceCell

	// Head is true for rows declared inside a table head section.
	Head bool
}

// SourceTable is the locator-to-pipeline contract: the ordered rows of one
// table plus the structural header signal of its source.
type SourceTable struct {
	Rows []SourceRow

	// HeaderRows is the number of leading rows the source marks as header
	// rows. Zero means the source gave no explicit signal.
	HeaderRows int

	// Markup reports whether the source has header markup at all. Sources
	// without it (PDF, spreadsheets) fall back to header inference.
	Markup bool

	// Origin describes where the table came from, e.g. "page 2" or
	// `sheet "Q1"`.
	Origin string
}

// HeaderSignal counts leading header rows from the declared structure: rows
// marked as part of a head section, or failing that, leading rows whose
// cells are all header cells.
func (t SourceTable) HeaderSignal() int {
	n := 0
	for _, row := range t.Rows {
		if !row.Head {
			break
		}
		n++
	}
	if n > 0 {
		return n
	}

	for _, row := range t.Rows {
		if len(row.Cells) == 0 || !allHeaderCells(row.Cells) {
			break
		}
		n++
	}
	return n
}

func allHeaderCells(cells []SourceCell) bool {
	for _, c := range cells {
		if !c.Header {
			return false
		}
	}
	return true
}
