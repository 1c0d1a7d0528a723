// Package pipeline runs the grid builder, the header resolver and the
// record projector for one source table.
package pipeline

import (
	"github.com/tsawler/tabjson/grid"
	"github.com/tsawler/tabjson/header"
	"github.com/tsawler/tabjson/model"
	"github.com/tsawler/tabjson/records"
)

// Report summarizes the conversion of one table.
type Report struct {
	Origin     string
	Rows       int
	Width      int
	HeaderRows int
	Clipped    int
}

// Run converts one source table. Nested tables must already be converted
// into the cell values of src.
func Run(src model.SourceTable, opts header.Options) (*model.Result, Report) {
	g := grid.Build(src)
	spec := header.Resolve(g, header.SignalOf(src), opts)
	res := records.Project(g, spec)

	return res, Report{
		Origin:     src.Origin,
		Rows:       g.Height(),
		Width:      g.Width,
		HeaderRows: spec.Rows,
		Clipped:    g.Clipped,
	}
}
