// Package records projects a grid and its resolved header into the
// JSON-ready form of a table.
package records

import "github.com/tsawler/tabjson/model"

// Project converts g into a result. With a header present, every body row
// becomes a record holding every key in column order; cells missing from a
// short row map to empty text. Without a header, every grid row is emitted
// as is. Row order is preserved.
func Project(g *model.Grid, spec model.HeaderSpec) *model.Result {
	if !spec.Present {
		return &model.Result{Header: spec, Rows: plainRows(g)}
	}

	res := &model.Result{Header: spec, Records: []*model.Record{}}
	if spec.Rows >= g.Height() {
		return res
	}

	for _, row := range g.Rows[spec.Rows:] {
		rec := model.NewRecord()
		for i, key := range spec.Keys {
			var v model.Value
			if i < len(row) {
				v = row[i].Value
			}
			rec.Set(key, v)
		}
		res.Records = append(res.Records, rec)
	}

	return res
}

func plainRows(g *model.Grid) [][]model.Value {
	rows := make([][]model.Value, len(g.Rows))
	for i, row := range g.Rows {
		values := make([]model.Value, len(row))
		for j, c := range row {
			values[j] = c.Value
		}
		rows[i] = values
	}
	return rows
}
