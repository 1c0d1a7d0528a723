// Package xlsxdoc reads worksheets of an XLSX workbook as source tables.
// Each worksheet is one table; merged ranges become row and column spans.
package xlsxdoc

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/tsawler/tabjson/grid"
	"github.com/tsawler/tabjson/model"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when a selected worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Options selects the worksheets to read.
type Options struct {
	// Sheets lists worksheet names in output order; nil means every sheet
	// in workbook order.
	Sheets []string
}

// Reader provides access to the worksheets of a workbook.
type Reader struct {
	file *excelize.File
	opts Options
}

// Open opens an XLSX file for reading.
func Open(filename string, opts Options) (*Reader, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	return &Reader{file: f, opts: opts}, nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader, opts Options) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	return &Reader{file: f, opts: opts}, nil
}

// SheetNames returns the worksheet names in workbook order.
func (r *Reader) SheetNames() []string {
	return r.file.GetSheetList()
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Tables returns one source table per selected worksheet.
func (r *Reader) Tables() ([]model.SourceTable, error) {
	available := r.file.GetSheetList()
	names := r.opts.Sheets
	if len(names) == 0 {
		names = available
	}

	out := make([]model.SourceTable, 0, len(names))
	for _, name := range names {
		if !slices.Contains(available, name) {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
		}
		src, err := r.sheet(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		out = append(out, src)
	}
	return out, nil
}

// span is a merged range anchored at its top-left cell.
type span struct {
	rows, cols int
}

type position struct {
	row, col int
}

func (r *Reader) sheet(name string) (model.SourceTable, error) {
	src := model.SourceTable{Origin: "sheet " + name}

	rows, err := r.file.GetRows(name)
	if err != nil {
		return src, err
	}

	anchors, covered, err := r.merges(name)
	if err != nil {
		return src, err
	}

	height := len(rows)
	for at, s := range anchors {
		height = max(height, at.row+s.rows)
	}

	for i := 0; i < height; i++ {
		var values []string
		if i < len(rows) {
			values = rows[i]
		}

		width := len(values)
		for at, s := range anchors {
			if at.row == i {
				width = max(width, at.col+s.cols)
			}
		}

		var row model.SourceRow
		for j := 0; j < width; j++ {
			at := position{i, j}
			if covered[at] {
				continue
			}
			cell := model.SourceCell{RowSpan: 1, ColSpan: 1}
			if j < len(values) {
				cell.Value = model.TextValue(model.NormalizeText(values[j]))
			}
			if s, ok := anchors[at]; ok {
				cell.RowSpan = grid.Clamp(s.rows, grid.MaxRowSpan)
				cell.ColSpan = grid.Clamp(s.cols, grid.MaxColSpan)
			}
			row.Cells = append(row.Cells, cell)
		}
		src.Rows = append(src.Rows, row)
	}

	return src, nil
}

// merges returns the merged ranges of a sheet keyed by their top-left
// cell, plus every other position they cover. Positions are 0-indexed.
func (r *Reader) merges(name string) (map[position]span, map[position]bool, error) {
	cells, err := r.file.GetMergeCells(name)
	if err != nil {
		return nil, nil, err
	}

	anchors := make(map[position]span, len(cells))
	covered := make(map[position]bool)
	for _, mc := range cells {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, nil, err
		}

		at := position{startRow - 1, startCol - 1}
		s := span{rows: endRow - startRow + 1, cols: endCol - startCol + 1}
		anchors[at] = s
		for i := 0; i < s.rows; i++ {
			for j := 0; j < s.cols; j++ {
				if i != 0 || j != 0 {
					covered[position{at.row + i, at.col + j}] = true
				}
			}
		}
	}
	return anchors, covered, nil
}
