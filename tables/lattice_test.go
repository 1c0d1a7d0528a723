package tables

import (
	"testing"

	"github.com/tsawler/tabjson/model"
)

func hline(x1, x2, y float64) model.Line {
	return model.Line{Start: model.Point{X: x1, Y: y}, End: model.Point{X: x2, Y: y}}
}

func vline(x, y1, y2 float64) model.Line {
	return model.Line{Start: model.Point{X: x, Y: y1}, End: model.Point{X: x, Y: y2}}
}

// centered returns a fragment centered at (x, y).
func centered(text string, x, y float64) model.TextFragment {
	return model.TextFragment{Text: text, BBox: model.BBox{X: x - 10, Y: y - 5, Width: 20, Height: 10}}
}

func TestLatticeDetector_SimpleGrid(t *testing.T) {
	page := &model.Page{
		RawLines: []model.Line{
			hline(100, 300, 700), hline(100, 300, 680), hline(100, 300, 660),
			vline(100, 660, 700), vline(200, 660, 700), vline(300, 660, 700),
		},
		RawText: []model.TextFragment{
			centered("a", 150, 690), centered("b", 250, 690),
			centered("c", 150, 670), centered("d", 250, 670),
		},
	}

	tables, err := NewLatticeDetector().Detect(page)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	table := tables[0]
	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Fatalf("table is %dx%d, want 2x2", table.RowCount(), table.ColCount())
	}
	texts := table.Texts()
	if texts[0][0] != "a" || texts[0][1] != "b" || texts[1][0] != "c" || texts[1][1] != "d" {
		t.Errorf("Texts() = %q", texts)
	}
	if !table.HasGrid || table.Detector != "lattice" {
		t.Errorf("HasGrid = %v, Detector = %q", table.HasGrid, table.Detector)
	}
	if table.BBox != (model.BBox{X: 100, Y: 660, Width: 200, Height: 40}) {
		t.Errorf("BBox = %+v", table.BBox)
	}
}

func TestLatticeDetector_MergedCells(t *testing.T) {
	// Three columns and three rows. The top row has no border at x=200,
	// and the left column has no border at y=660 between rows 1 and 2.
	page := &model.Page{
		RawLines: []model.Line{
			hline(100, 400, 700), hline(100, 400, 680),
			hline(200, 400, 660), hline(100, 400, 640),
			vline(100, 640, 700), vline(200, 640, 680), vline(300, 640, 700), vline(400, 640, 700),
		},
		RawText: []model.TextFragment{
			centered("Contact", 200, 690), centered("Phone", 350, 690),
			centered("Name", 150, 660), centered("x", 250, 670), centered("y", 350, 670),
			centered("z", 250, 650), centered("w", 350, 650),
		},
	}

	tables, err := NewLatticeDetector().Detect(page)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	rows := tables[0].Rows
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if len(rows[0]) != 2 || rows[0][0].ColSpan != 2 || rows[0][0].Text != "Contact" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1][0].RowSpan != 2 || rows[1][0].Text != "Name" {
		t.Errorf("row 1 first cell = %+v", rows[1][0])
	}
	if len(rows[2]) != 2 {
		t.Errorf("row 2 should omit the covered position: %+v", rows[2])
	}

	src := tables[0].Source("page 1")
	if src.Markup || src.Origin != "page 1" {
		t.Errorf("Source() = %+v", src)
	}
	if src.Rows[0].Cells[0].ColSpan != 2 {
		t.Errorf("Source() lost the column span")
	}
}

func TestLatticeDetector_TwoTables(t *testing.T) {
	box := func(y float64) []model.Line {
		return []model.Line{
			hline(100, 300, y), hline(100, 300, y-20), hline(100, 300, y-40),
			vline(100, y-40, y), vline(200, y-40, y), vline(300, y-40, y),
		}
	}
	var lines []model.Line
	lines = append(lines, box(400)...)
	lines = append(lines, box(700)...)

	page := &model.Page{
		RawLines: lines,
		RawText: []model.TextFragment{
			centered("low", 150, 390), centered("high", 150, 690),
			centered("1", 250, 390), centered("2", 250, 690),
		},
	}

	tables, err := NewLatticeDetector().Detect(page)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].Texts()[0][0] != "high" || tables[1].Texts()[0][0] != "low" {
		t.Errorf("tables out of order")
	}
}

func TestLatticeDetector_NotEnoughRules(t *testing.T) {
	page := &model.Page{RawLines: []model.Line{hline(100, 300, 700), vline(100, 600, 700)}}
	tables, err := NewLatticeDetector().Detect(page)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("got %d tables, want 0", len(tables))
	}
}

func TestLatticeDetector_ShortLinesFiltered(t *testing.T) {
	var lines []model.Line
	for i := 0; i < 3; i++ {
		y := 700 - float64(i)*5
		lines = append(lines, hline(100, 105, y))
		lines = append(lines, vline(100+float64(i)*2, 690, 695))
	}
	tables, err := NewLatticeDetector().Detect(&model.Page{RawLines: lines})
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("got %d tables from short strokes", len(tables))
	}
}

func TestGroupAlignedLines(t *testing.T) {
	d := NewLatticeDetector()
	groups := d.groupAlignedLines([]model.Line{
		hline(0, 100, 700), hline(100, 200, 701), hline(0, 200, 650),
	}, true)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[1].Lines) != 2 || groups[1].Position != 700.5 {
		t.Errorf("group = %+v", groups[1])
	}
	if !groups[1].covers(150, true, 1) || groups[0].covers(250, true, 1) {
		t.Error("covers() mismatch")
	}
}
