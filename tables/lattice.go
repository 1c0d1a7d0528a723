package tables

import (
	"math"
	"sort"

	"github.com/tsawler/tabjson/model"
)

// LatticeDetector finds tables drawn with ruling lines. Aligned rules form
// the row and column boundaries; a missing inner border between two grid
// cells merges them into one spanning cell.
type LatticeDetector struct {
	config Config
}

// NewLatticeDetector creates a new lattice detector with default configuration.
func NewLatticeDetector() *LatticeDetector {
	return &LatticeDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("lattice").
func (d *LatticeDetector) Name() string {
	return "lattice"
}

// Configure sets the detector configuration.
func (d *LatticeDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	return nil
}

// alignedLineGroup is a set of rules sharing a position on one axis.
type alignedLineGroup struct {
	// Position on the alignment axis (X for vertical lines, Y for horizontal)
	Position float64
	Lines    []model.Line
}

// covers reports whether any rule in the group passes through the given
// coordinate on the perpendicular axis.
func (g alignedLineGroup) covers(at float64, horizontal bool, tol float64) bool {
	for _, l := range g.Lines {
		lo, hi := l.Start.Y, l.End.Y
		if horizontal {
			lo, hi = l.Start.X, l.End.X
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if at >= lo-tol && at <= hi+tol {
			return true
		}
	}
	return false
}

// Detect finds ruled tables on a page, top to bottom.
func (d *LatticeDetector) Detect(page *model.Page) ([]*Table, error) {
	tol := d.config.AlignmentTolerance

	var rules []model.Line
	for _, l := range page.RawLines {
		if lineLength(l) < d.config.MinLineLength {
			continue
		}
		if l.IsHorizontal(tol) || l.IsVertical(tol) {
			rules = append(rules, l)
		}
	}
	if len(rules) < 4 {
		return nil, nil
	}

	var tables []*Table
	for _, component := range d.connectedRules(rules) {
		if table := d.detectTableInRules(component, page.RawText); table != nil {
			tables = append(tables, table)
		}
	}

	sortTopToBottom(tables)
	return tables, nil
}

// connectedRules partitions rules into sets whose bounding boxes touch,
// so that separate ruled tables on one page are detected separately.
func (d *LatticeDetector) connectedRules(rules []model.Line) [][]model.Line {
	parent := make([]int, len(rules))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	tol := d.config.AlignmentTolerance
	for i := range rules {
		bi := rules[i].BBox()
		for j := i + 1; j < len(rules); j++ {
			if touches(bi, rules[j].BBox(), tol) {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]model.Line)
	var order []int
	for i, l := range rules {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], l)
	}

	components := make([][]model.Line, 0, len(order))
	for _, root := range order {
		components = append(components, groups[root])
	}
	return components
}

// detectTableInRules builds the table formed by one connected set of rules.
func (d *LatticeDetector) detectTableInRules(rules []model.Line, fragments []model.TextFragment) *Table {
	tol := d.config.AlignmentTolerance

	var horizontals, verticals []model.Line
	for _, l := range rules {
		if l.IsHorizontal(tol) {
			horizontals = append(horizontals, l)
		} else {
			verticals = append(verticals, l)
		}
	}

	hGroups := d.groupAlignedLines(horizontals, true)
	vGroups := d.groupAlignedLines(verticals, false)

	// Horizontal boundaries top to bottom, vertical boundaries left to right
	sort.Slice(hGroups, func(i, j int) bool { return hGroups[i].Position > hGroups[j].Position })
	sort.Slice(vGroups, func(i, j int) bool { return vGroups[i].Position < vGroups[j].Position })

	rows, cols := len(hGroups)-1, len(vGroups)-1
	if rows < d.config.MinRows || cols < d.config.MinCols {
		return nil
	}

	bbox := model.BBox{
		X:      vGroups[0].Position,
		Y:      hGroups[rows].Position,
		Width:  vGroups[cols].Position - vGroups[0].Position,
		Height: hGroups[0].Position - hGroups[rows].Position,
	}

	// hasVBorder reports a border between columns j-1 and j in row i;
	// hasHBorder reports a border between rows i-1 and i in column j.
	hasVBorder := func(i, j int) bool {
		mid := (hGroups[i].Position + hGroups[i+1].Position) / 2
		return vGroups[j].covers(mid, false, tol)
	}
	hasHBorder := func(i, j int) bool {
		mid := (vGroups[j].Position + vGroups[j+1].Position) / 2
		return hGroups[i].covers(mid, true, tol)
	}

	// Resolve merged cells greedily from the top-left.
	covered := make([][]bool, rows)
	for i := range covered {
		covered[i] = make([]bool, cols)
	}
	owner := make([][][2]int, rows)
	for i := range owner {
		owner[i] = make([][2]int, cols)
	}

	table := &Table{
		Rows:     make([][]Cell, rows),
		Cols:     cols,
		BBox:     bbox,
		HasGrid:  true,
		Detector: d.Name(),
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if covered[i][j] {
				continue
			}
			colSpan := 1
			for j+colSpan < cols && !covered[i][j+colSpan] && !hasVBorder(i, j+colSpan) {
				colSpan++
			}
			rowSpan := 1
			for i+rowSpan < rows && d.openBelow(i+rowSpan, j, colSpan, covered, hasHBorder) {
				rowSpan++
			}

			for r := i; r < i+rowSpan; r++ {
				for c := j; c < j+colSpan; c++ {
					covered[r][c] = true
					owner[r][c] = [2]int{i, len(table.Rows[i])}
				}
			}
			table.Rows[i] = append(table.Rows[i], Cell{
				RowSpan: rowSpan,
				ColSpan: colSpan,
				BBox: model.BBox{
					X:      vGroups[j].Position,
					Y:      hGroups[i+rowSpan].Position,
					Width:  vGroups[j+colSpan].Position - vGroups[j].Position,
					Height: hGroups[i].Position - hGroups[i+rowSpan].Position,
				},
			})
		}
	}

	// Assign text to the cell containing each fragment's center, in
	// reading order.
	sorted := make([]model.TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(a, b int) bool {
		ca, cb := sorted[a].BBox.Center(), sorted[b].BBox.Center()
		if math.Abs(ca.Y-cb.Y) > tol {
			return ca.Y > cb.Y
		}
		return ca.X < cb.X
	})

	filled := 0
	for _, frag := range sorted {
		i, j := findGridCell(frag.BBox.Center(), hGroups, vGroups)
		if i < 0 || j < 0 {
			continue
		}
		o := owner[i][j]
		cell := &table.Rows[o[0]][o[1]]
		if cell.Text == "" {
			filled++
		}
		cell.Text = joinText(cell.Text, frag.Text)
	}

	declared := 0
	for _, row := range table.Rows {
		declared += len(row)
	}
	table.Confidence = d.calculateConfidence(hGroups, vGroups, filled, declared)
	if table.Confidence < d.config.MinConfidence {
		return nil
	}

	return table
}

// openBelow reports whether row r has no border above columns
// [j, j+span) and none of those positions is taken.
func (d *LatticeDetector) openBelow(r, j, span int, covered [][]bool, hasHBorder func(int, int) bool) bool {
	for c := j; c < j+span; c++ {
		if covered[r][c] || hasHBorder(r, c) {
			return false
		}
	}
	return true
}

// groupAlignedLines groups lines that are aligned on the same axis
func (d *LatticeDetector) groupAlignedLines(lines []model.Line, isHorizontal bool) []alignedLineGroup {
	if len(lines) == 0 {
		return nil
	}

	position := func(l model.Line) float64 {
		if isHorizontal {
			return (l.Start.Y + l.End.Y) / 2
		}
		return (l.Start.X + l.End.X) / 2
	}

	sorted := make([]model.Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return position(sorted[i]) < position(sorted[j]) })

	groups := []alignedLineGroup{{Position: position(sorted[0]), Lines: []model.Line{sorted[0]}}}
	for _, l := range sorted[1:] {
		pos := position(l)
		current := &groups[len(groups)-1]
		if pos-current.Position <= d.config.AlignmentTolerance {
			current.Lines = append(current.Lines, l)
			// Update position to average
			n := float64(len(current.Lines))
			current.Position = (current.Position*(n-1) + pos) / n
			continue
		}
		groups = append(groups, alignedLineGroup{Position: pos, Lines: []model.Line{l}})
	}

	return groups
}

// calculateConfidence scores a ruled grid by its regularity (40%), size
// (20%) and the fraction of declared cells holding text (40%).
func (d *LatticeDetector) calculateConfidence(hGroups, vGroups []alignedLineGroup, filled, declared int) float64 {
	score := 0.0

	rows, cols := len(hGroups)-1, len(vGroups)-1
	if rows*cols >= 4 {
		score += 0.1
	}
	if rows*cols >= 9 {
		score += 0.1
	}

	heights := make([]float64, rows)
	for i := range heights {
		heights[i] = hGroups[i].Position - hGroups[i+1].Position
	}
	widths := make([]float64, cols)
	for i := range widths {
		widths[i] = vGroups[i+1].Position - vGroups[i].Position
	}
	regularity := (math.Max(0, 1-coefficientOfVariation(heights)) + math.Max(0, 1-coefficientOfVariation(widths))) / 2
	score += regularity * 0.4

	if declared > 0 {
		score += float64(filled) / float64(declared) * 0.4
	}

	return math.Min(1.0, score)
}

// findGridCell returns the grid position containing p, or -1, -1.
func findGridCell(p model.Point, hGroups, vGroups []alignedLineGroup) (row, col int) {
	row, col = -1, -1
	for i := 0; i+1 < len(hGroups); i++ {
		if p.Y <= hGroups[i].Position && p.Y >= hGroups[i+1].Position {
			row = i
			break
		}
	}
	for j := 0; j+1 < len(vGroups); j++ {
		if p.X >= vGroups[j].Position && p.X <= vGroups[j+1].Position {
			col = j
			break
		}
	}
	return row, col
}

// lineLength calculates the length of a line
func lineLength(l model.Line) float64 {
	dx := l.End.X - l.Start.X
	dy := l.End.Y - l.Start.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// touches reports whether two boxes intersect once expanded by tol.
func touches(a, b model.BBox, tol float64) bool {
	return a.Left()-tol <= b.Right() && b.Left()-tol <= a.Right() &&
		a.Bottom()-tol <= b.Top() && b.Bottom()-tol <= a.Top()
}
