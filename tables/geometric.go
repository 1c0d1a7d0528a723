package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/tabjson/model"
)

// GeometricDetector implements table detection using geometric heuristics.
// It analyzes spatial relationships between text fragments to identify tabular
// structures based on alignment patterns, grid regularity, and ruling lines.
type GeometricDetector struct {
	config Config
}

// NewGeometricDetector creates a new geometric table detector with default configuration.
func NewGeometricDetector() *GeometricDetector {
	return &GeometricDetector{
		config: DefaultConfig(),
	}
}

// Name returns the detector's identifier ("geometric").
func (d *GeometricDetector) Name() string {
	return "geometric"
}

// Configure sets the detector configuration.
func (d *GeometricDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	return nil
}

// textLine is a set of fragments sharing a baseline band, sorted left to
// right.
type textLine struct {
	fragments []model.TextFragment
	bbox      model.BBox
}

// Detect finds tables on a page using geometric heuristics. It groups
// fragments into lines, clusters lines into blocks separated by large
// vertical gaps, and analyzes runs of multi-column lines in each block.
func (d *GeometricDetector) Detect(page *model.Page) ([]*Table, error) {
	if len(page.RawText) == 0 {
		return nil, nil
	}

	// Step 1: Group fragments into text lines
	lines := d.groupLines(page.RawText)

	var tables []*Table

	// Step 2: Split lines into blocks, then find candidate runs per block
	for _, block := range d.clusterLines(lines) {
		for _, run := range d.candidateRuns(block) {
			if table := d.detectTableInRun(run, page.RawLines); table != nil {
				tables = append(tables, table)
			}
		}
	}

	sortTopToBottom(tables)
	return tables, nil
}

// groupLines assigns each fragment to the line whose vertical center is
// within tolerance, then merges neighboring fragments closer than
// MaxCellGap.
func (d *GeometricDetector) groupLines(fragments []model.TextFragment) []textLine {
	sorted := make([]model.TextFragment, len(fragments))
	copy(sorted, fragments)

	// Sort by vertical center (top to bottom), then left to right
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].BBox.Center(), sorted[j].BBox.Center()
		if ci.Y != cj.Y {
			return ci.Y > cj.Y
		}
		return ci.X < cj.X
	})

	var lines []textLine
	for _, frag := range sorted {
		if n := len(lines); n > 0 && d.sameLine(lines[n-1], frag) {
			lines[n-1].fragments = append(lines[n-1].fragments, frag)
			lines[n-1].bbox = lines[n-1].bbox.Union(frag.BBox)
			continue
		}
		lines = append(lines, textLine{fragments: []model.TextFragment{frag}, bbox: frag.BBox})
	}

	for i := range lines {
		lines[i].fragments = d.mergeFragments(lines[i].fragments)
	}

	return lines
}

// sameLine reports whether frag belongs to line.
func (d *GeometricDetector) sameLine(line textLine, frag model.TextFragment) bool {
	tol := math.Max(d.config.AlignmentTolerance, math.Min(line.bbox.Height, frag.BBox.Height)/2)
	return math.Abs(line.bbox.Center().Y-frag.BBox.Center().Y) <= tol
}

// mergeFragments sorts fragments left to right and joins those separated by
// at most MaxCellGap.
func (d *GeometricDetector) mergeFragments(fragments []model.TextFragment) []model.TextFragment {
	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].BBox.Left() < fragments[j].BBox.Left()
	})

	merged := []model.TextFragment{fragments[0]}
	for _, frag := range fragments[1:] {
		last := &merged[len(merged)-1]
		if frag.BBox.Left()-last.BBox.Right() <= d.config.MaxCellGap {
			last.Text = joinText(last.Text, frag.Text)
			last.BBox = last.BBox.Union(frag.BBox)
			continue
		}
		merged = append(merged, frag)
	}
	return merged
}

// clusterLines groups lines that are vertically close. Lines separated by
// more than BlockGap start a new block.
func (d *GeometricDetector) clusterLines(lines []textLine) [][]textLine {
	if len(lines) == 0 {
		return nil
	}

	var blocks [][]textLine
	current := []textLine{lines[0]}

	for i := 1; i < len(lines); i++ {
		gap := current[len(current)-1].bbox.Bottom() - lines[i].bbox.Top()
		if gap > d.config.BlockGap {
			blocks = append(blocks, current)
			current = []textLine{lines[i]}
		} else {
			current = append(current, lines[i])
		}
	}

	return append(blocks, current)
}

// candidateRuns returns the maximal runs of consecutive lines that have at
// least MinCols fragments and span at least MinRows lines.
func (d *GeometricDetector) candidateRuns(block []textLine) [][]textLine {
	var runs [][]textLine
	var current []textLine

	flush := func() {
		if len(current) >= d.config.MinRows {
			runs = append(runs, current)
		}
		current = nil
	}

	for _, line := range block {
		if len(line.fragments) >= d.config.MinCols {
			current = append(current, line)
			continue
		}
		flush()
	}
	flush()

	return runs
}

// column is the horizontal extent of one table column.
type column struct {
	left, right float64
}

func (c column) center() float64 { return (c.left + c.right) / 2 }

// columnIntervals merges the horizontal extents of every fragment in the
// run. Each resulting interval is one column.
func (d *GeometricDetector) columnIntervals(run []textLine) []column {
	var spans []column
	for _, line := range run {
		for _, frag := range line.fragments {
			spans = append(spans, column{frag.BBox.Left(), frag.BBox.Right()})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].left < spans[j].left })

	cols := []column{spans[0]}
	for _, s := range spans[1:] {
		last := &cols[len(cols)-1]
		if s.left <= last.right+d.config.AlignmentTolerance {
			last.right = math.Max(last.right, s.right)
			continue
		}
		cols = append(cols, s)
	}
	return cols
}

// detectTableInRun builds a table from a run of lines, scores it and
// rejects it below MinConfidence.
func (d *GeometricDetector) detectTableInRun(run []textLine, rules []model.Line) *Table {
	cols := d.columnIntervals(run)
	if len(cols) < d.config.MinCols {
		return nil
	}

	// Step 1: Assign fragments to cells
	cells := make([][]Cell, len(run))
	for i, line := range run {
		cells[i] = make([]Cell, len(cols))
		for j := range cells[i] {
			cells[i][j] = Cell{RowSpan: 1, ColSpan: 1}
		}
		for _, frag := range line.fragments {
			j := findColumn(frag.BBox, cols)
			cells[i][j].Text = joinText(cells[i][j].Text, frag.Text)
			cells[i][j].BBox = cells[i][j].BBox.Union(frag.BBox)
		}
	}

	// Step 2: Calculate confidence score
	bbox := runBBox(run)
	lineScore := d.calculateLineScore(run, cols, bbox, rules)
	confidence := d.calculateConfidence(run, cols, cells, lineScore)
	if confidence < d.config.MinConfidence {
		return nil
	}

	return &Table{
		Rows:       cells,
		Cols:       len(cols),
		BBox:       bbox,
		Confidence: confidence,
		HasGrid:    lineScore >= 0.5,
		Detector:   d.Name(),
	}
}

// calculateConfidence computes a confidence score (0.0-1.0) for the detected table.
// The score combines grid regularity (30%), alignment quality (30%), ruling
// lines (20%, only when UseLines is set) and cell occupancy (20%).
func (d *GeometricDetector) calculateConfidence(run []textLine, cols []column, cells [][]Cell, lineScore float64) float64 {
	score := 0.0
	maxScore := 0.0

	// Factor 1: Grid regularity (0-0.3)
	score += d.calculateGridRegularity(run, cols) * 0.3
	maxScore += 0.3

	// Factor 2: Alignment quality (0-0.3)
	score += d.calculateAlignmentQuality(run, cols) * 0.3
	maxScore += 0.3

	// Factor 3: Line presence (0-0.2)
	if d.config.UseLines {
		score += lineScore * 0.2
		maxScore += 0.2
	}

	// Factor 4: Cell occupancy (0-0.2)
	score += calculateCellOccupancy(cells) * 0.2
	maxScore += 0.2

	return score / maxScore
}

// calculateGridRegularity measures how regular the row pitch and the column
// widths are. Lower variation results in a higher score.
func (d *GeometricDetector) calculateGridRegularity(run []textLine, cols []column) float64 {
	rowScore := 1.0
	if len(run) > 2 {
		pitches := make([]float64, len(run)-1)
		for i := range pitches {
			pitches[i] = run[i].bbox.Center().Y - run[i+1].bbox.Center().Y
		}
		rowScore = math.Max(0, 1-coefficientOfVariation(pitches))
	}

	colScore := 1.0
	if len(cols) > 1 {
		widths := make([]float64, len(cols))
		for i, c := range cols {
			widths[i] = c.right - c.left
		}
		colScore = math.Max(0, 1-coefficientOfVariation(widths))
	}

	return (rowScore + colScore) / 2
}

// calculateAlignmentQuality measures the fraction of fragments whose left
// edge, right edge or center lines up with their column.
func (d *GeometricDetector) calculateAlignmentQuality(run []textLine, cols []column) float64 {
	total, aligned := 0, 0
	tol := d.config.AlignmentTolerance * 2

	for _, line := range run {
		for _, frag := range line.fragments {
			total++
			c := cols[findColumn(frag.BBox, cols)]
			if math.Abs(frag.BBox.Left()-c.left) < tol ||
				math.Abs(frag.BBox.Right()-c.right) < tol ||
				math.Abs(frag.BBox.Center().X-c.center()) < tol {
				aligned++
			}
		}
	}

	if total == 0 {
		return 0
	}
	return float64(aligned) / float64(total)
}

// calculateLineScore measures the fraction of inner row and column
// boundaries that have a ruling line between them.
func (d *GeometricDetector) calculateLineScore(run []textLine, cols []column, bbox model.BBox, rules []model.Line) float64 {
	if len(rules) == 0 {
		return 0
	}
	tol := d.config.AlignmentTolerance

	hFound := 0
	for i := 0; i+1 < len(run); i++ {
		upper, lower := run[i].bbox.Bottom(), run[i+1].bbox.Top()
		for _, l := range rules {
			y := (l.Start.Y + l.End.Y) / 2
			if l.IsHorizontal(tol) && y <= upper+tol && y >= lower-tol && l.BBox().OverlapX(bbox) > 0 {
				hFound++
				break
			}
		}
	}

	vFound := 0
	for j := 0; j+1 < len(cols); j++ {
		left, right := cols[j].right, cols[j+1].left
		for _, l := range rules {
			x := (l.Start.X + l.End.X) / 2
			lb := l.BBox()
			if l.IsVertical(tol) && x >= left-tol && x <= right+tol &&
				lb.Bottom() <= bbox.Top() && lb.Top() >= bbox.Bottom() {
				vFound++
				break
			}
		}
	}

	hScore := 1.0
	if len(run) > 1 {
		hScore = float64(hFound) / float64(len(run)-1)
	}
	vScore := 1.0
	if len(cols) > 1 {
		vScore = float64(vFound) / float64(len(cols)-1)
	}
	return (hScore + vScore) / 2
}

// calculateCellOccupancy measures the fraction of cells that hold text.
func calculateCellOccupancy(cells [][]Cell) float64 {
	total, filled := 0, 0
	for _, row := range cells {
		for _, c := range row {
			total++
			if c.Text != "" {
				filled++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

// findColumn returns the index of the column overlapping b the most.
func findColumn(b model.BBox, cols []column) int {
	best, bestOverlap := 0, -1.0
	for i, c := range cols {
		overlap := math.Min(b.Right(), c.right) - math.Max(b.Left(), c.left)
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	return best
}

func runBBox(run []textLine) model.BBox {
	var b model.BBox
	for _, line := range run {
		b = b.Union(line.bbox)
	}
	return b
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return strings.TrimRight(a, " ") + " " + strings.TrimLeft(b, " ")
}

// sortTopToBottom orders tables by their top edge, highest first.
func sortTopToBottom(tables []*Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].BBox.Top() > tables[j].BBox.Top()
	})
}

// Utility functions

// mean computes the arithmetic mean of a slice of float64 values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// coefficientOfVariation calculates CV (std dev / mean)
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	v := 0.0
	for _, val := range values {
		diff := val - m
		v += diff * diff
	}
	v /= float64(len(values))
	return math.Sqrt(v) / m
}
