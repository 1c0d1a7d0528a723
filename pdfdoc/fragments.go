package pdfdoc

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/tabjson/model"
)

// Glyphs drawn with fonts lacking a /Widths array report zero width and
// do not advance. These factors estimate their extent from the font size.
const (
	estimatedGlyphWidth = 0.5
	knownWidthGap       = 0.3
	unknownWidthGap     = 1.0
	descent             = 0.2
	thinRule            = 2.0
)

// buildFragments merges the per-glyph output of the content stream into
// text fragments. A fragment ends at an explicit line break, a change of
// baseline, a backwards jump, or a horizontal gap wider than a space.
func buildFragments(glyphs []pdf.Text) []model.TextFragment {
	var (
		out []model.TextFragment
		run []pdf.Text
	)
	flush := func() {
		if frag, ok := fragmentOf(run); ok {
			out = append(out, frag)
		}
		run = run[:0]
	}

	for _, g := range glyphs {
		if g.S == "\n" || g.S == "\r" {
			flush()
			continue
		}
		if len(run) > 0 && breaksRun(run, g) {
			flush()
		}
		run = append(run, g)
	}
	flush()

	return out
}

// breaksRun reports whether g starts a new fragment after run.
func breaksRun(run []pdf.Text, g pdf.Text) bool {
	prev := run[len(run)-1]
	size := math.Max(prev.FontSize, 1)

	if math.Abs(g.Y-prev.Y) > math.Max(0.5, descent*size) {
		return true
	}
	if g.X < prev.X-0.5 {
		return true
	}

	limit := knownWidthGap * size
	if prev.W == 0 {
		limit = unknownWidthGap * size
	}
	return g.X-runRight(run) > limit
}

// runRight returns the right edge of a run of glyphs.
func runRight(run []pdf.Text) float64 {
	right := math.Inf(-1)
	widthless := 0
	for _, g := range run {
		right = math.Max(right, g.X+g.W)
		if g.W == 0 {
			widthless++
		}
	}
	if widthless > 0 {
		// Widthless glyphs all sit at the last pen position.
		last := run[len(run)-1]
		right = math.Max(right, last.X+float64(widthless)*estimatedGlyphWidth*last.FontSize)
	}
	return right
}

func fragmentOf(run []pdf.Text) (model.TextFragment, bool) {
	if len(run) == 0 {
		return model.TextFragment{}, false
	}

	var b strings.Builder
	size := 0.0
	for _, g := range run {
		b.WriteString(g.S)
		size = math.Max(size, g.FontSize)
	}
	text := strings.TrimSpace(b.String())
	if text == "" || !utf8.ValidString(text) {
		return model.TextFragment{}, false
	}

	first := run[0]
	return model.TextFragment{
		Text: text,
		BBox: model.BBox{
			X:      first.X,
			Y:      first.Y - descent*size,
			Width:  runRight(run) - first.X,
			Height: size,
		},
		FontSize: size,
		FontName: first.Font,
	}, true
}

// buildRules turns drawn rectangles into ruling lines. Thin rectangles are
// a single rule; larger ones contribute their four edges.
func buildRules(rects []pdf.Rect) []model.Line {
	var lines []model.Line
	for _, r := range rects {
		minX, maxX := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
		minY, maxY := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)
		w, h := maxX-minX, maxY-minY

		switch {
		case w <= thinRule && h <= thinRule:
			continue
		case h <= thinRule:
			y := (minY + maxY) / 2
			lines = append(lines, line(minX, y, maxX, y))
		case w <= thinRule:
			x := (minX + maxX) / 2
			lines = append(lines, line(x, minY, x, maxY))
		default:
			lines = append(lines,
				line(minX, maxY, maxX, maxY),
				line(minX, minY, maxX, minY),
				line(minX, minY, minX, maxY),
				line(maxX, minY, maxX, maxY),
			)
		}
	}
	return lines
}

func line(x1, y1, x2, y2 float64) model.Line {
	return model.Line{Start: model.Point{X: x1, Y: y1}, End: model.Point{X: x2, Y: y2}}
}
