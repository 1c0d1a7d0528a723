package model

import "math"

// Page holds the positioned text and ruling lines of one PDF page.
type Page struct {
	Number int     // 1-indexed page number
	Width  float64 // Page width in points
	Height float64 // Page height in points

	RawText  []TextFragment // Text fragments with positions
	RawLines []Line         // Ruling lines from stroked paths and rectangles
}

// TextFragment is a run of text drawn without a gap on one baseline.
type TextFragment struct {
	Text     string
	BBox     BBox
	FontSize float64
	FontName string
}

// Line is a straight ruling segment.
type Line struct {
	Start Point
	End   Point
}

// IsHorizontal reports whether the line runs along the X axis within tol.
func (l Line) IsHorizontal(tol float64) bool {
	return math.Abs(l.Start.Y-l.End.Y) <= tol && math.Abs(l.Start.X-l.End.X) > tol
}

// IsVertical reports whether the line runs along the Y axis within tol.
func (l Line) IsVertical(tol float64) bool {
	return math.Abs(l.Start.X-l.End.X) <= tol && math.Abs(l.Start.Y-l.End.Y) > tol
}

// BBox returns the bounding box of the line.
func (l Line) BBox() BBox {
	return NewBBoxFromPoints(l.Start, l.End)
}
