package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabjson/model"
)

func cell(text string) model.SourceCell {
	return model.SourceCell{Value: model.TextValue(text)}
}

func span(text string, rows, cols int) model.SourceCell {
	return model.SourceCell{Value: model.TextValue(text), RowSpan: rows, ColSpan: cols}
}

func table(rows ...[]model.SourceCell) model.SourceTable {
	src := model.SourceTable{}
	for _, cells := range rows {
		src.Rows = append(src.Rows, model.SourceRow{Cells: cells})
	}
	return src
}

func texts(g *model.Grid) [][]string {
	out := make([][]string, g.Height())
	for i := range g.Rows {
		out[i] = g.RowTexts(i)
	}
	return out
}

func TestBuild_NoSpans(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{cell("a"), cell("b"), cell("c")},
		[]model.SourceCell{cell("d"), cell("e"), cell("f")},
	))

	assert.Equal(t, 2, g.Height())
	assert.Equal(t, 3, g.Width)
	assert.Equal(t, 6, g.Origins())
	assert.Zero(t, g.Clipped)
	for _, row := range g.Rows {
		for _, c := range row {
			assert.True(t, c.Origin)
			assert.Equal(t, 1, c.RowSpan)
			assert.Equal(t, 1, c.ColSpan)
		}
	}
}

func TestBuild_TwoByTwoSpan(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{span("X", 2, 2), cell("a")},
		[]model.SourceCell{cell("b")},
	))

	require.Equal(t, 2, g.Height())
	require.Equal(t, 3, g.Width)
	assert.Equal(t, [][]string{{"X", "X", "a"}, {"X", "X", "b"}}, texts(g))

	origins := 0
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if g.Rows[r][c].Origin {
				origins++
			}
		}
	}
	assert.Equal(t, 1, origins)
	assert.True(t, g.Rows[0][0].Origin)
}

func TestBuild_RowSpanSkipsCursor(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{cell("a"), span("b", 2, 1), cell("c")},
		[]model.SourceCell{cell("d"), cell("e")},
	))

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d", "b", "e"}}, texts(g))
	assert.False(t, g.Rows[1][1].Origin)
}

func TestBuild_JaggedRowsArePadded(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{cell("a"), cell("b"), cell("c")},
		[]model.SourceCell{cell("d")},
		nil,
	))

	require.Equal(t, 3, g.Height())
	assert.Equal(t, 3, g.Width)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d", "", ""}, {"", "", ""}}, texts(g))
	assert.False(t, g.Rows[1][1].Origin)
	assert.Equal(t, 1, g.Rows[1][2].ColSpan)
}

func TestBuild_SpanPastLastRowExtendsGrid(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{span("a", 3, 1), cell("b")},
	))

	assert.Equal(t, 3, g.Height())
	assert.Equal(t, [][]string{{"a", "b"}, {"a", ""}, {"a", ""}}, texts(g))
}

func TestBuild_RowSpanPastLastRowIsBounded(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{span("x", 65534, 200)},
	))

	want := 1 + MaxExtensionCells/200
	require.Equal(t, want, g.Height())
	assert.Equal(t, 200, g.Width)
	assert.Equal(t, 1, g.Clipped)
	assert.Equal(t, want, g.Rows[0][0].RowSpan)
	assert.Equal(t, want, g.Rows[want-1][199].RowSpan)
	assert.LessOrEqual(t, g.Height()*g.Width, 1*g.Width+MaxExtensionCells)
}

func TestBuild_ExtensionShrinksWhenLaterRowWidens(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{span("a", 60000, 1)},
		[]model.SourceCell{span("wide", 1, 100)},
	))

	want := 2 + MaxExtensionCells/101
	require.Equal(t, want, g.Height())
	assert.Equal(t, 101, g.Width)
	assert.Equal(t, 1, g.Clipped)
	assert.Equal(t, want, g.Rows[0][0].RowSpan)
	assert.Equal(t, "wide", g.Rows[1][1].Text())
}

func TestBuild_InvalidSpansDefaultToOne(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{span("a", 0, -3), span("b", -1, 0)},
	))

	assert.Equal(t, 1, g.Height())
	assert.Equal(t, 2, g.Width)
	assert.Zero(t, g.Clipped)
}

func TestBuild_CollidingColSpanIsTruncated(t *testing.T) {
	// "b" claims column 1 of the second row; "c" asks for three columns
	// starting at column 0 but can only take one.
	g := Build(table(
		[]model.SourceCell{cell("a"), span("b", 2, 1), cell("x")},
		[]model.SourceCell{span("c", 1, 3)},
	))

	assert.Equal(t, [][]string{{"a", "b", "x"}, {"c", "b", ""}}, texts(g))
	assert.Equal(t, 1, g.Rows[1][0].ColSpan)
	assert.Equal(t, 1, g.Clipped)
}

func TestBuild_CursorSkipsSeveralRowSpans(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{cell("a"), span("b", 3, 1)},
		[]model.SourceCell{span("c", 2, 1)},
		[]model.SourceCell{cell("d")},
	))

	assert.Equal(t, [][]string{{"a", "b", ""}, {"c", "b", ""}, {"c", "b", "d"}}, texts(g))
	assert.Zero(t, g.Clipped)
}

func TestBuild_FirstWriterWins(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{span("top", 3, 1), cell("b")},
		[]model.SourceCell{span("wide", 2, 2)},
	))

	// "wide" starts after the column held by "top".
	assert.Equal(t, "top", g.Rows[1][0].Text())
	assert.Equal(t, "top", g.Rows[2][0].Text())
	assert.Equal(t, "wide", g.Rows[1][1].Text())
	assert.Equal(t, "wide", g.Rows[2][2].Text())
}

func TestBuild_ColSpanTruncatedInLowerRow(t *testing.T) {
	g := Build(table(
		[]model.SourceCell{cell("a"), span("b", 2, 1)},
		[]model.SourceCell{span("c", 1, 1)},
		[]model.SourceCell{span("d", 1, 1)},
	))
	// Row spans are resolved at placement time, so "b" holds rows 0-1.
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "b"}, {"d", ""}}, texts(g))

	g = Build(table(
		[]model.SourceCell{span("a", 1, 2)},
		[]model.SourceCell{span("b", 1, 1), span("c", 2, 1)},
		[]model.SourceCell{span("d", 2, 2)},
	))
	// "d" starts at column 0 of row 2 and stops at column 1, which "c"
	// already holds.
	assert.Equal(t, 1, g.Rows[2][0].ColSpan)
	assert.Equal(t, 2, g.Rows[2][0].RowSpan)
	assert.Equal(t, 1, g.Clipped)
}

func TestBuild_Empty(t *testing.T) {
	g := Build(model.SourceTable{})
	assert.Zero(t, g.Height())
	assert.Zero(t, g.Width)
}

func TestBuild_NestedValueIsReplicated(t *testing.T) {
	inner := &model.Result{Rows: [][]model.Value{{model.TextValue("x")}}}
	g := Build(table(
		[]model.SourceCell{{Value: model.TablesValue(inner), ColSpan: 2}},
	))

	require.Equal(t, 2, g.Width)
	assert.Same(t, inner, g.Rows[0][1].Value.Tables[0])
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, limit, want int
	}{
		{0, 10, 1},
		{-5, 10, 1},
		{1, 10, 1},
		{7, 10, 7},
		{11, 10, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in, tt.limit), "Clamp(%d, %d)", tt.in, tt.limit)
	}
}
