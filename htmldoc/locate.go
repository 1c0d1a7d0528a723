package htmldoc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/tsawler/tabjson/grid"
	"github.com/tsawler/tabjson/model"
)

// Tables returns every top-level table of the document in document order.
// A table is top-level when no ancestor table is also a candidate; tables
// nested inside cells are converted through convert and stored as the cell
// value.
func (r *Reader) Tables(convert ConvertFunc) ([]model.SourceTable, error) {
	candidates, err := r.candidates()
	if err != nil {
		return nil, err
	}

	isCandidate := make(map[*html.Node]bool, len(candidates))
	for _, n := range candidates {
		isCandidate[n] = true
	}

	ec := newExclusionChecker(r.opts.Navigation, r.doc)

	var tables []model.SourceTable
	for _, n := range candidates {
		if hasCandidateAncestor(n, isCandidate) || insideSkippedElement(n) || ec.excluded(n) {
			continue
		}
		src := parseTable(n, convert)
		src.Origin = tableOrigin(n, len(tables)+1)
		tables = append(tables, src)
	}

	return tables, nil
}

// candidates returns the table elements matched by the configured
// selector, in document order.
func (r *Reader) candidates() ([]*html.Node, error) {
	selector := r.opts.Selector
	if strings.TrimSpace(selector) == "" {
		selector = DefaultSelector
	}

	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}

	doc := goquery.NewDocumentFromNode(r.doc)
	sel := doc.FindMatcher(matcher).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "table"
	})
	return sel.Nodes, nil
}

// hasCandidateAncestor reports whether an ancestor of n is a candidate
// table.
func hasCandidateAncestor(n *html.Node, isCandidate map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if isCandidate[p] {
			return true
		}
	}
	return false
}

// insideSkippedElement reports whether n sits in content that is never
// rendered, such as <template> or <noscript>.
func insideSkippedElement(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && shouldSkipElement(p.Data) {
			return true
		}
	}
	return false
}

func tableOrigin(n *html.Node, index int) string {
	if id := getAttr(n, "id"); id != "" {
		return fmt.Sprintf("table %d (#%s)", index, id)
	}
	return fmt.Sprintf("table %d", index)
}

// parseTable collects the rows of a table element. Rows are the <tr>
// children of the table and of its <thead>, <tbody> and <tfoot> sections,
// in document order.
func parseTable(tableNode *html.Node, convert ConvertFunc) model.SourceTable {
	src := model.SourceTable{Markup: true}

	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead", "tbody", "tfoot":
			head := c.Data == "thead"
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					src.Rows = append(src.Rows, parseTableRow(tr, head, convert))
				}
			}
		case "tr":
			src.Rows = append(src.Rows, parseTableRow(c, false, convert))
		}
	}

	return src
}

// parseTableRow parses the <td> and <th> children of a row.
func parseTableRow(tr *html.Node, head bool, convert ConvertFunc) model.SourceRow {
	row := model.SourceRow{Head: head}

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		row.Cells = append(row.Cells, model.SourceCell{
			Value:   cellValue(c, convert),
			RowSpan: parseSpan(getAttr(c, "rowspan"), grid.MaxRowSpan),
			ColSpan: parseSpan(getAttr(c, "colspan"), grid.MaxColSpan),
			Header:  c.Data == "th",
		})
	}

	return row
}

// cellValue returns the nested tables of a cell when it has any, and its
// normalized text otherwise.
func cellValue(cell *html.Node, convert ConvertFunc) model.Value {
	nested := outermostTables(cell)
	if len(nested) == 0 || convert == nil {
		return model.TextValue(model.NormalizeText(getTextContent(cell)))
	}

	results := make([]*model.Result, 0, len(nested))
	for _, n := range nested {
		src := parseTable(n, convert)
		results = append(results, convert(src))
	}
	return model.TablesValue(results...)
}

// outermostTables returns the tables inside n that are not themselves
// inside another table below n.
func outermostTables(n *html.Node) []*html.Node {
	var tables []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || shouldSkipElement(c.Data) {
			continue
		}
		if c.Data == "table" {
			tables = append(tables, c)
			continue
		}
		tables = append(tables, outermostTables(c)...)
	}
	return tables
}

// parseSpan reads a rowspan or colspan attribute the way browsers do: the
// leading decimal digits after optional whitespace. Missing, non-numeric
// and zero values yield 1; large values are capped at limit.
func parseSpan(val string, limit int) int {
	val = strings.TrimSpace(val)
	n := 0
	for _, r := range val {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > limit {
			return limit
		}
	}
	return grid.Clamp(n, limit)
}
