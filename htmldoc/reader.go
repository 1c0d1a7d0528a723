// Package htmldoc locates tables in HTML documents and turns them into
// source tables.
package htmldoc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Reader provides access to the tables of a parsed HTML document.
type Reader struct {
	doc   *html.Node
	title string
	opts  Options
}

// Open opens an HTML file for reading.
func Open(filename string, opts Options) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f, opts)
}

// OpenReader parses HTML from an io.Reader. The input is decoded to UTF-8
// using opts.Encoding when set, otherwise by sniffing the byte order mark
// and <meta> charset declarations.
func OpenReader(r io.Reader, opts Options) (*Reader, error) {
	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{
		doc:  doc,
		opts: opts,
	}
	if t := findElement(doc, "title"); t != nil {
		reader.title = getTextContent(t)
	}

	return reader, nil
}

// decode wraps r in a decoder producing UTF-8. Without an explicit
// encoding, a byte order mark or a charset declaration in the first 1024
// bytes decides; undeclared input is read as UTF-8.
func decode(r io.Reader, name string) (io.Reader, error) {
	if name != "" {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrUnknownEncoding, name, err)
		}
		return transform.NewReader(r, enc.NewDecoder()), nil
	}

	br := bufio.NewReaderSize(r, sniffLen)
	preview, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	enc, detected, certain := charset.DetermineEncoding(preview, "")
	if !certain && detected == "windows-1252" && !declaresCharset(preview) && utf8.Valid(preview) {
		return br, nil
	}
	if enc == encoding.Nop {
		return br, nil
	}
	return transform.NewReader(br, enc.NewDecoder()), nil
}

const sniffLen = 1024

func declaresCharset(preview []byte) bool {
	return bytes.Contains(bytes.ToLower(preview), []byte("charset"))
}

// Title returns the document title, or an empty string.
func (r *Reader) Title() string {
	return r.title
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	// Nothing to close for HTML (no file handles kept)
	return nil
}

// shouldSkipElement returns true if the element's content is not part of
// the rendered text.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed":
		return true
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts the text of a node and its descendants. Nested
// tables contribute nothing.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.TrimSpace(result.String())
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) || n.Data == "table" {
			return
		}
		if n.Data == "br" {
			result.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	// Block elements separate their text from what follows
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
			result.WriteString(" ")
		}
	}
}

// getAttr returns the value of an attribute on a node, or empty string if not found.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
