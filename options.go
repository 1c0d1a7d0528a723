package tabjson

import (
	"github.com/tsawler/tabjson/header"
	"github.com/tsawler/tabjson/htmldoc"
	"github.com/tsawler/tabjson/pdfdoc"
	"github.com/tsawler/tabjson/xlsxdoc"
)

// DefaultIndent is the JSON indentation width used unless overridden.
const DefaultIndent = 4

// Options holds the complete conversion configuration. The Converter
// methods set individual fields; WithOptions replaces all of them.
type Options struct {
	Header header.Options
	HTML   htmldoc.Options
	PDF    pdfdoc.Options
	XLSX   xlsxdoc.Options

	// Indent is the number of spaces per JSON nesting level. Zero or less
	// produces compact output.
	Indent int
}

// DefaultOptions returns the default conversion options.
func DefaultOptions() Options {
	return Options{
		Header: header.DefaultOptions(),
		PDF:    pdfdoc.DefaultOptions(),
		Indent: DefaultIndent,
	}
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	newOpts := o

	// Deep copy slices
	if o.PDF.Pages != nil {
		newOpts.PDF.Pages = append([]int(nil), o.PDF.Pages...)
	}
	if o.XLSX.Sheets != nil {
		newOpts.XLSX.Sheets = append([]string(nil), o.XLSX.Sheets...)
	}

	return newOpts
}
