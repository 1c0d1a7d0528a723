// Package tabjson converts the tables of HTML documents, and secondarily
// of PDF and XLSX files, into JSON.
//
// Every table becomes one element of a JSON array: an array of row arrays
// when no header was found, or an array of objects keyed by the header
// otherwise. Row and column spans are expanded into a rectangular grid,
// stacked header rows are merged into one key per column, and tables
// nested in cells appear as nested values.
//
// Basic usage:
//
//	data, warnings, err := tabjson.Open("report.html").JSON()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", tabjson.FormatWarnings(warnings))
//	}
//
// With options:
//
//	results, _, err := tabjson.Open("statement.pdf").
//	    Pages(2, 3).
//	    Detector("lattice").
//	    Tables()
package tabjson

import (
	"fmt"
	"io"

	"github.com/tsawler/tabjson/format"
)

// Open returns a Converter for a file. The format is taken from the file
// extension, or detected from the content when the extension is not
// recognized.
//
// Example:
//
//	data, warnings, err := tabjson.Open("report.html").JSON()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		format:   format.Detect(filename),
		options:  DefaultOptions(),
	}
}

// FromReader reads all of r and returns a Converter for its content. The
// format is detected from the content unless forced with As.
//
// Example:
//
//	data, _, err := tabjson.FromReader(os.Stdin).JSON()
func FromReader(r io.Reader) *Converter {
	data, err := io.ReadAll(r)
	c := FromBytes(data)
	if err != nil {
		c.err = fmt.Errorf("%w: reading input: %w", ErrInputNotFound, err)
	}
	return c
}

// FromBytes returns a Converter for an in-memory document.
func FromBytes(data []byte) *Converter {
	if data == nil {
		data = []byte{}
	}
	return &Converter{
		data:    data,
		options: DefaultOptions(),
	}
}

// Must is a helper that wraps a call returning a value, warnings and an
// error, and panics if the error is non-nil. It is intended for use in
// scripts or tests where error handling would be cumbersome.
//
// Example:
//
//	data := tabjson.Must(tabjson.Open("report.html").JSON())
func Must[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
