// Package format identifies the kind of document a converter input holds.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// HTML indicates an HTML document.
	HTML
	// PDF indicates a PDF document.
	PDF
	// XLSX indicates a Microsoft Excel (.xlsx) workbook.
	XLSX
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case HTML:
		return "HTML"
	case PDF:
		return "PDF"
	case XLSX:
		return "XLSX"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case HTML:
		return ".html"
	case PDF:
		return ".pdf"
	case XLSX:
		return ".xlsx"
	default:
		return ""
	}
}

// Detect determines the format from a filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".pdf":
		return PDF
	case ".xlsx":
		return XLSX
	default:
		return Unknown
	}
}

// sniffLen is how much of the input content detection looks at.
const sniffLen = 3072

// DetectFromBytes determines the format from content, for input without a
// usable name such as standard input.
func DetectFromBytes(data []byte) Format {
	f, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}
	return f
}

// DetectFromReader inspects the content to determine the format. ZIP
// archives are opened to tell workbooks apart from other archives.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	head := make([]byte, min(size, sniffLen))
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}

	for m := mimetype.Detect(head[:n]); m != nil; m = m.Parent() {
		switch {
		case m.Is("application/pdf"):
			return PDF, nil
		case m.Is("text/html"), m.Is("application/xhtml+xml"):
			return HTML, nil
		case m.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
			return XLSX, nil
		case m.Is("application/zip"):
			return detectZIPFormat(r, size)
		}
	}
	return Unknown, nil
}

// detectZIPFormat reports XLSX for archives holding a workbook part.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	for _, f := range zr.File {
		if f.Name == "xl/workbook.xml" {
			return XLSX, nil
		}
	}
	return Unknown, nil
}
