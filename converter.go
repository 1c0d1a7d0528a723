package tabjson

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/tsawler/tabjson/format"
	"github.com/tsawler/tabjson/header"
	"github.com/tsawler/tabjson/htmldoc"
	"github.com/tsawler/tabjson/internal/logging"
	"github.com/tsawler/tabjson/model"
	"github.com/tsawler/tabjson/pdfdoc"
	"github.com/tsawler/tabjson/pipeline"
	"github.com/tsawler/tabjson/tables"
	"github.com/tsawler/tabjson/xlsxdoc"
)

// Converter provides a fluent interface for converting the tables of an
// HTML, PDF or XLSX document. Each configuration method returns a new
// Converter, so a configured Converter can be reused and shared.
type Converter struct {
	// Source: a file name, or data read up front
	filename string
	data     []byte
	format   format.Format

	options Options
	logger  *slog.Logger

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Converter with a deep copy of options.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		data:     c.data,
		format:   c.format,
		options:  c.options.clone(),
		logger:   c.logger,
		err:      c.err,
	}
}

// Selector restricts HTML conversion to tables matched by a CSS selector.
func (c *Converter) Selector(selector string) *Converter {
	newConv := c.clone()
	newConv.options.HTML.Selector = selector
	return newConv
}

// Encoding overrides HTML charset detection, e.g. "windows-1252".
func (c *Converter) Encoding(name string) *Converter {
	newConv := c.clone()
	newConv.options.HTML.Encoding = name
	return newConv
}

// Navigation skips HTML tables inside page boilerplate.
func (c *Converter) Navigation(mode htmldoc.NavigationExclusionMode) *Converter {
	newConv := c.clone()
	newConv.options.HTML.Navigation = mode
	return newConv
}

// HeaderMode selects how keys are derived from several header rows.
func (c *Converter) HeaderMode(mode header.Mode) *Converter {
	newConv := c.clone()
	newConv.options.Header.Mode = mode
	return newConv
}

// HeaderSeparator sets the separator joining stacked header texts.
func (c *Converter) HeaderSeparator(sep string) *Converter {
	newConv := c.clone()
	newConv.options.Header.Separator = sep
	return newConv
}

// InferHeaders guesses a header row for HTML tables that carry no header
// markup. Tables from PDF and XLSX sources are always inferred.
func (c *Converter) InferHeaders() *Converter {
	newConv := c.clone()
	newConv.options.Header.Infer = true
	return newConv
}

// Pages selects PDF pages (1-indexed).
func (c *Converter) Pages(pages ...int) *Converter {
	newConv := c.clone()
	for _, p := range pages {
		if p < 1 {
			newConv.err = fmt.Errorf("%w: page %d must be at least 1", ErrInvalidOption, p)
			return newConv
		}
	}
	newConv.options.PDF.Pages = append(newConv.options.PDF.Pages, pages...)
	return newConv
}

// PageRange selects an inclusive range of PDF pages (1-indexed).
func (c *Converter) PageRange(start, end int) *Converter {
	if start > end {
		newConv := c.clone()
		newConv.err = fmt.Errorf("%w: page range %d-%d is empty", ErrInvalidOption, start, end)
		return newConv
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return c.Pages(pages...)
}

// Detector selects the PDF table detector by name ("geometric" or
// "lattice").
func (c *Converter) Detector(name string) *Converter {
	newConv := c.clone()
	newConv.options.PDF.Detector = name
	return newConv
}

// DetectorConfig sets the PDF table detector thresholds.
func (c *Converter) DetectorConfig(config tables.Config) *Converter {
	newConv := c.clone()
	newConv.options.PDF.Config = config
	return newConv
}

// Sheets selects XLSX worksheets by name, in output order.
func (c *Converter) Sheets(names ...string) *Converter {
	newConv := c.clone()
	newConv.options.XLSX.Sheets = append(newConv.options.XLSX.Sheets, names...)
	return newConv
}

// Indent sets the JSON indentation width; zero produces compact output.
func (c *Converter) Indent(spaces int) *Converter {
	newConv := c.clone()
	newConv.options.Indent = spaces
	return newConv
}

// As forces the input format instead of detecting it.
func (c *Converter) As(f format.Format) *Converter {
	newConv := c.clone()
	newConv.format = f
	return newConv
}

// WithOptions replaces every option at once.
func (c *Converter) WithOptions(opts Options) *Converter {
	newConv := c.clone()
	newConv.options = opts.clone()
	return newConv
}

// WithLogger sets the logger receiving per-table debug records and
// warnings.
func (c *Converter) WithLogger(logger *slog.Logger) *Converter {
	newConv := c.clone()
	newConv.logger = logger
	return newConv
}

// Tables converts every located table, in document order.
//
// Example:
//
//	results, warnings, err := tabjson.Open("report.html").HeaderMode(header.ModeMerge).Tables()
func (c *Converter) Tables() ([]*model.Result, []Warning, error) {
	if c.err != nil {
		return nil, nil, c.err
	}

	f, err := c.resolveFormat()
	if err != nil {
		return nil, nil, err
	}

	run := &conversion{header: c.options.Header, logger: c.logger}
	if run.logger == nil {
		run.logger = logging.NewNop()
	}

	var sources []model.SourceTable
	switch f {
	case format.HTML:
		sources, err = c.htmlSources(run)
	case format.PDF:
		sources, err = c.pdfSources(run)
	case format.XLSX:
		sources, err = c.xlsxSources()
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.sourceName())
	}
	if err != nil {
		return nil, run.warnings, classify(err)
	}

	results := make([]*model.Result, 0, len(sources))
	for _, src := range sources {
		results = append(results, run.convert(src))
	}
	return results, run.warnings, nil
}

// JSON converts every located table and encodes the results as a JSON
// array.
//
// Example:
//
//	data, _, err := tabjson.Open("report.html").JSON()
func (c *Converter) JSON() ([]byte, []Warning, error) {
	results, warnings, err := c.Tables()
	if err != nil {
		return nil, warnings, err
	}
	data, err := EncodeJSON(results, c.options.Indent)
	return data, warnings, err
}

// YAML converts every located table and encodes the results as a YAML
// sequence.
func (c *Converter) YAML() ([]byte, []Warning, error) {
	results, warnings, err := c.Tables()
	if err != nil {
		return nil, warnings, err
	}
	data, err := EncodeYAML(results)
	return data, warnings, err
}

// resolveFormat returns the forced or extension-derived format, falling
// back to content detection.
func (c *Converter) resolveFormat() (format.Format, error) {
	if c.filename != "" {
		if _, err := os.Stat(c.filename); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return format.Unknown, fmt.Errorf("%w: %s", ErrInputNotFound, c.filename)
			}
			return format.Unknown, fmt.Errorf("%w: %w", ErrInputNotFound, err)
		}
	}
	if c.format != format.Unknown {
		return c.format, nil
	}
	if c.filename == "" {
		return format.DetectFromBytes(c.data), nil
	}

	file, err := os.Open(c.filename)
	if err != nil {
		return format.Unknown, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return format.Unknown, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	f, err := format.DetectFromReader(file, info.Size())
	if err != nil {
		return format.Unknown, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	return f, nil
}

func (c *Converter) sourceName() string {
	if c.filename != "" {
		return c.filename
	}
	return "input"
}

func (c *Converter) htmlSources(run *conversion) ([]model.SourceTable, error) {
	var (
		r   *htmldoc.Reader
		err error
	)
	if c.filename != "" {
		r, err = htmldoc.Open(c.filename, c.options.HTML)
	} else {
		r, err = htmldoc.OpenReader(bytes.NewReader(c.data), c.options.HTML)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	run.logger.Debug("parsed HTML document", "source", c.sourceName(), "title", r.Title())
	return r.Tables(run.convert)
}

func (c *Converter) pdfSources(run *conversion) ([]model.SourceTable, error) {
	var (
		r   *pdfdoc.Reader
		err error
	)
	if c.filename != "" {
		r, err = pdfdoc.Open(c.filename, c.options.PDF)
	} else {
		r, err = pdfdoc.OpenReader(bytes.NewReader(c.data), int64(len(c.data)), c.options.PDF)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sources, skipped, err := r.Tables()
	for _, s := range skipped {
		run.logger.Warn("skipped page", "page", s.Page, "reason", s.Message)
		run.warnings = append(run.warnings, Warning{
			Code:    WarnSkippedPage,
			Table:   fmt.Sprintf("page %d", s.Page),
			Message: s.Message,
		})
	}
	return sources, err
}

func (c *Converter) xlsxSources() ([]model.SourceTable, error) {
	var (
		r   *xlsxdoc.Reader
		err error
	)
	if c.filename != "" {
		r, err = xlsxdoc.Open(c.filename, c.options.XLSX)
	} else {
		r, err = xlsxdoc.OpenReader(bytes.NewReader(c.data), c.options.XLSX)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.Tables()
}

// classify wraps a source error with the matching sentinel.
func classify(err error) error {
	switch {
	case errors.Is(err, htmldoc.ErrInvalidSelector),
		errors.Is(err, htmldoc.ErrUnknownEncoding),
		errors.Is(err, pdfdoc.ErrPageOutOfRange),
		errors.Is(err, xlsxdoc.ErrSheetNotFound),
		errors.Is(err, tables.ErrUnknownDetector),
		errors.Is(err, tables.ErrInvalidConfig):
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrInputNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
}

// conversion runs the pipeline for the tables of one document and
// collects their warnings.
type conversion struct {
	header   header.Options
	logger   *slog.Logger
	warnings []Warning
}

// convert runs the pipeline on one table. It is also the callback that
// converts nested HTML tables.
func (cv *conversion) convert(src model.SourceTable) *model.Result {
	res, report := pipeline.Run(src, cv.header)

	origin := report.Origin
	if origin == "" {
		origin = "nested table"
	}
	cv.logger.Debug("converted table",
		"origin", origin,
		"rows", report.Rows,
		"width", report.Width,
		"header_rows", report.HeaderRows)

	if report.Clipped > 0 {
		cv.logger.Warn("clipped cell spans", "origin", origin, "cells", report.Clipped)
		cv.warnings = append(cv.warnings, Warning{
			Code:    WarnClippedSpan,
			Table:   origin,
			Message: fmt.Sprintf("%d cell span(s) truncated by overlapping cells", report.Clipped),
		})
	}
	return res
}
