// Package pdfdoc reads PDF pages into positioned text and ruling lines and
// hands them to a table detector.
package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/tabjson/model"
	"github.com/tsawler/tabjson/tables"
)

var (
	// ErrNoReadablePages is returned when every selected page failed to load.
	ErrNoReadablePages = errors.New("no readable pages")

	// ErrPageOutOfRange is returned for page numbers outside the document.
	ErrPageOutOfRange = errors.New("page out of range")
)

// Options controls which pages are read and how tables are detected.
type Options struct {
	// Pages lists 1-indexed page numbers; nil means all pages.
	Pages []int

	// Detector names a registered table detector.
	Detector string

	Config tables.Config
}

// DefaultOptions returns options reading every page with the geometric
// detector.
func DefaultOptions() Options {
	return Options{
		Detector: "geometric",
		Config:   tables.DefaultConfig(),
	}
}

// PageWarning describes a page that was skipped.
type PageWarning struct {
	Page    int
	Message string
}

// Reader provides access to the tables of a PDF document.
type Reader struct {
	file *os.File
	pdf  *pdf.Reader
	opts Options
}

// Open opens a PDF file for reading.
func Open(filename string, opts Options) (*Reader, error) {
	f, r, err := pdf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return &Reader{file: f, pdf: r, opts: opts}, nil
}

// OpenReader reads a PDF from r. The caller keeps ownership of r.
func OpenReader(r io.ReaderAt, size int64, opts Options) (*Reader, error) {
	pr, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return &Reader{pdf: pr, opts: opts}, nil
}

// PageCount returns the number of pages in the document.
func (r *Reader) PageCount() int {
	return r.pdf.NumPage()
}

// Close releases the underlying file, if Open created one.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Tables detects the tables on the selected pages, in page order and top
// to bottom within a page. Pages that cannot be interpreted are skipped
// and reported as warnings; if no page can be read, ErrNoReadablePages is
// returned.
func (r *Reader) Tables() ([]model.SourceTable, []PageWarning, error) {
	numbers, err := r.resolvePages()
	if err != nil {
		return nil, nil, err
	}

	name := r.opts.Detector
	if name == "" {
		name = "geometric"
	}
	detector, err := tables.NewDetector(name)
	if err != nil {
		return nil, nil, err
	}
	if err := detector.Configure(r.opts.Config); err != nil {
		return nil, nil, fmt.Errorf("configuring %s detector: %w", name, err)
	}

	var (
		out      []model.SourceTable
		warnings []PageWarning
	)
	for _, n := range numbers {
		page, err := r.Page(n)
		if err != nil {
			warnings = append(warnings, PageWarning{Page: n, Message: err.Error()})
			continue
		}

		found, err := detector.Detect(page)
		if err != nil {
			warnings = append(warnings, PageWarning{Page: n, Message: err.Error()})
			continue
		}
		for i, t := range found {
			out = append(out, t.Source(fmt.Sprintf("page %d table %d", n, i+1)))
		}
	}

	if len(numbers) > 0 && len(warnings) == len(numbers) {
		return nil, warnings, fmt.Errorf("%w: %s", ErrNoReadablePages, warnings[0].Message)
	}
	return out, warnings, nil
}

// Page loads the text fragments and ruling lines of a 1-indexed page.
func (r *Reader) Page(number int) (page *model.Page, err error) {
	if number < 1 || number > r.pdf.NumPage() {
		return nil, fmt.Errorf("%w: %d (1-%d)", ErrPageOutOfRange, number, r.pdf.NumPage())
	}

	p := r.pdf.Page(number)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", number)
	}

	// The content stream interpreter panics on malformed operators.
	defer func() {
		if rec := recover(); rec != nil {
			page = nil
			err = fmt.Errorf("page %d: malformed content stream: %v", number, rec)
		}
	}()

	content := p.Content()
	width, height := mediaBox(p.V)
	return &model.Page{
		Number:   number,
		Width:    width,
		Height:   height,
		RawText:  buildFragments(content.Text),
		RawLines: buildRules(content.Rect),
	}, nil
}

// resolvePages validates the requested pages and returns them sorted and
// deduplicated.
func (r *Reader) resolvePages() ([]int, error) {
	pageCount := r.pdf.NumPage()

	if len(r.opts.Pages) == 0 {
		numbers := make([]int, pageCount)
		for i := range numbers {
			numbers[i] = i + 1
		}
		return numbers, nil
	}

	seen := make(map[int]bool)
	var numbers []int
	for _, p := range r.opts.Pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("%w: %d (1-%d)", ErrPageOutOfRange, p, pageCount)
		}
		if !seen[p] {
			seen[p] = true
			numbers = append(numbers, p)
		}
	}

	sort.Ints(numbers)
	return numbers, nil
}

// US Letter, used when no MediaBox can be found.
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

// mediaBox returns the page size, following inherited MediaBox entries up
// the page tree.
func mediaBox(v pdf.Value) (width, height float64) {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			return box.Index(2).Float64() - box.Index(0).Float64(),
				box.Index(3).Float64() - box.Index(1).Float64()
		}
		v = v.Key("Parent")
	}
	return defaultWidth, defaultHeight
}
