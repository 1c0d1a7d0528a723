package tables

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/tabjson/model"
)

var (
	// ErrUnknownDetector is returned for detector names not in the registry.
	ErrUnknownDetector = errors.New("unknown table detector")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid detector configuration")
)

// Detector is the interface for table detection algorithms
type Detector interface {
	// Detect finds tables in a page, ordered top to bottom
	Detect(page *model.Page) ([]*Table, error)

	// Name returns the detector name
	Name() string

	// Configure sets detector parameters
	Configure(config Config) error
}

// Config holds detector configuration
type Config struct {
	// Minimum rows for a valid table
	MinRows int `yaml:"min_rows" validate:"min=1"`

	// Minimum columns for a valid table
	MinCols int `yaml:"min_cols" validate:"min=1"`

	// Minimum confidence threshold (0-1)
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`

	// Whether ruling lines contribute to geometric confidence
	UseLines bool `yaml:"use_lines"`

	// Maximum gap between text fragments on one line to consider them in
	// the same cell (points)
	MaxCellGap float64 `yaml:"max_cell_gap" validate:"gte=0"`

	// Tolerance for row/column alignment (points)
	AlignmentTolerance float64 `yaml:"alignment_tolerance" validate:"gt=0"`

	// Vertical gap that separates two text blocks (points)
	BlockGap float64 `yaml:"block_gap" validate:"gt=0"`

	// Minimum ruling line length considered by the lattice detector (points)
	MinLineLength float64 `yaml:"min_line_length" validate:"gte=0"`
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		MinConfidence:      0.5,
		UseLines:           true,
		MaxCellGap:         5.0,
		AlignmentTolerance: 2.0,
		BlockGap:           50.0,
		MinLineLength:      10.0,
	}
}

// Validate checks the configuration for values no detector can work with.
func (c Config) Validate() error {
	switch {
	case c.MinRows < 1:
		return fmt.Errorf("%w: min rows must be at least 1, got %d", ErrInvalidConfig, c.MinRows)
	case c.MinCols < 1:
		return fmt.Errorf("%w: min cols must be at least 1, got %d", ErrInvalidConfig, c.MinCols)
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("%w: min confidence must be within [0, 1], got %g", ErrInvalidConfig, c.MinConfidence)
	case c.AlignmentTolerance <= 0:
		return fmt.Errorf("%w: alignment tolerance must be positive, got %g", ErrInvalidConfig, c.AlignmentTolerance)
	case c.BlockGap <= 0:
		return fmt.Errorf("%w: block gap must be positive, got %g", ErrInvalidConfig, c.BlockGap)
	case c.MaxCellGap < 0 || c.MinLineLength < 0:
		return fmt.Errorf("%w: gaps and lengths must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Cell is one declared cell of a detected table. Positions covered by a
// merged cell are not listed in Table.Rows.
type Cell struct {
	Text    string
	BBox    model.BBox
	RowSpan int
	ColSpan int
}

// Table is a table region found on a page.
type Table struct {
	Rows       [][]Cell
	Cols       int
	BBox       model.BBox
	Confidence float64
	HasGrid    bool
	Detector   string
}

// RowCount returns the number of rows in the table
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the table
func (t *Table) ColCount() int {
	return t.Cols
}

// Texts returns the cell texts row by row.
func (t *Table) Texts() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.Text
		}
	}
	return out
}

// Source converts the table into the source table consumed by the
// conversion pipeline. PDF tables carry no header markup.
func (t *Table) Source(origin string) model.SourceTable {
	src := model.SourceTable{Origin: origin}
	for _, row := range t.Rows {
		sr := model.SourceRow{Cells: make([]model.SourceCell, len(row))}
		for j, c := range row {
			sr.Cells[j] = model.SourceCell{
				Value:   model.TextValue(model.NormalizeText(c.Text)),
				RowSpan: c.RowSpan,
				ColSpan: c.ColSpan,
			}
		}
		src.Rows = append(src.Rows, sr)
	}
	return src
}

// Factory creates a detector with default configuration.
type Factory func() Detector

// DetectorRegistry holds registered detector factories
type DetectorRegistry struct {
	factories map[string]Factory
}

// NewRegistry creates a new detector registry
func NewRegistry() *DetectorRegistry {
	return &DetectorRegistry{
		factories: make(map[string]Factory),
	}
}

// Register registers a detector factory under name
func (r *DetectorRegistry) Register(name string, factory Factory) {
	r.factories[strings.ToLower(name)] = factory
}

// New creates a fresh detector by name
func (r *DetectorRegistry) New(name string) (Detector, error) {
	factory, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownDetector, name, strings.Join(r.List(), ", "))
	}
	return factory(), nil
}

// List returns all registered detector names, sorted
func (r *DetectorRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry
var globalRegistry = NewRegistry()

// RegisterDetector registers a detector factory globally
func RegisterDetector(name string, factory Factory) {
	globalRegistry.Register(name, factory)
}

// NewDetector creates a detector from the global registry
func NewDetector(name string) (Detector, error) {
	return globalRegistry.New(name)
}

// ListDetectors returns all registered detector names
func ListDetectors() []string {
	return globalRegistry.List()
}

func init() {
	RegisterDetector("geometric", func() Detector { return NewGeometricDetector() })
	RegisterDetector("lattice", func() Detector { return NewLatticeDetector() })
}
