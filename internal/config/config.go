// Package config loads the YAML configuration file of the tabjson command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/tabjson"
	"github.com/tsawler/tabjson/header"
	"github.com/tsawler/tabjson/htmldoc"
	"github.com/tsawler/tabjson/tables"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigInvalid  = errors.New("invalid config")
)

// Config holds the conversion and output settings of the command.
type Config struct {
	Header HeaderConfig `yaml:"header"`
	HTML   HTMLConfig   `yaml:"html"`
	PDF    PDFConfig    `yaml:"pdf"`
	XLSX   XLSXConfig   `yaml:"xlsx"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// HeaderConfig controls how header rows become keys.
type HeaderConfig struct {
	Mode      string `yaml:"mode" validate:"omitempty,oneof=first merge"`
	Separator string `yaml:"separator"`
	Infer     bool   `yaml:"infer"` // Guess headers for HTML tables without <th>/<thead>
}

// HTMLConfig controls table location in HTML input.
type HTMLConfig struct {
	Selector   string `yaml:"selector"`
	Encoding   string `yaml:"encoding"` // Empty = detect from BOM and <meta>
	Navigation string `yaml:"navigation" validate:"omitempty,oneof=none explicit standard"`
}

// PDFConfig controls table detection in PDF input. The detector
// thresholds sit at the same level as pages and detector.
type PDFConfig struct {
	Pages         []int  `yaml:"pages" validate:"dive,min=1"`
	Detector      string `yaml:"detector" validate:"omitempty,oneof=geometric lattice"`
	tables.Config `yaml:",inline"`
}

// XLSXConfig controls worksheet selection.
type XLSXConfig struct {
	Sheets []string `yaml:"sheets" validate:"dive,required"`
}

// OutputConfig controls serialization.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=json yaml"`
	Indent int    `yaml:"indent" validate:"gte=0,lte=16"`
	File   string `yaml:"file"` // Empty = standard output
}

// LogConfig controls diagnostics on standard error.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Header: HeaderConfig{
			Mode:      string(header.ModeFirst),
			Separator: header.DefaultSeparator,
		},
		PDF: PDFConfig{
			Detector: "geometric",
			Config:   tables.DefaultConfig(),
		},
		Output: OutputConfig{
			Format: "json",
			Indent: tabjson.DefaultIndent,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
// Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fmt.Sprintf("%s: must satisfy %s, got %v", fieldPath(fe.Namespace()), constraint(fe), fe.Value())
	}
	return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(msgs, "; "))
}

// fieldPath turns a validator namespace into the YAML path of the field,
// e.g. "Config.pdf.Config.min_rows" becomes "pdf.min_rows".
func fieldPath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	// Inlined detector thresholds are reported under their Go field name.
	return strings.ReplaceAll(rest, ".Config.", ".")
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Options converts the configuration into converter options.
func (c *Config) Options() (tabjson.Options, error) {
	opts := tabjson.DefaultOptions()

	mode, err := header.ParseMode(c.Header.Mode)
	if err != nil {
		return opts, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	nav, err := htmldoc.ParseNavigationExclusion(c.HTML.Navigation)
	if err != nil {
		return opts, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	opts.Header = header.Options{
		Mode:      mode,
		Separator: c.Header.Separator,
		Infer:     c.Header.Infer,
	}
	opts.HTML = htmldoc.Options{
		Selector:   c.HTML.Selector,
		Encoding:   c.HTML.Encoding,
		Navigation: nav,
	}
	opts.PDF.Pages = append([]int(nil), c.PDF.Pages...)
	opts.PDF.Detector = c.PDF.Detector
	opts.PDF.Config = c.PDF.Config
	opts.XLSX.Sheets = append([]string(nil), c.XLSX.Sheets...)
	opts.Indent = c.Output.Indent
	return opts, nil
}
