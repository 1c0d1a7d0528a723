package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabjson"
	"github.com/tsawler/tabjson/format"
	"github.com/tsawler/tabjson/internal/config"
	"github.com/tsawler/tabjson/internal/logging"
)

// Sentinel errors for the command line.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrWriteOutput = errors.New("failed to write output")
)

// flags holds the raw command line values. Only flags that were set
// override the configuration file.
type flags struct {
	configPath string
	input      string

	selector   string
	encoding   string
	navigation string

	headerMode      string
	headerSeparator string
	inferHeaders    bool

	pages    string
	detector string
	sheets   []string

	format   string
	indent   int
	output   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "tabjson [file]",
		Short: "Convert the tables of a document to JSON",
		Long: `tabjson extracts every table of an HTML, PDF or XLSX document and writes
them as a JSON array: one element per table, holding either row arrays or
objects keyed by the table header.

Reads standard input when no file or "-" is given.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("%w: accepts at most one file, received %d", ErrUsage, len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVar(&f.input, "as", "", "input format: html, pdf or xlsx (default: detect)")

	fs.StringVarP(&f.selector, "selector", "s", "", "CSS selector restricting HTML tables")
	fs.StringVar(&f.encoding, "encoding", "", "HTML character encoding (default: detect)")
	fs.StringVar(&f.navigation, "navigation", "", "skip HTML tables in page boilerplate: none, explicit or standard")

	fs.StringVar(&f.headerMode, "header-mode", "", "key derivation for stacked headers: first or merge")
	fs.StringVar(&f.headerSeparator, "header-separator", "", "separator joining stacked header texts")
	fs.BoolVar(&f.inferHeaders, "infer-headers", false, "guess a header row for HTML tables without header markup")

	fs.StringVarP(&f.pages, "pages", "p", "", "PDF pages, e.g. 1,3-5 (default: all)")
	fs.StringVar(&f.detector, "detector", "", "PDF table detector: geometric or lattice")
	fs.StringSliceVar(&f.sheets, "sheet", nil, "XLSX worksheet to convert (repeatable, default: all)")

	fs.StringVarP(&f.format, "format", "f", "", "output format: json or yaml")
	fs.IntVar(&f.indent, "indent", tabjson.DefaultIndent, "JSON indentation width, 0 for compact output")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: standard output)")
	fs.StringVar(&f.logLevel, "log-level", "", "diagnostics level: debug, info, warn or error")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// run converts the input named by args and writes the encoded tables.
func run(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	logger := logging.New(level, cmd.ErrOrStderr())

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	forced, err := parseInputFormat(f.input)
	if err != nil {
		return err
	}

	var conv *tabjson.Converter
	if len(args) == 0 || args[0] == "-" {
		conv = tabjson.FromReader(cmd.InOrStdin())
	} else {
		conv = tabjson.Open(args[0])
	}
	conv = conv.WithOptions(opts).WithLogger(logger)
	if forced != format.Unknown {
		conv = conv.As(forced)
	}

	var data []byte
	if cfg.Output.Format == "yaml" {
		data, _, err = conv.YAML()
	} else {
		data, _, err = conv.JSON()
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	if cfg.Output.File == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}
	if err := os.WriteFile(cfg.Output.File, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	logger.Debug("wrote output", "file", cfg.Output.File, "bytes", len(data))
	return nil
}

// resolveConfig loads the configuration file, if any, and applies the
// flags that were set on top of it.
func resolveConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("selector") {
		cfg.HTML.Selector = f.selector
	}
	if changed("encoding") {
		cfg.HTML.Encoding = f.encoding
	}
	if changed("navigation") {
		cfg.HTML.Navigation = f.navigation
	}
	if changed("header-mode") {
		cfg.Header.Mode = f.headerMode
	}
	if changed("header-separator") {
		cfg.Header.Separator = f.headerSeparator
	}
	if changed("infer-headers") {
		cfg.Header.Infer = f.inferHeaders
	}
	if changed("pages") {
		pages, err := parsePages(f.pages)
		if err != nil {
			return nil, err
		}
		cfg.PDF.Pages = pages
	}
	if changed("detector") {
		cfg.PDF.Detector = f.detector
	}
	if changed("sheet") {
		cfg.XLSX.Sheets = f.sheets
	}
	if changed("format") {
		cfg.Output.Format = strings.ToLower(f.format)
	}
	if changed("indent") {
		cfg.Output.Indent = f.indent
	}
	if changed("output") {
		cfg.Output.File = f.output
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parsePages parses a page list such as "1,3-5" into page numbers.
func parsePages(s string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 {
			return nil, fmt.Errorf("%w: invalid page %q", ErrUsage, part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("%w: invalid page range %q", ErrUsage, part)
			}
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages in %q", ErrUsage, s)
	}
	return pages, nil
}

// parseInputFormat converts the --as value to a format.
func parseInputFormat(s string) (format.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return format.Unknown, nil
	case "html", "htm":
		return format.HTML, nil
	case "pdf":
		return format.PDF, nil
	case "xlsx":
		return format.XLSX, nil
	default:
		return format.Unknown, fmt.Errorf("%w: unknown input format %q", ErrUsage, s)
	}
}
