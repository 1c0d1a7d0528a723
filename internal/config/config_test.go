package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/tabjson/header"
	"github.com/tsawler/tabjson/htmldoc"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Header.Mode != "first" {
		t.Errorf("Header.Mode = %q, want first", cfg.Header.Mode)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if cfg.Output.Indent != 4 {
		t.Errorf("Output.Indent = %d, want 4", cfg.Output.Indent)
	}
	if cfg.PDF.Detector != "geometric" {
		t.Errorf("PDF.Detector = %q, want geometric", cfg.PDF.Detector)
	}
	if cfg.PDF.MinRows != 2 {
		t.Errorf("PDF.MinRows = %d, want 2", cfg.PDF.MinRows)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
header:
  mode: merge
  infer: true
html:
  selector: table.data
  navigation: explicit
pdf:
  pages: [1, 3]
  detector: lattice
  min_confidence: 0.7
xlsx:
  sheets: [Summary]
output:
  format: yaml
  indent: 2
log:
  level: debug
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Header.Mode != "merge" || !cfg.Header.Infer {
		t.Errorf("Header = %+v", cfg.Header)
	}
	// Unset keys keep their defaults
	if cfg.Header.Separator != header.DefaultSeparator {
		t.Errorf("Header.Separator = %q, want default", cfg.Header.Separator)
	}
	if cfg.PDF.MinConfidence != 0.7 {
		t.Errorf("PDF.MinConfidence = %v, want 0.7", cfg.PDF.MinConfidence)
	}
	if cfg.PDF.MinRows != 2 {
		t.Errorf("PDF.MinRows = %d, want default 2", cfg.PDF.MinRows)
	}
	if len(cfg.PDF.Pages) != 2 || cfg.PDF.Pages[1] != 3 {
		t.Errorf("PDF.Pages = %v, want [1 3]", cfg.PDF.Pages)
	}
	if cfg.Output.Format != "yaml" || cfg.Output.Indent != 2 {
		t.Errorf("Output = %+v", cfg.Output)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "malformed yaml",
			data:    "header: [",
			wantErr: ErrConfigParse,
		},
		{
			name:    "unknown key",
			data:    "header:\n  style: fancy\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "unknown header mode",
			data:    "header:\n  mode: last\n",
			wantErr: ErrConfigInvalid,
			wantMsg: "header.mode",
		},
		{
			name:    "confidence above one",
			data:    "pdf:\n  min_confidence: 2\n",
			wantErr: ErrConfigInvalid,
			wantMsg: "pdf.min_confidence",
		},
		{
			name:    "page zero",
			data:    "pdf:\n  pages: [0]\n",
			wantErr: ErrConfigInvalid,
			wantMsg: "pdf.pages[0]",
		},
		{
			name:    "unknown output format",
			data:    "output:\n  format: csv\n",
			wantErr: ErrConfigInvalid,
			wantMsg: "output.format",
		},
		{
			name:    "negative indent",
			data:    "output:\n  indent: -1\n",
			wantErr: ErrConfigInvalid,
			wantMsg: "output.indent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabjson.yaml")
	if err := os.WriteFile(path, []byte("output:\n  indent: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Output.Indent != 0 {
		t.Errorf("Output.Indent = %d, want 0", cfg.Output.Indent)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig(missing) error = %v, want ErrConfigNotFound", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("log:\n  level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadConfig(bad)
	if !errors.Is(err, ErrConfigInvalid) || !strings.Contains(err.Error(), bad) {
		t.Errorf("LoadConfig(bad) error = %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header.Mode = "merge"
	cfg.HTML.Navigation = "standard"
	cfg.PDF.Pages = []int{2}
	cfg.PDF.Detector = "lattice"
	cfg.XLSX.Sheets = []string{"Q1"}
	cfg.Output.Indent = 0

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if opts.Header.Mode != header.ModeMerge {
		t.Errorf("Header.Mode = %q, want merge", opts.Header.Mode)
	}
	if opts.HTML.Navigation != htmldoc.NavigationExclusionStandard {
		t.Errorf("HTML.Navigation = %v, want standard", opts.HTML.Navigation)
	}
	if len(opts.PDF.Pages) != 1 || opts.PDF.Pages[0] != 2 || opts.PDF.Detector != "lattice" {
		t.Errorf("PDF = %+v", opts.PDF)
	}
	if len(opts.XLSX.Sheets) != 1 || opts.XLSX.Sheets[0] != "Q1" {
		t.Errorf("XLSX.Sheets = %v", opts.XLSX.Sheets)
	}
	if opts.Indent != 0 {
		t.Errorf("Indent = %d, want 0", opts.Indent)
	}

	// The options own their slices
	cfg.PDF.Pages[0] = 9
	if opts.PDF.Pages[0] != 2 {
		t.Error("Options() shares the pages slice with the config")
	}
}
