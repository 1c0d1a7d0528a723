// Package header decides which leading rows of a grid form its header and
// derives one unique key per column from them.
package header

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tsawler/tabjson/model"
)

// Mode selects how keys are derived from several header rows.
type Mode string

const (
	// ModeFirst takes keys from the first header row only. The remaining
	// header rows are consumed and not emitted as records.
	ModeFirst Mode = "first"

	// ModeMerge joins the distinct texts of every header row per column.
	ModeMerge Mode = "merge"
)

// DefaultSeparator joins stacked header texts in ModeMerge.
const DefaultSeparator = " - "

// ParseMode converts a mode name to a Mode. The empty string selects
// ModeFirst.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFirst:
		return ModeFirst, nil
	case ModeMerge:
		return ModeMerge, nil
	default:
		return "", fmt.Errorf("unknown header mode %q", s)
	}
}

// Options controls header resolution.
type Options struct {
	// Mode defaults to ModeFirst; only ModeMerge merges stacked rows.
	Mode      Mode
	Separator string

	// Infer applies LooksLikeHeader to sources that have header markup but
	// did not use it.
	Infer bool
}

// DefaultOptions returns the default header options.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeFirst,
		Separator: DefaultSeparator,
	}
}

// Signal is the structural header information a locator found in the
// source.
type Signal struct {
	// Rows is the number of leading rows marked as header rows.
	Rows int

	// Markup reports whether the source can mark header rows at all.
	Markup bool
}

// SignalOf extracts the header signal of a source table.
func SignalOf(src model.SourceTable) Signal {
	return Signal{Rows: src.HeaderSignal(), Markup: src.Markup}
}

// Resolve produces the header of g. An explicit signal wins; without one,
// the first row is a header when LooksLikeHeader accepts it and either the
// source has no header markup or opts.Infer is set.
func Resolve(g *model.Grid, sig Signal, opts Options) model.HeaderSpec {
	n := sig.Rows
	if n == 0 && g.Height() > 0 && (!sig.Markup || opts.Infer) && LooksLikeHeader(g.RowTexts(0)) {
		n = 1
	}
	if n > g.Height() {
		n = g.Height()
	}
	if n == 0 || g.Width == 0 {
		return model.HeaderSpec{Keys: []string{}}
	}

	var keys []string
	if n == 1 || opts.Mode != ModeMerge {
		keys = g.RowTexts(0)
	} else {
		sep := opts.Separator
		if sep == "" {
			sep = DefaultSeparator
		}
		keys = MergeKeys(g.Rows[:n], sep)
	}

	return model.HeaderSpec{
		Present: true,
		Rows:    n,
		Keys:    Disambiguate(keys),
	}
}

// LooksLikeHeader reports whether a row of cell texts can serve as keys:
// the row is not empty, every text is non-empty and no text repeats.
func LooksLikeHeader(texts []string) bool {
	if len(texts) == 0 {
		return false
	}
	seen := make(map[string]bool, len(texts))
	for _, t := range texts {
		if t == "" || seen[t] {
			return false
		}
		seen[t] = true
	}
	return true
}

// MergeKeys builds one composite key per column from stacked header rows.
// Each key joins the non-empty texts of the column top to bottom; a text
// already used for that column is skipped.
func MergeKeys(rows [][]model.Cell, sep string) []string {
	if len(rows) == 0 {
		return nil
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	keys := make([]string, width)
	for c := 0; c < width; c++ {
		var parts []string
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			text := row[c].Value.Text
			if text == "" || slices.Contains(parts, text) {
				continue
			}
			parts = append(parts, text)
		}
		keys[c] = strings.Join(parts, sep)
	}
	return keys
}

// Disambiguate makes keys unique. Scanning left to right, a key that was
// already assigned gets the first unused suffix _1, _2, ...; the first
// occurrence keeps the bare key.
func Disambiguate(keys []string) []string {
	out := make([]string, len(keys))
	used := make(map[string]bool, len(keys))

	for i, k := range keys {
		key := k
		for n := 1; used[key]; n++ {
			key = k + "_" + strconv.Itoa(n)
		}
		used[key] = true
		out[i] = key
	}
	return out
}
