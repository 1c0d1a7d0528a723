package htmldoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/tabjson/model"
)

var (
	// ErrInvalidSelector is returned for CSS selectors that do not compile.
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrUnknownEncoding is returned for encoding overrides that name no
	// known character set.
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// NavigationExclusionMode controls whether tables inside navigation and
// page boilerplate are skipped.
type NavigationExclusionMode int

const (
	// NavigationExclusionNone locates every table in the document.
	NavigationExclusionNone NavigationExclusionMode = iota

	// NavigationExclusionExplicit skips tables inside <nav>, <aside> and
	// ARIA navigation regions, and inside <header>/<footer> elements that
	// are direct children of <body> or of a single top-level wrapper.
	NavigationExclusionExplicit

	// NavigationExclusionStandard also skips tables inside elements whose
	// class or id names a navigation pattern (navbar, menu, sidebar, ...).
	NavigationExclusionStandard
)

// ParseNavigationExclusion converts a mode name ("none", "explicit",
// "standard") to a NavigationExclusionMode.
func ParseNavigationExclusion(s string) (NavigationExclusionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NavigationExclusionNone, nil
	case "explicit":
		return NavigationExclusionExplicit, nil
	case "standard":
		return NavigationExclusionStandard, nil
	default:
		return NavigationExclusionNone, fmt.Errorf("unknown navigation exclusion mode %q", s)
	}
}

// DefaultSelector matches every table element.
const DefaultSelector = "table"

// Options controls how an HTML document is decoded and which tables are
// located.
type Options struct {
	// Encoding overrides charset detection, e.g. "windows-1252". Empty
	// means detect from the BOM and <meta> declarations.
	Encoding string

	// Selector is a CSS selector restricting the located tables. Matched
	// elements that are not tables are ignored.
	Selector string

	// Navigation skips tables inside page boilerplate.
	Navigation NavigationExclusionMode
}

// ConvertFunc converts a nested source table into its result. The locator
// calls it for every table found inside a cell, innermost first.
type ConvertFunc func(model.SourceTable) *model.Result
