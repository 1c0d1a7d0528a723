package tabjson

import (
	"fmt"
	"strings"
)

// Warning codes.
const (
	// WarnClippedSpan reports cells whose span was truncated because it
	// would have overwritten an earlier cell.
	WarnClippedSpan = "clipped_span"

	// WarnSkippedPage reports a PDF page that could not be interpreted.
	WarnSkippedPage = "skipped_page"
)

// Warning describes a non-fatal issue found during conversion. The
// output is still produced.
type Warning struct {
	Code string

	// Table is the origin of the affected table, e.g. "table 2" or
	// "page 3". Empty for document-level warnings.
	Table string

	Message string
}

func (w Warning) String() string {
	if w.Table == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Table, w.Code, w.Message)
}

// FormatWarnings joins warnings into one line each.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
