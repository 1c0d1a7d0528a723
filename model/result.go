package model

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one body row keyed by column header, in column order.
type Record = orderedmap.OrderedMap[string, Value]

// NewRecord creates an empty record.
func NewRecord() *Record {
	return orderedmap.New[string, Value]()
}

// HeaderSpec describes the header of a table. Keys holds one unique key per
// column when Present is true.
type HeaderSpec struct {
	Present bool
	Rows    int
	Keys    []string
}

// Result is the converted form of one table: keyed records when a header is
// present, plain rows otherwise.
type Result struct {
	Header  HeaderSpec
	Records []*Record
	Rows    [][]Value
}

// Len returns the number of records or rows.
func (r *Result) Len() int {
	if r.Header.Present {
		return len(r.Records)
	}
	return len(r.Rows)
}

// Texts returns the rows of a header-less result as plain strings. Nested
// tables are rendered by Value.String.
func (r *Result) Texts() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = v.String()
		}
	}
	return out
}

func (r *Result) encodable() any {
	if r.Header.Present {
		if r.Records == nil {
			return []*Record{}
		}
		return r.Records
	}
	if r.Rows == nil {
		return [][]Value{}
	}
	return r.Rows
}

// MarshalJSON implements json.Marshaler.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.encodable())
}

// MarshalYAML implements yaml.Marshaler.
func (r *Result) MarshalYAML() (interface{}, error) {
	return r.encodable(), nil
}
