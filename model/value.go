package model

import "encoding/json"

// Value is the content of one logical grid position: either text or the
// converted form of the tables nested inside the source cell.
type Value struct {
	Text   string
	Tables []*Result
}

// TextValue returns a text value.
func TextValue(s string) Value {
	return Value{Text: s}
}

// TablesValue returns a value holding nested tables in document order.
func TablesValue(tables ...*Result) Value {
	return Value{Tables: tables}
}

// IsTable reports whether the value holds at least one nested table.
func (v Value) IsTable() bool {
	return len(v.Tables) > 0
}

// IsEmpty reports whether the value is empty text with no nested tables.
func (v Value) IsEmpty() bool {
	return v.Text == "" && len(v.Tables) == 0
}

// String returns the text of the value, or a placeholder for nested tables.
func (v Value) String() string {
	if v.IsTable() {
		return "[table]"
	}
	return v.Text
}

func (v Value) encodable() any {
	switch len(v.Tables) {
	case 0:
		return v.Text
	case 1:
		return v.Tables[0]
	default:
		return v.Tables
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.encodable())
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.encodable(), nil
}
