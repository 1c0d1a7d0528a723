package tabjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tsawler/tabjson/model"
	"gopkg.in/yaml.v3"
)

// EncodeJSON encodes results as a JSON array. Records keep their column
// order. indent is the number of spaces per level; zero or less produces
// compact output.
func EncodeJSON(results []*model.Result, indent int) ([]byte, error) {
	if results == nil {
		results = []*model.Result{}
	}

	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = json.MarshalIndent(results, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(results)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return data, nil
}

// EncodeYAML encodes results as a YAML sequence with the same structure
// as the JSON output.
func EncodeYAML(results []*model.Result) ([]byte, error) {
	if results == nil {
		results = []*model.Result{}
	}

	data, err := yaml.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return data, nil
}
