package query

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Rows is a list of JSON objects to insert.
type Rows []json.RawMessage

// NormalizeRows accepts a single record or a list of records and returns
// them as a list of JSON objects.
func NormalizeRows(values any) (Rows, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal insert values: %w", err)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && list != nil {
		for i, item := range list {
			if !isObject(item) {
				return nil, fmt.Errorf("insert value %d is not an object", i)
			}
		}
		return list, nil
	}

	if !isObject(raw) {
		return nil, fmt.Errorf("insert values must be an object or a list of objects")
	}
	return Rows{raw}, nil
}

// JSON encodes the rows as an array; no rows encode as [].
func (r Rows) JSON() json.RawMessage {
	if len(r) == 0 {
		return json.RawMessage("[]")
	}
	b, _ := json.Marshal([]json.RawMessage(r))
	return b
}

// Columns returns the sorted union of keys across all rows.
func (r Rows) Columns() ([]string, error) {
	seen := make(map[string]struct{})
	for _, row := range r {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(row, &obj); err != nil {
			return nil, fmt.Errorf("decode insert row: %w", err)
		}
		for k := range obj {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, nil
}

func isObject(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(raw, &obj) == nil && obj != nil
}
