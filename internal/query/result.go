package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/newsinsight/internal/common"
)

// Result carries either Data (a JSON array, or an object for single-row
// reads) or a structured Error. Data is null whenever Error is set.
type Result struct {
	Data  json.RawMessage  `json:"data"`
	Error *common.APIError `json:"error"`
}

var null = json.RawMessage("null")

// OK marshals v into a successful Result.
func OK(v any) (Result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Result{}, fmt.Errorf("marshal result: %w", err)
	}
	return Result{Data: b}, nil
}

// Failed builds a Result for an expected domain failure.
func Failed(e *common.APIError) Result {
	return Result{Data: null, Error: e}
}

// IsEmpty reports whether Data is absent or JSON null.
func (r Result) IsEmpty() bool {
	trimmed := bytes.TrimSpace(r.Data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, null)
}

// Decode unmarshals an array Result into a slice of T. A structured failure
// is returned as the error.
func Decode[T any](r Result) ([]T, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	if r.IsEmpty() {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(r.Data, &out); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return out, nil
}

// DecodeOne unmarshals a single-row Result. Empty data yields
// common.ErrorNotFound.
func DecodeOne[T any](r Result) (*T, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	if r.IsEmpty() {
		return nil, common.ErrorNotFound
	}
	out := new(T)
	if err := json.Unmarshal(r.Data, out); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return out, nil
}
