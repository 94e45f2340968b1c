package domain

import (
	"encoding/json"
	"fmt"
)

const (
	FieldText      = "text"
	FieldInstances = "instances"
)

// Request is a decoded JSON object. Values keep the shapes produced by encoding/json.
type Request map[string]any

// Text returns the string stored under key. ok is false when the key is absent,
// null or not a string.
func (r Request) Text(key string) (string, bool) {
	raw, present := r[key]
	if !present || raw == nil {
		return "", false
	}
	s, isStr := raw.(string)
	return s, isStr
}

// Instances returns the numeric feature matrix stored under FieldInstances.
// An absent key yields an empty matrix; a present but malformed value fails.
func (r Request) Instances() ([][]float64, error) {
	raw, present := r[FieldInstances]
	if !present || raw == nil {
		return nil, nil
	}

	rows, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T", ErrInvalidInstances, FieldInstances, raw)
	}

	matrix := make([][]float64, 0, len(rows))
	for i, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is %T", ErrInvalidInstances, i, row)
		}
		vec := make([]float64, len(cells))
		for j, cell := range cells {
			switch n := cell.(type) {
			case float64:
				vec[j] = n
			case json.Number:
				f, err := n.Float64()
				if err != nil {
					return nil, fmt.Errorf("%w: row %d col %d: %v", ErrInvalidInstances, i, j, err)
				}
				vec[j] = f
			default:
				return nil, fmt.Errorf("%w: row %d col %d is %T", ErrInvalidInstances, i, j, cell)
			}
		}
		if i > 0 && len(vec) != len(matrix[0]) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInstances, i, len(vec), len(matrix[0]))
		}
		matrix = append(matrix, vec)
	}
	return matrix, nil
}

// Clone returns a shallow copy so transformations never touch the caller's map.
func (r Request) Clone() Request {
	out := make(Request, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
