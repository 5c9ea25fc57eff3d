// executor/record.go
package executor

import "strings"

// Record is one loosely-typed row of named scalar values as returned by a
// backend operation. Column access is case-insensitive.
type Record map[string]any

// Get returns the value for a column, matching the name case-insensitively.
func (r Record) Get(col string) (any, bool) {
	if v, ok := r[col]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, col) {
			return v, true
		}
	}
	return nil, false
}

// Text returns a column as a string, or "" when absent or not a string.
func (r Record) Text(col string) string {
	v, ok := r.Get(col)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int returns a column as an int64 when it carries any numeric shape the
// drivers and JSON decoding produce.
func (r Record) Int(col string) (int64, bool) {
	v, ok := r.Get(col)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	}
	return 0, false
}

// Result is the raw outcome of one backend call: an ordered sequence of
// records plus the affected-row count the backend reported.
type Result struct {
	Columns  []string
	Records  []Record
	Affected int64
}
