package models

import "strings"

// BatchRow is one data row of an uploaded file.
type BatchRow struct {
	Line  int            // 1-based line in the source file
	Cells map[string]any // keyed by header column
}

// Value returns the cell for column when it is present and not blank.
func (r BatchRow) Value(column string) (any, bool) {
	v, ok := r.Cells[column]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// Batch is a parsed file ready for reconciliation.
type Batch struct {
	Source  string
	Columns []string
	Rows    []BatchRow
}

// MissingColumns returns the entries of required that are not in the header,
// in the order given.
func (b *Batch) MissingColumns(required ...string) []string {
	have := make(map[string]struct{}, len(b.Columns))
	for _, c := range b.Columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
