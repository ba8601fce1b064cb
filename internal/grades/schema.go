package grades

import "strings"

// NormalizeColumn trims a label and replaces internal spaces with underscores.
func NormalizeColumn(label string) string {
	return strings.ReplaceAll(strings.TrimSpace(label), " ", "_")
}

// NormalizeColumns applies NormalizeColumn to every label, returning a new slice.
func NormalizeColumns(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = NormalizeColumn(l)
	}
	return out
}

// ValidateSchema checks normalized column names against RequiredColumns.
func ValidateSchema(columns []string) error {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// columnIndex maps each column to its first position.
func columnIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}
