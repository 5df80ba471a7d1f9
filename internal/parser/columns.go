package parser

import "strings"

// normalizeHeader lower-cases a header cell and strips everything that is
// not a letter or digit, so "Insulin Delivered (U)" and "insulin_delivered"
// normalize to the same token.
func normalizeHeader(cell string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(cell) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// findColumn resolves one semantic column against a header row. Aliases are
// tried in order; the first header cell that contains an alias, or is
// contained by it, wins. Returns -1 when no cell matches.
func findColumn(header []string, aliases []string) int {
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = normalizeHeader(cell)
	}

	for _, alias := range aliases {
		for i, cell := range normalized {
			if cell == "" {
				continue
			}
			if strings.Contains(cell, alias) || strings.Contains(alias, cell) {
				return i
			}
		}
	}
	return -1
}

// splitRow splits one CSV line on commas, honoring double quotes: a quote
// toggles the in-quotes flag, and commas inside quotes do not split fields.
// Surrounding quotes and whitespace are trimmed from each field.
func splitRow(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}
