package catalog

import (
	"strconv"
	"strings"
)

// requiredColumns must all be present in an input dataset. Matching is
// case-insensitive and treats spaces and dashes as underscores, since
// observed exports differ in letter case and separator.
var requiredColumns = []string{
	"product_id",
	"product_name",
	"category",
	"season",
	"brand",
	"original_price",
	"stock_level",
	"markdown_1", "markdown_2", "markdown_3", "markdown_4",
	"sales_after_1", "sales_after_2", "sales_after_3", "sales_after_4",
}

// normalizeCol canonicalizes a header cell for lookup.
func normalizeCol(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// mapColumns builds a normalized header name -> column index lookup.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[normalizeCol(col)] = i
	}
	return m
}

// missingColumns returns the required columns absent from the header map.
func missingColumns(colIdx map[string]int) []string {
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// getCol gets a column value by normalized name, returning "" if absent.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// parseFloatOr parses a float, returning def for blank or malformed cells.
func parseFloatOr(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// parseIntOr parses an int, accepting float-formatted cells like "200.0".
func parseIntOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}
