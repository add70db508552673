package engine

import (
	"sort"
	"strings"
)

// Filter is the single selection predicate for both the product table and
// the stage-metrics table. An empty set places no constraint on its
// dimension. The engine applies one Filter to one pipeline, so the two
// representations can never be filtered inconsistently.
type Filter struct {
	Categories []string `json:"categories,omitempty"`
	Seasons    []string `json:"seasons,omitempty"`
}

// Matches reports whether a (category, season) pair passes the filter.
func (f Filter) Matches(category, season string) bool {
	return memberOrEmpty(f.Categories, category) && memberOrEmpty(f.Seasons, season)
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return len(f.Categories) == 0 && len(f.Seasons) == 0
}

// ParseFilter builds a Filter from comma-separated category and season
// lists, as passed on CLI flags and API query params. Blank entries are
// dropped.
func ParseFilter(categories, seasons string) Filter {
	return Filter{
		Categories: splitList(categories),
		Seasons:    splitList(seasons),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return out
}

func memberOrEmpty(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
