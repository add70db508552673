package aggregate

import (
	"sort"

	"github.com/sells-group/markdown-cli/internal/model"
)

// StageRow is one rendered pivot row: a category's revenue at each stage
// in canonical order, plus the row total.
type StageRow struct {
	Category string                    `json:"category"`
	Revenue  [model.StageCount]float64 `json:"revenue"`
	Total    float64                   `json:"total"`
}

// StageTable orders the (category, stage) revenue map into pivot rows
// sorted by category, zero cells included.
func StageTable(byCS map[CategoryStage]float64) []StageRow {
	rows := make(map[string]*StageRow)
	for key, rev := range byCS {
		row, ok := rows[key.Category]
		if !ok {
			row = &StageRow{Category: key.Category}
			rows[key.Category] = row
		}
		idx := key.Stage.Index()
		if idx < 0 {
			continue
		}
		row.Revenue[idx] = rev
		row.Total += rev
	}

	out := make([]StageRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// SeasonTable is the season × category pivot: one row per category, one
// column per observed season in sorted order.
type SeasonTable struct {
	Seasons []string    `json:"seasons"`
	Rows    []SeasonRow `json:"rows"`
}

// SeasonRow is one category's revenue per season, aligned with
// SeasonTable.Seasons, plus the row total.
type SeasonRow struct {
	Category string    `json:"category"`
	Revenue  []float64 `json:"revenue"`
	Total    float64   `json:"total"`
}

// SeasonPivot orders the (category, season) revenue map into a dense
// pivot, filling zero for (category, season) pairs with no rows.
func SeasonPivot(byCS map[CategorySeason]float64) SeasonTable {
	catSet := make(map[string]bool)
	seasonSet := make(map[string]bool)
	for key := range byCS {
		catSet[key.Category] = true
		seasonSet[key.Season] = true
	}

	seasons := make([]string, 0, len(seasonSet))
	for s := range seasonSet {
		seasons = append(seasons, s)
	}
	sort.Strings(seasons)

	cats := make([]string, 0, len(catSet))
	for c := range catSet {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	table := SeasonTable{Seasons: seasons}
	for _, cat := range cats {
		row := SeasonRow{Category: cat, Revenue: make([]float64, len(seasons))}
		for i, season := range seasons {
			rev := byCS[CategorySeason{cat, season}]
			row.Revenue[i] = rev
			row.Total += rev
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
