// Package aggregate provides the grouping and ranking reductions over the
// expanded stage-metrics table. All operations are pure and their map
// results are independent of input ordering.
package aggregate

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/markdown-cli/internal/model"
)

// CategoryStage keys a (category, stage) revenue cell.
type CategoryStage struct {
	Category string
	Stage    model.Stage
}

// CategorySeason keys a (category, season) revenue cell.
type CategorySeason struct {
	Category string
	Season   string
}

// RankBy selects the metric used to pick a product's best stage.
type RankBy string

const (
	RankByRevenue     RankBy = "revenue"
	RankBySellThrough RankBy = "sell_through"
)

// ParseRankBy validates a rank-by string, defaulting empty to revenue.
func ParseRankBy(s string) (RankBy, error) {
	switch RankBy(s) {
	case "":
		return RankByRevenue, nil
	case RankByRevenue, RankBySellThrough:
		return RankBy(s), nil
	}
	return "", eris.Errorf("aggregate: unknown rank-by metric %q (want revenue or sell_through)", s)
}

// RevenueByCategoryStage sums revenue grouped by (category, stage). The
// result is dense: every observed category has an entry for all four
// stages, zero when no row contributed, so callers can render a full
// pivot without treating missing keys as a special case.
func RevenueByCategoryStage(metrics []model.StageMetric) map[CategoryStage]float64 {
	out := make(map[CategoryStage]float64)
	for _, m := range metrics {
		out[CategoryStage{m.Category, m.Stage}] += m.Revenue
	}
	// Zero-fill the stage domain for each observed category.
	seen := make(map[string]bool)
	for key := range out {
		seen[key.Category] = true
	}
	for cat := range seen {
		for _, stage := range model.Stages {
			key := CategoryStage{cat, stage}
			if _, ok := out[key]; !ok {
				out[key] = 0
			}
		}
	}
	return out
}

// RevenueByCategorySeason sums revenue grouped by (category, season),
// across all four stages combined.
func RevenueByCategorySeason(metrics []model.StageMetric) map[CategorySeason]float64 {
	out := make(map[CategorySeason]float64)
	for _, m := range metrics {
		out[CategorySeason{m.Category, m.Season}] += m.Revenue
	}
	return out
}

// RevenueByStage sums revenue per stage over the whole metric set, with
// an entry for every stage.
func RevenueByStage(metrics []model.StageMetric) map[model.Stage]float64 {
	out := make(map[model.Stage]float64, model.StageCount)
	for _, stage := range model.Stages {
		out[stage] = 0
	}
	for _, m := range metrics {
		out[m.Stage] += m.Revenue
	}
	return out
}

// BestStagePerProduct picks, for each product, the stage maximizing the
// chosen metric. Exact ties resolve to the lowest-numbered stage. A
// product with no metric rows (possible after filtering) is simply
// absent from the result.
func BestStagePerProduct(metrics []model.StageMetric, rankBy RankBy) (map[string]model.Stage, error) {
	if rankBy != RankByRevenue && rankBy != RankBySellThrough {
		return nil, eris.Errorf("aggregate: unknown rank-by metric %q", rankBy)
	}

	// value per (product, stage); nil slot = no row for that stage.
	byProduct := make(map[string]*[model.StageCount]*float64)
	for _, m := range metrics {
		idx := m.Stage.Index()
		if idx < 0 {
			continue
		}
		slots, ok := byProduct[m.ProductID]
		if !ok {
			slots = &[model.StageCount]*float64{}
			byProduct[m.ProductID] = slots
		}
		v := m.Revenue
		if rankBy == RankBySellThrough {
			v = m.SellThrough
		}
		if slots[idx] == nil || v > *slots[idx] {
			val := v
			slots[idx] = &val
		}
	}

	out := make(map[string]model.Stage, len(byProduct))
	for id, slots := range byProduct {
		if stage, ok := argmaxStage(*slots); ok {
			out[id] = stage
		}
	}
	return out, nil
}

// BestStageOverall returns the stage with the highest total revenue over
// the (already filtered) metric set, ties going to the lowest-numbered
// stage. ok is false for an empty set.
func BestStageOverall(metrics []model.StageMetric) (model.Stage, bool) {
	if len(metrics) == 0 {
		return "", false
	}
	totals := RevenueByStage(metrics)
	var slots [model.StageCount]*float64
	for i, stage := range model.Stages {
		v := totals[stage]
		slots[i] = &v
	}
	return argmaxStage(slots)
}

// argmaxStage scans stage slots in canonical order, keeping the first
// strictly-greatest value so ties land on the lowest stage.
func argmaxStage(slots [model.StageCount]*float64) (model.Stage, bool) {
	best := -1
	for i, v := range slots {
		if v == nil {
			continue
		}
		if best < 0 || *v > *slots[best] {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return model.Stages[best], true
}
