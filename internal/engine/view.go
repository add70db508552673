package engine

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/markdown-cli/internal/aggregate"
	"github.com/sells-group/markdown-cli/internal/model"
)

// ErrProductNotFound is returned by ProductStages when the requested
// product is absent from the filtered view.
var ErrProductNotFound = eris.New("engine: product not found in filtered view")

// View is a filtered snapshot of the catalog and its stage metrics. An
// empty view is a normal "no data" result, not an error: every operation
// on it returns empty collections.
type View struct {
	Filter   Filter                `json:"filter"`
	Products []model.ProductRecord `json:"products"`
	Metrics  []model.StageMetric   `json:"metrics"`
}

// Empty reports whether the filter selected no products.
func (v *View) Empty() bool {
	return len(v.Products) == 0
}

// RevenueByCategoryStage sums revenue by (category, stage), dense over
// the stage domain.
func (v *View) RevenueByCategoryStage() map[aggregate.CategoryStage]float64 {
	return aggregate.RevenueByCategoryStage(v.Metrics)
}

// RevenueByCategorySeason sums revenue by (category, season) across all
// stages.
func (v *View) RevenueByCategorySeason() map[aggregate.CategorySeason]float64 {
	return aggregate.RevenueByCategorySeason(v.Metrics)
}

// BestStagePerProduct ranks each product's stages by the chosen metric.
func (v *View) BestStagePerProduct(rankBy aggregate.RankBy) (map[string]model.Stage, error) {
	return aggregate.BestStagePerProduct(v.Metrics, rankBy)
}

// StageTable returns the category × stage revenue pivot, sorted by
// category.
func (v *View) StageTable() []aggregate.StageRow {
	return aggregate.StageTable(v.RevenueByCategoryStage())
}

// SeasonTable returns the category × season revenue pivot.
func (v *View) SeasonTable() aggregate.SeasonTable {
	return aggregate.SeasonPivot(v.RevenueByCategorySeason())
}

// ProductStages returns the four per-stage rows for one product in the
// view, in canonical stage order.
func (v *View) ProductStages(productID string) ([]model.StageMetric, error) {
	var out []model.StageMetric
	for _, m := range v.Metrics {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, eris.Wrapf(ErrProductNotFound, "engine: product %s", productID)
	}
	return out, nil
}

// Summary holds the headline figures for a filtered view.
type Summary struct {
	Products           int         `json:"products"`
	MetricRows         int         `json:"metric_rows"`
	TotalRevenue       float64     `json:"total_revenue"`
	BestStage          model.Stage `json:"best_stage,omitempty"`
	BestStageRevenue   float64     `json:"best_stage_revenue"`
	AvgOptimalDiscount float64     `json:"avg_optimal_discount"`
}

// Summarize computes the KPI row: best overall stage by total revenue,
// revenue at that stage, and the mean optimal-discount label over the
// filtered products. All zero values on an empty view.
func (v *View) Summarize() Summary {
	s := Summary{
		Products:   len(v.Products),
		MetricRows: len(v.Metrics),
	}

	totals := aggregate.RevenueByStage(v.Metrics)
	for _, rev := range totals {
		s.TotalRevenue += rev
	}

	if stage, ok := aggregate.BestStageOverall(v.Metrics); ok {
		s.BestStage = stage
		s.BestStageRevenue = totals[stage]
	}

	if len(v.Products) > 0 {
		var sum float64
		for _, p := range v.Products {
			sum += p.OptimalDiscount
		}
		s.AvgOptimalDiscount = sum / float64(len(v.Products))
	}
	return s
}
