// Package model defines the catalog and derived stage-metric types shared by
// the loaders, the expansion engine, and the aggregation layer.
package model

// StageInputs holds the raw per-stage figures recorded for a product:
// the fractional markdown applied at the stage and the units sold after it.
type StageInputs struct {
	Markdown float64 `json:"markdown"`
	Sales    float64 `json:"sales"`
}

// ProductRecord is one row of the markdown catalog. Records are loaded once
// per session and never mutated; every derived view is recomputed from them.
type ProductRecord struct {
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	Category          string  `json:"category"`
	Season            string  `json:"season"`
	Brand             string  `json:"brand"`
	OriginalPrice     float64 `json:"original_price"`
	CompetitorPrice   float64 `json:"competitor_price,omitempty"`
	SeasonalityFactor float64 `json:"seasonality_factor,omitempty"`
	StockLevel        int     `json:"stock_level"`
	CustomerRating    float64 `json:"customer_rating,omitempty"`
	ReturnRate        float64 `json:"return_rate,omitempty"`
	PromotionType     string  `json:"promotion_type,omitempty"`
	OptimalDiscount   float64 `json:"optimal_discount,omitempty"`

	// One entry per stage, indexed in canonical M1..M4 order.
	// StockLevel is the denominator for every stage's sell-through;
	// the source records a single stock figure, not per-stage snapshots.
	StageData [StageCount]StageInputs `json:"stage_data"`
}
