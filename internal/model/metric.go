package model

// StageMetric is one derived row per (product, stage). It is a pure
// projection of a ProductRecord: it carries denormalized category/season
// copies for grouping but owns no data of its own and is recomputed from
// the catalog whenever needed.
type StageMetric struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Season      string  `json:"season"`
	Brand       string  `json:"brand"`
	Stage       Stage   `json:"stage"`
	Markdown    float64 `json:"markdown"`
	Sales       float64 `json:"sales"`
	Revenue     float64 `json:"revenue"`
	SellThrough float64 `json:"sell_through"`
}
