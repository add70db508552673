// Package expand turns wide per-product catalog rows into the normalized
// per-stage metrics table that every aggregation consumes.
package expand

import (
	"github.com/sells-group/markdown-cli/internal/model"
)

// Record derives the four stage-metric rows for one product, in canonical
// M1..M4 order.
//
// Per stage i:
//
//	price_after  = original_price * (1 - markdown_i)
//	revenue      = price_after * sales_after_i
//	sell_through = sales_after_i / stock_level (0.0 when stock_level == 0)
//
// A zero stock level is defined behavior, not an error: the source records
// one stock figure per product and reuses it as the denominator at every
// stage, and products with no stock simply sell through nothing.
func Record(p model.ProductRecord) [model.StageCount]model.StageMetric {
	var out [model.StageCount]model.StageMetric
	for i, sd := range p.StageData {
		priceAfter := p.OriginalPrice * (1 - sd.Markdown)

		sellThrough := 0.0
		if p.StockLevel > 0 {
			sellThrough = sd.Sales / float64(p.StockLevel)
		}

		out[i] = model.StageMetric{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Category:    p.Category,
			Season:      p.Season,
			Brand:       p.Brand,
			Stage:       model.Stages[i],
			Markdown:    sd.Markdown,
			Sales:       sd.Sales,
			Revenue:     priceAfter * sd.Sales,
			SellThrough: sellThrough,
		}
	}
	return out
}

// Records expands a catalog slice into exactly 4*len(products) metric
// rows, keeping input order with the four stages of each product
// consecutive. Pure: same input, same output, no shared state.
func Records(products []model.ProductRecord) []model.StageMetric {
	metrics := make([]model.StageMetric, 0, len(products)*model.StageCount)
	for _, p := range products {
		rows := Record(p)
		metrics = append(metrics, rows[:]...)
	}
	return metrics
}
