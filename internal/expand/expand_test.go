package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/markdown-cli/internal/model"
)

func testProduct() model.ProductRecord {
	return model.ProductRecord{
		ProductID:     "P-1",
		ProductName:   "Wool Scarf",
		Category:      "Accessories",
		Season:        "Winter",
		Brand:         "Northline",
		OriginalPrice: 100,
		StockLevel:    200,
		StageData: [model.StageCount]model.StageInputs{
			{Markdown: 0.2, Sales: 50},
			{Markdown: 0.4, Sales: 60},
			{Markdown: 0.6, Sales: 40},
			{Markdown: 0.8, Sales: 20},
		},
	}
}

func TestRecordFormula(t *testing.T) {
	rows := Record(testProduct())

	m1 := rows[0]
	assert.Equal(t, model.StageM1, m1.Stage)
	// 100 * (1 - 0.2) * 50
	assert.InDelta(t, 4000.0, m1.Revenue, 1e-9)
	assert.InDelta(t, 0.25, m1.SellThrough, 1e-9)
	assert.Equal(t, "Accessories", m1.Category)
	assert.Equal(t, "Winter", m1.Season)
	assert.Equal(t, "P-1", m1.ProductID)

	m4 := rows[3]
	assert.Equal(t, model.StageM4, m4.Stage)
	// 100 * (1 - 0.8) * 20
	assert.InDelta(t, 400.0, m4.Revenue, 1e-9)
	assert.InDelta(t, 0.1, m4.SellThrough, 1e-9)
}

func TestRecordStageOrder(t *testing.T) {
	rows := Record(testProduct())
	for i, stage := range model.Stages {
		assert.Equal(t, stage, rows[i].Stage)
	}
}

func TestRecordZeroStock(t *testing.T) {
	p := testProduct()
	p.StockLevel = 0

	rows := Record(p)
	for _, m := range rows {
		assert.Equal(t, 0.0, m.SellThrough)
	}
	// Revenue is unaffected by stock.
	assert.InDelta(t, 4000.0, rows[0].Revenue, 1e-9)
}

func TestRecordsCardinality(t *testing.T) {
	tests := []struct {
		name     string
		products int
	}{
		{"empty", 0},
		{"one", 1},
		{"many", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := make([]model.ProductRecord, tt.products)
			for i := range products {
				products[i] = testProduct()
			}
			metrics := Records(products)
			assert.Len(t, metrics, model.StageCount*tt.products)
		})
	}
}

func TestRecordsEmpty(t *testing.T) {
	metrics := Records(nil)
	assert.Empty(t, metrics)
	metrics = Records([]model.ProductRecord{})
	assert.Empty(t, metrics)
}

func TestRecordsKeepsProductOrder(t *testing.T) {
	a := testProduct()
	b := testProduct()
	b.ProductID = "P-2"

	metrics := Records([]model.ProductRecord{a, b})
	require.Len(t, metrics, 8)
	for i := 0; i < 4; i++ {
		assert.Equal(t, "P-1", metrics[i].ProductID)
		assert.Equal(t, "P-2", metrics[i+4].ProductID)
	}
}

func TestRecordsIdempotent(t *testing.T) {
	products := []model.ProductRecord{testProduct()}
	first := Records(products)
	second := Records(products)
	assert.Equal(t, first, second)
}
