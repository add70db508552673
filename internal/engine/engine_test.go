package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/markdown-cli/internal/catalog"
	"github.com/sells-group/markdown-cli/internal/expand"
	"github.com/sells-group/markdown-cli/internal/model"
)

func product(id, category, season string, price float64, stock int) model.ProductRecord {
	return model.ProductRecord{
		ProductID:       id,
		ProductName:     "Item " + id,
		Category:        category,
		Season:          season,
		Brand:           "House",
		OriginalPrice:   price,
		StockLevel:      stock,
		OptimalDiscount: 0.2,
		StageData: [model.StageCount]model.StageInputs{
			{Markdown: 0.1, Sales: 10},
			{Markdown: 0.3, Sales: 20},
			{Markdown: 0.5, Sales: 15},
			{Markdown: 0.7, Sales: 5},
		},
	}
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]model.ProductRecord{
		product("P-1", "Skincare", "Winter", 100, 200),
		product("P-2", "Skincare", "Summer", 50, 100),
		product("P-3", "Footwear", "Winter", 180, 80),
		product("P-4", "Denim", "Fall", 70, 120),
	})
}

func TestViewUnfiltered(t *testing.T) {
	eng := New(testCatalog())
	view := eng.View(Filter{})

	assert.Len(t, view.Products, 4)
	assert.Len(t, view.Metrics, 16)
	assert.False(t, view.Empty())
}

func TestFilterExpandCommute(t *testing.T) {
	full := testCatalog()
	f := Filter{Categories: []string{"Skincare"}}

	// Filter the catalog first, then expand.
	var filtered []model.ProductRecord
	for _, p := range full.Products() {
		if f.Matches(p.Category, p.Season) {
			filtered = append(filtered, p)
		}
	}
	want := expand.Records(filtered)

	// Expand the full catalog, then take the filtered view.
	got := New(full).View(f).Metrics

	assert.Equal(t, want, got)
}

func TestViewFilterAppliesToBothRepresentations(t *testing.T) {
	eng := New(testCatalog())
	view := eng.View(Filter{Categories: []string{"Skincare"}, Seasons: []string{"Winter"}})

	require.Len(t, view.Products, 1)
	assert.Equal(t, "P-1", view.Products[0].ProductID)

	require.Len(t, view.Metrics, 4)
	for _, m := range view.Metrics {
		assert.Equal(t, "P-1", m.ProductID)
		assert.Equal(t, "Skincare", m.Category)
		assert.Equal(t, "Winter", m.Season)
	}
}

func TestViewEmptyResultIsNotError(t *testing.T) {
	eng := New(testCatalog())
	view := eng.View(Filter{Categories: []string{"Electronics"}})

	assert.True(t, view.Empty())
	assert.Empty(t, view.Metrics)
	assert.Empty(t, view.RevenueByCategoryStage())
	assert.Empty(t, view.RevenueByCategorySeason())
	assert.Empty(t, view.StageTable())

	best, err := view.BestStagePerProduct("revenue")
	require.NoError(t, err)
	assert.Empty(t, best)

	s := view.Summarize()
	assert.Zero(t, s.Products)
	assert.Zero(t, s.TotalRevenue)
	assert.Empty(t, s.BestStage)
}

func TestExpansionMemoized(t *testing.T) {
	eng := New(testCatalog())

	first := eng.View(Filter{}).Metrics
	second := eng.View(Filter{}).Metrics

	require.NotEmpty(t, first)
	// Same backing array: the expansion ran once.
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, first, second)
}

func TestReplaceInvalidatesMemoizedExpansion(t *testing.T) {
	eng := New(testCatalog())
	before := eng.View(Filter{}).Metrics
	require.Len(t, before, 16)

	eng.Replace(catalog.New([]model.ProductRecord{
		product("P-9", "Skincare", "Winter", 10, 10),
	}))

	after := eng.View(Filter{}).Metrics
	require.Len(t, after, 4)
	assert.Equal(t, "P-9", after[0].ProductID)
}

func TestProductStages(t *testing.T) {
	eng := New(testCatalog())
	view := eng.View(Filter{})

	stages, err := view.ProductStages("P-3")
	require.NoError(t, err)
	require.Len(t, stages, 4)
	for i, stage := range model.Stages {
		assert.Equal(t, stage, stages[i].Stage)
	}

	_, err = view.ProductStages("P-404")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductStagesRespectsFilter(t *testing.T) {
	eng := New(testCatalog())
	view := eng.View(Filter{Categories: []string{"Footwear"}})

	_, err := view.ProductStages("P-1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSummarize(t *testing.T) {
	eng := New(testCatalog())
	view := eng.View(Filter{})
	s := view.Summarize()

	assert.Equal(t, 4, s.Products)
	assert.Equal(t, 16, s.MetricRows)
	assert.InDelta(t, 0.2, s.AvgOptimalDiscount, 1e-9)

	// Per product: M1=.9p*10, M2=.7p*20, M3=.5p*15, M4=.3p*5.
	// M2 dominates every product, so it dominates the total.
	assert.Equal(t, model.StageM2, s.BestStage)

	var total float64
	for _, m := range view.Metrics {
		total += m.Revenue
	}
	assert.InDelta(t, total, s.TotalRevenue, 1e-9)
	assert.Greater(t, s.TotalRevenue, s.BestStageRevenue)
}

func TestViewIdempotent(t *testing.T) {
	eng := New(testCatalog())
	f := Filter{Seasons: []string{"Winter"}}

	v1 := eng.View(f)
	v2 := eng.View(f)

	assert.Equal(t, v1.Metrics, v2.Metrics)
	assert.Equal(t, v1.Products, v2.Products)
	assert.Equal(t, v1.Summarize(), v2.Summarize())
}
