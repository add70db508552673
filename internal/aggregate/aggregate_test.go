package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/markdown-cli/internal/model"
)

func metric(productID, category, season string, stage model.Stage, revenue, sellThrough float64) model.StageMetric {
	return model.StageMetric{
		ProductID:   productID,
		Category:    category,
		Season:      season,
		Stage:       stage,
		Revenue:     revenue,
		SellThrough: sellThrough,
	}
}

func TestRevenueByCategoryStage(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM1, 100, 0.1),
		metric("P-1", "Skincare", "Winter", model.StageM2, 250, 0.2),
		metric("P-2", "Skincare", "Summer", model.StageM1, 50, 0.3),
		metric("P-3", "Footwear", "Winter", model.StageM3, 400, 0.4),
	}

	got := RevenueByCategoryStage(metrics)

	assert.Equal(t, 150.0, got[CategoryStage{"Skincare", model.StageM1}])
	assert.Equal(t, 250.0, got[CategoryStage{"Skincare", model.StageM2}])
	assert.Equal(t, 400.0, got[CategoryStage{"Footwear", model.StageM3}])

	// Dense: every observed category has all four stages, zero-filled.
	for _, cat := range []string{"Skincare", "Footwear"} {
		for _, stage := range model.Stages {
			_, ok := got[CategoryStage{cat, stage}]
			assert.True(t, ok, "missing cell (%s, %s)", cat, stage)
		}
	}
	assert.Equal(t, 0.0, got[CategoryStage{"Footwear", model.StageM1}])
	assert.Len(t, got, 8)
}

func TestRevenueConservation(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM1, 123.45, 0),
		metric("P-1", "Skincare", "Winter", model.StageM2, 67.89, 0),
		metric("P-2", "Footwear", "Summer", model.StageM3, 1000, 0),
		metric("P-3", "Denim", "Fall", model.StageM4, 0.55, 0),
	}

	var total float64
	for _, m := range metrics {
		total += m.Revenue
	}

	var grouped float64
	for _, rev := range RevenueByCategoryStage(metrics) {
		grouped += rev
	}
	assert.InDelta(t, total, grouped, 1e-9)

	grouped = 0
	for _, rev := range RevenueByCategorySeason(metrics) {
		grouped += rev
	}
	assert.InDelta(t, total, grouped, 1e-9)
}

func TestRevenueByCategorySeason(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM1, 100, 0),
		metric("P-1", "Skincare", "Winter", model.StageM4, 300, 0),
		metric("P-2", "Skincare", "Summer", model.StageM1, 50, 0),
	}

	got := RevenueByCategorySeason(metrics)
	assert.Equal(t, 400.0, got[CategorySeason{"Skincare", "Winter"}])
	assert.Equal(t, 50.0, got[CategorySeason{"Skincare", "Summer"}])
	assert.Len(t, got, 2)
}

func TestBestStagePerProduct_TieBreak(t *testing.T) {
	// Identical revenue at M1 and M3, all others lower: M1 must win.
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM1, 500, 0.1),
		metric("P-1", "Skincare", "Winter", model.StageM2, 100, 0.2),
		metric("P-1", "Skincare", "Winter", model.StageM3, 500, 0.3),
		metric("P-1", "Skincare", "Winter", model.StageM4, 100, 0.4),
	}

	got, err := BestStagePerProduct(metrics, RankByRevenue)
	require.NoError(t, err)
	assert.Equal(t, model.StageM1, got["P-1"])
}

func TestBestStagePerProduct_TieBreakIsOrderIndependent(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM3, 500, 0),
		metric("P-1", "Skincare", "Winter", model.StageM1, 500, 0),
		metric("P-1", "Skincare", "Winter", model.StageM4, 100, 0),
		metric("P-1", "Skincare", "Winter", model.StageM2, 100, 0),
	}

	got, err := BestStagePerProduct(metrics, RankByRevenue)
	require.NoError(t, err)
	assert.Equal(t, model.StageM1, got["P-1"])
}

func TestBestStagePerProduct_RankBySellThrough(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM1, 900, 0.1),
		metric("P-1", "Skincare", "Winter", model.StageM2, 100, 0.9),
	}

	got, err := BestStagePerProduct(metrics, RankBySellThrough)
	require.NoError(t, err)
	assert.Equal(t, model.StageM2, got["P-1"])

	got, err = BestStagePerProduct(metrics, RankByRevenue)
	require.NoError(t, err)
	assert.Equal(t, model.StageM1, got["P-1"])
}

func TestBestStagePerProduct_MultipleProducts(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM1, 100, 0),
		metric("P-1", "Skincare", "Winter", model.StageM2, 400, 0),
		metric("P-2", "Footwear", "Summer", model.StageM3, 50, 0),
	}

	got, err := BestStagePerProduct(metrics, RankByRevenue)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, model.StageM2, got["P-1"])
	assert.Equal(t, model.StageM3, got["P-2"])
}

func TestBestStagePerProduct_Empty(t *testing.T) {
	got, err := BestStagePerProduct(nil, RankByRevenue)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBestStagePerProduct_UnknownMetric(t *testing.T) {
	_, err := BestStagePerProduct(nil, RankBy("margin"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rank-by metric")
}

func TestBestStageOverall(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM1, 100, 0),
		metric("P-2", "Footwear", "Winter", model.StageM1, 100, 0),
		metric("P-1", "Skincare", "Winter", model.StageM3, 150, 0),
	}

	stage, ok := BestStageOverall(metrics)
	require.True(t, ok)
	assert.Equal(t, model.StageM1, stage) // 200 at M1 vs 150 at M3
}

func TestBestStageOverall_TieBreak(t *testing.T) {
	metrics := []model.StageMetric{
		metric("P-1", "Skincare", "Winter", model.StageM2, 300, 0),
		metric("P-2", "Footwear", "Winter", model.StageM4, 300, 0),
	}

	stage, ok := BestStageOverall(metrics)
	require.True(t, ok)
	assert.Equal(t, model.StageM2, stage)
}

func TestBestStageOverall_Empty(t *testing.T) {
	_, ok := BestStageOverall(nil)
	assert.False(t, ok)
}

func TestRevenueByStage_AlwaysDense(t *testing.T) {
	got := RevenueByStage(nil)
	assert.Len(t, got, model.StageCount)
	for _, stage := range model.Stages {
		assert.Equal(t, 0.0, got[stage])
	}
}

func TestParseRankBy(t *testing.T) {
	tests := []struct {
		in      string
		want    RankBy
		wantErr bool
	}{
		{"", RankByRevenue, false},
		{"revenue", RankByRevenue, false},
		{"sell_through", RankBySellThrough, false},
		{"margin", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRankBy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestEmptyInputsProduceEmptyMappings(t *testing.T) {
	assert.Empty(t, RevenueByCategoryStage(nil))
	assert.Empty(t, RevenueByCategorySeason(nil))
	best, err := BestStagePerProduct([]model.StageMetric{}, RankByRevenue)
	require.NoError(t, err)
	assert.Empty(t, best)
}
