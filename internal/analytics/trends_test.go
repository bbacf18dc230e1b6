package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

func TestPriceTrendsTwoMonths(t *testing.T) {
	store := &stubStore{
		monthly: []models.MonthlyStat{
			{Month: "2024-01", TransactionCount: 1, AvgPrice: 400000, MinPrice: 400000, MaxPrice: 400000},
			{Month: "2024-02", TransactionCount: 1, AvgPrice: 420000, MinPrice: 420000, MaxPrice: 420000},
		},
	}
	e := newTestEngine(store, "2024-03")

	points, err := e.PriceTrends(2, Filter{Town: "BEDOK"})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, Filter{Town: "BEDOK"}, store.monthlyFilter)

	assert.Equal(t, "2024-01", points[0].Month)
	assert.Nil(t, points[0].PriceChangeMoM)
	assert.Nil(t, points[0].PctChangeMoM)
	assert.Equal(t, 400000.0, points[0].MovingAvg3Month)

	assert.Equal(t, "2024-02", points[1].Month)
	require.NotNil(t, points[1].PriceChangeMoM)
	assert.Equal(t, 20000.0, *points[1].PriceChangeMoM)
	require.NotNil(t, points[1].PctChangeMoM)
	assert.Equal(t, 5.0, *points[1].PctChangeMoM)
	assert.Equal(t, 410000.0, points[1].MovingAvg3Month)
}

func TestPriceTrendsWindowedOverFullSeries(t *testing.T) {
	// 14 months of history; only the last 2 are requested. Their deltas
	// must still be computed against the untruncated series.
	var monthly []models.MonthlyStat
	month := "2023-01"
	for i := 0; i < 14; i++ {
		monthly = append(monthly, models.MonthlyStat{
			Month:    month,
			AvgPrice: 100000 + float64(i)*1000,
		})
		month = addMonths(month, 1)
	}
	store := &stubStore{monthly: monthly}
	e := newTestEngine(store, "2024-03")

	points, err := e.PriceTrends(2, Filter{})
	require.NoError(t, err)
	require.Len(t, points, 2)

	first := points[0] // 2024-01, 13th month
	assert.Equal(t, "2024-01", first.Month)
	require.NotNil(t, first.PriceChangeMoM)
	assert.Equal(t, 1000.0, *first.PriceChangeMoM)
	require.NotNil(t, first.Price12MonthAgo)
	assert.Equal(t, 100000.0, *first.Price12MonthAgo)
	require.NotNil(t, first.YoYChangePct)
	assert.Equal(t, 12.0, *first.YoYChangePct)
	// Trailing 3-month mean of 110000, 111000, 112000.
	assert.Equal(t, 111000.0, first.MovingAvg3Month)

	second := points[1]
	assert.Equal(t, "2024-02", second.Month)
	require.NotNil(t, second.YoYChangePct)
	assert.Equal(t, 11.88, *second.YoYChangePct)
}

func TestPriceTrendsSkipsEmptyMonths(t *testing.T) {
	// The store only emits months with transactions. Across a gap the
	// previous series entry is the MoM baseline, matching LAG over the
	// grouped series.
	store := &stubStore{
		monthly: []models.MonthlyStat{
			{Month: "2024-01", AvgPrice: 100},
			{Month: "2024-03", AvgPrice: 110},
		},
	}
	e := newTestEngine(store, "2024-04")

	points, err := e.PriceTrends(12, Filter{})
	require.NoError(t, err)
	require.Len(t, points, 2)
	for _, p := range points {
		assert.NotEqual(t, "2024-02", p.Month)
	}
	require.NotNil(t, points[1].PriceChangeMoM)
	assert.Equal(t, 10.0, *points[1].PriceChangeMoM)
}

func TestPriceTrendsYoYNullWithoutBaseline(t *testing.T) {
	store := &stubStore{
		monthly: []models.MonthlyStat{
			{Month: "2024-01", AvgPrice: 100},
			{Month: "2024-02", AvgPrice: 105},
		},
	}
	e := newTestEngine(store, "2024-03")

	points, err := e.PriceTrends(12, Filter{})
	require.NoError(t, err)
	for _, p := range points {
		assert.Nil(t, p.YoYChangePct)
		assert.Nil(t, p.Price12MonthAgo)
	}
}

func TestPriceTrendsRejectsBadMonths(t *testing.T) {
	e := newTestEngine(&stubStore{}, "2024-03")
	_, err := e.PriceTrends(0, Filter{})
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = e.PriceTrends(-3, Filter{})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
