package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

func TestPredictPrice(t *testing.T) {
	store := &stubStore{
		cohort: models.CohortStats{Count: 6, MinPrice: 450000, AvgPrice: 500000, MaxPrice: 560000},
		yearlyPrices: []models.YearPrice{
			{Year: "2023", AvgPrice: 480000},
			{Year: "2024", AvgPrice: 504000},
		},
	}
	e := newTestEngine(store, "2025-01")

	pred, err := e.PredictPrice(PredictionRequest{Town: "BEDOK", FlatType: "4 ROOM", FloorArea: 93})
	require.NoError(t, err)

	// Cohort window: same floor area give or take 10 sqm, last 6 months.
	assert.Equal(t, "BEDOK", store.cohortArgs.town)
	assert.Equal(t, "4 ROOM", store.cohortArgs.flatType)
	assert.Equal(t, 83.0, store.cohortArgs.minArea)
	assert.Equal(t, 103.0, store.cohortArgs.maxArea)
	assert.Equal(t, "2024-07", store.cohortArgs.fromMonth)

	assert.True(t, pred.Available)
	assert.Equal(t, 6, pred.SampleSize)
	assert.Equal(t, 450000.0, pred.CurrentMin)
	assert.Equal(t, 500000.0, pred.CurrentAvg)
	assert.Equal(t, 560000.0, pred.CurrentMax)
	assert.Equal(t, 5.0, pred.AnnualGrowthPct)
	assert.True(t, pred.HasHistoricalData)

	// Two years compounded at 5%, 3.5% and 6.5%.
	require.NotNil(t, pred.MostLikely)
	assert.Equal(t, 551250.0, pred.MostLikely.Price)
	assert.Equal(t, 10.25, pred.MostLikely.PctChange)
	require.NotNil(t, pred.Conservative)
	assert.Equal(t, 535612.5, pred.Conservative.Price)
	assert.Equal(t, 7.12, pred.Conservative.PctChange)
	require.NotNil(t, pred.Optimistic)
	assert.Equal(t, 567112.5, pred.Optimistic.Price)
	assert.Equal(t, 13.42, pred.Optimistic.PctChange)

	assert.Equal(t, 0.85, pred.Confidence)
	assert.Empty(t, pred.Warning)
}

func TestPredictPriceSmallCohort(t *testing.T) {
	store := &stubStore{
		cohort: models.CohortStats{Count: 3, MinPrice: 480000, AvgPrice: 500000, MaxPrice: 520000},
		yearlyPrices: []models.YearPrice{
			{Year: "2023", AvgPrice: 500000},
			{Year: "2024", AvgPrice: 510000},
		},
	}
	e := newTestEngine(store, "2025-01")

	pred, err := e.PredictPrice(PredictionRequest{Town: "BEDOK", FlatType: "4 ROOM", FloorArea: 93})
	require.NoError(t, err)

	assert.True(t, pred.Available)
	assert.Equal(t, "limited_data", pred.Warning)
	assert.Equal(t, 0.65, pred.Confidence)
}

func TestPredictPriceMarketFallback(t *testing.T) {
	// A single year of combination history cannot yield a growth rate; the
	// market-wide series steps in and confidence drops.
	store := &stubStore{
		cohort:       models.CohortStats{Count: 8, MinPrice: 300000, AvgPrice: 350000, MaxPrice: 400000},
		yearlyPrices: []models.YearPrice{{Year: "2024", AvgPrice: 350000}},
		marketPrices: []models.YearPrice{
			{Year: "2023", AvgPrice: 500000},
			{Year: "2024", AvgPrice: 520000},
		},
	}
	e := newTestEngine(store, "2025-01")

	pred, err := e.PredictPrice(PredictionRequest{Town: "PUNGGOL", FlatType: "3 ROOM", FloorArea: 68})
	require.NoError(t, err)

	assert.True(t, pred.Available)
	assert.False(t, pred.HasHistoricalData)
	assert.Equal(t, 4.0, pred.AnnualGrowthPct)
	assert.Equal(t, 0.6, pred.Confidence)
}

func TestPredictPriceEmptyCohort(t *testing.T) {
	e := newTestEngine(&stubStore{}, "2025-01")

	pred, err := e.PredictPrice(PredictionRequest{Town: "BEDOK", FlatType: "4 ROOM", FloorArea: 93})
	require.NoError(t, err)

	assert.False(t, pred.Available)
	assert.NotEmpty(t, pred.Message)
	assert.Equal(t, "BEDOK", pred.Town)
	assert.Nil(t, pred.MostLikely)
}

func TestPredictPriceRejectsBadRequest(t *testing.T) {
	e := newTestEngine(&stubStore{}, "2025-01")

	_, err := e.PredictPrice(PredictionRequest{Town: "", FlatType: "4 ROOM", FloorArea: 93})
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = e.PredictPrice(PredictionRequest{Town: "BEDOK", FlatType: "", FloorArea: 93})
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = e.PredictPrice(PredictionRequest{Town: "BEDOK", FlatType: "4 ROOM", FloorArea: 0})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMeanYoYGrowth(t *testing.T) {
	_, ok := meanYoYGrowth(nil)
	assert.False(t, ok)
	_, ok = meanYoYGrowth([]models.YearPrice{{Year: "2024", AvgPrice: 100}})
	assert.False(t, ok)

	rate, ok := meanYoYGrowth([]models.YearPrice{
		{Year: "2022", AvgPrice: 100},
		{Year: "2023", AvgPrice: 110},
		{Year: "2024", AvgPrice: 121},
	})
	require.True(t, ok)
	assert.InDelta(t, 10.0, rate, 0.0001)

	// Zero-price years are skipped as baselines.
	rate, ok = meanYoYGrowth([]models.YearPrice{
		{Year: "2022", AvgPrice: 0},
		{Year: "2023", AvgPrice: 100},
		{Year: "2024", AvgPrice: 105},
	})
	require.True(t, ok)
	assert.InDelta(t, 5.0, rate, 0.0001)
}
