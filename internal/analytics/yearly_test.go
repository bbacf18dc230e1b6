package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

func TestYearlyTownPrices(t *testing.T) {
	store := &stubStore{
		yearly: []models.YearlyTownPrice{
			{Year: "2020", TownName: "BEDOK", AvgPrice: 400000, TransactionCount: 10},
			{Year: "2021", TownName: "BEDOK", AvgPrice: 440000, TransactionCount: 12},
			{Year: "2021", TownName: "QUEENSTOWN", AvgPrice: 700000, TransactionCount: 4},
		},
	}
	e := newTestEngine(store, "2025-01")

	rows, err := e.YearlyTownPrices()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, [2]string{"2020", "2025"}, store.yearlyBounds)

	// Year ascending, then average price descending within the year.
	assert.Equal(t, "2020", rows[0].Year)
	assert.Equal(t, "BEDOK", rows[0].TownName)
	assert.Equal(t, "QUEENSTOWN", rows[1].TownName)
	assert.Equal(t, "BEDOK", rows[2].TownName)

	// First year present per town has no growth figures.
	assert.Nil(t, rows[0].YoYGrowthPct)
	assert.Nil(t, rows[1].YoYGrowthPct)

	require.NotNil(t, rows[2].PrevYearPrice)
	assert.Equal(t, 400000.0, *rows[2].PrevYearPrice)
	assert.Equal(t, 40000.0, *rows[2].YoYPriceChange)
	assert.Equal(t, 10.0, *rows[2].YoYGrowthPct)

	// In-year price ranks restart at 1 each year.
	assert.Equal(t, 1, rows[0].PriceRankInYear)
	assert.Equal(t, 1, rows[1].PriceRankInYear)
	assert.Equal(t, 2, rows[2].PriceRankInYear)
}

func TestTopAppreciatingTowns(t *testing.T) {
	store := &stubStore{
		yearly: []models.YearlyTownPrice{
			{Year: "2023", TownName: "BEDOK", AvgPrice: 400000},
			{Year: "2024", TownName: "BEDOK", AvgPrice: 440000, TransactionCount: 8},
			{Year: "2023", TownName: "YISHUN", AvgPrice: 350000},
			{Year: "2024", TownName: "YISHUN", AvgPrice: 420000, TransactionCount: 6},
			// No 2023 baseline: must be excluded.
			{Year: "2024", TownName: "PUNGGOL", AvgPrice: 600000},
		},
	}
	e := newTestEngine(store, "2025-01")

	towns, err := e.TopAppreciatingTowns("2024", 10)
	require.NoError(t, err)
	require.Len(t, towns, 2)

	// Unbounded year range for the growth series.
	assert.Equal(t, [2]string{"", ""}, store.yearlyBounds)

	assert.Equal(t, "YISHUN", towns[0].TownName)
	assert.Equal(t, 20.0, towns[0].YoYGrowthPct)
	assert.Equal(t, 1, towns[0].GrowthRank)
	assert.Equal(t, "BEDOK", towns[1].TownName)
	assert.Equal(t, 10.0, towns[1].YoYGrowthPct)
	assert.Equal(t, 2, towns[1].GrowthRank)
}

func TestTopAppreciatingTownsLimit(t *testing.T) {
	store := &stubStore{
		yearly: []models.YearlyTownPrice{
			{Year: "2023", TownName: "A", AvgPrice: 100},
			{Year: "2024", TownName: "A", AvgPrice: 120},
			{Year: "2023", TownName: "B", AvgPrice: 100},
			{Year: "2024", TownName: "B", AvgPrice: 110},
		},
	}
	e := newTestEngine(store, "2025-01")

	towns, err := e.TopAppreciatingTowns("2024", 1)
	require.NoError(t, err)
	require.Len(t, towns, 1)
	assert.Equal(t, "A", towns[0].TownName)
}

func TestTopAppreciatingTownsRejectsBadParams(t *testing.T) {
	e := newTestEngine(&stubStore{}, "2025-01")
	_, err := e.TopAppreciatingTowns("2024", 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = e.TopAppreciatingTowns("24", 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
