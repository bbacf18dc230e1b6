package database

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/analytics"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

func intp(v int) *int { return &v }

func testRecord(month, town, flatType string, price, area float64) models.ResaleRecord {
	return models.ResaleRecord{
		Month:                month,
		Town:                 town,
		FlatType:             flatType,
		TypicalRooms:         intp(4),
		Block:                "123A",
		StreetName:           "BEDOK NORTH AVE 1",
		StoreyRange:          "07 TO 09",
		StoreyMin:            7,
		StoreyMax:            9,
		FloorAreaSqm:         area,
		FlatModel:            "MODEL A",
		LeaseCommenceYear:    1990,
		RemainingLeaseYears:  63,
		RemainingLeaseMonths: 4,
		Price:                price,
		PricePerSqm:          price / area,
	}
}

// newTestDatabase migrates a fresh sqlite file and loads fixtures through
// the import write path, so reads and writes are exercised together.
func newTestDatabase(t *testing.T, records []models.ResaleRecord) *Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	writer, err := NewWriter(path, logger)
	require.NoError(t, err)
	require.NoError(t, writer.WriteBatch(records))
	return db
}

func TestBaseAggregate(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2024-01", "BEDOK", "4 ROOM", 400000, 93),
		testRecord("2024-02", "BEDOK", "4 ROOM", 420000, 93),
		testRecord("2024-02", "QUEENSTOWN", "3 ROOM", 500000, 68),
	})

	agg, err := db.BaseAggregate()
	require.NoError(t, err)

	assert.Equal(t, 3, agg.Count)
	assert.Equal(t, 2, agg.TownCount)
	assert.Equal(t, 2, agg.FlatTypeCount)
	assert.Equal(t, 400000.0, agg.MinPrice)
	assert.Equal(t, 500000.0, agg.MaxPrice)
	assert.Equal(t, 1320000.0, agg.SumPrice)
	assert.Equal(t, "2024-01", agg.EarliestMonth)
	assert.Equal(t, "2024-02", agg.LatestMonth)
}

func TestBaseAggregateEmpty(t *testing.T) {
	db := newTestDatabase(t, nil)

	agg, err := db.BaseAggregate()
	require.NoError(t, err)
	assert.Equal(t, 0, agg.Count)
	assert.Equal(t, "", agg.EarliestMonth)
}

func TestMonthlyStatsFiltered(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2024-01", "BEDOK", "4 ROOM", 400000, 100),
		testRecord("2024-01", "BEDOK", "4 ROOM", 440000, 100),
		testRecord("2024-02", "BEDOK", "4 ROOM", 430000, 100),
		testRecord("2024-01", "QUEENSTOWN", "4 ROOM", 600000, 100),
		testRecord("2024-01", "BEDOK", "3 ROOM", 300000, 70),
	})

	stats, err := db.MonthlyStats(analytics.Filter{Town: "BEDOK", FlatType: "4 ROOM"})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "2024-01", stats[0].Month)
	assert.Equal(t, 2, stats[0].TransactionCount)
	assert.Equal(t, 420000.0, stats[0].AvgPrice)
	assert.Equal(t, 400000.0, stats[0].MinPrice)
	assert.Equal(t, 440000.0, stats[0].MaxPrice)

	assert.Equal(t, "2024-02", stats[1].Month)
	assert.Equal(t, 430000.0, stats[1].AvgPrice)
}

func TestRecentAggregate(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2023-12", "BEDOK", "4 ROOM", 400000, 93),
		testRecord("2024-01", "BEDOK", "4 ROOM", 410000, 93),
		testRecord("2024-03", "BEDOK", "4 ROOM", 430000, 93),
	})

	agg, err := db.RecentAggregate("2024-01")
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Count)
	assert.Equal(t, 840000.0, agg.SumPrice)
}

func TestPriceBuckets(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2024-01", "BEDOK", "4 ROOM", 410000, 93),
		testRecord("2024-01", "BEDOK", "4 ROOM", 449999, 93),
		testRecord("2024-01", "BEDOK", "4 ROOM", 450000, 93),
		// Outside the window, must not appear.
		testRecord("2024-01", "BEDOK", "4 ROOM", 99000, 93),
	})

	buckets, err := db.PriceBuckets(50000, 100000, 1250000)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, 400000.0, buckets[0].PriceBucket)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, 450000.0, buckets[1].PriceBucket)
	assert.Equal(t, 1, buckets[1].Count)
}

func TestTownPeriodAggregatesWindow(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2023-06", "BEDOK", "4 ROOM", 400000, 93),
		testRecord("2024-05", "BEDOK", "4 ROOM", 440000, 93),
		testRecord("2024-06", "BEDOK", "4 ROOM", 480000, 93),
	})

	aggs, err := db.TownPeriodAggregates("2023-06", "2024-06", "")
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, 2, aggs[0].TransactionCount)
	assert.Equal(t, 420000.0, aggs[0].AvgPrice)
	assert.Equal(t, "2024-05", aggs[0].LatestMonth)

	open, err := db.TownPeriodAggregates("2024-06", "", "")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 1, open[0].TransactionCount)
}

func TestLeaseYearGroups(t *testing.T) {
	r1 := testRecord("2024-01", "BEDOK", "4 ROOM", 400000, 100)
	r2 := testRecord("2024-02", "BEDOK", "4 ROOM", 440000, 100)
	r3 := testRecord("2024-02", "BEDOK", "4 ROOM", 500000, 100)
	r3.RemainingLeaseYears = 92
	db := newTestDatabase(t, []models.ResaleRecord{r1, r2, r3})

	groups, err := db.LeaseYearGroups("4 ROOM")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	byYears := make(map[int]models.LeaseYearGroup)
	for _, g := range groups {
		byYears[g.RemainingLeaseYears] = g
	}
	assert.Equal(t, 2, byYears[63].TransactionCount)
	assert.Equal(t, 840000.0, byYears[63].SumPrice)
	assert.Equal(t, 1, byYears[92].TransactionCount)
}

func TestPredictionCohort(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2024-10", "BEDOK", "4 ROOM", 480000, 93),
		testRecord("2024-11", "BEDOK", "4 ROOM", 520000, 95),
		// Area outside tolerance.
		testRecord("2024-11", "BEDOK", "4 ROOM", 700000, 130),
		// Too old.
		testRecord("2023-01", "BEDOK", "4 ROOM", 300000, 93),
	})

	stats, err := db.PredictionCohort("BEDOK", "4 ROOM", 83, 103, "2024-07")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 480000.0, stats.MinPrice)
	assert.Equal(t, 500000.0, stats.AvgPrice)
	assert.Equal(t, 520000.0, stats.MaxPrice)
}

func TestSearchProperties(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2024-01", "BEDOK", "4 ROOM", 400000, 93),
		testRecord("2024-02", "BEDOK", "4 ROOM", 450000, 93),
		testRecord("2024-02", "YISHUN", "3 ROOM", 320000, 68),
	})

	txs, total, err := db.SearchProperties(models.SearchFilters{
		Towns:    []string{"BEDOK"},
		MinPrice: 410000,
		SortBy:   "price",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, txs, 1)
	assert.Equal(t, 450000.0, txs[0].Price)
	assert.Equal(t, "BEDOK", txs[0].TownName)
	assert.Equal(t, "07 TO 09", txs[0].StoreyRange)
	assert.Equal(t, 63, txs[0].RemainingLeaseYears)
}

func TestGetPropertyByID(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2024-01", "BEDOK", "4 ROOM", 400000, 93),
	})

	txs, _, err := db.SearchProperties(models.SearchFilters{Limit: 1})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	got, err := db.GetPropertyByID(txs[0].TransactionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 400000.0, got.Price)

	missing, err := db.GetPropertyByID(999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDetectTablesMemoized(t *testing.T) {
	db := newTestDatabase(t, nil)

	tables, err := db.DetectTables()
	require.NoError(t, err)
	assert.Equal(t, "transactions", tables.Transactions)
	assert.Equal(t, "towns", tables.Towns)
	assert.Equal(t, "flat_types", tables.FlatTypes)

	again, err := db.DetectTables()
	require.NoError(t, err)
	assert.Equal(t, tables, again)
}

func TestGetTownsAndFlatTypes(t *testing.T) {
	db := newTestDatabase(t, []models.ResaleRecord{
		testRecord("2024-01", "YISHUN", "4 ROOM", 400000, 93),
		testRecord("2024-01", "BEDOK", "4 ROOM", 420000, 93),
	})

	towns, err := db.GetTowns()
	require.NoError(t, err)
	require.Len(t, towns, 2)
	assert.Equal(t, "BEDOK", towns[0].TownName)
	assert.Equal(t, "YISHUN", towns[1].TownName)

	counts, err := db.GetTownCounts()
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 1, counts[0].TransactionCount)

	types, err := db.GetFlatTypes()
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "4 ROOM", types[0].FlatTypeName)
	require.NotNil(t, types[0].TypicalRooms)
	assert.Equal(t, 4, *types[0].TypicalRooms)
}
