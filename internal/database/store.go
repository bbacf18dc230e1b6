package database

import (
	"database/sql"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/analytics"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// Grouped reads backing the analytics engine. Every method returns plain
// aggregates; deltas, ranks and percentages are derived downstream.

func (d *Database) BaseAggregate() (models.BaseAggregate, error) {
	query := `
        SELECT
            COUNT(*),
            COUNT(DISTINCT b.town_id),
            COUNT(DISTINCT t.flat_type_id),
            COALESCE(MIN(t.price), 0),
            COALESCE(MAX(t.price), 0),
            COALESCE(SUM(t.price), 0),
            COALESCE(SUM(t.price * t.price), 0),
            COALESCE(SUM(t.floor_area_sqm), 0),
            COALESCE(SUM(t.price_per_sqm), 0),
            COALESCE(MIN(t.month), ''),
            COALESCE(MAX(t.month), '')
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
    `
	var agg models.BaseAggregate
	err := d.db.QueryRow(query).Scan(
		&agg.Count,
		&agg.TownCount,
		&agg.FlatTypeCount,
		&agg.MinPrice,
		&agg.MaxPrice,
		&agg.SumPrice,
		&agg.SumPriceSq,
		&agg.SumFloorArea,
		&agg.SumPricePerSqm,
		&agg.EarliestMonth,
		&agg.LatestMonth,
	)
	if err != nil {
		return models.BaseAggregate{}, err
	}
	return agg, nil
}

func (d *Database) RecentAggregate(fromMonth string) (models.RecentAggregate, error) {
	var agg models.RecentAggregate
	err := d.db.QueryRow(`
        SELECT COUNT(*), COALESCE(SUM(price), 0)
        FROM transactions
        WHERE month >= ?
    `, fromMonth).Scan(&agg.Count, &agg.SumPrice)
	if err != nil {
		return models.RecentAggregate{}, err
	}
	return agg, nil
}

func (d *Database) MonthlyStats(f analytics.Filter) ([]models.MonthlyStat, error) {
	var w whereBuilder
	if f.Town != "" {
		w.add("tw.town_name = ?", f.Town)
	}
	if f.FlatType != "" {
		w.add("ft.flat_type_name = ?", f.FlatType)
	}

	query := `
        SELECT
            t.month,
            COUNT(*),
            ROUND(AVG(t.price), 2),
            MIN(t.price),
            MAX(t.price),
            ROUND(AVG(t.price_per_sqm), 2)
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
        JOIN towns tw ON tw.town_id = b.town_id
        JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id` +
		w.clause() + `
        GROUP BY t.month
        ORDER BY t.month ASC
    `
	rows, err := d.db.Query(query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.MonthlyStat
	for rows.Next() {
		var m models.MonthlyStat
		if err := rows.Scan(&m.Month, &m.TransactionCount, &m.AvgPrice, &m.MinPrice, &m.MaxPrice, &m.AvgPricePerSqm); err != nil {
			return nil, err
		}
		stats = append(stats, m)
	}
	return stats, rows.Err()
}

func (d *Database) TownMetrics() ([]models.TownMetric, error) {
	rows, err := d.db.Query(`
        SELECT
            tw.town_name,
            COUNT(*),
            ROUND(AVG(t.price), 2),
            MIN(t.price),
            MAX(t.price),
            ROUND(AVG(t.floor_area_sqm), 2),
            ROUND(AVG(t.price_per_sqm), 2)
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
        JOIN towns tw ON tw.town_id = b.town_id
        GROUP BY tw.town_name
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []models.TownMetric
	for rows.Next() {
		var m models.TownMetric
		if err := rows.Scan(&m.TownName, &m.TransactionCount, &m.AvgPrice, &m.MinPrice, &m.MaxPrice, &m.AvgFloorArea, &m.AvgPricePerSqm); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (d *Database) FlatTypeMetrics() ([]models.FlatTypeMetric, error) {
	rows, err := d.db.Query(`
        SELECT
            ft.flat_type_name,
            ft.typical_rooms,
            COUNT(*),
            ROUND(AVG(t.price), 2),
            MIN(t.price),
            MAX(t.price),
            ROUND(AVG(t.floor_area_sqm), 2),
            ROUND(AVG(t.price_per_sqm), 2)
        FROM transactions t
        JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id
        GROUP BY ft.flat_type_name, ft.typical_rooms
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []models.FlatTypeMetric
	for rows.Next() {
		var m models.FlatTypeMetric
		var rooms sql.NullInt64
		if err := rows.Scan(&m.FlatTypeName, &rooms, &m.TransactionCount, &m.AvgPrice, &m.MinPrice, &m.MaxPrice, &m.AvgFloorArea, &m.AvgPricePerSqm); err != nil {
			return nil, err
		}
		if rooms.Valid {
			r := int(rooms.Int64)
			m.TypicalRooms = &r
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (d *Database) PriceBuckets(bucketSize, minPrice, maxPrice float64) ([]models.PriceBucket, error) {
	rows, err := d.db.Query(`
        SELECT CAST(price / ? AS INTEGER) * ? AS bucket, COUNT(*)
        FROM transactions
        WHERE price >= ? AND price <= ?
        GROUP BY bucket
        ORDER BY bucket ASC
    `, bucketSize, bucketSize, minPrice, maxPrice)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []models.PriceBucket
	for rows.Next() {
		var b models.PriceBucket
		if err := rows.Scan(&b.PriceBucket, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// YearlyTownPrices groups by (year, town). Empty bounds leave that side of
// the year range open.
func (d *Database) YearlyTownPrices(firstYear, lastYear string) ([]models.YearlyTownPrice, error) {
	var w whereBuilder
	if firstYear != "" {
		w.add("SUBSTR(t.month, 1, 4) >= ?", firstYear)
	}
	if lastYear != "" {
		w.add("SUBSTR(t.month, 1, 4) <= ?", lastYear)
	}

	query := `
        SELECT
            SUBSTR(t.month, 1, 4) AS year,
            tw.town_name,
            ROUND(AVG(t.price), 2),
            COUNT(*)
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
        JOIN towns tw ON tw.town_id = b.town_id` +
		w.clause() + `
        GROUP BY year, tw.town_name
        ORDER BY year ASC, tw.town_name ASC
    `
	rows, err := d.db.Query(query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []models.YearlyTownPrice
	for rows.Next() {
		var p models.YearlyTownPrice
		if err := rows.Scan(&p.Year, &p.TownName, &p.AvgPrice, &p.TransactionCount); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (d *Database) LeaseYearGroups(flatType string) ([]models.LeaseYearGroup, error) {
	var w whereBuilder
	if flatType != "" {
		w.add("ft.flat_type_name = ?", flatType)
	}

	query := `
        SELECT
            ft.flat_type_name,
            l.remaining_lease_years,
            COUNT(*),
            SUM(t.price),
            SUM(t.price_per_sqm),
            MIN(t.price),
            MAX(t.price)
        FROM transactions t
        JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id
        JOIN leases l ON l.lease_id = t.lease_id` +
		w.clause() + `
        GROUP BY ft.flat_type_name, l.remaining_lease_years
    `
	rows, err := d.db.Query(query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.LeaseYearGroup
	for rows.Next() {
		var g models.LeaseYearGroup
		if err := rows.Scan(&g.FlatTypeName, &g.RemainingLeaseYears, &g.TransactionCount, &g.SumPrice, &g.SumPricePerSqm, &g.MinPrice, &g.MaxPrice); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// TownPeriodAggregates groups per town over [fromMonth, beforeMonth). An
// empty beforeMonth leaves the window open-ended.
func (d *Database) TownPeriodAggregates(fromMonth, beforeMonth, flatType string) ([]models.TownPeriodAggregate, error) {
	var w whereBuilder
	w.add("t.month >= ?", fromMonth)
	if beforeMonth != "" {
		w.add("t.month < ?", beforeMonth)
	}
	if flatType != "" {
		w.add("ft.flat_type_name = ?", flatType)
	}

	query := `
        SELECT
            tw.town_name,
            COUNT(*),
            ROUND(AVG(t.price), 2),
            ROUND(AVG(t.price_per_sqm), 2),
            MAX(t.month)
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
        JOIN towns tw ON tw.town_id = b.town_id
        JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id` +
		w.clause() + `
        GROUP BY tw.town_name
    `
	rows, err := d.db.Query(query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []models.TownPeriodAggregate
	for rows.Next() {
		var a models.TownPeriodAggregate
		if err := rows.Scan(&a.TownName, &a.TransactionCount, &a.AvgPrice, &a.AvgPricePerSqm, &a.LatestMonth); err != nil {
			return nil, err
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

func (d *Database) PredictionCohort(town, flatType string, minArea, maxArea float64, fromMonth string) (models.CohortStats, error) {
	var stats models.CohortStats
	err := d.db.QueryRow(`
        SELECT
            COUNT(*),
            COALESCE(MIN(t.price), 0),
            COALESCE(AVG(t.price), 0),
            COALESCE(MAX(t.price), 0)
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
        JOIN towns tw ON tw.town_id = b.town_id
        JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id
        WHERE tw.town_name = ?
          AND ft.flat_type_name = ?
          AND t.floor_area_sqm BETWEEN ? AND ?
          AND t.month >= ?
    `, town, flatType, minArea, maxArea, fromMonth).Scan(&stats.Count, &stats.MinPrice, &stats.AvgPrice, &stats.MaxPrice)
	if err != nil {
		return models.CohortStats{}, err
	}
	return stats, nil
}

func (d *Database) YearlyPrices(town, flatType string) ([]models.YearPrice, error) {
	rows, err := d.db.Query(`
        SELECT SUBSTR(t.month, 1, 4) AS year, AVG(t.price)
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
        JOIN towns tw ON tw.town_id = b.town_id
        JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id
        WHERE tw.town_name = ? AND ft.flat_type_name = ?
        GROUP BY year
        ORDER BY year ASC
    `, town, flatType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanYearPrices(rows)
}

func (d *Database) MarketYearlyPrices() ([]models.YearPrice, error) {
	rows, err := d.db.Query(`
        SELECT SUBSTR(month, 1, 4) AS year, AVG(price)
        FROM transactions
        GROUP BY year
        ORDER BY year ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanYearPrices(rows)
}

func scanYearPrices(rows *sql.Rows) ([]models.YearPrice, error) {
	var series []models.YearPrice
	for rows.Next() {
		var p models.YearPrice
		if err := rows.Scan(&p.Year, &p.AvgPrice); err != nil {
			return nil, err
		}
		series = append(series, p)
	}
	return series, rows.Err()
}
