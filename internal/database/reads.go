package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// transactionSelect joins a transaction back to all of its dimensions.
const transactionSelect = `
    SELECT
        t.transaction_id,
        t.month,
        t.price,
        t.floor_area_sqm,
        t.price_per_sqm,
        tw.town_name,
        b.block_number,
        b.street_name,
        ft.flat_type_name,
        fm.flat_model_name,
        sr.range,
        l.lease_commence_year,
        l.remaining_lease_years,
        l.remaining_lease_months
    FROM transactions t
    JOIN blocks b ON b.block_id = t.block_id
    JOIN towns tw ON tw.town_id = b.town_id
    JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id
    JOIN flat_models fm ON fm.flat_model_id = t.flat_model_id
    JOIN storey_ranges sr ON sr.storey_id = t.storey_id
    JOIN leases l ON l.lease_id = t.lease_id`

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.TransactionID,
			&t.Month,
			&t.Price,
			&t.FloorAreaSqm,
			&t.PricePerSqm,
			&t.TownName,
			&t.BlockNumber,
			&t.StreetName,
			&t.FlatTypeName,
			&t.FlatModelName,
			&t.StoreyRange,
			&t.LeaseCommenceYear,
			&t.RemainingLeaseYears,
			&t.RemainingLeaseMonths,
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (d *Database) GetTowns() ([]models.Town, error) {
	rows, err := d.db.Query(`SELECT town_id, town_name FROM towns ORDER BY town_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var towns []models.Town
	for rows.Next() {
		var t models.Town
		if err := rows.Scan(&t.TownID, &t.TownName); err != nil {
			return nil, err
		}
		towns = append(towns, t)
	}
	return towns, rows.Err()
}

func (d *Database) GetTownCounts() ([]models.TownCount, error) {
	rows, err := d.db.Query(`
        SELECT tw.town_id, tw.town_name, COUNT(t.transaction_id)
        FROM towns tw
        LEFT JOIN blocks b ON b.town_id = tw.town_id
        LEFT JOIN transactions t ON t.block_id = b.block_id
        GROUP BY tw.town_id, tw.town_name
        ORDER BY tw.town_name ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.TownCount
	for rows.Next() {
		var c models.TownCount
		if err := rows.Scan(&c.TownID, &c.TownName, &c.TransactionCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (d *Database) GetFlatTypes() ([]models.FlatType, error) {
	rows, err := d.db.Query(`
        SELECT flat_type_id, flat_type_name, typical_rooms
        FROM flat_types
        ORDER BY typical_rooms IS NULL, typical_rooms ASC, flat_type_name ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.FlatType
	for rows.Next() {
		var ft models.FlatType
		var rooms sql.NullInt64
		if err := rows.Scan(&ft.FlatTypeID, &ft.FlatTypeName, &rooms); err != nil {
			return nil, err
		}
		if rooms.Valid {
			r := int(rooms.Int64)
			ft.TypicalRooms = &r
		}
		types = append(types, ft)
	}
	return types, rows.Err()
}

// searchSortColumns whitelists the sortable columns; anything else falls
// back to month.
var searchSortColumns = map[string]string{
	"month":           "t.month",
	"price":           "t.price",
	"floor_area_sqm":  "t.floor_area_sqm",
	"price_per_sqm":   "t.price_per_sqm",
	"remaining_lease": "l.remaining_lease_years",
}

// SearchProperties returns transactions matching the filters plus the total
// match count before pagination.
func (d *Database) SearchProperties(f models.SearchFilters) ([]models.Transaction, int, error) {
	var w whereBuilder
	w.in("tw.town_name", f.Towns)
	w.in("ft.flat_type_name", f.FlatTypes)
	if f.MinPrice > 0 {
		w.add("t.price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		w.add("t.price <= ?", f.MaxPrice)
	}
	if f.MinFloorArea > 0 {
		w.add("t.floor_area_sqm >= ?", f.MinFloorArea)
	}
	if f.MaxFloorArea > 0 {
		w.add("t.floor_area_sqm <= ?", f.MaxFloorArea)
	}
	if f.MinRemainingLease > 0 {
		w.add("l.remaining_lease_years >= ?", f.MinRemainingLease)
	}

	countQuery := `
        SELECT COUNT(*)
        FROM transactions t
        JOIN blocks b ON b.block_id = t.block_id
        JOIN towns tw ON tw.town_id = b.town_id
        JOIN flat_types ft ON ft.flat_type_id = t.flat_type_id
        JOIN leases l ON l.lease_id = t.lease_id` + w.clause()
	var total int
	if err := d.db.QueryRow(countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := searchSortColumns[f.SortBy]
	if !ok {
		sortCol = "t.month"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := transactionSelect + w.clause() +
		fmt.Sprintf(" ORDER BY %s %s, t.transaction_id DESC LIMIT ? OFFSET ?", sortCol, order)
	args := append(append([]interface{}{}, w.args...), limit, f.Offset)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// GetPropertyByID returns the transaction or nil when it does not exist.
func (d *Database) GetPropertyByID(id int64) (*models.Transaction, error) {
	rows, err := d.db.Query(transactionSelect+` WHERE t.transaction_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return &txs[0], nil
}

func (d *Database) GetRecentTransactions(limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(transactionSelect+`
        ORDER BY t.month DESC, t.transaction_id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// RecommendCandidates returns recent transactions in the given towns,
// excluding specific transaction ids. The fact table name comes from
// schema introspection so older datasets keep working.
func (d *Database) RecommendCandidates(towns []string, excludeIDs []int64, fromMonth string, limit int) ([]models.Transaction, error) {
	tables, err := d.DetectTables()
	if err != nil {
		return nil, err
	}

	var w whereBuilder
	w.add("t.month >= ?", fromMonth)
	w.in("tw.town_name", towns)
	if len(excludeIDs) > 0 {
		placeholders := strings.Repeat("?, ", len(excludeIDs)-1) + "?"
		cond := "t.transaction_id NOT IN (" + placeholders + ")"
		args := make([]interface{}, len(excludeIDs))
		for i, id := range excludeIDs {
			args[i] = id
		}
		w.add(cond, args...)
	}

	query := strings.Replace(transactionSelect, "FROM transactions t", "FROM "+tables.Transactions+" t", 1) +
		w.clause() + `
        ORDER BY t.month DESC, t.transaction_id DESC
        LIMIT ?`
	args := append(append([]interface{}{}, w.args...), limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}
