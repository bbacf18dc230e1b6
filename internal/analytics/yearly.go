package analytics

import (
	"fmt"
	"sort"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// yearlyGrowthRows derives each town's previous-year price and YoY growth
// with a single forward pass per town over the year-sorted series.
func yearlyGrowthRows(prices []models.YearlyTownPrice) []models.YearlyTownRow {
	rows := make([]models.YearlyTownRow, len(prices))
	for i, p := range prices {
		rows[i] = models.YearlyTownRow{YearlyTownPrice: p}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TownName != rows[j].TownName {
			return rows[i].TownName < rows[j].TownName
		}
		return rows[i].Year < rows[j].Year
	})

	for i := 1; i < len(rows); i++ {
		if rows[i].TownName != rows[i-1].TownName {
			continue
		}
		prev := rows[i-1].AvgPrice
		rows[i].PrevYearPrice = ptr(prev)
		rows[i].YoYPriceChange = ptr(round2(rows[i].AvgPrice - prev))
		rows[i].YoYGrowthPct = pctChange(rows[i].AvgPrice, prev)
	}
	return rows
}

// YearlyTownPrices is the per-town yearly price table over the fixed year
// range, with YoY growth and a per-year price ranking. Ordered by year
// ascending, then average price descending.
func (e *Engine) YearlyTownPrices() ([]models.YearlyTownRow, error) {
	prices, err := e.store.YearlyTownPrices(config.YearlyTableFirstYear, config.YearlyTableLastYear)
	if err != nil {
		return nil, fmt.Errorf("yearly town prices: %w", err)
	}

	rows := yearlyGrowthRows(prices)

	// Rank towns by average price within each year, ties by town name.
	byYear := make(map[string][]int)
	for i, r := range rows {
		byYear[r.Year] = append(byYear[r.Year], i)
	}
	for _, idx := range byYear {
		sort.Slice(idx, func(a, b int) bool {
			i, j := idx[a], idx[b]
			if rows[i].AvgPrice != rows[j].AvgPrice {
				return rows[i].AvgPrice > rows[j].AvgPrice
			}
			return rows[i].TownName < rows[j].TownName
		})
		for pos, i := range idx {
			rows[i].PriceRankInYear = pos + 1
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		if rows[i].AvgPrice != rows[j].AvgPrice {
			return rows[i].AvgPrice > rows[j].AvgPrice
		}
		return rows[i].TownName < rows[j].TownName
	})
	return rows, nil
}

// TopAppreciatingTowns ranks towns by YoY price growth in the requested
// year over the unbounded yearly series. Towns with no previous-year data
// are excluded.
func (e *Engine) TopAppreciatingTowns(year string, limit int) ([]models.TopAppreciatingTown, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidParameter, limit)
	}
	if len(year) != 4 {
		return nil, fmt.Errorf("%w: year must be a 4-digit string, got %q", ErrInvalidParameter, year)
	}

	prices, err := e.store.YearlyTownPrices("", "")
	if err != nil {
		return nil, fmt.Errorf("yearly town prices: %w", err)
	}

	var towns []models.TopAppreciatingTown
	for _, r := range yearlyGrowthRows(prices) {
		if r.Year != year || r.PrevYearPrice == nil || r.YoYGrowthPct == nil {
			continue
		}
		towns = append(towns, models.TopAppreciatingTown{
			TownName:      r.TownName,
			Year:          r.Year,
			AvgPrice:      r.AvgPrice,
			PrevYearPrice: *r.PrevYearPrice,
			YoYGrowthPct:  *r.YoYGrowthPct,
			Transactions:  r.TransactionCount,
		})
	}

	sort.Slice(towns, func(i, j int) bool {
		if towns[i].YoYGrowthPct != towns[j].YoYGrowthPct {
			return towns[i].YoYGrowthPct > towns[j].YoYGrowthPct
		}
		return towns[i].TownName < towns[j].TownName
	})
	for i := range towns {
		towns[i].GrowthRank = i + 1
	}

	if len(towns) > limit {
		towns = towns[:limit]
	}
	return towns, nil
}
