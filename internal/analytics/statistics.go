package analytics

import (
	"fmt"
	"math"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// OverallStatistics computes the whole-store summary plus a recent-window
// comparison. recentMonths is the window length; values below 1 are
// rejected.
func (e *Engine) OverallStatistics(recentMonths int) (models.OverallStatistics, error) {
	if recentMonths < 1 {
		return models.OverallStatistics{}, fmt.Errorf("%w: recent window must be positive, got %d", ErrInvalidParameter, recentMonths)
	}

	base, err := e.store.BaseAggregate()
	if err != nil {
		return models.OverallStatistics{}, fmt.Errorf("base aggregate: %w", err)
	}

	stats := models.OverallStatistics{
		TotalTransactions: base.Count,
		TotalTowns:        base.TownCount,
		TotalFlatTypes:    base.FlatTypeCount,
		MinPrice:          base.MinPrice,
		MaxPrice:          base.MaxPrice,
		EarliestMonth:     base.EarliestMonth,
		LatestMonth:       base.LatestMonth,
	}

	if base.Count > 0 {
		n := float64(base.Count)
		stats.AvgPrice = round2(base.SumPrice / n)
		stats.AvgFloorArea = round2(base.SumFloorArea / n)
		stats.AvgPricePerSqm = round2(base.SumPricePerSqm / n)
		// Population standard deviation from the carried moments.
		variance := base.SumPriceSq/n - (base.SumPrice/n)*(base.SumPrice/n)
		if variance > 0 {
			stats.StddevPrice = round2(math.Sqrt(variance))
		}
	}

	fromMonth := addMonths(e.currentMonth(), -recentMonths)
	recent, err := e.store.RecentAggregate(fromMonth)
	if err != nil {
		return models.OverallStatistics{}, fmt.Errorf("recent aggregate: %w", err)
	}

	stats.RecentTransactions = recent.Count
	if recent.Count > 0 {
		stats.RecentAvgPrice = ptr(round2(recent.SumPrice / float64(recent.Count)))
	}
	if stats.RecentAvgPrice != nil && stats.AvgPrice != 0 {
		stats.RecentVsOverallPct = pctChange(*stats.RecentAvgPrice, stats.AvgPrice)
	}

	return stats, nil
}
