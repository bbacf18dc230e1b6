package analytics

import (
	"fmt"
	"sort"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// Heatmap compares each town's last `months` months against the same-length
// window one year earlier and categorizes the YoY price growth. Towns
// without previous-period data are left out: their growth is undefined.
func (e *Engine) Heatmap(months int, flatType string) ([]models.HeatmapEntry, error) {
	if months < 1 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", ErrInvalidParameter, months)
	}

	now := e.currentMonth()
	current, err := e.store.TownPeriodAggregates(addMonths(now, -months), "", flatType)
	if err != nil {
		return nil, fmt.Errorf("current period: %w", err)
	}
	previous, err := e.store.TownPeriodAggregates(addMonths(now, -(months+12)), addMonths(now, -12), flatType)
	if err != nil {
		return nil, fmt.Errorf("previous period: %w", err)
	}

	prevByTown := make(map[string]models.TownPeriodAggregate, len(previous))
	for _, p := range previous {
		prevByTown[p.TownName] = p
	}

	var entries []models.HeatmapEntry
	for _, c := range current {
		p, ok := prevByTown[c.TownName]
		if !ok || p.AvgPrice == 0 {
			continue
		}
		growth := round2((c.AvgPrice - p.AvgPrice) / p.AvgPrice * 100)
		entry := models.HeatmapEntry{
			TownName:         c.TownName,
			TransactionCount: c.TransactionCount,
			AvgPrice:         c.AvgPrice,
			AvgPricePerSqm:   c.AvgPricePerSqm,
			LatestMonth:      c.LatestMonth,
			PrevAvgPrice:     p.AvgPrice,
			YoYGrowthPct:     growth,
			HeatCategory:     config.HeatCategoryFor(growth),
		}
		if p.AvgPricePerSqm != 0 {
			entry.YoYGrowthPsmPct = round2((c.AvgPricePerSqm - p.AvgPricePerSqm) / p.AvgPricePerSqm * 100)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].YoYGrowthPct != entries[j].YoYGrowthPct {
			return entries[i].YoYGrowthPct > entries[j].YoYGrowthPct
		}
		return entries[i].TownName < entries[j].TownName
	})
	return entries, nil
}
