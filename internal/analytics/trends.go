package analytics

import (
	"fmt"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// PriceTrends returns the most recent `months` months of the filtered
// monthly series, in chronological order, with month-over-month deltas, a
// trailing 3-month moving average and year-over-year growth.
//
// The windowed derivations run over the full monthly series before
// truncation, so the earliest returned months keep correct deltas whenever
// older history exists.
func (e *Engine) PriceTrends(months int, f Filter) ([]models.TrendPoint, error) {
	if months < 1 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", ErrInvalidParameter, months)
	}

	series, err := e.store.MonthlyStats(f)
	if err != nil {
		return nil, fmt.Errorf("monthly stats: %w", err)
	}

	byMonth := make(map[string]float64, len(series))
	for _, m := range series {
		byMonth[m.Month] = m.AvgPrice
	}

	points := make([]models.TrendPoint, len(series))
	for i, m := range series {
		p := models.TrendPoint{MonthlyStat: m}

		if i > 0 {
			prev := series[i-1].AvgPrice
			p.PrevMonthPrice = ptr(prev)
			p.PriceChangeMoM = ptr(round2(m.AvgPrice - prev))
			p.PctChangeMoM = pctChange(m.AvgPrice, prev)
		}

		// Trailing window: the current month and up to two preceding ones.
		start := i - 2
		if start < 0 {
			start = 0
		}
		var sum float64
		for _, w := range series[start : i+1] {
			sum += w.AvgPrice
		}
		p.MovingAvg3Month = round2(sum / float64(i+1-start))

		if yearAgo, ok := byMonth[addMonths(m.Month, -12)]; ok {
			p.Price12MonthAgo = ptr(yearAgo)
			p.YoYChangePct = pctChange(m.AvgPrice, yearAgo)
		}

		points[i] = p
	}

	if len(points) > months {
		points = points[len(points)-months:]
	}
	return points, nil
}
