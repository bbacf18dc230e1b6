package analytics

import (
	"fmt"
	"sort"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// assignRanks writes sequential ranks 1..n into out[i] for every row index,
// ordered by less. Callers must make less total (tie-break on a unique key)
// so ranks are deterministic and gap-free.
func assignRanks(n int, less func(i, j int) bool, out func(row, rank int)) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return less(order[a], order[b]) })
	for pos, row := range order {
		out(row, pos+1)
	}
}

// TownComparison groups the whole store by town, ranks towns by average
// price, price per sqm and volume, and reports each town's deviation from
// the national baseline. Ties rank by town name ascending.
func (e *Engine) TownComparison() ([]models.TownComparison, error) {
	metrics, err := e.store.TownMetrics()
	if err != nil {
		return nil, fmt.Errorf("town metrics: %w", err)
	}
	base, err := e.store.BaseAggregate()
	if err != nil {
		return nil, fmt.Errorf("base aggregate: %w", err)
	}

	var nationalAvg, nationalPsm float64
	if base.Count > 0 {
		nationalAvg = round2(base.SumPrice / float64(base.Count))
		nationalPsm = round2(base.SumPricePerSqm / float64(base.Count))
	}

	rows := make([]models.TownComparison, len(metrics))
	for i, m := range metrics {
		rows[i] = models.TownComparison{
			TownMetric:          m,
			NationalAvgPrice:    nationalAvg,
			NationalAvgPsm:      nationalPsm,
			DiffFromNational:    round2(m.AvgPrice - nationalAvg),
			PsmDiffFromNational: round2(m.AvgPricePerSqm - nationalPsm),
		}
		if nationalAvg != 0 {
			rows[i].PctDiffFromNational = pctChange(m.AvgPrice, nationalAvg)
		}
		if nationalPsm != 0 {
			rows[i].PsmPctDiffFromNational = pctChange(m.AvgPricePerSqm, nationalPsm)
		}
	}

	assignRanks(len(rows), func(i, j int) bool {
		if rows[i].AvgPrice != rows[j].AvgPrice {
			return rows[i].AvgPrice > rows[j].AvgPrice
		}
		return rows[i].TownName < rows[j].TownName
	}, func(row, rank int) { rows[row].PriceRank = rank })

	assignRanks(len(rows), func(i, j int) bool {
		if rows[i].AvgPricePerSqm != rows[j].AvgPricePerSqm {
			return rows[i].AvgPricePerSqm > rows[j].AvgPricePerSqm
		}
		return rows[i].TownName < rows[j].TownName
	}, func(row, rank int) { rows[row].PsmRank = rank })

	assignRanks(len(rows), func(i, j int) bool {
		if rows[i].TransactionCount != rows[j].TransactionCount {
			return rows[i].TransactionCount > rows[j].TransactionCount
		}
		return rows[i].TownName < rows[j].TownName
	}, func(row, rank int) { rows[row].VolumeRank = rank })

	sort.Slice(rows, func(i, j int) bool { return rows[i].PriceRank < rows[j].PriceRank })
	return rows, nil
}

// FlatTypeComparison groups the whole store by flat type with price and
// efficiency rankings, market share and price per room. Output is ordered
// by typical rooms ascending (unknown room counts last).
func (e *Engine) FlatTypeComparison() ([]models.FlatTypeComparison, error) {
	metrics, err := e.store.FlatTypeMetrics()
	if err != nil {
		return nil, fmt.Errorf("flat type metrics: %w", err)
	}

	total := 0
	for _, m := range metrics {
		total += m.TransactionCount
	}

	rows := make([]models.FlatTypeComparison, len(metrics))
	for i, m := range metrics {
		rows[i] = models.FlatTypeComparison{FlatTypeMetric: m}
		if total > 0 {
			rows[i].MarketSharePct = round2(float64(m.TransactionCount) * 100 / float64(total))
		}
		if m.TypicalRooms != nil && *m.TypicalRooms > 0 {
			rows[i].PricePerRoom = ptr(round2(m.AvgPrice / float64(*m.TypicalRooms)))
		}
	}

	assignRanks(len(rows), func(i, j int) bool {
		if rows[i].AvgPrice != rows[j].AvgPrice {
			return rows[i].AvgPrice > rows[j].AvgPrice
		}
		return rows[i].FlatTypeName < rows[j].FlatTypeName
	}, func(row, rank int) { rows[row].PriceRank = rank })

	// Lower price per sqm ranks first: it buys more floor area per dollar.
	assignRanks(len(rows), func(i, j int) bool {
		if rows[i].AvgPricePerSqm != rows[j].AvgPricePerSqm {
			return rows[i].AvgPricePerSqm < rows[j].AvgPricePerSqm
		}
		return rows[i].FlatTypeName < rows[j].FlatTypeName
	}, func(row, rank int) { rows[row].PriceEfficiencyRank = rank })

	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rows[i].TypicalRooms, rows[j].TypicalRooms
		switch {
		case ri == nil && rj == nil:
			return rows[i].FlatTypeName < rows[j].FlatTypeName
		case ri == nil:
			return false
		case rj == nil:
			return true
		case *ri != *rj:
			return *ri < *rj
		}
		return rows[i].FlatTypeName < rows[j].FlatTypeName
	})
	return rows, nil
}
