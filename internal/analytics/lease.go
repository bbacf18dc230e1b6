package analytics

import (
	"fmt"
	"sort"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

type leaseBandGroup struct {
	flatType  string
	bandFloor int
	band      string
	count     int
	sumPrice  float64
	sumPsm    float64
	minPrice  float64
	maxPrice  float64
}

// LeaseDepreciation buckets transactions into remaining-lease bands per
// flat type and reports each band's average price against the flat type's
// highest band present (its benchmark). Bands order by their numeric floor,
// not by label.
func (e *Engine) LeaseDepreciation(flatType string) ([]models.LeaseDepreciationRow, error) {
	groups, err := e.store.LeaseYearGroups(flatType)
	if err != nil {
		return nil, fmt.Errorf("lease year groups: %w", err)
	}

	type key struct {
		flatType  string
		bandFloor int
	}
	merged := make(map[key]*leaseBandGroup)
	for _, g := range groups {
		band := config.BandForLeaseYears(g.RemainingLeaseYears)
		k := key{g.FlatTypeName, band.Floor}
		m, ok := merged[k]
		if !ok {
			m = &leaseBandGroup{
				flatType:  g.FlatTypeName,
				bandFloor: band.Floor,
				band:      band.Label,
				minPrice:  g.MinPrice,
				maxPrice:  g.MaxPrice,
			}
			merged[k] = m
		}
		m.count += g.TransactionCount
		m.sumPrice += g.SumPrice
		m.sumPsm += g.SumPricePerSqm
		if g.MinPrice < m.minPrice {
			m.minPrice = g.MinPrice
		}
		if g.MaxPrice > m.maxPrice {
			m.maxPrice = g.MaxPrice
		}
	}

	bands := make([]*leaseBandGroup, 0, len(merged))
	for _, m := range merged {
		bands = append(bands, m)
	}
	sort.Slice(bands, func(i, j int) bool {
		if bands[i].flatType != bands[j].flatType {
			return bands[i].flatType < bands[j].flatType
		}
		return bands[i].bandFloor > bands[j].bandFloor
	})

	// The first band of each flat type is its highest present band and
	// serves as the depreciation benchmark.
	benchmarks := make(map[string]float64)
	for _, b := range bands {
		if _, ok := benchmarks[b.flatType]; !ok {
			benchmarks[b.flatType] = b.sumPrice / float64(b.count)
		}
	}

	rows := make([]models.LeaseDepreciationRow, len(bands))
	for i, b := range bands {
		avg := round2(b.sumPrice / float64(b.count))
		bench := benchmarks[b.flatType]
		row := models.LeaseDepreciationRow{
			FlatTypeName:     b.flatType,
			LeaseBand:        b.band,
			TransactionCount: b.count,
			AvgPrice:         avg,
			AvgPsm:           round2(b.sumPsm / float64(b.count)),
			MinPrice:         b.minPrice,
			MaxPrice:         b.maxPrice,
			PriceAtTopBand:   round2(bench),
		}
		if bench != 0 {
			row.DepreciationPct = round2((b.sumPrice/float64(b.count) - bench) / bench * 100)
		}
		rows[i] = row
	}
	return rows, nil
}
