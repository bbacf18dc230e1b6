package analytics

import (
	"fmt"
	"sort"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// PriceDistribution buckets transaction prices into a histogram with
// per-bucket and cumulative percentages. Prices outside the fixed outlier
// window are excluded before bucketing.
func (e *Engine) PriceDistribution(bucketSize float64) ([]models.PriceBucket, error) {
	if bucketSize <= 0 {
		return nil, fmt.Errorf("%w: bucket size must be positive, got %v", ErrInvalidParameter, bucketSize)
	}

	buckets, err := e.store.PriceBuckets(bucketSize, config.DistributionMinPrice, config.DistributionMaxPrice)
	if err != nil {
		return nil, fmt.Errorf("price buckets: %w", err)
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].PriceBucket < buckets[j].PriceBucket })

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	if total == 0 {
		return buckets, nil
	}

	cumulative := 0
	for i := range buckets {
		cumulative += buckets[i].Count
		buckets[i].Percentage = round2(float64(buckets[i].Count) * 100 / float64(total))
		buckets[i].CumulativePct = round2(float64(cumulative) * 100 / float64(total))
	}
	return buckets, nil
}
