package config

// Fixed analytics policy tables. These are deliberate constants of the
// product, not tunables: changing them changes the meaning of published
// figures.

// LeaseBand is a coarse bucket of remaining lease duration. Floor is the
// band's lower bound in years; ordering by Floor is the canonical band
// order ("90+ years" sorts above "Below 60 years" regardless of locale).
type LeaseBand struct {
	Label string
	Floor int
}

// LeaseBands in descending Floor order.
var LeaseBands = []LeaseBand{
	{Label: "90+ years", Floor: 90},
	{Label: "80-89 years", Floor: 80},
	{Label: "70-79 years", Floor: 70},
	{Label: "60-69 years", Floor: 60},
	{Label: "Below 60 years", Floor: 0},
}

// BandForLeaseYears returns the band a remaining-lease duration falls into.
func BandForLeaseYears(years int) LeaseBand {
	for _, b := range LeaseBands {
		if years >= b.Floor {
			return b
		}
	}
	return LeaseBands[len(LeaseBands)-1]
}

// heatThreshold maps a minimum YoY growth percentage to a heatmap category.
type heatThreshold struct {
	MinGrowthPct float64
	Category     string
}

var heatThresholds = []heatThreshold{
	{MinGrowthPct: 10, Category: "very_hot"},
	{MinGrowthPct: 5, Category: "hot"},
	{MinGrowthPct: 2, Category: "warm"},
	{MinGrowthPct: 0, Category: "neutral"},
}

// HeatCategoryFor maps YoY price growth to its heatmap category.
func HeatCategoryFor(growthPct float64) string {
	for _, t := range heatThresholds {
		if growthPct >= t.MinGrowthPct {
			return t.Category
		}
	}
	return "cool"
}

// Year range of the yearly town price table.
const (
	YearlyTableFirstYear = "2020"
	YearlyTableLastYear  = "2025"
)

// Price window for the distribution histogram; transactions outside it are
// treated as outliers and excluded.
const (
	DistributionMinPrice = 100000
	DistributionMaxPrice = 1250000
)
