package models

// Aggregate rows produced by the store's grouped reads. Derived fields
// (deltas, ranks, percentages) are computed by the analytics engine; nil
// pointers serialize as JSON null for undefined arithmetic.

// BaseAggregate is the whole-store (or filtered) aggregate used for overall
// statistics and national baselines. Sums and sum-of-squares are carried so
// the engine can derive averages and stddev itself.
type BaseAggregate struct {
	Count          int
	TownCount      int
	FlatTypeCount  int
	MinPrice       float64
	MaxPrice       float64
	SumPrice       float64
	SumPriceSq     float64
	SumFloorArea   float64
	SumPricePerSqm float64
	EarliestMonth  string
	LatestMonth    string
}

// RecentAggregate covers transactions from a given month onwards.
type RecentAggregate struct {
	Count    int
	SumPrice float64
}

// OverallStatistics is the market-wide summary response.
type OverallStatistics struct {
	TotalTransactions  int      `json:"total_transactions"`
	TotalTowns         int      `json:"total_towns"`
	TotalFlatTypes     int      `json:"total_flat_types"`
	MinPrice           float64  `json:"min_price"`
	MaxPrice           float64  `json:"max_price"`
	AvgPrice           float64  `json:"avg_price"`
	StddevPrice        float64  `json:"stddev_price"`
	AvgFloorArea       float64  `json:"avg_floor_area"`
	AvgPricePerSqm     float64  `json:"avg_price_per_sqm"`
	EarliestMonth      string   `json:"earliest_transaction"`
	LatestMonth        string   `json:"latest_transaction"`
	RecentTransactions int      `json:"recent_transactions"`
	RecentAvgPrice     *float64 `json:"recent_avg_price"`
	RecentVsOverallPct *float64 `json:"recent_vs_overall_pct"`
}

// MonthlyStat is one month of the grouped series, store order ascending.
type MonthlyStat struct {
	Month            string  `json:"month"`
	TransactionCount int     `json:"transaction_count"`
	AvgPrice         float64 `json:"avg_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AvgPricePerSqm   float64 `json:"avg_price_per_sqm"`
}

// TrendPoint is MonthlyStat plus the month-over-month and year-over-year
// derivations.
type TrendPoint struct {
	MonthlyStat
	PrevMonthPrice  *float64 `json:"prev_month_price"`
	PriceChangeMoM  *float64 `json:"price_change_mom"`
	PctChangeMoM    *float64 `json:"pct_change_mom"`
	MovingAvg3Month float64  `json:"moving_avg_3month"`
	Price12MonthAgo *float64 `json:"price_12months_ago"`
	YoYChangePct    *float64 `json:"yoy_change_pct"`
}

// TownMetric is the per-town grouped aggregate.
type TownMetric struct {
	TownName         string  `json:"town_name"`
	TransactionCount int     `json:"transaction_count"`
	AvgPrice         float64 `json:"avg_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AvgFloorArea     float64 `json:"avg_floor_area"`
	AvgPricePerSqm   float64 `json:"avg_price_per_sqm"`
}

// TownComparison is TownMetric plus rankings and national deviations.
type TownComparison struct {
	TownMetric
	PriceRank              int      `json:"price_rank"`
	PsmRank                int      `json:"psm_rank"`
	VolumeRank             int      `json:"volume_rank"`
	NationalAvgPrice       float64  `json:"national_avg_price"`
	NationalAvgPsm         float64  `json:"national_avg_psm"`
	DiffFromNational       float64  `json:"diff_from_national"`
	PctDiffFromNational    *float64 `json:"pct_diff_from_national"`
	PsmDiffFromNational    float64  `json:"psm_diff_from_national"`
	PsmPctDiffFromNational *float64 `json:"psm_pct_diff_from_national"`
}

// FlatTypeMetric is the per-flat-type grouped aggregate.
type FlatTypeMetric struct {
	FlatTypeName     string  `json:"flat_type_name"`
	TypicalRooms     *int    `json:"typical_rooms"`
	TransactionCount int     `json:"transaction_count"`
	AvgPrice         float64 `json:"avg_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AvgFloorArea     float64 `json:"avg_floor_area"`
	AvgPricePerSqm   float64 `json:"avg_price_per_sqm"`
}

// FlatTypeComparison adds rankings, market share and value metrics.
type FlatTypeComparison struct {
	FlatTypeMetric
	PriceRank           int      `json:"price_rank"`
	PriceEfficiencyRank int      `json:"price_efficiency_rank"`
	MarketSharePct      float64  `json:"market_share_pct"`
	PricePerRoom        *float64 `json:"price_per_room"`
}

// PriceBucket is one histogram bucket of the price distribution.
type PriceBucket struct {
	PriceBucket   float64 `json:"price_bucket"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
	CumulativePct float64 `json:"cumulative_pct"`
}

// YearlyTownPrice is the (year, town) grouped aggregate.
type YearlyTownPrice struct {
	Year             string  `json:"year"`
	TownName         string  `json:"town_name"`
	AvgPrice         float64 `json:"avg_price"`
	TransactionCount int     `json:"transaction_count"`
}

// YearlyTownRow adds YoY growth and the in-year rank.
type YearlyTownRow struct {
	YearlyTownPrice
	PrevYearPrice   *float64 `json:"prev_year_price"`
	YoYPriceChange  *float64 `json:"yoy_price_change"`
	YoYGrowthPct    *float64 `json:"yoy_growth_pct"`
	PriceRankInYear int      `json:"price_rank_in_year"`
}

// TopAppreciatingTown is one row of the growth ranking for a given year.
type TopAppreciatingTown struct {
	TownName      string  `json:"town_name"`
	Year          string  `json:"year"`
	AvgPrice      float64 `json:"avg_price"`
	PrevYearPrice float64 `json:"prev_year_price"`
	YoYGrowthPct  float64 `json:"yoy_growth_pct"`
	Transactions  int     `json:"transactions"`
	GrowthRank    int     `json:"growth_rank"`
}

// LeaseYearGroup is the store-side group by (flat type, remaining lease
// years); the engine folds these into lease bands.
type LeaseYearGroup struct {
	FlatTypeName        string
	RemainingLeaseYears int
	TransactionCount    int
	SumPrice            float64
	SumPricePerSqm      float64
	MinPrice            float64
	MaxPrice            float64
}

// LeaseDepreciationRow is one (flat type, lease band) output row.
type LeaseDepreciationRow struct {
	FlatTypeName     string  `json:"flat_type_name"`
	LeaseBand        string  `json:"lease_band"`
	TransactionCount int     `json:"transaction_count"`
	AvgPrice         float64 `json:"avg_price"`
	AvgPsm           float64 `json:"avg_psm"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	PriceAtTopBand   float64 `json:"price_at_90plus"`
	DepreciationPct  float64 `json:"depreciation_pct"`
}

// TownPeriodAggregate is a per-town aggregate over a month window.
type TownPeriodAggregate struct {
	TownName         string
	TransactionCount int
	AvgPrice         float64
	AvgPricePerSqm   float64
	LatestMonth      string
}

// HeatmapEntry is one town on the market heatmap.
type HeatmapEntry struct {
	TownName         string  `json:"town_name"`
	TransactionCount int     `json:"transaction_count"`
	AvgPrice         float64 `json:"avg_price"`
	AvgPricePerSqm   float64 `json:"avg_price_per_sqm"`
	LatestMonth      string  `json:"latest_month"`
	PrevAvgPrice     float64 `json:"prev_avg_price"`
	YoYGrowthPct     float64 `json:"yoy_growth_pct"`
	YoYGrowthPsmPct  float64 `json:"yoy_growth_psm_pct"`
	HeatCategory     string  `json:"heat_category"`
}

// CohortStats is the comparable-transaction cohort for price prediction.
type CohortStats struct {
	Count    int
	MinPrice float64
	AvgPrice float64
	MaxPrice float64
}

// YearPrice is a (year, avg price) point of a yearly series.
type YearPrice struct {
	Year     string
	AvgPrice float64
}

// PredictionScenario is one projection band of a price prediction.
type PredictionScenario struct {
	Price     float64 `json:"price"`
	PctChange float64 `json:"pct_change"`
}

// PricePrediction is the price projection response. Available is false when no
// comparable cohort exists; the remaining fields are then zero.
type PricePrediction struct {
	Available         bool                `json:"available"`
	Message           string              `json:"message,omitempty"`
	Town              string              `json:"town,omitempty"`
	FlatType          string              `json:"flat_type,omitempty"`
	SampleSize        int                 `json:"sample_size,omitempty"`
	CurrentMin        float64             `json:"current_min,omitempty"`
	CurrentAvg        float64             `json:"current_avg,omitempty"`
	CurrentMax        float64             `json:"current_max,omitempty"`
	AnnualGrowthPct   float64             `json:"annual_growth_pct,omitempty"`
	HasHistoricalData bool                `json:"has_historical_data"`
	Conservative      *PredictionScenario `json:"conservative,omitempty"`
	MostLikely        *PredictionScenario `json:"most_likely,omitempty"`
	Optimistic        *PredictionScenario `json:"optimistic,omitempty"`
	Confidence        float64             `json:"confidence,omitempty"`
	Warning           string              `json:"warning,omitempty"`
}
