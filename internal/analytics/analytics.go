package analytics

import (
	"errors"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// ErrInvalidParameter marks a parameter that is present but malformed or out
// of range. The API layer maps it to a client error.
var ErrInvalidParameter = errors.New("invalid parameter")

// Filter narrows an aggregation to one town and/or flat type. Zero values
// mean "no constraint".
type Filter struct {
	Town     string
	FlatType string
}

// Store is the read interface into the transaction store. Implementations
// return grouped aggregates; all windowed and ranked derivations happen in
// the engine so results do not depend on the storage engine's dialect.
type Store interface {
	// BaseAggregate covers the whole store.
	BaseAggregate() (models.BaseAggregate, error)
	// RecentAggregate covers transactions with month >= fromMonth.
	RecentAggregate(fromMonth string) (models.RecentAggregate, error)
	// MonthlyStats groups the filtered transactions by month, ascending.
	// Months with no transactions are absent.
	MonthlyStats(f Filter) ([]models.MonthlyStat, error)
	// TownMetrics groups by town, in no particular order.
	TownMetrics() ([]models.TownMetric, error)
	// FlatTypeMetrics groups by flat type, in no particular order.
	FlatTypeMetrics() ([]models.FlatTypeMetric, error)
	// PriceBuckets groups prices within [minPrice, maxPrice] into buckets of
	// floor(price/bucketSize)*bucketSize, ascending. Only bucket and count
	// are populated.
	PriceBuckets(bucketSize, minPrice, maxPrice float64) ([]models.PriceBucket, error)
	// YearlyTownPrices groups by (year, town) within the inclusive year
	// range; empty bounds mean unbounded.
	YearlyTownPrices(firstYear, lastYear string) ([]models.YearlyTownPrice, error)
	// LeaseYearGroups groups by (flat type, remaining lease years),
	// optionally restricted to one flat type.
	LeaseYearGroups(flatType string) ([]models.LeaseYearGroup, error)
	// TownPeriodAggregates groups by town over fromMonth <= month <
	// beforeMonth (beforeMonth empty = open-ended), optionally restricted
	// to one flat type.
	TownPeriodAggregates(fromMonth, beforeMonth, flatType string) ([]models.TownPeriodAggregate, error)
	// PredictionCohort aggregates transactions matching town, flat type and
	// floor area in [minArea, maxArea] with month >= fromMonth.
	PredictionCohort(town, flatType string, minArea, maxArea float64, fromMonth string) (models.CohortStats, error)
	// YearlyPrices is the per-year average price series for one town + flat
	// type combination, ascending by year.
	YearlyPrices(town, flatType string) ([]models.YearPrice, error)
	// MarketYearlyPrices is the market-wide per-year average price series,
	// ascending by year.
	MarketYearlyPrices() ([]models.YearPrice, error)
}

// Engine computes the analytics endpoints over a Store. All methods are
// read-only and referentially transparent for fixed store contents, so they
// are safe to call concurrently and to memoize.
type Engine struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewEngine(store Store, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Engine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// currentMonth is the year-month the relative windows (recent statistics,
// heatmap periods, prediction cohort) are anchored to.
func (e *Engine) currentMonth() string {
	return e.now().Format("2006-01")
}

const monthLayout = "2006-01"

// addMonths shifts a "YYYY-MM" key by delta months.
func addMonths(month string, delta int) string {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return month
	}
	return t.AddDate(0, delta, 0).Format(monthLayout)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// pctChange returns (current-previous)/previous*100 rounded to 2 decimals,
// or nil when the baseline is zero.
func pctChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	p := round2((current - previous) / previous * 100)
	return &p
}

func ptr(v float64) *float64 { return &v }
