package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

const (
	cohortMonths        = 6
	cohortAreaTolerance = 10.0
	projectionYears     = 2
	smallCohortSize     = 5
)

// PredictionRequest selects the comparable cohort for a price projection.
type PredictionRequest struct {
	Town           string  `json:"town"`
	FlatType       string  `json:"flatType"`
	FloorArea      float64 `json:"floorArea"`
	RemainingLease int     `json:"remainingLease"`
}

// PredictPrice projects a 2-year-ahead price band for a town + flat type
// cohort of recent comparable transactions. The annual growth rate comes
// from the combination's own yearly history when at least two years exist,
// otherwise from the market-wide series. An empty cohort yields an explicit
// unavailable result, never an error.
func (e *Engine) PredictPrice(req PredictionRequest) (models.PricePrediction, error) {
	town := strings.TrimSpace(req.Town)
	flatType := strings.TrimSpace(req.FlatType)
	if town == "" || flatType == "" {
		return models.PricePrediction{}, fmt.Errorf("%w: town and flatType are required", ErrInvalidParameter)
	}
	if req.FloorArea <= 0 {
		return models.PricePrediction{}, fmt.Errorf("%w: floorArea must be positive, got %v", ErrInvalidParameter, req.FloorArea)
	}

	fromMonth := addMonths(e.currentMonth(), -cohortMonths)
	cohort, err := e.store.PredictionCohort(
		town, flatType,
		req.FloorArea-cohortAreaTolerance, req.FloorArea+cohortAreaTolerance,
		fromMonth,
	)
	if err != nil {
		return models.PricePrediction{}, fmt.Errorf("prediction cohort: %w", err)
	}

	if cohort.Count == 0 {
		return models.PricePrediction{
			Available: false,
			Message:   "no comparable recent transactions for this town and flat type",
			Town:      town,
			FlatType:  flatType,
		}, nil
	}

	growthRate, hasHistory, err := e.annualGrowthRate(town, flatType)
	if err != nil {
		return models.PricePrediction{}, err
	}

	pred := models.PricePrediction{
		Available:         true,
		Town:              town,
		FlatType:          flatType,
		SampleSize:        cohort.Count,
		CurrentMin:        cohort.MinPrice,
		CurrentAvg:        round2(cohort.AvgPrice),
		CurrentMax:        cohort.MaxPrice,
		AnnualGrowthPct:   round2(growthRate),
		HasHistoricalData: hasHistory,
		Conservative:      project(cohort.AvgPrice, growthRate*0.7),
		MostLikely:        project(cohort.AvgPrice, growthRate),
		Optimistic:        project(cohort.AvgPrice, growthRate*1.3),
	}

	confidence := 0.6
	if hasHistory {
		confidence = 0.85
	}
	if cohort.Count < smallCohortSize {
		confidence -= 0.2
		pred.Warning = "limited_data"
	}
	pred.Confidence = round2(confidence)

	return pred, nil
}

// annualGrowthRate averages the year-over-year growth of the combination's
// yearly price series, falling back to the market-wide series when fewer
// than two years of history exist.
func (e *Engine) annualGrowthRate(town, flatType string) (float64, bool, error) {
	series, err := e.store.YearlyPrices(town, flatType)
	if err != nil {
		return 0, false, fmt.Errorf("yearly prices: %w", err)
	}
	if rate, ok := meanYoYGrowth(series); ok {
		return rate, true, nil
	}

	market, err := e.store.MarketYearlyPrices()
	if err != nil {
		return 0, false, fmt.Errorf("market yearly prices: %w", err)
	}
	rate, _ := meanYoYGrowth(market)
	return rate, false, nil
}

// meanYoYGrowth is the arithmetic mean of consecutive-year growth
// percentages. It reports false when the series has fewer than two usable
// periods.
func meanYoYGrowth(series []models.YearPrice) (float64, bool) {
	var sum float64
	var n int
	for i := 1; i < len(series); i++ {
		prev := series[i-1].AvgPrice
		if prev == 0 {
			continue
		}
		sum += (series[i].AvgPrice - prev) / prev * 100
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// project compounds an annual growth rate over the projection horizon.
func project(currentAvg, annualRatePct float64) *models.PredictionScenario {
	price := currentAvg * math.Pow(1+annualRatePct/100, projectionYears)
	return &models.PredictionScenario{
		Price:     round2(price),
		PctChange: round2((price - currentAvg) / currentAvg * 100),
	}
}
