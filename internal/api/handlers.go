package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/analytics"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/recommend"
)

// PropertyStore is the plumbing read access the handlers need besides the
// analytics engine. *database.Database implements it.
type PropertyStore interface {
	GetTowns() ([]models.Town, error)
	GetTownCounts() ([]models.TownCount, error)
	GetFlatTypes() ([]models.FlatType, error)
	SearchProperties(f models.SearchFilters) ([]models.Transaction, int, error)
	GetPropertyByID(id int64) (*models.Transaction, error)
	GetRecentTransactions(limit int) ([]models.Transaction, error)
}

// Recommender produces property recommendations from user preferences.
type Recommender interface {
	Recommend(prefs recommend.Preferences) (recommend.Result, error)
}

// BoundarySource builds the per-town boundary GeoJSON.
type BoundarySource interface {
	TownBoundaries() (*geojson.FeatureCollection, error)
}

type Handler struct {
	engine      *analytics.Engine
	store       PropertyStore
	recommender Recommender
	boundaries  BoundarySource
	// backfill geocodes blocks without coordinates and returns how many
	// were updated.
	backfill func() (int, error)
	config   *config.Config
	logger   *logrus.Logger
}

func NewHandler(engine *analytics.Engine, store PropertyStore, recommender Recommender, boundaries BoundarySource, backfill func() (int, error), cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		engine:      engine,
		store:       store,
		recommender: recommender,
		boundaries:  boundaries,
		backfill:    backfill,
		config:      cfg,
		logger:      logger,
	}
}

// intQuery parses an optional integer query parameter. A present but
// malformed value is a client error, not a silent default.
func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func floatQuery(c *gin.Context, name string, fallback float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

func (h *Handler) serverError(c *gin.Context, err error, message string) {
	h.logger.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": message})
}

// respondEngine maps an engine result onto the response envelope.
// analytics.ErrInvalidParameter is the caller's fault, everything else is
// ours.
func (h *Handler) respondEngine(c *gin.Context, data interface{}, err error, count int) {
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidParameter) {
			h.badRequest(c, err.Error())
			return
		}
		h.serverError(c, err, "Failed to compute analytics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.engine.OverallStatistics(h.config.Analytics.RecentWindowMonths)
	if err != nil {
		h.serverError(c, err, "Failed to compute statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func (h *Handler) GetPriceTrends(c *gin.Context) {
	months, err := intQuery(c, "months", 12)
	if err != nil {
		h.badRequest(c, "months must be an integer")
		return
	}
	filter := analytics.Filter{
		Town:     c.Query("town"),
		FlatType: c.Query("flatType"),
	}

	trends, err := h.engine.PriceTrends(months, filter)
	h.respondEngine(c, trends, err, len(trends))
}

// GetTownTrends is the per-town trend view. Unlike GetPriceTrends the town
// is mandatory.
func (h *Handler) GetTownTrends(c *gin.Context) {
	town := strings.TrimSpace(c.Query("town"))
	if town == "" {
		h.badRequest(c, "town is required")
		return
	}
	months, err := intQuery(c, "months", 12)
	if err != nil {
		h.badRequest(c, "months must be an integer")
		return
	}

	trends, err := h.engine.PriceTrends(months, analytics.Filter{
		Town:     town,
		FlatType: c.Query("flatType"),
	})
	h.respondEngine(c, trends, err, len(trends))
}

func (h *Handler) GetTownComparison(c *gin.Context) {
	comparison, err := h.engine.TownComparison()
	h.respondEngine(c, comparison, err, len(comparison))
}

func (h *Handler) GetFlatTypeComparison(c *gin.Context) {
	comparison, err := h.engine.FlatTypeComparison()
	h.respondEngine(c, comparison, err, len(comparison))
}

func (h *Handler) GetPriceDistribution(c *gin.Context) {
	bucketSize, err := floatQuery(c, "bucketSize", 50000)
	if err != nil {
		h.badRequest(c, "bucketSize must be a number")
		return
	}

	buckets, err := h.engine.PriceDistribution(bucketSize)
	h.respondEngine(c, buckets, err, len(buckets))
}

func (h *Handler) GetYearlyTownPrices(c *gin.Context) {
	rows, err := h.engine.YearlyTownPrices()
	h.respondEngine(c, rows, err, len(rows))
}

func (h *Handler) GetTopAppreciatingTowns(c *gin.Context) {
	limit, err := intQuery(c, "limit", 10)
	if err != nil {
		h.badRequest(c, "limit must be an integer")
		return
	}
	year := c.Query("year")
	if year == "" {
		year = time.Now().Format("2006")
	}

	towns, err := h.engine.TopAppreciatingTowns(year, limit)
	h.respondEngine(c, towns, err, len(towns))
}

func (h *Handler) GetLeaseDepreciation(c *gin.Context) {
	rows, err := h.engine.LeaseDepreciation(c.Query("flatType"))
	h.respondEngine(c, rows, err, len(rows))
}

func (h *Handler) GetHeatmap(c *gin.Context) {
	months, err := intQuery(c, "months", 12)
	if err != nil {
		h.badRequest(c, "months must be an integer")
		return
	}

	entries, err := h.engine.Heatmap(months, c.Query("flatType"))
	h.respondEngine(c, entries, err, len(entries))
}

func (h *Handler) PredictPrice(c *gin.Context) {
	var req analytics.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	prediction, err := h.engine.PredictPrice(req)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidParameter) {
			h.badRequest(c, err.Error())
			return
		}
		h.serverError(c, err, "Failed to compute prediction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": prediction})
}

func (h *Handler) GetTowns(c *gin.Context) {
	towns, err := h.store.GetTowns()
	if err != nil {
		h.serverError(c, err, "Failed to get towns")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(towns), "data": towns})
}

func (h *Handler) GetTownStats(c *gin.Context) {
	counts, err := h.store.GetTownCounts()
	if err != nil {
		h.serverError(c, err, "Failed to get town stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(counts), "data": counts})
}

func (h *Handler) GetTownBoundaries(c *gin.Context) {
	fc, err := h.boundaries.TownBoundaries()
	if err != nil {
		h.serverError(c, err, "Failed to build town boundaries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(fc.Features), "data": fc})
}

func (h *Handler) GetFlatTypes(c *gin.Context) {
	types, err := h.store.GetFlatTypes()
	if err != nil {
		h.serverError(c, err, "Failed to get flat types")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(types), "data": types})
}

// splitList parses a comma separated query value into trimmed entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *Handler) SearchProperties(c *gin.Context) {
	filters := models.SearchFilters{
		Towns:     splitList(c.Query("towns")),
		FlatTypes: splitList(c.Query("flatTypes")),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	var err error
	if filters.MinPrice, err = floatQuery(c, "minPrice", 0); err != nil {
		h.badRequest(c, "minPrice must be a number")
		return
	}
	if filters.MaxPrice, err = floatQuery(c, "maxPrice", 0); err != nil {
		h.badRequest(c, "maxPrice must be a number")
		return
	}
	if filters.MinFloorArea, err = floatQuery(c, "minFloorArea", 0); err != nil {
		h.badRequest(c, "minFloorArea must be a number")
		return
	}
	if filters.MaxFloorArea, err = floatQuery(c, "maxFloorArea", 0); err != nil {
		h.badRequest(c, "maxFloorArea must be a number")
		return
	}
	if filters.MinRemainingLease, err = intQuery(c, "minRemainingLease", 0); err != nil {
		h.badRequest(c, "minRemainingLease must be an integer")
		return
	}
	if filters.Limit, err = intQuery(c, "limit", 50); err != nil {
		h.badRequest(c, "limit must be an integer")
		return
	}
	if filters.Offset, err = intQuery(c, "offset", 0); err != nil {
		h.badRequest(c, "offset must be an integer")
		return
	}

	txs, total, err := h.store.SearchProperties(filters)
	if err != nil {
		h.serverError(c, err, "Failed to search properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   total,
		"filters": filters,
		"data":    txs,
	})
}

func (h *Handler) GetRecentProperties(c *gin.Context) {
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		h.badRequest(c, "limit must be an integer")
		return
	}

	txs, err := h.store.GetRecentTransactions(limit)
	if err != nil {
		h.serverError(c, err, "Failed to get recent transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(txs), "data": txs})
}

func (h *Handler) GetPropertyByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "id must be an integer")
		return
	}

	tx, err := h.store.GetPropertyByID(id)
	if err != nil {
		h.serverError(c, err, "Failed to get property")
		return
	}
	if tx == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Property not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tx})
}

func (h *Handler) Recommendations(c *gin.Context) {
	var prefs recommend.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	result, err := h.recommender.Recommend(prefs)
	if err != nil {
		h.serverError(c, err, "Failed to compute recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(result.Recommendations),
		"data":    result,
	})
}

func (h *Handler) UpdateCoordinates(c *gin.Context) {
	// Geocoding is rate limited, so run it off the request.
	go func() {
		updated, err := h.backfill()
		if err != nil {
			h.logger.WithError(err).Error("Coordinate backfill failed")
			return
		}
		h.logger.WithField("updated", updated).Info("Coordinate backfill finished")
	}()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "Coordinates update process started",
	})
}
