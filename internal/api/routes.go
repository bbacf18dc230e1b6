package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts all API routes plus the CORS middleware.
func SetupRoutes(router *gin.Engine, handler *Handler, allowOrigins string) {
	corsConfig := cors.DefaultConfig()
	if allowOrigins == "" || allowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(allowOrigins, ",")
	}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	{
		analytics := api.Group("/analytics")
		{
			analytics.GET("/statistics", handler.GetStatistics)
			analytics.GET("/price-trends", handler.GetPriceTrends)
			analytics.GET("/town-trends", handler.GetTownTrends)
			analytics.GET("/town-comparison", handler.GetTownComparison)
			analytics.GET("/flat-type-comparison", handler.GetFlatTypeComparison)
			analytics.GET("/price-distribution", handler.GetPriceDistribution)
			analytics.GET("/get-price-avg", handler.GetYearlyTownPrices)
			analytics.GET("/top-appreciating-towns", handler.GetTopAppreciatingTowns)
			analytics.GET("/lease-depreciation", handler.GetLeaseDepreciation)
			analytics.GET("/heatmap", handler.GetHeatmap)
			analytics.POST("/predict", handler.PredictPrice)
		}

		api.GET("/towns", handler.GetTowns)
		api.GET("/towns/stats", handler.GetTownStats)
		api.GET("/towns/boundaries", handler.GetTownBoundaries)
		api.GET("/flat-types", handler.GetFlatTypes)

		api.GET("/properties", handler.SearchProperties)
		api.GET("/properties/recent", handler.GetRecentProperties)
		api.GET("/properties/:id", handler.GetPropertyByID)

		api.POST("/recommendations", handler.Recommendations)
		api.POST("/update-coordinates", handler.UpdateCoordinates)
	}
}
