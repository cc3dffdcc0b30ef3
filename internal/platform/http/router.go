package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/internal/platform/metrics"
	"github.com/carcrafter/market-api/pkg/model"
	"github.com/carcrafter/market-api/pkg/util"
)

const unavailableMessage = "Market trends analysis not available"

// Predictor prices a vehicle.
type Predictor interface {
	Predict(ctx context.Context, q model.VehicleQuery) (model.PredictionResult, error)
}

// Options carries the router's collaborators. A nil Analyzer turns every
// dataset-backed endpoint into a 503; nil Snapshots disables the snapshot
// endpoints and nil Metrics disables /metrics.
type Options struct {
	Analyzer       *market.Analyzer
	Predictor      Predictor
	Snapshots      market.SnapshotStore
	Metrics        *metrics.Metrics
	AllowedOrigins string
}

// Router wires HTTP handlers.
type Router struct {
	analyzer  *market.Analyzer
	predictor Predictor
	snapshots market.SnapshotStore
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewRouter(opts Options) *gin.Engine {
	r := &Router{
		analyzer:  opts.Analyzer,
		predictor: opts.Predictor,
		snapshots: opts.Snapshots,
		metrics:   opts.Metrics,
		now:       time.Now,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors(opts.AllowedOrigins))
	if r.metrics != nil {
		router.Use(r.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/health", r.health)

		api.GET("/market-overview", r.aggregation("market_overview", func(a *market.Analyzer, _ *gin.Context) (any, error) {
			return a.Overview()
		}))
		api.GET("/company-trends", r.aggregation("company_trends", func(a *market.Analyzer, _ *gin.Context) (any, error) {
			return a.CompanyTrends()
		}))
		api.GET("/fuel-type-analysis", r.aggregation("fuel_type_analysis", func(a *market.Analyzer, _ *gin.Context) (any, error) {
			return a.FuelTypeAnalysis()
		}))
		api.GET("/city-market-analysis", r.aggregation("city_market_analysis", func(a *market.Analyzer, _ *gin.Context) (any, error) {
			return a.CityMarketAnalysis()
		}))
		api.GET("/price-trends", r.aggregation("price_trends", func(a *market.Analyzer, _ *gin.Context) (any, error) {
			return a.PriceTrendsByYear()
		}))
		api.GET("/market-predictions", r.aggregation("market_predictions", func(a *market.Analyzer, _ *gin.Context) (any, error) {
			return a.MarketPredictions()
		}))
		api.GET("/advanced-analytics", r.aggregation("advanced_analytics", func(a *market.Analyzer, _ *gin.Context) (any, error) {
			return a.AdvancedAnalytics()
		}))
		api.GET("/company-comparison", r.companyComparison)
		api.GET("/filtered-trends", r.filteredTrends)
		api.GET("/market-report", r.marketReport)
		api.GET("/market-charts", r.marketCharts)

		chartRoutes := api.Group("/charts")
		chartRoutes.GET("/price-trends-by-year", r.chart("chart_price_trends", (*market.Analyzer).PriceTrendsChart))
		chartRoutes.GET("/company-market-share", r.chart("chart_company_share", (*market.Analyzer).CompanyShareChart))
		chartRoutes.GET("/fuel-type-distribution", r.chart("chart_fuel_distribution", (*market.Analyzer).FuelDistributionChart))
		chartRoutes.GET("/city-price-comparison", r.chart("chart_city_prices", (*market.Analyzer).CityPriceChart))
		chartRoutes.GET("/company-price-comparison", r.chart("chart_company_prices", (*market.Analyzer).CompanyPriceChart))
		chartRoutes.GET("/transmission-trends", r.chart("chart_transmission_trends", (*market.Analyzer).TransmissionTrendsChart))
		chartRoutes.GET("/ev-vs-ice-trends", r.chart("chart_ev_vs_ice", (*market.Analyzer).EVvsICEChart))
		chartRoutes.GET("/price-vs-kms-scatter", r.chart("chart_price_vs_kms", (*market.Analyzer).PriceVsKmScatter))

		api.POST("/market-report/snapshots", r.createSnapshot)
		api.GET("/market-report/snapshots", r.listSnapshots)
		api.GET("/market-report/snapshots/:id", r.getSnapshot)

		api.GET("/companies", r.catalog(func(a *market.Analyzer) any { return a.Companies() }))
		api.GET("/models", r.catalog(func(a *market.Analyzer) any { return a.Models() }))
		api.GET("/models/:company", r.modelsByCompany)
		api.GET("/models/:company/:year", r.modelsByCompanyAndYear)
		api.GET("/years", r.catalog(func(a *market.Analyzer) any { return a.Years() }))
		api.GET("/fuel-types", r.catalog(func(a *market.Analyzer) any { return a.FuelTypes() }))
		api.GET("/transmission-types", r.catalog(func(a *market.Analyzer) any { return a.TransmissionTypes() }))
		api.GET("/owner-types", r.catalog(func(a *market.Analyzer) any { return a.OwnerTypes() }))
		api.GET("/condition-types", r.catalog(func(a *market.Analyzer) any { return a.ConditionTypes() }))
		api.GET("/cities", r.catalog(func(a *market.Analyzer) any { return a.Cities() }))
		api.GET("/dataset-info", r.catalog(func(a *market.Analyzer) any { return a.DatasetInfo() }))
		api.GET("/insurance-types", r.catalog(func(a *market.Analyzer) any { return a.InsuranceTypes() }))
		api.GET("/insurance-eligible-types", r.catalog(func(a *market.Analyzer) any { return a.InsuranceEligibleTypes() }))
		api.GET("/emission-norms", r.catalog(func(a *market.Analyzer) any { return a.EmissionNorms() }))
		api.GET("/maintenance-levels", r.catalog(func(a *market.Analyzer) any { return a.MaintenanceLevels() }))
		api.GET("/owner-counts", r.catalog(func(a *market.Analyzer) any { return a.OwnerTypes() }))
		api.GET("/search-suggestions", r.searchSuggestions)
		api.GET("/cars", r.listCars)
		api.GET("/cars/search", r.searchCars)
		api.GET("/cars/:id", r.getCar)

		api.POST("/predict", r.predict)
	}

	return router
}

// cors allows every origin when none are configured. Otherwise only listed
// origins (or "*") are echoed back.
func cors(allowedOrigins string) gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if t := strings.TrimSpace(o); t != "" {
			allowed[t] = true
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(allowed) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && (allowed["*"] || allowed[origin]):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                  "healthy",
		"message":                 "CarCrafter AI API is running",
		"market_trends_available": r.analyzer != nil,
	})
}

// available writes the 503 envelope when no dataset is loaded.
func (r *Router) available(c *gin.Context) bool {
	if r.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": unavailableMessage})
		return false
	}
	return true
}

func (r *Router) success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      util.Sanitize(data),
		"timestamp": r.now().Format(time.RFC3339),
	})
}

func failure(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// observe times one aggregation when metrics are enabled.
func (r *Router) observe(name string, fn func() (any, error)) (any, error) {
	start := time.Now()
	data, err := fn()
	if r.metrics != nil {
		r.metrics.ObserveAggregation(name, start, err)
	}
	return data, err
}

// aggregation serves one analyzer call in the standard success envelope.
func (r *Router) aggregation(name string, compute func(*market.Analyzer, *gin.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.available(c) {
			return
		}
		data, err := r.observe(name, func() (any, error) { return compute(r.analyzer, c) })
		if err != nil {
			failure(c, http.StatusInternalServerError, err)
			return
		}
		r.success(c, data)
	}
}
