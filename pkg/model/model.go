package model

import (
	"encoding/json"
	"time"
)

// Market segment labels, assigned by first matching rule at load time.
const (
	SegmentElectric      = "Electric"
	SegmentPerformance   = "Performance"
	SegmentLuxury        = "Luxury"
	SegmentPremiumDiesel = "Premium Diesel"
	SegmentNewRecent     = "New/Recent"
	SegmentStandard      = "Standard"
)

// Price category labels.
const (
	CategoryBudget   = "Budget"
	CategoryMidRange = "Mid-Range"
	CategoryPremium  = "Premium"
	CategoryLuxury   = "Luxury"
)

// Price trend labels.
const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
	TrendStable     = "Stable"
)

// Listing is one vehicle record of the loaded dataset. Missing numeric cells
// are NaN; missing labels are empty strings.
type Listing struct {
	ID                string   `json:"car_id"`
	Company           string   `json:"company"`
	Model             string   `json:"model"`
	Year              int      `json:"year"`
	KilometersDriven  float64  `json:"kilometers_driven"`
	CarCondition      string   `json:"car_condition,omitempty"`
	PreviousAccidents int      `json:"previous_accidents"`
	OwnerCount        int      `json:"owner_count,omitempty"`
	Price             float64  `json:"price"`
	ReferencePrice    *float64 `json:"reference_price,omitempty"`
	ListingType       string   `json:"listing_type,omitempty"`
	City              string   `json:"city,omitempty"`
	FuelType          string   `json:"fuel_type"`
	Transmission      string   `json:"transmission,omitempty"`
	EngineSize        float64  `json:"engine_size"`
	Power             float64  `json:"power"`
	NumDoors          int      `json:"num_doors,omitempty"`
	EmissionNorm      string   `json:"emission_norm,omitempty"`
	InsuranceStatus   string   `json:"insurance_status,omitempty"`
	InsuranceEligible string   `json:"insurance_eligible,omitempty"`
	MaintenanceLevel  string   `json:"maintenance_level,omitempty"`

	// Derived at load time.
	CarAge           int      `json:"car_age"`
	PricePerKm       float64  `json:"price_per_km"`
	DepreciationRate *float64 `json:"depreciation_rate,omitempty"`
	PriceCategory    string   `json:"price_category,omitempty"`
	MarketSegment    string   `json:"market_segment"`
}

// PriceRange is a min/max pair.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// YearRange is a min/max pair of model years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// MarketOverview summarises the whole dataset.
type MarketOverview struct {
	TotalListings            int            `json:"total_listings"`
	AveragePrice             float64        `json:"average_price"`
	MedianPrice              float64        `json:"median_price"`
	PriceStd                 float64        `json:"price_std"`
	AverageAge               float64        `json:"average_age"`
	AverageMileage           float64        `json:"average_mileage"`
	TotalCompanies           int            `json:"total_companies"`
	TotalModels              int            `json:"total_models"`
	MarketSegments           map[string]int `json:"market_segments"`
	FuelTypeDistribution     map[string]int `json:"fuel_type_distribution"`
	TransmissionDistribution map[string]int `json:"transmission_distribution"`
	CityDistribution         map[string]int `json:"city_distribution"`
	PriceRangeDistribution   map[string]int `json:"price_range_distribution"`
}

// CompanyStats holds the rounded per-company price and usage statistics.
type CompanyStats struct {
	PriceMean            float64 `json:"price_mean"`
	PriceMedian          float64 `json:"price_median"`
	PriceStd             float64 `json:"price_std"`
	PriceCount           int     `json:"price_count"`
	CarAgeMean           float64 `json:"car_age_mean"`
	KilometersDrivenMean float64 `json:"kilometers_driven_mean"`
	DepreciationRateMean float64 `json:"depreciation_rate_mean"`
	PricePerKmMean       float64 `json:"price_per_km_mean"`
	MarketShare          float64 `json:"market_share"`
}

// CompanyTrend is the per-company trend object.
type CompanyTrend struct {
	Stats            CompanyStats   `json:"stats"`
	PriceTrend       string         `json:"price_trend"`
	PopularModels    map[string]int `json:"popular_models"`
	AvgDepreciation  float64        `json:"avg_depreciation"`
	ReliabilityScore float64        `json:"reliability_score"`
}

// FuelTypeAnalysis is the per-fuel-type market object.
type FuelTypeAnalysis struct {
	MarketShare      float64        `json:"market_share"`
	AveragePrice     float64        `json:"average_price"`
	MedianPrice      float64        `json:"median_price"`
	PriceRange       PriceRange     `json:"price_range"`
	AverageAge       float64        `json:"average_age"`
	AverageMileage   float64        `json:"average_mileage"`
	DepreciationRate float64        `json:"depreciation_rate"`
	PopularCompanies map[string]int `json:"popular_companies"`
	CityPreference   map[string]int `json:"city_preference"`
	MaintenanceLevel map[string]int `json:"maintenance_level"`
}

// CityAnalysis is the per-city market object.
type CityAnalysis struct {
	TotalListings     int            `json:"total_listings"`
	MarketShare       float64        `json:"market_share"`
	AveragePrice      float64        `json:"average_price"`
	MedianPrice       float64        `json:"median_price"`
	PriceStd          float64        `json:"price_std"`
	PopularCompanies  map[string]int `json:"popular_companies"`
	PopularFuelTypes  map[string]int `json:"popular_fuel_types"`
	AverageCarAge     float64        `json:"average_car_age"`
	LuxuryMarketShare float64        `json:"luxury_market_share"`
	BudgetMarketShare float64        `json:"budget_market_share"`
}

// YearTrend is one row of the year-over-year price table. PriceChange is NaN
// for the first year.
type YearTrend struct {
	PriceMean            float64 `json:"price_mean"`
	PriceMedian          float64 `json:"price_median"`
	PriceCount           int     `json:"price_count"`
	KilometersDrivenMean float64 `json:"kilometers_driven_mean"`
	DepreciationRateMean float64 `json:"depreciation_rate_mean"`
	PriceChange          float64 `json:"price_change"`
}

// TrendingCompany is an entry of the trending_up/down/stable lists.
type TrendingCompany struct {
	Company          string   `json:"company"`
	MarketShare      float64  `json:"market_share"`
	AvgPrice         float64  `json:"avg_price"`
	ReliabilityScore *float64 `json:"reliability_score,omitempty"`
}

// EmergingSegment flags a growth segment.
type EmergingSegment struct {
	Segment         string  `json:"segment"`
	MarketShare     float64 `json:"market_share"`
	GrowthPotential string  `json:"growth_potential"`
}

// Recommendation is a free-text market note.
type Recommendation struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Confidence  string `json:"confidence"`
}

// MarketPredictions holds the heuristic market insights.
type MarketPredictions struct {
	TrendingUp       []TrendingCompany `json:"trending_up"`
	TrendingDown     []TrendingCompany `json:"trending_down"`
	StableMarkets    []TrendingCompany `json:"stable_markets"`
	EmergingSegments []EmergingSegment `json:"emerging_segments"`
	Recommendations  []Recommendation  `json:"recommendations"`
}

// Correlations reports Pearson correlation of price against numeric columns.
type Correlations struct {
	PriceCorrelations map[string]float64 `json:"price_correlations"`
	StrongestPositive string             `json:"strongest_positive"`
	StrongestNegative string             `json:"strongest_negative"`
}

// ClusterSummary describes one k-means cluster.
type ClusterSummary struct {
	Size            int     `json:"size"`
	AvgPrice        float64 `json:"avg_price"`
	AvgAge          float64 `json:"avg_age"`
	DominantFuel    string  `json:"dominant_fuel"`
	DominantCompany string  `json:"dominant_company"`
	Characteristics string  `json:"characteristics"`
}

// PriceElasticity holds absolute correlations used as sensitivity indicators.
type PriceElasticity struct {
	AgeSensitivity     float64 `json:"age_sensitivity"`
	MileageSensitivity float64 `json:"mileage_sensitivity"`
	EngineSensitivity  float64 `json:"engine_sensitivity"`
}

// AdvancedAnalytics bundles correlations, clustering and elasticity.
type AdvancedAnalytics struct {
	Correlations    Correlations              `json:"correlations"`
	MarketSegments  map[string]ClusterSummary `json:"market_segments"`
	PriceElasticity PriceElasticity           `json:"price_elasticity"`
}

// MarketReport is the full composed report.
type MarketReport struct {
	Timestamp          string                      `json:"timestamp"`
	MarketOverview     MarketOverview              `json:"market_overview"`
	CompanyTrends      map[string]CompanyTrend     `json:"company_trends"`
	PriceTrendsByYear  map[int]YearTrend           `json:"price_trends_by_year"`
	FuelTypeAnalysis   map[string]FuelTypeAnalysis `json:"fuel_type_analysis"`
	CityMarketAnalysis map[string]CityAnalysis     `json:"city_market_analysis"`
	MarketPredictions  MarketPredictions           `json:"market_predictions"`
	AdvancedAnalytics  AdvancedAnalytics           `json:"advanced_analytics"`
}

// TrendFilter narrows the dataset for filtered trends. The year range applies
// only when both ends are set.
type TrendFilter struct {
	FuelType  string `json:"fuel_type,omitempty"`
	Company   string `json:"company,omitempty"`
	YearStart int    `json:"-"`
	YearEnd   int    `json:"-"`
}

// HasYearRange reports whether both ends of the year range are set.
func (f TrendFilter) HasYearRange() bool {
	return f.YearStart != 0 && f.YearEnd != 0
}

// FilteredTrends summarises a filtered subset.
type FilteredTrends struct {
	AveragePrice      float64    `json:"average_price"`
	MedianPrice       float64    `json:"median_price"`
	PriceRange        PriceRange `json:"price_range"`
	TotalListings     int        `json:"total_listings"`
	DepreciationTrend float64    `json:"depreciation_trend"`
}

// DatasetInfo describes the catalog of the loaded dataset.
type DatasetInfo struct {
	TotalCompanies    int        `json:"total_companies"`
	TotalModels       int        `json:"total_models"`
	TotalRecords      int        `json:"total_records"`
	SkippedRows       int        `json:"skipped_rows"`
	YearRange         YearRange  `json:"year_range"`
	KmsRange          PriceRange `json:"kms_range"`
	PriceRange        PriceRange `json:"price_range"`
	FuelTypes         []string   `json:"fuel_types"`
	TransmissionTypes []string   `json:"transmission_types"`
	OwnerTypes        []string   `json:"owner_types"`
	ConditionTypes    []string   `json:"condition_types"`
	Cities            []string   `json:"cities"`
	Sources           []string   `json:"sources"`
	Fingerprint       string     `json:"fingerprint"`
	LoadedAt          time.Time  `json:"loaded_at"`
}

// VehicleQuery is the feature record accepted by the prediction dispatcher.
type VehicleQuery struct {
	Company           string  `json:"company"`
	Model             string  `json:"model"`
	Year              int     `json:"year"`
	KilometersDriven  int     `json:"kilometers_driven"`
	FuelType          string  `json:"fuel_type"`
	Transmission      string  `json:"transmission"`
	OwnerCount        int     `json:"owner_count"`
	CarCondition      string  `json:"car_condition"`
	City              string  `json:"city"`
	PreviousAccidents int     `json:"previous_accidents"`
	NumDoors          int     `json:"num_doors"`
	EngineSize        float64 `json:"engine_size"`
	Power             float64 `json:"power"`
}

// PriceStatistics summarises the prices of similar cars.
type PriceStatistics struct {
	Average           float64 `json:"average"`
	Minimum           float64 `json:"minimum"`
	Maximum           float64 `json:"maximum"`
	StandardDeviation float64 `json:"standard_deviation"`
}

// DataAvailability tells which match levels exist in the dataset.
type DataAvailability struct {
	ExactMatch       bool `json:"exact_match"`
	CompanyYearMatch bool `json:"company_year_match"`
	CompanyMatch     bool `json:"company_match"`
}

// VehicleInfo is the auxiliary dataset context returned with a prediction.
type VehicleInfo struct {
	SimilarCarsFound         int              `json:"similar_cars_found"`
	PriceStatistics          *PriceStatistics `json:"price_statistics,omitempty"`
	FuelTypeDistribution     map[string]int   `json:"fuel_type_distribution,omitempty"`
	TransmissionDistribution map[string]int   `json:"transmission_distribution,omitempty"`
	ConditionDistribution    map[string]int   `json:"condition_distribution,omitempty"`
	TopCities                map[string]int   `json:"top_cities,omitempty"`
	YearRange                *YearRange       `json:"year_range,omitempty"`
	AverageKilometers        float64          `json:"average_kilometers,omitempty"`
	DataAvailability         DataAvailability `json:"data_availability"`
	Message                  string           `json:"message,omitempty"`
}

// PredictionResult is the response of the prediction dispatcher.
type PredictionResult struct {
	Prediction      float64     `json:"prediction"`
	ModelUsed       string      `json:"model_used"`
	ConfidenceScore int         `json:"confidence_score"`
	CarInfo         VehicleInfo `json:"car_info"`
	Message         string      `json:"message"`
}

// ReportSnapshot is a persisted, sanitized market report.
type ReportSnapshot struct {
	ID                 string          `json:"id" firestore:"id"`
	CreatedAt          time.Time       `json:"createdAt" firestore:"createdAt"`
	DatasetFingerprint string          `json:"datasetFingerprint" firestore:"datasetFingerprint"`
	TotalListings      int             `json:"totalListings" firestore:"totalListings"`
	Payload            json.RawMessage `json:"report,omitempty" firestore:"-"`
}

// ModelAvailability lists the models of a company for a year, with the
// fallback note used when the exact year has no listings.
type ModelAvailability struct {
	Models             []string `json:"models"`
	Note               string   `json:"note"`
	ExactYearAvailable bool     `json:"exact_year_available"`
	FuelTypeFiltered   *string  `json:"fuel_type_filtered"`
}

// CarQuery filters the raw listings. Zero values do not filter.
type CarQuery struct {
	Text         string
	Company      string
	Model        string
	Year         int
	City         string
	FuelType     string
	Transmission string
	Condition    string
	OwnerCount   int
	MinPrice     float64
	MaxPrice     float64
	MinYear      int
	MaxYear      int
}

// CarPage is one page of matching listings.
type CarPage struct {
	Cars           []Listing `json:"cars"`
	TotalFound     int       `json:"total_found"`
	TotalInDataset int       `json:"total_in_dataset"`
}

// ChartSeries is one Chart.js dataset. Colors are a single CSS color or one
// per data point.
type ChartSeries struct {
	Label           string  `json:"label"`
	Data            any     `json:"data"`
	BackgroundColor any     `json:"backgroundColor,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderWidth     int     `json:"borderWidth,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
	PointRadius     int     `json:"pointRadius,omitempty"`
}

// ChartData is the Chart.js payload of a chart endpoint.
type ChartData struct {
	Labels   []string      `json:"labels,omitempty"`
	Datasets []ChartSeries `json:"datasets"`
}

// Chart pairs chart data with its caption.
type Chart struct {
	Title       string
	Description string
	Data        ChartData
}

// ScatterPoint is one point of a scatter chart.
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SearchSuggestions lists labels matching a search prefix, per category.
type SearchSuggestions struct {
	Companies []string `json:"companies"`
	Models    []string `json:"models"`
	Cities    []string `json:"cities"`
	FuelTypes []string `json:"fuel_types"`
}
