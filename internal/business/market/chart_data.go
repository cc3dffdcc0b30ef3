package market

import (
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/carcrafter/market-api/pkg/model"
)

const (
	scatterSampleSize = 1000
	scatterSeed       = 42
)

// chartPalette is cycled for per-category colors.
var chartPalette = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40", "#C9CBCF"}

// iceFuels are the internal combustion fuel types.
var iceFuels = map[string]bool{"Petrol": true, "Diesel": true, "CNG": true, "LPG": true}

func paletteFor(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = chartPalette[i%len(chartPalette)]
	}
	return out
}

// PriceTrendsChart plots the mean price of each model year.
func (a *Analyzer) PriceTrendsChart() (model.Chart, error) {
	if err := a.require(colYear, colPrice); err != nil {
		return model.Chart{}, err
	}
	years, byYear := listingsByYear(a.listings())
	labels := make([]string, len(years))
	means := make([]float64, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
		means[i] = round2(mean(column(byYear[y], priceOf)))
	}
	return model.Chart{
		Title:       "Car Price Trends by Year",
		Description: "Average car prices across different years",
		Data: model.ChartData{
			Labels: labels,
			Datasets: []model.ChartSeries{{
				Label:           "Average Price (₹)",
				Data:            means,
				BorderColor:     "rgb(75, 192, 192)",
				BackgroundColor: "rgba(75, 192, 192, 0.2)",
				Tension:         0.1,
			}},
		},
	}, nil
}

// CompanyShareChart counts listings of every company, largest first.
func (a *Analyzer) CompanyShareChart() (model.Chart, error) {
	if err := a.require(colCompany); err != nil {
		return model.Chart{}, err
	}
	labels, counts := splitCounts(countBy(a.listings(), companyOf))
	return model.Chart{
		Title:       "All " + strconv.Itoa(len(labels)) + " Companies by Market Share",
		Description: "Complete distribution of car listings across all " + strconv.Itoa(len(labels)) + " brands",
		Data: model.ChartData{
			Labels: labels,
			Datasets: []model.ChartSeries{{
				Label:           "Market Share (Number of Cars)",
				Data:            counts,
				BackgroundColor: paletteFor(len(labels)),
				BorderColor:     "#fff",
				BorderWidth:     2,
			}},
		},
	}, nil
}

// FuelDistributionChart counts listings per fuel type.
func (a *Analyzer) FuelDistributionChart() (model.Chart, error) {
	if err := a.require(colFuelType); err != nil {
		return model.Chart{}, err
	}
	labels, counts := splitCounts(countBy(a.listings(), fuelOf))
	return model.Chart{
		Title:       "Fuel Type Distribution",
		Description: "Distribution of cars by fuel type",
		Data: model.ChartData{
			Labels: labels,
			Datasets: []model.ChartSeries{{
				Label:           "Number of Cars",
				Data:            counts,
				BackgroundColor: paletteFor(len(labels)),
				BorderColor:     "#fff",
				BorderWidth:     2,
			}},
		},
	}, nil
}

// CityPriceChart ranks every city by mean price.
func (a *Analyzer) CityPriceChart() (model.Chart, error) {
	if err := a.require(colCity, colPrice); err != nil {
		return model.Chart{}, err
	}
	labels, means := meanPriceRanking(a.listings(), cityOf)
	return model.Chart{
		Title:       "All " + strconv.Itoa(len(labels)) + " Cities by Average Car Price",
		Description: "Complete comparison of average car prices across all " + strconv.Itoa(len(labels)) + " cities",
		Data: model.ChartData{
			Labels: labels,
			Datasets: []model.ChartSeries{{
				Label:           "Average Price (₹)",
				Data:            means,
				BackgroundColor: "rgba(54, 162, 235, 0.8)",
				BorderColor:     "rgba(54, 162, 235, 1)",
				BorderWidth:     1,
			}},
		},
	}, nil
}

// CompanyPriceChart ranks every company by mean price.
func (a *Analyzer) CompanyPriceChart() (model.Chart, error) {
	if err := a.require(colCompany, colPrice); err != nil {
		return model.Chart{}, err
	}
	labels, means := meanPriceRanking(a.listings(), companyOf)
	return model.Chart{
		Title:       "All " + strconv.Itoa(len(labels)) + " Companies by Average Price",
		Description: "Complete comparison of average car prices across all " + strconv.Itoa(len(labels)) + " brands",
		Data: model.ChartData{
			Labels: labels,
			Datasets: []model.ChartSeries{{
				Label:           "Average Price (₹)",
				Data:            means,
				BackgroundColor: "rgba(255, 99, 132, 0.8)",
				BorderColor:     "rgba(255, 99, 132, 1)",
				BorderWidth:     1,
			}},
		},
	}, nil
}

// TransmissionTrendsChart counts each transmission type per model year.
func (a *Analyzer) TransmissionTrendsChart() (model.Chart, error) {
	if err := a.require(colYear, colTransmission); err != nil {
		return model.Chart{}, err
	}
	rows := a.listings()
	years, byYear := listingsByYear(rows)
	types := distinct(rows, transmissionOf)

	series := make([]model.ChartSeries, len(types))
	for i, tr := range types {
		counts := make([]int, len(years))
		for j, y := range years {
			counts[j] = count(byYear[y], func(l model.Listing) bool { return l.Transmission == tr })
		}
		color := chartPalette[i%len(chartPalette)]
		series[i] = model.ChartSeries{Label: tr, Data: counts, BorderColor: color, BackgroundColor: color, Tension: 0.1}
	}
	return model.Chart{
		Title:       "Transmission Type Trends Over Years",
		Description: "Popularity of different transmission types across years",
		Data:        model.ChartData{Labels: yearLabels(years), Datasets: series},
	}, nil
}

// EVvsICEChart counts electric, combustion and hybrid listings per model year.
func (a *Analyzer) EVvsICEChart() (model.Chart, error) {
	if err := a.require(colYear, colFuelType); err != nil {
		return model.Chart{}, err
	}
	years, byYear := listingsByYear(a.listings())
	groups := []struct {
		label, border, background string
		match                     func(model.Listing) bool
	}{
		{"Electric Vehicles", "#4BC0C0", "rgba(75, 192, 192, 0.2)", func(l model.Listing) bool { return l.FuelType == "Electric" }},
		{"ICE Vehicles", "#FF6384", "rgba(255, 99, 132, 0.2)", func(l model.Listing) bool { return iceFuels[l.FuelType] }},
		{"Hybrid Vehicles", "#FFCE56", "rgba(255, 206, 86, 0.2)", func(l model.Listing) bool { return l.FuelType == "Hybrid" }},
	}

	series := make([]model.ChartSeries, len(groups))
	for i, g := range groups {
		counts := make([]int, len(years))
		for j, y := range years {
			counts[j] = count(byYear[y], g.match)
		}
		series[i] = model.ChartSeries{Label: g.label, Data: counts, BorderColor: g.border, BackgroundColor: g.background, Tension: 0.1}
	}
	return model.Chart{
		Title:       "EV vs ICE Vehicle Trends",
		Description: "Growth of Electric, ICE, and Hybrid vehicles over time",
		Data:        model.ChartData{Labels: yearLabels(years), Datasets: series},
	}, nil
}

// PriceVsKmScatter samples up to scatterSampleSize listings with a known
// mileage. The sample is seeded, so repeated calls return the same points.
func (a *Analyzer) PriceVsKmScatter() (model.Chart, error) {
	if err := a.require(colPrice, colKilometers); err != nil {
		return model.Chart{}, err
	}
	rows := filter(a.listings(), func(l model.Listing) bool { return !math.IsNaN(l.KilometersDriven) })
	if len(rows) > scatterSampleSize {
		rng := rand.New(rand.NewSource(scatterSeed))
		picked := rng.Perm(len(rows))[:scatterSampleSize]
		sort.Ints(picked)
		sample := make([]model.Listing, len(picked))
		for i, idx := range picked {
			sample[i] = rows[idx]
		}
		rows = sample
	}

	points := make([]model.ScatterPoint, len(rows))
	for i, l := range rows {
		points[i] = model.ScatterPoint{X: math.Trunc(l.KilometersDriven), Y: math.Trunc(l.Price)}
	}
	return model.Chart{
		Title:       "Price vs Kilometers Driven",
		Description: "Relationship between car price and kilometers driven",
		Data: model.ChartData{
			Datasets: []model.ChartSeries{{
				Label:           "Price vs Kilometers",
				Data:            points,
				BackgroundColor: "rgba(54, 162, 235, 0.6)",
				BorderColor:     "rgba(54, 162, 235, 1)",
				PointRadius:     3,
			}},
		},
	}, nil
}

func listingsByYear(rows []model.Listing) ([]int, map[int][]model.Listing) {
	byYear := make(map[int][]model.Listing)
	for _, l := range rows {
		byYear[l.Year] = append(byYear[l.Year], l)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, byYear
}

func yearLabels(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}

func splitCounts(counts []labelCount) ([]string, []int) {
	labels := make([]string, len(counts))
	values := make([]int, len(counts))
	for i, c := range counts {
		labels[i], values[i] = c.Label, c.Count
	}
	return labels, values
}

// meanPriceRanking orders groups by mean price descending, then label.
func meanPriceRanking(rows []model.Listing, key func(model.Listing) string) ([]string, []float64) {
	type ranked struct {
		label string
		mean  float64
	}
	groups := groupBy(rows, key)
	out := make([]ranked, 0, len(groups))
	for label, g := range groups {
		out = append(out, ranked{label, round2(mean(column(g, priceOf)))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].mean != out[j].mean {
			return out[i].mean > out[j].mean
		}
		return out[i].label < out[j].label
	})
	labels := make([]string, len(out))
	means := make([]float64, len(out))
	for i, r := range out {
		labels[i], means[i] = r.label, r.mean
	}
	return labels, means
}
