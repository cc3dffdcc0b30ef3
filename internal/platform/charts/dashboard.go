package charts

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/carcrafter/market-api/pkg/model"
)

const topCompanies = 10

// RenderDashboard writes an HTML page with the market report's headline charts.
func RenderDashboard(w io.Writer, r model.MarketReport) error {
	page := components.NewPage().SetPageTitle("Car Market Trends")
	page.AddCharts(
		yearTrendChart(r.PriceTrendsByYear),
		companyShareChart(r.CompanyTrends),
		fuelShareChart(r.FuelTypeAnalysis),
		cityPriceChart(r.CityMarketAnalysis),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

func yearTrendChart(trends map[int]model.YearTrend) *charts.Line {
	years := make([]int, 0, len(trends))
	for y := range trends {
		years = append(years, y)
	}
	sort.Ints(years)

	labels := make([]string, len(years))
	means := make([]opts.LineData, len(years))
	medians := make([]opts.LineData, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
		means[i] = opts.LineData{Value: finite(trends[y].PriceMean)}
		medians[i] = opts.LineData{Value: finite(trends[y].PriceMedian)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Price by model year"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(labels).
		AddSeries("Mean", means).
		AddSeries("Median", medians)
	return line
}

func companyShareChart(trends map[string]model.CompanyTrend) *charts.Bar {
	names := make([]string, 0, len(trends))
	for c := range trends {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := trends[names[i]].Stats.MarketShare, trends[names[j]].Stats.MarketShare
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	if len(names) > topCompanies {
		names = names[:topCompanies]
	}

	data := make([]opts.BarData, len(names))
	for i, c := range names {
		data[i] = opts.BarData{Value: finite(trends[c].Stats.MarketShare)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Market share by company", Subtitle: "percent of listings"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).AddSeries("Share", data)
	return bar
}

func fuelShareChart(fuels map[string]model.FuelTypeAnalysis) *charts.Pie {
	names := make([]string, 0, len(fuels))
	for f := range fuels {
		names = append(names, f)
	}
	sort.Strings(names)

	data := make([]opts.PieData, len(names))
	for i, f := range names {
		data[i] = opts.PieData{Name: f, Value: finite(fuels[f].MarketShare)}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Fuel type share"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("Fuel", data)
	return pie
}

func cityPriceChart(cities map[string]model.CityAnalysis) *charts.Bar {
	names := make([]string, 0, len(cities))
	for c := range cities {
		names = append(names, c)
	}
	sort.Strings(names)

	avg := make([]opts.BarData, len(names))
	med := make([]opts.BarData, len(names))
	for i, c := range names {
		avg[i] = opts.BarData{Value: finite(cities[c].AveragePrice)}
		med[i] = opts.BarData{Value: finite(cities[c].MedianPrice)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Prices by city"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("Average", avg).
		AddSeries("Median", med)
	return bar
}

// finite keeps NaN out of the embedded chart JSON.
func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Round(x*100) / 100
}
