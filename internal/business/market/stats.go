package market

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/carcrafter/market-api/pkg/model"
)

// Numeric helpers follow pandas semantics: missing (NaN) values are skipped and
// an empty input yields NaN.

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

func median(xs []float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return (v[mid-1] + v[mid]) / 2
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(xs []float64) float64 {
	v := finite(xs)
	if len(v) < 2 {
		return math.NaN()
	}
	return stat.StdDev(v, nil)
}

func minMax(xs []float64) (float64, float64) {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(v), floats.Max(v)
}

// pearson correlates x and y over the rows where both are present.
func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// impute replaces missing values with the column mean.
func impute(xs []float64) []float64 {
	m := mean(xs)
	out := make([]float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) {
			out[i] = m
			continue
		}
		out[i] = x
	}
	return out
}

func round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.Round(x*100) / 100
}

func percent(part, total int) float64 {
	if total == 0 {
		return math.NaN()
	}
	return float64(part) / float64(total) * 100
}

func column(listings []model.Listing, get func(model.Listing) float64) []float64 {
	out := make([]float64, len(listings))
	for i, l := range listings {
		out[i] = get(l)
	}
	return out
}

// fraction is the share of listings matching pred, in [0,1].
func fraction(listings []model.Listing, pred func(model.Listing) bool) float64 {
	if len(listings) == 0 {
		return math.NaN()
	}
	n := 0
	for _, l := range listings {
		if pred(l) {
			n++
		}
	}
	return float64(n) / float64(len(listings))
}

func count(listings []model.Listing, pred func(model.Listing) bool) int {
	n := 0
	for _, l := range listings {
		if pred(l) {
			n++
		}
	}
	return n
}

// meanDepreciation averages the listings that carry a depreciation rate.
func meanDepreciation(listings []model.Listing) float64 {
	return mean(column(listings, depreciationOf))
}

func priceOf(l model.Listing) float64 { return l.Price }
func ageOf(l model.Listing) float64 { return float64(l.CarAge) }
func yearOf(l model.Listing) float64 { return float64(l.Year) }
func mileageOf(l model.Listing) float64 { return l.KilometersDriven }
func engineOf(l model.Listing) float64 { return l.EngineSize }
func powerOf(l model.Listing) float64 { return l.Power }
func pricePerKmOf(l model.Listing) float64 { return l.PricePerKm }

func depreciationOf(l model.Listing) float64 {
	if l.DepreciationRate == nil {
		return math.NaN()
	}
	return *l.DepreciationRate
}
