package market

import (
	"sort"

	"github.com/carcrafter/market-api/pkg/model"
)

type labelCount struct {
	Label string
	Count int
}

// countBy tallies non-empty labels, ordered by count descending then label.
func countBy(listings []model.Listing, key func(model.Listing) string) []labelCount {
	tally := make(map[string]int)
	for _, l := range listings {
		if k := key(l); k != "" {
			tally[k]++
		}
	}
	out := make([]labelCount, 0, len(tally))
	for label, n := range tally {
		out = append(out, labelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func topN(counts []labelCount, n int) []labelCount {
	if len(counts) > n {
		return counts[:n]
	}
	return counts
}

func countsToMap(counts []labelCount) map[string]int {
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.Label] = c.Count
	}
	return out
}

func valueCounts(listings []model.Listing, key func(model.Listing) string) map[string]int {
	return countsToMap(countBy(listings, key))
}

func topCounts(listings []model.Listing, key func(model.Listing) string, n int) map[string]int {
	return countsToMap(topN(countBy(listings, key), n))
}

// mode is the most frequent label; ties go to the smallest label.
func mode(listings []model.Listing, key func(model.Listing) string) string {
	counts := countBy(listings, key)
	if len(counts) == 0 {
		return "N/A"
	}
	return counts[0].Label
}

func distinct(listings []model.Listing, key func(model.Listing) string) []string {
	counts := countBy(listings, key)
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Label
	}
	sort.Strings(out)
	return out
}

// groupBy partitions listings by a non-empty label, keeping row order.
func groupBy(listings []model.Listing, key func(model.Listing) string) map[string][]model.Listing {
	out := make(map[string][]model.Listing)
	for _, l := range listings {
		if k := key(l); k != "" {
			out[k] = append(out[k], l)
		}
	}
	return out
}

func filter(listings []model.Listing, pred func(model.Listing) bool) []model.Listing {
	var out []model.Listing
	for _, l := range listings {
		if pred(l) {
			out = append(out, l)
		}
	}
	return out
}

func companyOf(l model.Listing) string { return l.Company }
func modelOf(l model.Listing) string { return l.Model }
func fuelOf(l model.Listing) string { return l.FuelType }
func cityOf(l model.Listing) string { return l.City }
func transmissionOf(l model.Listing) string { return l.Transmission }
func segmentOf(l model.Listing) string { return l.MarketSegment }
func categoryOf(l model.Listing) string { return l.PriceCategory }
func conditionOf(l model.Listing) string { return l.CarCondition }
func maintenanceOf(l model.Listing) string { return l.MaintenanceLevel }
