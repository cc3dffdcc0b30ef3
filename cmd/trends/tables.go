package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/carcrafter/market-api/pkg/model"
)

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Footer = text.FormatDefault
	return tbl
}

func renderOverview(ov model.MarketOverview) string {
	tbl := newTable()
	tbl.SetTitle("Market overview")
	tbl.AppendRows([]table.Row{
		{"Listings", humanize.Comma(int64(ov.TotalListings))},
		{"Companies", humanize.Comma(int64(ov.TotalCompanies))},
		{"Models", humanize.Comma(int64(ov.TotalModels))},
		{"Average price", money(ov.AveragePrice)},
		{"Median price", money(ov.MedianPrice)},
		{"Average age", fmt.Sprintf("%.1f years", ov.AverageAge)},
		{"Average mileage", humanize.CommafWithDigits(ov.AverageMileage, 0) + " km"},
	})
	for _, seg := range sortedKeys(ov.MarketSegments) {
		tbl.AppendRow(table.Row{"Segment: " + seg, humanize.Comma(int64(ov.MarketSegments[seg]))})
	}
	return tbl.Render()
}

func renderCompanies(trends map[string]model.CompanyTrend, top int) string {
	names := make([]string, 0, len(trends))
	for name := range trends {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := trends[names[i]].Stats.MarketShare, trends[names[j]].Stats.MarketShare
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	if top > 0 && len(names) > top {
		names = names[:top]
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Company", "Listings", "Share %", "Mean price", "Trend", "Reliability"})
	for _, name := range names {
		t := trends[name]
		tbl.AppendRow(table.Row{
			name,
			humanize.Comma(int64(t.Stats.PriceCount)),
			fmt.Sprintf("%.2f", t.Stats.MarketShare),
			money(t.Stats.PriceMean),
			t.PriceTrend,
			fmt.Sprintf("%.1f", t.ReliabilityScore),
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d companies", len(trends))})
	return tbl.Render()
}

func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return humanize.CommafWithDigits(v, 2)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
