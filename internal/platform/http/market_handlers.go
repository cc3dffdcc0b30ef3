package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/internal/platform/charts"
	"github.com/carcrafter/market-api/pkg/model"
	"github.com/carcrafter/market-api/pkg/util"
)

func (r *Router) companyComparison(c *gin.Context) {
	if !r.available(c) {
		return
	}
	var companies []string
	for _, v := range c.QueryArray("companies") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				companies = append(companies, name)
			}
		}
	}
	if len(companies) == 0 {
		failure(c, http.StatusBadRequest, errors.New("Please provide companies parameter"))
		return
	}

	data, err := r.observe("company_comparison", func() (any, error) {
		return r.analyzer.CompanyComparison(companies)
	})
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	r.success(c, data)
}

func (r *Router) filteredTrends(c *gin.Context) {
	if !r.available(c) {
		return
	}
	f := model.TrendFilter{
		FuelType: strings.TrimSpace(c.Query("fuel_type")),
		Company:  strings.TrimSpace(c.Query("company")),
	}
	// Malformed years are ignored rather than rejected.
	f.YearStart, _ = strconv.Atoi(c.Query("year_start"))
	f.YearEnd, _ = strconv.Atoi(c.Query("year_end"))

	data, err := r.observe("filtered_trends", func() (any, error) {
		return r.analyzer.FilteredTrends(f)
	})
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}

	filters := gin.H{
		"fuel_type":  nullable(f.FuelType),
		"company":    nullable(f.Company),
		"year_range": nil,
	}
	if f.HasYearRange() {
		filters["year_range"] = []int{f.YearStart, f.YearEnd}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      util.Sanitize(data),
		"filters":   filters,
		"timestamp": r.now().Format(time.RFC3339),
	})
}

func (r *Router) marketReport(c *gin.Context) {
	if !r.available(c) {
		return
	}
	report, err := r.observe("market_report", func() (any, error) {
		return r.analyzer.Report()
	})
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": util.Sanitize(report)})
}

func (r *Router) marketCharts(c *gin.Context) {
	if !r.available(c) {
		return
	}
	report, err := r.analyzer.Report()
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err := charts.RenderDashboard(&buf, report); err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// chart serves Chart.js data with its caption.
func (r *Router) chart(name string, build func(*market.Analyzer) (model.Chart, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.available(c) {
			return
		}
		data, err := r.observe(name, func() (any, error) { return build(r.analyzer) })
		if err != nil {
			failure(c, http.StatusInternalServerError, err)
			return
		}
		ch := data.(model.Chart)
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"data":        util.Sanitize(ch.Data),
			"title":       ch.Title,
			"description": ch.Description,
		})
	}
}

func (r *Router) createSnapshot(c *gin.Context) {
	if !r.available(c) || !r.snapshotsEnabled(c) {
		return
	}
	snap, err := r.analyzer.SaveSnapshot(c.Request.Context(), r.snapshots)
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": snap})
}

func (r *Router) listSnapshots(c *gin.Context) {
	if !r.snapshotsEnabled(c) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := r.snapshots.List(c.Request.Context(), limit)
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []model.ReportSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (r *Router) getSnapshot(c *gin.Context) {
	if !r.snapshotsEnabled(c) {
		return
	}
	snap, err := r.snapshots.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, market.ErrSnapshotNotFound) {
		failure(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

func (r *Router) snapshotsEnabled(c *gin.Context) bool {
	if r.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Report snapshots are not configured"})
		return false
	}
	return true
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
