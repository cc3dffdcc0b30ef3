package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/pkg/model"
	"github.com/carcrafter/market-api/pkg/util"
)

// fuelPlaceholder is the unselected option of the prediction form.
const fuelPlaceholder = "Select Fuel Type"

// catalog serves a lookup without the timestamp envelope.
func (r *Router) catalog(list func(*market.Analyzer) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.available(c) {
			return
		}
		render(c, http.StatusOK, list(r.analyzer))
	}
}

// render writes v as JSON after replacing NaN and Inf, which listings carry
// for missing numeric cells.
func render(c *gin.Context, status int, v any) {
	c.JSON(status, util.Sanitize(v))
}

func (r *Router) searchSuggestions(c *gin.Context) {
	if !r.available(c) {
		return
	}
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	category := c.DefaultQuery("category", market.SuggestAll)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    r.analyzer.SearchSuggestions(query, category),
		"query":   query,
	})
}

func (r *Router) modelsByCompany(c *gin.Context) {
	if !r.available(c) {
		return
	}
	render(c, http.StatusOK, r.analyzer.ModelsByCompany(c.Param("company")))
}

func (r *Router) modelsByCompanyAndYear(c *gin.Context) {
	if !r.available(c) {
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		failure(c, http.StatusBadRequest, errors.New("year must be an integer"))
		return
	}
	fuel := strings.TrimSpace(c.Query("fuel_type"))
	if fuel == fuelPlaceholder {
		fuel = ""
	}
	render(c, http.StatusOK, r.analyzer.ModelsFor(c.Param("company"), year, fuel))
}

func (r *Router) listCars(c *gin.Context) {
	if !r.available(c) {
		return
	}
	q := model.CarQuery{
		Company: c.Query("company"),
		Model:   c.Query("model"),
		City:    c.Query("city"),
	}
	q.Year, _ = strconv.Atoi(c.Query("year"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	render(c, http.StatusOK, r.analyzer.Cars(q, limit))
}

func (r *Router) searchCars(c *gin.Context) {
	if !r.available(c) {
		return
	}
	q := model.CarQuery{
		Text:         strings.TrimSpace(c.Query("q")),
		Company:      c.Query("company"),
		FuelType:     c.Query("fuel_type"),
		Transmission: c.Query("transmission"),
		Condition:    c.Query("condition"),
		City:         c.Query("city"),
	}
	q.OwnerCount, _ = strconv.Atoi(c.Query("owner"))
	q.MinPrice, _ = strconv.ParseFloat(c.Query("min_price"), 64)
	q.MaxPrice, _ = strconv.ParseFloat(c.Query("max_price"), 64)
	q.MinYear, _ = strconv.Atoi(c.Query("min_year"))
	q.MaxYear, _ = strconv.Atoi(c.Query("max_year"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	render(c, http.StatusOK, r.analyzer.Cars(q, limit))
}

func (r *Router) getCar(c *gin.Context) {
	if !r.available(c) {
		return
	}
	car, ok := r.analyzer.CarByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}
	render(c, http.StatusOK, car)
}
