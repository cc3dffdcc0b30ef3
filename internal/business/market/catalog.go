package market

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/carcrafter/market-api/pkg/model"
)

const (
	// DefaultCarLimit caps /api/cars pages when no limit is given.
	DefaultCarLimit = 50
	modelYearWindow = 2
	suggestionLimit = 10
)

// Suggestion categories. SuggestAll fills every list.
const (
	SuggestAll       = "all"
	SuggestCompanies = "companies"
	SuggestModels    = "models"
	SuggestCities    = "cities"
	SuggestFuelTypes = "fuel_types"
)

// Form options served when the dataset carries no values for the column.
var (
	defaultYesNo             = []string{"Yes", "No"}
	defaultEmissionNorms     = []string{"BS4", "BS6"}
	defaultMaintenanceLevels = []string{"Low", "Medium", "High"}
)

// Companies lists the distinct manufacturers, sorted.
func (a *Analyzer) Companies() []string {
	return distinct(a.listings(), companyOf)
}

// Models lists every distinct model name, sorted.
func (a *Analyzer) Models() []string {
	return distinct(a.listings(), modelOf)
}

// ModelsByCompany lists the models sold under one manufacturer.
func (a *Analyzer) ModelsByCompany(company string) []string {
	return distinct(filter(a.listings(), func(l model.Listing) bool { return l.Company == company }), modelOf)
}

// ModelsFor lists the models of a company in a given year, optionally narrowed
// to one fuel type. Without an exact-year match it widens to +/-2 years, then
// to every model of the company.
func (a *Analyzer) ModelsFor(company string, year int, fuelType string) model.ModelAvailability {
	matches := func(l model.Listing) bool {
		return l.Company == company && (fuelType == "" || l.FuelType == fuelType)
	}

	exact := filter(a.listings(), func(l model.Listing) bool { return matches(l) && l.Year == year })
	if len(exact) > 0 {
		return model.ModelAvailability{
			Models:             distinct(exact, modelOf),
			Note:               fmt.Sprintf("Models available in %d", year),
			ExactYearAvailable: true,
		}
	}

	var fuelNote string
	var fuelFiltered *string
	if fuelType != "" {
		fuelNote = fmt.Sprintf(" with %s fuel", fuelType)
		fuelFiltered = &fuelType
	}

	nearby := filter(a.listings(), func(l model.Listing) bool {
		return matches(l) && l.Year >= year-modelYearWindow && l.Year <= year+modelYearWindow
	})
	if len(nearby) > 0 {
		return model.ModelAvailability{
			Models:           distinct(nearby, modelOf),
			Note:             fmt.Sprintf("Models available around %d (±%d years)%s", year, modelYearWindow, fuelNote),
			FuelTypeFiltered: fuelFiltered,
		}
	}

	return model.ModelAvailability{
		Models:           distinct(filter(a.listings(), matches), modelOf),
		Note:             fmt.Sprintf("All models for %s%s (no data for %d)", company, fuelNote, year),
		FuelTypeFiltered: fuelFiltered,
	}
}

// Years lists the model years present, newest first.
func (a *Analyzer) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, l := range a.listings() {
		if !seen[l.Year] {
			seen[l.Year] = true
			years = append(years, l.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func (a *Analyzer) FuelTypes() []string         { return distinct(a.listings(), fuelOf) }
func (a *Analyzer) TransmissionTypes() []string { return distinct(a.listings(), transmissionOf) }
func (a *Analyzer) ConditionTypes() []string    { return distinct(a.listings(), conditionOf) }
func (a *Analyzer) Cities() []string            { return distinct(a.listings(), cityOf) }

// OwnerTypes lists the distinct owner counts as labels.
func (a *Analyzer) OwnerTypes() []string {
	return distinct(a.listings(), func(l model.Listing) string {
		if l.OwnerCount == 0 {
			return ""
		}
		return strconv.Itoa(l.OwnerCount)
	})
}

func (a *Analyzer) InsuranceTypes() []string {
	return distinctOr(a.listings(), func(l model.Listing) string { return l.InsuranceStatus }, defaultYesNo)
}

func (a *Analyzer) InsuranceEligibleTypes() []string {
	return distinctOr(a.listings(), func(l model.Listing) string { return l.InsuranceEligible }, defaultYesNo)
}

func (a *Analyzer) EmissionNorms() []string {
	return distinctOr(a.listings(), func(l model.Listing) string { return l.EmissionNorm }, defaultEmissionNorms)
}

func (a *Analyzer) MaintenanceLevels() []string {
	return distinctOr(a.listings(), maintenanceOf, defaultMaintenanceLevels)
}

// SearchSuggestions returns up to ten labels per category containing query,
// case-insensitively. An unknown category yields empty lists.
func (a *Analyzer) SearchSuggestions(query, category string) model.SearchSuggestions {
	out := model.SearchSuggestions{
		Companies: []string{},
		Models:    []string{},
		Cities:    []string{},
		FuelTypes: []string{},
	}
	rows := a.listings()
	lists := []struct {
		name string
		key  func(model.Listing) string
		dst  *[]string
	}{
		{SuggestCompanies, companyOf, &out.Companies},
		{SuggestModels, modelOf, &out.Models},
		{SuggestCities, cityOf, &out.Cities},
		{SuggestFuelTypes, fuelOf, &out.FuelTypes},
	}
	for _, l := range lists {
		if category != SuggestAll && category != l.name {
			continue
		}
		for _, label := range distinct(rows, l.key) {
			if len(*l.dst) == suggestionLimit {
				break
			}
			if containsFold(label, query) {
				*l.dst = append(*l.dst, label)
			}
		}
	}
	return out
}

func distinctOr(rows []model.Listing, key func(model.Listing) string, fallback []string) []string {
	if vals := distinct(rows, key); len(vals) > 0 {
		return vals
	}
	return append([]string(nil), fallback...)
}

// DatasetInfo describes the loaded catalog.
func (a *Analyzer) DatasetInfo() model.DatasetInfo {
	rows := a.listings()
	info := model.DatasetInfo{
		TotalCompanies:    len(countBy(rows, companyOf)),
		TotalModels:       len(countBy(rows, modelOf)),
		TotalRecords:      len(rows),
		SkippedRows:       a.ds.SkippedRows,
		FuelTypes:         a.FuelTypes(),
		TransmissionTypes: a.TransmissionTypes(),
		OwnerTypes:        a.OwnerTypes(),
		ConditionTypes:    a.ConditionTypes(),
		Cities:            a.Cities(),
		Sources:           a.ds.Sources,
		Fingerprint:       a.ds.Fingerprint,
		LoadedAt:          a.ds.LoadedAt,
	}
	if years := a.Years(); len(years) > 0 {
		info.YearRange = model.YearRange{Min: years[len(years)-1], Max: years[0]}
	}
	lo, hi := minMax(column(rows, mileageOf))
	info.KmsRange = model.PriceRange{Min: lo, Max: hi}
	lo, hi = minMax(column(rows, priceOf))
	info.PriceRange = model.PriceRange{Min: lo, Max: hi}
	return info
}

// Cars returns up to limit listings matching q, in table order. A
// non-positive limit means DefaultCarLimit.
func (a *Analyzer) Cars(q model.CarQuery, limit int) model.CarPage {
	if limit <= 0 {
		limit = DefaultCarLimit
	}
	rows := filter(a.listings(), carMatcher(q))
	found := rows
	if len(found) > limit {
		found = found[:limit]
	}
	if found == nil {
		found = []model.Listing{}
	}
	return model.CarPage{
		Cars:           found,
		TotalFound:     len(found),
		TotalInDataset: len(a.listings()),
	}
}

// CarByID looks a listing up by its identifier.
func (a *Analyzer) CarByID(id string) (model.Listing, bool) {
	for _, l := range a.listings() {
		if l.ID == id {
			return l, true
		}
	}
	return model.Listing{}, false
}

// carMatcher turns a query into a row predicate. Text matches the company or
// model name case-insensitively; price and year bounds are inclusive.
func carMatcher(q model.CarQuery) func(model.Listing) bool {
	return func(l model.Listing) bool {
		switch {
		case q.Text != "" && !containsFold(l.Company, q.Text) && !containsFold(l.Model, q.Text):
			return false
		case q.Company != "" && l.Company != q.Company:
			return false
		case q.Model != "" && l.Model != q.Model:
			return false
		case q.Year != 0 && l.Year != q.Year:
			return false
		case q.City != "" && l.City != q.City:
			return false
		case q.FuelType != "" && l.FuelType != q.FuelType:
			return false
		case q.Transmission != "" && l.Transmission != q.Transmission:
			return false
		case q.Condition != "" && l.CarCondition != q.Condition:
			return false
		case q.OwnerCount != 0 && l.OwnerCount != q.OwnerCount:
			return false
		case q.MinPrice != 0 && l.Price < q.MinPrice:
			return false
		case q.MaxPrice != 0 && l.Price > q.MaxPrice:
			return false
		case q.MinYear != 0 && l.Year < q.MinYear:
			return false
		case q.MaxYear != 0 && l.Year > q.MaxYear:
			return false
		}
		return true
	}
}

// containsFold reports whether sub occurs in s ignoring case.
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
