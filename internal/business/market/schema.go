package market

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"github.com/carcrafter/market-api/pkg/util"
)

// Canonical column names. Every CSV is renamed to this schema once, on load.
const (
	colListingID         = "listing_id"
	colCompany           = "company"
	colModel             = "model"
	colYear              = "year"
	colKilometers        = "kilometers_driven"
	colCondition         = "car_condition"
	colAccidents         = "previous_accidents"
	colOwnerCount        = "owner_count"
	colPrice             = "price"
	colReferencePrice    = "reference_price"
	colListingType       = "listing_type"
	colCity              = "city"
	colFuelType          = "fuel_type"
	colTransmission      = "transmission"
	colEngineSize        = "engine_size"
	colPower             = "power"
	colNumDoors          = "num_doors"
	colEmissionNorm      = "emission_norm"
	colInsuranceStatus   = "insurance_status"
	colInsuranceEligible = "insurance_eligible"
	colMaintenanceLevel  = "maintenance_level"

	// derived
	colCarAge = "car_age"
)

var canonicalColumns = map[string]bool{
	colListingID: true, colCompany: true, colModel: true, colYear: true,
	colKilometers: true, colCondition: true, colAccidents: true, colOwnerCount: true,
	colPrice: true, colReferencePrice: true, colListingType: true, colCity: true,
	colFuelType: true, colTransmission: true, colEngineSize: true, colPower: true,
	colNumDoors: true, colEmissionNorm: true, colInsuranceStatus: true,
	colInsuranceEligible: true, colMaintenanceLevel: true,
}

// columnAliases is the fixed rename table applied to normalised headers.
var columnAliases = map[string]string{
	"car_id":          colListingID,
	"id":              colListingID,
	"name":            colModel,
	"car_model":       colModel,
	"car_models":      colModel,
	"kms_driven":      colKilometers,
	"km_driven":       colKilometers,
	"kilo_driven":     colKilometers,
	"kilometres":      colKilometers,
	"condition":       colCondition,
	"accidents":       colAccidents,
	"owner":           colOwnerCount,
	"owners":          colOwnerCount,
	"owner_type":      colOwnerCount,
	"selling_price":   colPrice,
	"predicted_price": colReferencePrice,
	"expected_price":  colReferencePrice,
	"fuel":            colFuelType,
	"insurance":       colInsuranceStatus,
	"engine":          colEngineSize,
	"engine_cc":       colEngineSize,
	"max_power":       colPower,
	"doors":           colNumDoors,
}

// canonicalName maps a raw CSV header onto the canonical schema. Unknown
// headers keep their normalised spelling.
func canonicalName(header string) string {
	h := util.NormalizeHeader(header)
	if alias, ok := columnAliases[h]; ok {
		return alias
	}
	return h
}

// normalizeFrame renames the frame's columns to the canonical schema. A header
// that is already canonical wins over an alias for the same column; the losing
// column is dropped.
func normalizeFrame(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	names := df.Names()
	exact := make(map[string]bool, len(names))
	for _, n := range names {
		if h := util.NormalizeHeader(n); canonicalColumns[h] {
			exact[h] = true
		}
	}

	claimed := make(map[string]bool, len(names))
	var drop []int
	renames := make(map[string]string)
	for i, n := range names {
		h := util.NormalizeHeader(n)
		target := canonicalName(n)
		isExact := target == h && canonicalColumns[h]
		if claimed[target] || (!isExact && exact[target]) {
			drop = append(drop, i)
			continue
		}
		claimed[target] = true
		if n != target {
			renames[n] = target
		}
	}
	if len(drop) > 0 {
		df = df.Drop(drop)
		if df.Err != nil {
			return df, fmt.Errorf("drop alias columns: %w", df.Err)
		}
	}
	for from, to := range renames {
		df = df.Rename(to, from)
		if df.Err != nil {
			return df, fmt.Errorf("rename %s to %s: %w", from, to, df.Err)
		}
	}
	return df, nil
}
