package market

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/carcrafter/market-api/pkg/model"
	"github.com/carcrafter/market-api/pkg/util"
)

// LoadOptions tunes dataset loading.
type LoadOptions struct {
	// CurrentYear is the reference year for car_age. Zero means the wall clock year.
	CurrentYear int
	Logger      *slog.Logger
}

// Dataset is the immutable in-memory table the analyzer reads.
type Dataset struct {
	Listings    []model.Listing
	Columns     map[string]bool
	Sources     []string
	CurrentYear int
	SkippedRows int
	Fingerprint string
	LoadedAt    time.Time
}

// HasColumn reports whether any source CSV carried the canonical column.
func (d *Dataset) HasColumn(name string) bool {
	return d.Columns[name]
}

// LoadDataset reads the primary CSV and, when present, appends the rows of the
// secondary CSV. A missing primary file is fatal (ErrDatasetNotFound); a
// missing secondary file only logs a warning.
func LoadDataset(primary, secondary string, opts LoadOptions) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	df, err := readFrame(primary)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, primary)
		}
		return nil, err
	}
	logger.Info("main dataset loaded", "path", primary, "records", df.Nrow())
	sources := []string{primary}

	if secondary != "" {
		extra, err := readFrame(secondary)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("additional dataset not found, using main dataset only", "path", secondary)
		case err != nil:
			return nil, err
		default:
			logger.Info("additional dataset loaded", "path", secondary, "records", extra.Nrow())
			df = df.Concat(extra)
			if df.Err != nil {
				return nil, fmt.Errorf("concat %s: %w", secondary, df.Err)
			}
			sources = append(sources, secondary)
		}
	}

	fingerprint, err := util.FingerprintFiles(sources...)
	if err != nil {
		return nil, err
	}

	ds, err := datasetFromFrame(df, opts.CurrentYear)
	if err != nil {
		return nil, err
	}
	ds.Sources = sources
	ds.Fingerprint = fingerprint
	if ds.SkippedRows > 0 {
		logger.Warn("skipped rows without a parseable year or price", "rows", ds.SkippedRows)
	}
	logger.Info("dataset ready", "records", len(ds.Listings), "sources", len(sources), "current_year", ds.CurrentYear)
	return ds, nil
}

// ReadDataset builds a dataset from a single CSV stream. It is used by tests
// and tools that already hold the bytes.
func ReadDataset(r io.Reader, currentYear int) (*Dataset, error) {
	df, err := parseFrame(r)
	if err != nil {
		return nil, err
	}
	return datasetFromFrame(df, currentYear)
}

// NewDataset wraps listings that were built in memory. Derived fields are
// recomputed and every canonical column is treated as present.
func NewDataset(listings []model.Listing, currentYear int) *Dataset {
	if currentYear == 0 {
		currentYear = time.Now().Year()
	}
	out := make([]model.Listing, len(listings))
	for i, l := range listings {
		Derive(&l, currentYear)
		out[i] = l
	}
	cols := make(map[string]bool, len(canonicalColumns))
	for c := range canonicalColumns {
		cols[c] = true
	}
	return &Dataset{
		Listings:    out,
		Columns:     cols,
		CurrentYear: currentYear,
		LoadedAt:    time.Now().UTC(),
	}
}

func readFrame(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	df, err := parseFrame(f)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return df, nil
}

// parseFrame reads every column as text; numeric parsing happens per field so
// that thousands separators and missing markers are handled uniformly.
func parseFrame(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, fmt.Errorf("parse csv: %w", df.Err)
	}
	return normalizeFrame(df)
}

func datasetFromFrame(df dataframe.DataFrame, currentYear int) (*Dataset, error) {
	if currentYear == 0 {
		currentYear = time.Now().Year()
	}

	cols := make(map[string]bool)
	records := make(map[string][]string)
	for _, name := range df.Names() {
		s := df.Col(name)
		if s.Err != nil {
			return nil, fmt.Errorf("column %s: %w", name, s.Err)
		}
		cols[name] = true
		records[name] = s.Records()
	}

	cell := func(col string, row int) string {
		vals, ok := records[col]
		if !ok {
			return ""
		}
		return vals[row]
	}

	ds := &Dataset{
		Columns:     cols,
		CurrentYear: currentYear,
		LoadedAt:    time.Now().UTC(),
	}
	ds.Listings = make([]model.Listing, 0, df.Nrow())

	for row := 0; row < df.Nrow(); row++ {
		year, okYear := util.ParseNumber(cell(colYear, row))
		price, okPrice := util.ParseNumber(cell(colPrice, row))
		if !okYear || !okPrice {
			ds.SkippedRows++
			continue
		}

		l := model.Listing{
			ID:                util.CleanLabel(cell(colListingID, row)),
			Company:           util.CleanLabel(cell(colCompany, row)),
			Model:             util.CleanLabel(cell(colModel, row)),
			Year:              int(year),
			KilometersDriven:  parseFloat(cell(colKilometers, row)),
			CarCondition:      util.CleanLabel(cell(colCondition, row)),
			PreviousAccidents: parseInt(cell(colAccidents, row)),
			Price:             price,
			ListingType:       util.CleanLabel(cell(colListingType, row)),
			City:              util.CleanLabel(cell(colCity, row)),
			FuelType:          util.CleanFuelType(cell(colFuelType, row)),
			Transmission:      util.CleanTransmission(cell(colTransmission, row)),
			EngineSize:        parseFloat(cell(colEngineSize, row)),
			Power:             parseFloat(cell(colPower, row)),
			NumDoors:          parseInt(cell(colNumDoors, row)),
			EmissionNorm:      util.CleanLabel(cell(colEmissionNorm, row)),
			InsuranceStatus:   util.CleanLabel(cell(colInsuranceStatus, row)),
			InsuranceEligible: util.CleanLabel(cell(colInsuranceEligible, row)),
			MaintenanceLevel:  util.CleanLabel(cell(colMaintenanceLevel, row)),
		}
		if l.ID == "" {
			l.ID = strconv.Itoa(len(ds.Listings) + 1)
		}
		if owners, ok := util.ParseOwnerCount(cell(colOwnerCount, row)); ok {
			l.OwnerCount = owners
		}
		if ref, ok := util.ParseNumber(cell(colReferencePrice, row)); ok {
			l.ReferencePrice = &ref
		}

		Derive(&l, currentYear)
		ds.Listings = append(ds.Listings, l)
	}
	return ds, nil
}

// parseFloat returns NaN for missing or malformed numeric cells.
func parseFloat(s string) float64 {
	if f, ok := util.ParseNumber(s); ok {
		return f
	}
	return math.NaN()
}

// parseInt returns 0 for missing or malformed count cells.
func parseInt(s string) int {
	f, ok := util.ParseNumber(strings.TrimSpace(s))
	if !ok {
		return 0
	}
	return int(f)
}
