package market

import (
	"errors"
	"time"

	"github.com/carcrafter/market-api/pkg/model"
)

// Analyzer computes market statistics over one loaded dataset. It is built
// once at process start and handed to whoever serves the results; every call
// re-scans the table and never mutates it.
type Analyzer struct {
	ds  *Dataset
	now func() time.Time
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer wraps a loaded dataset.
func NewAnalyzer(ds *Dataset, opts ...Option) (*Analyzer, error) {
	if ds == nil {
		return nil, errors.New("market analyzer: nil dataset")
	}
	a := &Analyzer{ds: ds, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Dataset returns the table the analyzer reads.
func (a *Analyzer) Dataset() *Dataset {
	return a.ds
}

func (a *Analyzer) listings() []model.Listing {
	return a.ds.Listings
}

// require fails when the table is empty or lacks one of the columns.
func (a *Analyzer) require(cols ...string) error {
	if len(a.ds.Listings) == 0 {
		return ErrEmptyDataset
	}
	return a.requireColumns(cols...)
}

func (a *Analyzer) requireColumns(cols ...string) error {
	for _, c := range cols {
		if !a.ds.HasColumn(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}
