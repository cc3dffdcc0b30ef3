package market

import (
	"errors"
	"fmt"
)

var (
	// ErrDatasetNotFound signals that the primary CSV snapshot is absent.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrEmptyDataset is returned by aggregations over a table without rows.
	ErrEmptyDataset = errors.New("dataset has no listings")
	// ErrTooFewListings is returned when clustering has fewer rows than clusters.
	ErrTooFewListings = errors.New("not enough listings to cluster")
	// ErrSnapshotNotFound is returned by snapshot stores for an unknown id.
	ErrSnapshotNotFound = errors.New("report snapshot not found")
)

// MissingColumnError reports a column an aggregation needs that none of the
// loaded CSV files carried.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not present in dataset", e.Column)
}
