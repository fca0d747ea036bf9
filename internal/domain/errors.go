package domain

import (
	"errors"
	"fmt"
)

// ErrEmptySelection marks a date range that matched no rows.
// It is informational: the pipeline still produces (empty) figures.
var ErrEmptySelection = errors.New("no rentals in the selected date range")

// ErrInvertedRange is returned when a requested range ends before it starts
var ErrInvertedRange = errors.New("end date is before start date")

// DataFormatError reports a dataset that is missing a required column or holds an unparsable value
type DataFormatError struct {
	Source string
	Column string
	Row    int // 1-based data row, 0 when the error concerns the whole column or file
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("dataset %s: column %q row %d: invalid value %q: %v", e.Source, e.Column, e.Row, e.Value, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("dataset %s: row %d: %v", e.Source, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("dataset %s: column %q: %v", e.Source, e.Column, e.Err)
	default:
		return fmt.Sprintf("dataset %s: %v", e.Source, e.Err)
	}
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// ErrMissingColumn is wrapped by DataFormatError when a required column is absent
var ErrMissingColumn = errors.New("required column is missing")

// ErrEmptyDataset is wrapped by DataFormatError when the file has a header but no rows
var ErrEmptyDataset = errors.New("dataset has no data rows")

// RemoteAssetError reports a failed fetch of a remote UI asset such as the sidebar logo
type RemoteAssetError struct {
	URL    string
	Status int
	Err    error
}

func (e *RemoteAssetError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote asset %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("remote asset %s: %v", e.URL, e.Err)
}

func (e *RemoteAssetError) Unwrap() error {
	return e.Err
}
