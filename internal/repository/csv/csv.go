// Package csv loads the rental dataset from a comma-separated file
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"

	"github.com/bikeshare/dashboard/internal/domain"
)

// RequiredColumns lists the header names every dataset must carry
var RequiredColumns = []string{
	domain.ColumnDate,
	domain.ColumnCount,
	domain.ColumnTemperature,
	domain.ColumnHumidity,
	domain.ColumnWindspeed,
}

// Source implements domain.RentalSource over a CSV file
type Source struct {
	log logrus.FieldLogger
}

// NewSource creates a new CSV source
func NewSource(log logrus.FieldLogger) *Source {
	return &Source{log: log.WithField("component", "csv_source")}
}

// Name identifies the source kind
func (s *Source) Name() string {
	return "csv"
}

// Load reads the file at path into a RentalTable
func (s *Source) Load(ctx context.Context, path string) (*domain.RentalTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: failed to open dataset: %w", err)
	}
	defer f.Close()

	raw, err := stdcsv.NewReader(f).ReadAll()
	if err != nil {
		return nil, &domain.DataFormatError{Source: path, Err: err}
	}
	if len(raw) > 0 {
		if err := checkHeader(path, raw[0]); err != nil {
			return nil, err
		}
	}
	if len(raw) < 2 {
		return nil, &domain.DataFormatError{Source: path, Err: domain.ErrEmptyDataset}
	}

	// Everything is read as text so parse failures can name the row and value.
	df := dataframe.LoadRecords(raw,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, &domain.DataFormatError{Source: path, Err: df.Err}
	}

	records, err := decode(path, df)
	if err != nil {
		return nil, err
	}

	table := domain.NewRentalTable(path, records)
	s.log.WithFields(logrus.Fields{
		"path": path,
		"rows": table.Len(),
	}).Debug("Parsed dataset")

	return table, nil
}

// checkHeader reports the first required column missing from header
func checkHeader(path string, header []string) error {
	present := make(map[string]bool, len(header))
	for _, n := range header {
		present[n] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return &domain.DataFormatError{Source: path, Column: col, Err: domain.ErrMissingColumn}
		}
	}
	return nil
}

func decode(path string, df dataframe.DataFrame) ([]domain.RentalRecord, error) {
	names := df.Names()
	columns := make(map[string][]string, len(names))
	for _, n := range names {
		columns[n] = df.Col(n).Records()
	}

	rows := df.Nrow()
	records := make([]domain.RentalRecord, 0, rows)
	for i := 0; i < rows; i++ {
		row := i + 1
		fail := func(col string, err error) error {
			return &domain.DataFormatError{Source: path, Column: col, Row: row, Value: columns[col][i], Err: err}
		}

		date, err := time.Parse(domain.DateLayout, strings.TrimSpace(columns[domain.ColumnDate][i]))
		if err != nil {
			return nil, fail(domain.ColumnDate, err)
		}

		count, err := parseCount(columns[domain.ColumnCount][i])
		if err != nil {
			return nil, fail(domain.ColumnCount, err)
		}

		var measures [3]float64
		for j, col := range []string{domain.ColumnTemperature, domain.ColumnHumidity, domain.ColumnWindspeed} {
			v, err := parseMeasure(columns[col][i])
			if err != nil {
				return nil, fail(col, err)
			}
			measures[j] = v
		}

		rec := domain.NewRentalRecord(date, count, measures[0], measures[1], measures[2])
		rec.Extra = extras(names, columns, i)
		records = append(records, rec)
	}

	return records, nil
}

// parseCount accepts integral values, including "123.0" as written by some exporters
func parseCount(raw string) (int, error) {
	v, err := parseMeasure(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("ride count must be non-negative")
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("ride count must be an integer")
	}
	return int(v), nil
}

func parseMeasure(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value is not a finite number")
	}
	return v, nil
}

func extras(names []string, columns map[string][]string, i int) map[string]string {
	var out map[string]string
	for _, n := range names {
		if isRequired(n) {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(names)-len(RequiredColumns))
		}
		out[n] = columns[n][i]
	}
	return out
}

func isRequired(name string) bool {
	for _, col := range RequiredColumns {
		if col == name {
			return true
		}
	}
	return false
}
