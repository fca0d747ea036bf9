package domain

import "time"

// DateLayout is the calendar date format used by the dataset and the query string
const DateLayout = "2006-01-02"

// Dataset column names
const (
	ColumnDate        = "dteday"
	ColumnCount       = "cnt"
	ColumnTemperature = "temp"
	ColumnHumidity    = "hum"
	ColumnWindspeed   = "windspeed"
)

// RentalRecord is one day of bike rentals
type RentalRecord struct {
	Date        time.Time         `json:"date"`
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	Count       int               `json:"count"`
	Temperature float64           `json:"temperature"`
	Humidity    float64           `json:"humidity"`
	Windspeed   float64           `json:"windspeed"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// NewRentalRecord builds a record and derives year and month from the date
func NewRentalRecord(date time.Time, count int, temp, hum, wind float64) RentalRecord {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return RentalRecord{
		Date:        day,
		Year:        day.Year(),
		Month:       int(day.Month()),
		Count:       count,
		Temperature: temp,
		Humidity:    hum,
		Windspeed:   wind,
	}
}

// RentalTable is a read-only ordered set of records.
// Filtering and aggregation produce new tables; a table is never mutated after construction.
type RentalTable struct {
	Source  string
	records []RentalRecord
	minDate time.Time
	maxDate time.Time
}

// NewRentalTable copies records into a new table and computes its date bounds
func NewRentalTable(source string, records []RentalRecord) *RentalTable {
	t := &RentalTable{
		Source:  source,
		records: make([]RentalRecord, len(records)),
	}
	copy(t.records, records)

	for i, r := range t.records {
		if i == 0 || r.Date.Before(t.minDate) {
			t.minDate = r.Date
		}
		if i == 0 || r.Date.After(t.maxDate) {
			t.maxDate = r.Date
		}
	}

	return t
}

// Len returns the number of records
func (t *RentalTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the records in table order
func (t *RentalTable) Records() []RentalRecord {
	if t == nil {
		return nil
	}
	out := make([]RentalRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Each calls fn for every record in order without copying the backing slice
func (t *RentalTable) Each(fn func(RentalRecord)) {
	if t == nil {
		return
	}
	for _, r := range t.records {
		fn(r)
	}
}

// Bounds returns the observed min and max dates; ok is false for an empty table
func (t *RentalTable) Bounds() (min, max time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.minDate, t.maxDate, true
}

// DateRange is an inclusive calendar date window
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls within the range, comparing calendar days
func (r DateRange) Contains(d time.Time) bool {
	day := truncateDay(d)
	return !day.Before(truncateDay(r.Start)) && !day.After(truncateDay(r.End))
}

// Inverted reports whether Start is after End
func (r DateRange) Inverted() bool {
	return truncateDay(r.Start).After(truncateDay(r.End))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DatasetBounds describes the date span of the loaded dataset
type DatasetBounds struct {
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
	Rows    int    `json:"rows"`
	Source  string `json:"source"`
}
