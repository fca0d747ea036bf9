package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshare/dashboard/internal/domain"
)

type fakeRow struct {
	date  time.Time
	count int64
	temp  float64
	hum   float64
	wind  float64
}

// fakeRows implements pgx.Rows over an in-memory slice
type fakeRows struct {
	rows    []fakeRow
	pos     int
	scanErr error
	closed  bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.rows[r.pos-1]
	*dest[0].(*time.Time) = row.date
	*dest[1].(*int64) = row.count
	*dest[2].(*float64) = row.temp
	*dest[3].(*float64) = row.hum
	*dest[4].(*float64) = row.wind
	return nil
}

type fakeDB struct {
	rows     *fakeRows
	queryErr error
	pingErr  error
	lastSQL  string
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.lastSQL = sql
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeDB) Ping(_ context.Context) error {
	return f.pingErr
}

func TestRentalRepository_Load(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{rows: []fakeRow{
		{date: time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), count: 985, temp: 0.34, hum: 0.80, wind: 0.16},
		{date: time.Date(2011, 2, 1, 0, 0, 0, 0, time.UTC), count: 1360, temp: 0.20, hum: 0.51, wind: 0.20},
	}}}
	repo := &RentalRepository{db: db}

	table, err := repo.Load(context.Background(), "day")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Contains(t, db.lastSQL, `FROM "day"`)
	assert.True(t, db.rows.closed)
	assert.Equal(t, "postgres:day", table.Source)

	rec := table.Records()[1]
	assert.Equal(t, 2011, rec.Year)
	assert.Equal(t, 2, rec.Month)
	assert.Equal(t, 1360, rec.Count)
}

func TestRentalRepository_LoadErrors(t *testing.T) {
	t.Run("query failure", func(t *testing.T) {
		repo := &RentalRepository{db: &fakeDB{queryErr: errors.New("connection refused")}}
		_, err := repo.Load(context.Background(), "day")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to query rentals")
	})

	t.Run("scan failure is a format error", func(t *testing.T) {
		rows := &fakeRows{rows: []fakeRow{{}}, scanErr: errors.New("cannot scan text into float64")}
		repo := &RentalRepository{db: &fakeDB{rows: rows}}
		_, err := repo.Load(context.Background(), "day")

		var dfe *domain.DataFormatError
		require.ErrorAs(t, err, &dfe)
		assert.Equal(t, 1, dfe.Row)
	})

	t.Run("negative count", func(t *testing.T) {
		rows := &fakeRows{rows: []fakeRow{{date: time.Now(), count: -1}}}
		repo := &RentalRepository{db: &fakeDB{rows: rows}}
		_, err := repo.Load(context.Background(), "day")

		var dfe *domain.DataFormatError
		require.ErrorAs(t, err, &dfe)
		assert.Equal(t, domain.ColumnCount, dfe.Column)
	})
}

func TestRentalRepository_Health(t *testing.T) {
	repo := &RentalRepository{db: &fakeDB{}}
	assert.NoError(t, repo.Health(context.Background()))

	repo = &RentalRepository{db: &fakeDB{pingErr: errors.New("down")}}
	assert.ErrorContains(t, repo.Health(context.Background()), "health check failed")
}
