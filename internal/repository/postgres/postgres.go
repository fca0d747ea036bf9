package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bikeshare/dashboard/internal/domain"
)

// querier is the subset of *pgxpool.Pool used by the repository
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// RentalRepository implements domain.RentalSource over a PostgreSQL table
// holding the same columns as the CSV dataset
type RentalRepository struct {
	db querier
}

// NewRentalRepository creates a new PostgreSQL repository
func NewRentalRepository(pool *pgxpool.Pool) *RentalRepository {
	return &RentalRepository{db: pool}
}

// Name identifies the source kind
func (r *RentalRepository) Name() string {
	return "postgres"
}

// Load reads every row of the given table ordered by date
func (r *RentalRepository) Load(ctx context.Context, table string) (*domain.RentalTable, error) {
	query := fmt.Sprintf(`
		SELECT dteday, cnt, temp, hum, windspeed
		FROM %s
		ORDER BY dteday
	`, pgx.Identifier{table}.Sanitize())

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query rentals: %w", err)
	}
	defer rows.Close()

	var records []domain.RentalRecord
	for rows.Next() {
		var (
			date           time.Time
			count          int64
			temp, hum, wnd float64
		)
		if err := rows.Scan(&date, &count, &temp, &hum, &wnd); err != nil {
			return nil, &domain.DataFormatError{
				Source: table,
				Row:    len(records) + 1,
				Err:    fmt.Errorf("postgres: failed to scan rental row: %w", err),
			}
		}
		if count < 0 {
			return nil, &domain.DataFormatError{
				Source: table,
				Column: domain.ColumnCount,
				Row:    len(records) + 1,
				Value:  fmt.Sprint(count),
				Err:    fmt.Errorf("ride count must be non-negative"),
			}
		}
		records = append(records, domain.NewRentalRecord(date, int(count), temp, hum, wnd))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read rentals: %w", err)
	}

	return domain.NewRentalTable("postgres:"+table, records), nil
}

// Health checks database connectivity
func (r *RentalRepository) Health(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
