package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/internal/figure"
	"github.com/bikeshare/dashboard/internal/observability"
)

// DashboardService runs the filter, aggregate and render pipeline over the cached dataset
type DashboardService struct {
	cache *TableCache
	key   string
	years []int
	log   logrus.FieldLogger
}

// NewDashboardService creates a new dashboard service for the dataset identified by key
func NewDashboardService(cache *TableCache, key string, years []int, log logrus.FieldLogger) *DashboardService {
	if len(years) == 0 {
		years = domain.DefaultTrendYears
	}
	return &DashboardService{
		cache: cache,
		key:   key,
		years: years,
		log:   log.WithField("component", "dashboard_service"),
	}
}

// Table returns the full dataset, loading it on first use
func (s *DashboardService) Table(ctx context.Context) (*domain.RentalTable, error) {
	t, err := s.cache.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to load dataset: %w", err)
	}
	return t, nil
}

// Bounds returns the dataset's date span for the date pickers
func (s *DashboardService) Bounds(ctx context.Context) (domain.DatasetBounds, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return domain.DatasetBounds{}, err
	}

	b := domain.DatasetBounds{Rows: t.Len(), Source: s.cache.Source().Name()}
	if min, max, ok := t.Bounds(); ok {
		b.MinDate = min.Format(domain.DateLayout)
		b.MaxDate = max.Format(domain.DateLayout)
	}
	return b, nil
}

// ResolveRange turns raw YYYY-MM-DD inputs into a range inside the dataset bounds
func (s *DashboardService) ResolveRange(ctx context.Context, start, end string) (domain.DateRange, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return domain.DateRange{}, err
	}
	return ResolveRange(t, start, end)
}

// ResolveRange defaults a missing start or end to the table's bounds and clamps
// a window that overlaps them into them. A window entirely outside the bounds is
// returned unchanged so it selects no rows. An inverted range is rejected with
// domain.ErrInvertedRange.
func ResolveRange(table *domain.RentalTable, start, end string) (domain.DateRange, error) {
	min, max, ok := table.Bounds()

	from, hasFrom, err := parseDate(start)
	if err != nil {
		return domain.DateRange{}, err
	}
	to, hasTo, err := parseDate(end)
	if err != nil {
		return domain.DateRange{}, err
	}

	switch {
	case !hasFrom && !hasTo:
		from, to = min, max
	case !hasFrom:
		from = min
		if to.Before(min) {
			from = to
		}
	case !hasTo:
		to = max
		if from.After(max) {
			to = from
		}
	}

	r := domain.DateRange{Start: from, End: to}
	if r.Inverted() {
		return domain.DateRange{}, fmt.Errorf("%w: %s > %s", domain.ErrInvertedRange,
			from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	}

	if ok && !r.End.Before(min) && !r.Start.After(max) {
		r.Start = clampDate(r.Start, min, max)
		r.End = clampDate(r.End, r.Start, max)
	}
	return r, nil
}

// parseDate reads a YYYY-MM-DD value; ok is false for blank input
func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	d, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return d, true, nil
}

func clampDate(d, min, max time.Time) time.Time {
	if d.Before(min) {
		return min
	}
	if d.After(max) {
		return max
	}
	return d
}

// Aggregate filters the dataset and computes every chart input without rendering
func (s *DashboardService) Aggregate(ctx context.Context, r domain.DateRange) (*domain.Figures, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}

	selected := FilterByDate(t, r.Start, r.End)
	pivot, labels := MonthlyTrends(selected, s.years)

	f := &domain.Figures{
		Range:       r,
		Rows:        selected.Len(),
		Empty:       selected.Len() == 0,
		Pivot:       pivot,
		MonthLabels: labels,
		Totals:      YearlyTotals(selected),
		Weather:     WeatherPanels(selected),
	}
	if f.Empty {
		s.log.WithFields(logrus.Fields{
			"start": r.Start.Format(domain.DateLayout),
			"end":   r.End.Format(domain.DateLayout),
		}).Info(domain.ErrEmptySelection.Error())
	}

	return f, nil
}

// Render runs the whole pipeline for r and renders both figures.
// The trend and weather figures are independent and render concurrently.
func (s *DashboardService) Render(ctx context.Context, r domain.DateRange) (*domain.Figures, error) {
	started := time.Now()

	f, err := s.Aggregate(ctx, r)
	if err != nil {
		observability.RendersTotal.WithLabelValues("all", "failed").Inc()
		return nil, err
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		png, err := figure.Trends(f.Pivot, f.MonthLabels, f.Totals)
		if err != nil {
			return err
		}
		f.TrendsPNG = png
		return nil
	})
	g.Go(func() error {
		png, err := figure.Weather(f.Weather)
		if err != nil {
			return err
		}
		f.WeatherPNG = png
		return nil
	})
	if err := g.Wait(); err != nil {
		observability.RendersTotal.WithLabelValues("all", "failed").Inc()
		return nil, fmt.Errorf("dashboard: failed to render figures: %w", err)
	}

	s.observe("all", f, started)
	return f, nil
}

// RenderTrends renders only the monthly and yearly trends figure
func (s *DashboardService) RenderTrends(ctx context.Context, r domain.DateRange) ([]byte, error) {
	started := time.Now()

	f, err := s.Aggregate(ctx, r)
	if err != nil {
		observability.RendersTotal.WithLabelValues("trends", "failed").Inc()
		return nil, err
	}
	png, err := figure.Trends(f.Pivot, f.MonthLabels, f.Totals)
	if err != nil {
		observability.RendersTotal.WithLabelValues("trends", "failed").Inc()
		return nil, fmt.Errorf("dashboard: failed to render trends: %w", err)
	}

	s.observe("trends", f, started)
	return png, nil
}

// RenderWeather renders only the weather correlation figure
func (s *DashboardService) RenderWeather(ctx context.Context, r domain.DateRange) ([]byte, error) {
	started := time.Now()

	f, err := s.Aggregate(ctx, r)
	if err != nil {
		observability.RendersTotal.WithLabelValues("weather", "failed").Inc()
		return nil, err
	}
	png, err := figure.Weather(f.Weather)
	if err != nil {
		observability.RendersTotal.WithLabelValues("weather", "failed").Inc()
		return nil, fmt.Errorf("dashboard: failed to render weather: %w", err)
	}

	s.observe("weather", f, started)
	return png, nil
}

func (s *DashboardService) observe(name string, f *domain.Figures, started time.Time) {
	status := "success"
	if f.Empty {
		status = "empty"
	}
	observability.RendersTotal.WithLabelValues(name, status).Inc()
	observability.RenderDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())

	s.log.WithFields(logrus.Fields{
		"figure":   name,
		"rows":     f.Rows,
		"duration": time.Since(started).String(),
	}).Debug("Rendered dashboard")
}
