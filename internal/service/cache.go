package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/internal/observability"
)

// TableCache keeps loaded datasets for the lifetime of the process, keyed by source key.
// Entries are written once and never refreshed; failed loads are not cached.
type TableCache struct {
	source domain.RentalSource
	log    logrus.FieldLogger

	mu     sync.RWMutex
	tables map[string]*domain.RentalTable
	group  singleflight.Group
}

// NewTableCache creates a cache in front of source
func NewTableCache(source domain.RentalSource, log logrus.FieldLogger) *TableCache {
	return &TableCache{
		source: source,
		log:    log.WithField("component", "table_cache"),
		tables: make(map[string]*domain.RentalTable),
	}
}

// Source returns the underlying rental source
func (c *TableCache) Source() domain.RentalSource {
	return c.source
}

// Get returns the table for key, loading it on first access
func (c *TableCache) Get(ctx context.Context, key string) (*domain.RentalTable, error) {
	if t, ok := c.lookup(key); ok {
		observability.CacheLookups.WithLabelValues("hit").Inc()
		c.log.WithField("key", key).Debug("Dataset cache hit")
		return t, nil
	}
	observability.CacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have populated the entry between lookup and Do.
		if t, ok := c.lookup(key); ok {
			return t, nil
		}

		// Waiters share the result, so the load ignores the first caller's cancellation.
		started := time.Now()
		t, err := c.source.Load(context.WithoutCancel(ctx), key)
		if err != nil {
			observability.DatasetLoads.WithLabelValues(c.source.Name(), "failed").Inc()
			return nil, err
		}

		c.mu.Lock()
		c.tables[key] = t
		c.mu.Unlock()

		observability.DatasetLoads.WithLabelValues(c.source.Name(), "success").Inc()
		observability.DatasetRows.WithLabelValues(key).Set(float64(t.Len()))

		fields := logrus.Fields{
			"source":   c.source.Name(),
			"key":      key,
			"rows":     t.Len(),
			"duration": time.Since(started).String(),
		}
		if min, max, ok := t.Bounds(); ok {
			fields["min_date"] = min.Format(domain.DateLayout)
			fields["max_date"] = max.Format(domain.DateLayout)
		}
		c.log.WithFields(fields).Info("Loaded dataset")

		return t, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.RentalTable), nil
}

// Invalidate drops the entry for key
func (c *TableCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, key)
}

func (c *TableCache) lookup(key string) (*domain.RentalTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[key]
	return t, ok
}
