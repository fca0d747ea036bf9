package domain

import (
	"context"
)

// RentalSource defines the interface for loading the rental dataset.
// The domain defines the interface; repositories implement it.
type RentalSource interface {
	// Load reads the table identified by key (a file path or a table name)
	Load(ctx context.Context, key string) (*RentalTable, error)

	// Name identifies the source kind in logs and health output
	Name() string
}

// HealthChecker is implemented by sources backed by a remote system
type HealthChecker interface {
	Health(ctx context.Context) error
}
