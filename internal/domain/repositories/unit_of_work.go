package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope.
	// A Do nested inside another Do joins the outer transaction.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
