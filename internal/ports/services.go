// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver rows or ORM models
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-service/internal/domain"
)

// QuoteRepository is the only component that speaks the quotes table schema.
// Every method is a single atomic statement; nothing is retried.
//
// Update and Delete report the number of affected rows rather than a
// not-found error. Since id is the primary key the count is 0 or 1, and the
// application layer decides what 0 means.
type QuoteRepository interface {
	// Insert writes a fully-formed quote. A duplicate id surfaces as the
	// driver's constraint error, same as any other storage failure.
	Insert(ctx context.Context, quote *domain.Quote) error

	// List returns every stored quote in storage-native order.
	// The slice is empty, not nil, when no quotes exist.
	List(ctx context.Context) ([]*domain.Quote, error)

	// Update overwrites book, quote and updated_at on the row matching id.
	Update(ctx context.Context, id uuid.UUID, book, quote string, updatedAt time.Time) (int64, error)

	// Delete removes the row matching id.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// QuoteStore is a QuoteRepository backed by a live connection pool.
// Storage adapters return one from Open; main owns its lifetime.
type QuoteStore interface {
	QuoteRepository
	HealthChecker

	// Close releases the pool. Safe to call once at shutdown.
	Close() error
}
