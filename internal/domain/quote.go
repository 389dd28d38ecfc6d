// Package domain contains core business entities and rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time. Services take one so tests can control
// the timestamps stamped onto quotes.
type Clock func() time.Time

// UTCClock is the production Clock.
func UTCClock() time.Time {
	return time.Now().UTC()
}

// Quote represents a passage quoted from a book.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is the unique identifier for this quote. Assigned once, never reused.
	ID uuid.UUID

	// Book is the source work being quoted.
	Book string

	// Quote is the quoted passage.
	Quote string

	// InsertedAt is when the quote was created. It never changes.
	InsertedAt time.Time

	// UpdatedAt is when the quote was last modified.
	UpdatedAt time.Time
}

// NewQuote builds a quote with a fresh identifier, stamped with the current UTC time.
// Text content is not validated; empty strings are accepted.
func NewQuote(quote, book string) *Quote {
	return NewQuoteAt(quote, book, UTCClock())
}

// NewQuoteAt builds a quote stamped with now. Both timestamps share the same instant.
func NewQuoteAt(quote, book string, now time.Time) *Quote {
	now = now.UTC()

	return &Quote{
		ID:         uuid.New(),
		Book:       book,
		Quote:      quote,
		InsertedAt: now,
		UpdatedAt:  now,
	}
}
