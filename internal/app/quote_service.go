// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-service/internal/domain"
	"github.com/jsamuelsen/quote-service/internal/ports"
)

// QuoteService orchestrates quote-related use cases.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
//
// Each use case makes exactly one repository call. Failures are logged with
// their cause here and returned as domain errors; nothing is retried.
type QuoteService struct {
	repo   ports.QuoteRepository
	logger *slog.Logger
	now    domain.Clock
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Repository ports.QuoteRepository
	Logger     *slog.Logger

	// Clock stamps created and updated quotes. Defaults to domain.UTCClock.
	Clock domain.Clock
}

// NewQuoteService creates a new quote service with the provided dependencies.
// It panics if no repository is given, since the service cannot do anything without one.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repository == nil {
		panic("app: QuoteService requires a repository")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = domain.UTCClock
	}

	return &QuoteService{
		repo:   cfg.Repository,
		logger: logger,
		now:    clock,
	}
}

// CreateQuote builds a new quote with a fresh id and timestamps, then persists it.
func (s *QuoteService) CreateQuote(ctx context.Context, book, text string) (*domain.Quote, error) {
	quote := domain.NewQuoteAt(text, book, s.now())

	if err := s.repo.Insert(ctx, quote); err != nil {
		s.logger.ErrorContext(ctx, "failed to insert quote",
			slog.String("quote_id", quote.ID.String()),
			slog.Any("error", err),
		)
		return nil, domain.NewStorageError("insert", err)
	}

	s.logger.InfoContext(ctx, "created quote",
		slog.String("quote_id", quote.ID.String()),
	)

	return quote, nil
}

// ListQuotes returns all stored quotes. No ordering is guaranteed.
func (s *QuoteService) ListQuotes(ctx context.Context) ([]*domain.Quote, error) {
	quotes, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list quotes",
			slog.Any("error", err),
		)
		return nil, domain.NewStorageError("list", err)
	}

	if quotes == nil {
		quotes = []*domain.Quote{}
	}

	return quotes, nil
}

// UpdateQuote replaces book and quote text on an existing quote and refreshes updated_at.
// Returns a not found error when no quote has the given id.
func (s *QuoteService) UpdateQuote(ctx context.Context, id uuid.UUID, book, text string) error {
	affected, err := s.repo.Update(ctx, id, book, text, s.now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update quote",
			slog.String("quote_id", id.String()),
			slog.Any("error", err),
		)
		return domain.NewStorageError("update", err)
	}

	if affected == 0 {
		s.logger.InfoContext(ctx, "quote not found for update",
			slog.String("quote_id", id.String()),
		)
		return domain.NewNotFoundError(id)
	}

	s.logger.InfoContext(ctx, "updated quote",
		slog.String("quote_id", id.String()),
	)

	return nil
}

// DeleteQuote removes a quote. Returns a not found error when no quote has the given id.
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete quote",
			slog.String("quote_id", id.String()),
			slog.Any("error", err),
		)
		return domain.NewStorageError("delete", err)
	}

	if affected == 0 {
		s.logger.InfoContext(ctx, "quote not found for delete",
			slog.String("quote_id", id.String()),
		)
		return domain.NewNotFoundError(id)
	}

	s.logger.InfoContext(ctx, "deleted quote",
		slog.String("quote_id", id.String()),
	)

	return nil
}
