package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jsamuelsen/quote-service/internal/domain"
	"github.com/jsamuelsen/quote-service/internal/platform/telemetry"
)

const (
	insertQuoteSQL = `INSERT INTO quotes (id, book, quote, inserted_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

	selectQuotesSQL = `SELECT id, book, quote, inserted_at, updated_at FROM quotes`

	updateQuoteSQL = `UPDATE quotes SET book = $2, quote = $3, updated_at = $4 WHERE id = $1`

	deleteQuoteSQL = `DELETE FROM quotes WHERE id = $1`
)

// quoteRow mirrors one row of the quotes table.
type quoteRow struct {
	ID         uuid.UUID `db:"id"`
	Book       string    `db:"book"`
	Quote      string    `db:"quote"`
	InsertedAt time.Time `db:"inserted_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r quoteRow) toDomain() *domain.Quote {
	return &domain.Quote{
		ID:         r.ID,
		Book:       r.Book,
		Quote:      r.Quote,
		InsertedAt: r.InsertedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

// Insert writes quote as a new row.
func (s *Store) Insert(ctx context.Context, quote *domain.Quote) (err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "insert")
	defer func() { done(err) }()

	_, err = s.pool.Exec(ctx, insertQuoteSQL,
		quote.ID, quote.Book, quote.Quote, quote.InsertedAt, quote.UpdatedAt)
	if err != nil {
		return queryError("insert", err)
	}

	return nil
}

// List returns every row in server order.
func (s *Store) List(ctx context.Context) (_ []*domain.Quote, err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "list")
	defer func() { done(err) }()

	rows, err := s.pool.Query(ctx, selectQuotesSQL)
	if err != nil {
		return nil, queryError("list", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[quoteRow])
	if err != nil {
		return nil, queryError("list", err)
	}

	quotes := make([]*domain.Quote, 0, len(records))
	for _, r := range records {
		quotes = append(quotes, r.toDomain())
	}

	return quotes, nil
}

// Update overwrites book, quote and updated_at. inserted_at is never touched.
func (s *Store) Update(ctx context.Context, id uuid.UUID, book, quote string, updatedAt time.Time) (_ int64, err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "update")
	defer func() { done(err) }()

	tag, err := s.pool.Exec(ctx, updateQuoteSQL, id, book, quote, updatedAt)
	if err != nil {
		return 0, queryError("update", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes the row matching id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (_ int64, err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "delete")
	defer func() { done(err) }()

	tag, err := s.pool.Exec(ctx, deleteQuoteSQL, id)
	if err != nil {
		return 0, queryError("delete", err)
	}

	return tag.RowsAffected(), nil
}

// queryError names the failed operation. Server-side errors also carry their
// SQLSTATE and, when present, the violated constraint.
func queryError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.ConstraintName != "" {
			return fmt.Errorf("%s quote: sqlstate %s on %s: %w", op, pgErr.Code, pgErr.ConstraintName, err)
		}

		return fmt.Errorf("%s quote: sqlstate %s: %w", op, pgErr.Code, err)
	}

	return fmt.Errorf("%s quote: %w", op, err)
}
