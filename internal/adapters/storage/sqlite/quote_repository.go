package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-service/internal/domain"
	"github.com/jsamuelsen/quote-service/internal/platform/telemetry"
)

// quoteModel maps the quotes table. UpdatedAt is written explicitly by the
// service clock, so gorm's automatic timestamping is switched off.
type quoteModel struct {
	ID         string    `gorm:"column:id;primaryKey;type:text"`
	Book       string    `gorm:"column:book"`
	Quote      string    `gorm:"column:quote"`
	InsertedAt time.Time `gorm:"column:inserted_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (quoteModel) TableName() string {
	return "quotes"
}

func fromDomain(q *domain.Quote) *quoteModel {
	return &quoteModel{
		ID:         q.ID.String(),
		Book:       q.Book,
		Quote:      q.Quote,
		InsertedAt: q.InsertedAt.UTC(),
		UpdatedAt:  q.UpdatedAt.UTC(),
	}
}

func (m *quoteModel) toDomain() (*domain.Quote, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("stored quote id %q: %w", m.ID, err)
	}

	return &domain.Quote{
		ID:         id,
		Book:       m.Book,
		Quote:      m.Quote,
		InsertedAt: m.InsertedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}, nil
}

// Insert writes quote as a new row.
func (s *Store) Insert(ctx context.Context, quote *domain.Quote) (err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "insert")
	defer func() { done(err) }()

	if err = s.db.WithContext(ctx).Create(fromDomain(quote)).Error; err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}

	return nil
}

// List returns every row in table order.
func (s *Store) List(ctx context.Context) (_ []*domain.Quote, err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "list")
	defer func() { done(err) }()

	var models []quoteModel
	if err = s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list quote: %w", err)
	}

	quotes := make([]*domain.Quote, 0, len(models))
	for i := range models {
		q, convErr := models[i].toDomain()
		if convErr != nil {
			return nil, fmt.Errorf("list quote: %w", convErr)
		}
		quotes = append(quotes, q)
	}

	return quotes, nil
}

// Update overwrites book, quote and updated_at. inserted_at is never touched.
func (s *Store) Update(ctx context.Context, id uuid.UUID, book, quote string, updatedAt time.Time) (_ int64, err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "update")
	defer func() { done(err) }()

	result := s.db.WithContext(ctx).
		Model(&quoteModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{
			"book":       book,
			"quote":      quote,
			"updated_at": updatedAt.UTC(),
		})
	if err = result.Error; err != nil {
		return 0, fmt.Errorf("update quote: %w", err)
	}

	return result.RowsAffected, nil
}

// Delete removes the row matching id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (_ int64, err error) {
	ctx, done := telemetry.StartQuery(ctx, Dialect, "delete")
	defer func() { done(err) }()

	result := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&quoteModel{})
	if err = result.Error; err != nil {
		return 0, fmt.Errorf("delete quote: %w", err)
	}

	return result.RowsAffected, nil
}
