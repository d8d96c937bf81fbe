package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Movie is identified by its exact title. A theater that renames a film
// produces a distinct Movie.
type Movie struct {
	ID                int
	Title             string
	EstimatedEarnings decimal.NullDecimal
}

type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetByID(ctx context.Context, id int) (*Movie, error)
	GetByTitle(ctx context.Context, title string) (*Movie, error)
	GetAll(ctx context.Context) ([]Movie, error)
	UpdateEarnings(ctx context.Context, id int, earnings decimal.Decimal) error
}
