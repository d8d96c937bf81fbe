package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MovieLocation records that a movie has played at a theater.
type MovieLocation struct {
	ID                int
	MovieID           int
	TheaterID         int
	EstimatedEarnings decimal.NullDecimal
}

type MovieLocationRepository interface {
	// Create inserts the pairing. It reports false without error when the
	// pair already exists.
	Create(ctx context.Context, ml *MovieLocation) (bool, error)
	GetByID(ctx context.Context, id int) (*MovieLocation, error)
	GetByPair(ctx context.Context, movieID, theaterID int) (*MovieLocation, error)
	ListByMovie(ctx context.Context, movieID int) ([]MovieLocation, error)
	ListByTheater(ctx context.Context, theaterID int) ([]MovieLocation, error)
	UpdateEarnings(ctx context.Context, id int, earnings decimal.Decimal) error
}
