package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Theater struct {
	ID                int
	Name              string
	URL               string
	EstimatedEarnings decimal.NullDecimal
}

type TheaterRepository interface {
	Create(ctx context.Context, theater *Theater) error
	GetByID(ctx context.Context, id int) (*Theater, error)
	GetByURL(ctx context.Context, url string) (*Theater, error)
	GetAll(ctx context.Context) ([]Theater, error)
	UpdateEarnings(ctx context.Context, id int, earnings decimal.Decimal) error
}
