package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ticket is a price observed for a screening. Rows are never overwritten, so
// the first price seen for a description is the one kept.
type Ticket struct {
	ID          int
	ScreeningID int
	Description string
	Price       decimal.Decimal
}

type TicketRepository interface {
	// Create inserts the ticket. It reports false without error when the
	// screening already has a ticket with that description.
	Create(ctx context.Context, ticket *Ticket) (bool, error)
	GetByScreening(ctx context.Context, screeningID int) ([]Ticket, error)
}

// ReferencePrice returns the highest listed price, used as the per-seat
// revenue of a screening.
func ReferencePrice(tickets []Ticket) (decimal.Decimal, error) {
	if len(tickets) == 0 {
		return decimal.Zero, ErrMissingPriceData
	}

	highest := tickets[0].Price
	for _, t := range tickets[1:] {
		if t.Price.GreaterThan(highest) {
			highest = t.Price
		}
	}

	return highest, nil
}
