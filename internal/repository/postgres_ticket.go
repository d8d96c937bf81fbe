package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/box-office-ledger/internal/domain"
)

type PostgresTicketRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTicketRepository(db *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{
		db: db,
	}
}

// Create keeps the first price recorded for a (screening, description) pair;
// later prices for the same pair are dropped.
func (p *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	query := `
		INSERT INTO tickets (screening_id, description, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (screening_id, description) DO NOTHING
		RETURNING id
	`

	err := p.db.QueryRow(ctx, query, ticket.ScreeningID, ticket.Description, toNumeric(ticket.Price)).Scan(&ticket.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translateError(err)
	}

	return true, nil
}

func (p *PostgresTicketRepository) GetByScreening(ctx context.Context, screeningID int) ([]domain.Ticket, error) {
	query := `
		SELECT id, screening_id, description, price
		FROM tickets
		WHERE screening_id = $1
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)

	for rows.Next() {
		var ticket domain.Ticket
		var price pgtype.Numeric

		if err := rows.Scan(&ticket.ID, &ticket.ScreeningID, &ticket.Description, &price); err != nil {
			return nil, err
		}

		ticket.Price = toDecimal(price)
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
