package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/box-office-ledger/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) Create(ctx context.Context, seat *domain.Seat) (bool, error) {
	query := `
		INSERT INTO seats (screening_id, location, seat_type, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (screening_id, location) DO NOTHING
		RETURNING id
	`

	err := p.db.QueryRow(
		ctx,
		query,
		seat.ScreeningID,
		seat.Location,
		string(seat.Type),
		string(seat.Status)).Scan(&seat.ID)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translateError(err)
	}

	return true, nil
}

func (p *PostgresSeatRepository) UpdateStatus(
	ctx context.Context,
	screeningID int,
	location string,
	status domain.SeatStatus) error {

	query := `
		UPDATE seats
		SET status = $3
		WHERE screening_id = $1 AND location = $2
	`

	tag, err := p.db.Exec(ctx, query, screeningID, location, string(status))
	if err != nil {
		return err
	}

	return expectOneRow(tag)
}

func (p *PostgresSeatRepository) GetByScreening(ctx context.Context, screeningID int) ([]domain.Seat, error) {
	query := `
		SELECT id, screening_id, location, seat_type, status
		FROM seats
		WHERE screening_id = $1
		ORDER BY location
	`

	rows, err := p.db.Query(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat
		var seatType, status string

		if err = rows.Scan(&seat.ID, &seat.ScreeningID, &seat.Location, &seatType, &status); err != nil {
			return nil, err
		}

		seat.Type = domain.SeatType(seatType)
		seat.Status = domain.SeatStatus(status)
		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
