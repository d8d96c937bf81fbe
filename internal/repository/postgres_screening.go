package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/box-office-ledger/internal/domain"
)

const screeningColumns = `
	id, url, movie_location_id, show_date, show_time, screening_type, reserved_seating,
	auditorium, capacity, seats_sold, estimated_earnings
`

type PostgresScreeningRepository struct {
	db *pgxpool.Pool
}

func NewPostgresScreeningRepository(db *pgxpool.Pool) *PostgresScreeningRepository {
	return &PostgresScreeningRepository{
		db: db,
	}
}

func (p *PostgresScreeningRepository) Create(ctx context.Context, screening *domain.Screening) error {
	query := `
		INSERT INTO screenings (url, movie_location_id, show_date, show_time, screening_type, reserved_seating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := p.db.QueryRow(
		ctx,
		query,
		screening.URL,
		screening.MovieLocationID,
		screening.Date,
		toPgTime(screening.Time),
		string(screening.Type),
		screening.ReservedSeating).Scan(&screening.ID)

	return translateError(err)
}

func (p *PostgresScreeningRepository) GetByID(ctx context.Context, id int) (*domain.Screening, error) {
	query := `SELECT ` + screeningColumns + ` FROM screenings WHERE id = $1`

	screening, err := scanScreening(p.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	return screening, nil
}

func (p *PostgresScreeningRepository) GetByURL(ctx context.Context, url string) (*domain.Screening, error) {
	query := `SELECT ` + screeningColumns + ` FROM screenings WHERE url = $1`

	screening, err := scanScreening(p.db.QueryRow(ctx, query, url))
	if err != nil {
		return nil, translateError(err)
	}

	return screening, nil
}

func (p *PostgresScreeningRepository) ListByMovieLocation(
	ctx context.Context,
	movieLocationID int) ([]domain.Screening, error) {

	query := `SELECT ` + screeningColumns + ` FROM screenings WHERE movie_location_id = $1 ORDER BY id`

	rows, err := p.db.Query(ctx, query, movieLocationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	screenings := make([]domain.Screening, 0)

	for rows.Next() {
		screening, err := scanScreening(rows)
		if err != nil {
			return nil, err
		}

		screenings = append(screenings, *screening)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return screenings, nil
}

func scanScreening(row pgx.Row) (*domain.Screening, error) {
	var screening domain.Screening
	var showTime pgtype.Time
	var screeningType string
	var earnings pgtype.Numeric

	err := row.Scan(
		&screening.ID,
		&screening.URL,
		&screening.MovieLocationID,
		&screening.Date,
		&showTime,
		&screeningType,
		&screening.ReservedSeating,
		&screening.Auditorium,
		&screening.Capacity,
		&screening.SeatsSold,
		&earnings,
	)
	if err != nil {
		return nil, err
	}

	screening.Time = toClockTime(showTime)
	screening.Type = domain.ScreeningType(screeningType)
	screening.EstimatedEarnings = toNullDecimal(earnings)

	return &screening, nil
}

func (p *PostgresScreeningRepository) UpdateAuditorium(ctx context.Context, id int, auditorium string) error {
	query := `
		UPDATE screenings
		SET auditorium = $2
		WHERE id = $1
	`

	tag, err := p.db.Exec(ctx, query, id, auditorium)
	if err != nil {
		return err
	}

	return expectOneRow(tag)
}

func (p *PostgresScreeningRepository) UpdateAggregates(
	ctx context.Context,
	id int,
	aggregates domain.ScreeningAggregates) error {

	query := `
		UPDATE screenings
		SET capacity = $2, seats_sold = $3, estimated_earnings = $4
		WHERE id = $1
	`

	tag, err := p.db.Exec(
		ctx,
		query,
		id,
		aggregates.Capacity,
		aggregates.SeatsSold,
		toNumeric(aggregates.Earnings))
	if err != nil {
		return err
	}

	return expectOneRow(tag)
}

func (p *PostgresScreeningRepository) GetDaily(ctx context.Context, date time.Time) ([]domain.ScreeningRef, error) {
	query := `
		SELECT id, url, show_date, show_time
		FROM screenings
		WHERE show_date = $1
		ORDER BY id
	`

	return p.listRefs(ctx, query, date)
}

func (p *PostgresScreeningRepository) GetDailyReserved(ctx context.Context, date time.Time) ([]domain.ScreeningRef, error) {
	query := `
		SELECT id, url, show_date, show_time
		FROM screenings
		WHERE show_date = $1 AND reserved_seating
		ORDER BY show_time, id
	`

	return p.listRefs(ctx, query, date)
}

func (p *PostgresScreeningRepository) listRefs(ctx context.Context, query string, date time.Time) ([]domain.ScreeningRef, error) {
	rows, err := p.db.Query(ctx, query, pgtype.Date{Time: date, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]domain.ScreeningRef, 0)

	for rows.Next() {
		var ref domain.ScreeningRef
		var showTime pgtype.Time

		if err := rows.Scan(&ref.ID, &ref.URL, &ref.Date, &showTime); err != nil {
			return nil, err
		}

		ref.Time = toClockTime(showTime)
		refs = append(refs, ref)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return refs, nil
}
