package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresMovieLocationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieLocationRepository(db *pgxpool.Pool) *PostgresMovieLocationRepository {
	return &PostgresMovieLocationRepository{
		db: db,
	}
}

// Create inserts the movie/theater pairing. An existing pairing is left
// untouched and its id is copied into ml.
func (p *PostgresMovieLocationRepository) Create(ctx context.Context, ml *domain.MovieLocation) (bool, error) {
	created := false

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO movie_locations (movie_id, theater_id)
			VALUES ($1, $2)
			ON CONFLICT (movie_id, theater_id) DO NOTHING
			RETURNING id
		`

		err := tx.QueryRow(ctx, query, ml.MovieID, ml.TheaterID).Scan(&ml.ID)
		if err == nil {
			created = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return translateError(err)
		}

		query = `SELECT id FROM movie_locations WHERE movie_id = $1 AND theater_id = $2`

		return translateError(tx.QueryRow(ctx, query, ml.MovieID, ml.TheaterID).Scan(&ml.ID))
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (p *PostgresMovieLocationRepository) GetByID(ctx context.Context, id int) (*domain.MovieLocation, error) {
	query := `
		SELECT id, movie_id, theater_id, estimated_earnings
		FROM movie_locations
		WHERE id = $1
	`

	return p.scanOne(ctx, query, id)
}

func (p *PostgresMovieLocationRepository) GetByPair(
	ctx context.Context,
	movieID, theaterID int) (*domain.MovieLocation, error) {

	query := `
		SELECT id, movie_id, theater_id, estimated_earnings
		FROM movie_locations
		WHERE movie_id = $1 AND theater_id = $2
	`

	return p.scanOne(ctx, query, movieID, theaterID)
}

func (p *PostgresMovieLocationRepository) scanOne(
	ctx context.Context,
	query string,
	args ...any) (*domain.MovieLocation, error) {

	var ml domain.MovieLocation
	var earnings pgtype.Numeric

	err := p.db.QueryRow(ctx, query, args...).Scan(&ml.ID, &ml.MovieID, &ml.TheaterID, &earnings)
	if err != nil {
		return nil, translateError(err)
	}

	ml.EstimatedEarnings = toNullDecimal(earnings)

	return &ml, nil
}

func (p *PostgresMovieLocationRepository) ListByMovie(ctx context.Context, movieID int) ([]domain.MovieLocation, error) {
	query := `
		SELECT id, movie_id, theater_id, estimated_earnings
		FROM movie_locations
		WHERE movie_id = $1
		ORDER BY id
	`

	return p.list(ctx, query, movieID)
}

func (p *PostgresMovieLocationRepository) ListByTheater(
	ctx context.Context,
	theaterID int) ([]domain.MovieLocation, error) {

	query := `
		SELECT id, movie_id, theater_id, estimated_earnings
		FROM movie_locations
		WHERE theater_id = $1
		ORDER BY id
	`

	return p.list(ctx, query, theaterID)
}

func (p *PostgresMovieLocationRepository) list(ctx context.Context, query string, arg any) ([]domain.MovieLocation, error) {
	rows, err := p.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]domain.MovieLocation, 0)

	for rows.Next() {
		var ml domain.MovieLocation
		var earnings pgtype.Numeric

		if err := rows.Scan(&ml.ID, &ml.MovieID, &ml.TheaterID, &earnings); err != nil {
			return nil, err
		}

		ml.EstimatedEarnings = toNullDecimal(earnings)
		locations = append(locations, ml)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (p *PostgresMovieLocationRepository) UpdateEarnings(ctx context.Context, id int, earnings decimal.Decimal) error {
	query := `
		UPDATE movie_locations
		SET estimated_earnings = $2
		WHERE id = $1
	`

	tag, err := p.db.Exec(ctx, query, id, toNumeric(earnings))
	if err != nil {
		return err
	}

	return expectOneRow(tag)
}
