package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	query := `
		INSERT INTO movies (title)
		VALUES ($1)
		RETURNING id
	`

	err := p.db.QueryRow(ctx, query, movie.Title).Scan(&movie.ID)

	return translateError(err)
}

func (p *PostgresMovieRepository) GetByID(ctx context.Context, id int) (*domain.Movie, error) {
	query := `SELECT id, title, estimated_earnings FROM movies WHERE id = $1`

	return p.scanOne(ctx, query, id)
}

func (p *PostgresMovieRepository) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	query := `SELECT id, title, estimated_earnings FROM movies WHERE title = $1`

	return p.scanOne(ctx, query, title)
}

func (p *PostgresMovieRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Movie, error) {
	var movie domain.Movie
	var earnings pgtype.Numeric

	err := p.db.QueryRow(ctx, query, arg).Scan(&movie.ID, &movie.Title, &earnings)
	if err != nil {
		return nil, translateError(err)
	}

	movie.EstimatedEarnings = toNullDecimal(earnings)

	return &movie, nil
}

func (p *PostgresMovieRepository) GetAll(ctx context.Context) ([]domain.Movie, error) {
	query := `
		SELECT id, title, estimated_earnings
		FROM movies
		ORDER BY estimated_earnings DESC NULLS LAST, id
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)

	for rows.Next() {
		var movie domain.Movie
		var earnings pgtype.Numeric

		if err := rows.Scan(&movie.ID, &movie.Title, &earnings); err != nil {
			return nil, err
		}

		movie.EstimatedEarnings = toNullDecimal(earnings)
		movies = append(movies, movie)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return movies, nil
}

func (p *PostgresMovieRepository) UpdateEarnings(ctx context.Context, id int, earnings decimal.Decimal) error {
	query := `
		UPDATE movies
		SET estimated_earnings = $2
		WHERE id = $1
	`

	tag, err := p.db.Exec(ctx, query, id, toNumeric(earnings))
	if err != nil {
		return err
	}

	return expectOneRow(tag)
}
