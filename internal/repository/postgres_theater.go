package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresTheaterRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTheaterRepository(db *pgxpool.Pool) *PostgresTheaterRepository {
	return &PostgresTheaterRepository{
		db: db,
	}
}

func (p *PostgresTheaterRepository) Create(ctx context.Context, theater *domain.Theater) error {
	query := `
		INSERT INTO theaters (name, url)
		VALUES ($1, $2)
		RETURNING id
	`

	err := p.db.QueryRow(ctx, query, theater.Name, theater.URL).Scan(&theater.ID)

	return translateError(err)
}

func (p *PostgresTheaterRepository) GetByID(ctx context.Context, id int) (*domain.Theater, error) {
	query := `
		SELECT id, name, url, estimated_earnings
		FROM theaters
		WHERE id = $1
	`

	return p.scanOne(ctx, query, id)
}

func (p *PostgresTheaterRepository) GetByURL(ctx context.Context, url string) (*domain.Theater, error) {
	query := `
		SELECT id, name, url, estimated_earnings
		FROM theaters
		WHERE url = $1
	`

	return p.scanOne(ctx, query, url)
}

func (p *PostgresTheaterRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Theater, error) {
	var theater domain.Theater
	var earnings pgtype.Numeric

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&theater.ID,
		&theater.Name,
		&theater.URL,
		&earnings,
	)
	if err != nil {
		return nil, translateError(err)
	}

	theater.EstimatedEarnings = toNullDecimal(earnings)

	return &theater, nil
}

func (p *PostgresTheaterRepository) GetAll(ctx context.Context) ([]domain.Theater, error) {
	query := `
		SELECT id, name, url, estimated_earnings
		FROM theaters
		ORDER BY estimated_earnings DESC NULLS LAST, id
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	theaters := make([]domain.Theater, 0)

	for rows.Next() {
		var theater domain.Theater
		var earnings pgtype.Numeric

		if err := rows.Scan(&theater.ID, &theater.Name, &theater.URL, &earnings); err != nil {
			return nil, err
		}

		theater.EstimatedEarnings = toNullDecimal(earnings)
		theaters = append(theaters, theater)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return theaters, nil
}

func (p *PostgresTheaterRepository) UpdateEarnings(ctx context.Context, id int, earnings decimal.Decimal) error {
	query := `
		UPDATE theaters
		SET estimated_earnings = $2
		WHERE id = $1
	`

	tag, err := p.db.Exec(ctx, query, id, toNumeric(earnings))
	if err != nil {
		return err
	}

	return expectOneRow(tag)
}
