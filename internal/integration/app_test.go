package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/box-office-ledger/internal/app"
	"github.com/metinatakli/box-office-ledger/internal/repository"
	appvalidator "github.com/metinatakli/box-office-ledger/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App   *app.Application
	DB    *pgxpool.Pool
	Redis *redis.Client

	Screenings *repository.PostgresScreeningRepository
	Seats      *repository.PostgresSeatRepository
	Tickets    *repository.PostgresTicketRepository
	Theaters   *repository.PostgresTheaterRepository
	Movies     *repository.PostgresMovieRepository
	Locations  *repository.PostgresMovieLocationRepository
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	theaterRepo := repository.NewPostgresTheaterRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	movieLocationRepo := repository.NewPostgresMovieLocationRepository(db)
	screeningRepo := repository.NewPostgresScreeningRepository(db)
	ticketRepo := repository.NewPostgresTicketRepository(db)
	seatRepo := repository.NewPostgresSeatRepository(db)

	application, err := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		theaterRepo,
		movieRepo,
		movieLocationRepo,
		screeningRepo,
		ticketRepo,
		seatRepo,
	)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, err
	}

	return &TestApp{
		App:        application,
		DB:         db,
		Redis:      redisClient,
		Screenings: screeningRepo,
		Seats:      seatRepo,
		Tickets:    ticketRepo,
		Theaters:   theaterRepo,
		Movies:     movieRepo,
		Locations:  movieLocationRepo,
	}, nil
}

func (a *TestApp) Close() {
	a.Redis.Close()
	a.DB.Close()
}
