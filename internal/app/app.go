package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/metinatakli/box-office-ledger/internal/aggregate"
	"github.com/metinatakli/box-office-ledger/internal/dispatch"
	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/metinatakli/box-office-ledger/internal/lock"
	"github.com/metinatakli/box-office-ledger/internal/repository"
	"github.com/metinatakli/box-office-ledger/internal/scheduler"
	appvalidator "github.com/metinatakli/box-office-ledger/internal/validator"
	"github.com/metinatakli/box-office-ledger/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "box-office-ledger"

var (
	version = vcs.Version()
)

const (
	ModeServe     = "serve"
	ModeMigrate   = "migrate"
	ModeAggregate = "aggregate"
	ModeSchedule  = "schedule"
	ModeDue       = "due"
	ModeAll       = "all"
)

const (
	DispatcherSystemd = "systemd"
	DispatcherRedis   = "redis"
	DispatcherLog     = "log"
	DispatcherKafka   = "kafka"
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	location  *time.Location

	theaterRepo       domain.TheaterRepository
	movieRepo         domain.MovieRepository
	movieLocationRepo domain.MovieLocationRepository
	screeningRepo     domain.ScreeningRepository
	ticketRepo        domain.TicketRepository
	seatRepo          domain.SeatRepository

	engine     *aggregate.Engine
	scheduler  *scheduler.Scheduler
	dispatcher domain.TaskDispatcher
	queue      *dispatch.RedisDispatcher
	writerLock *lock.RedisLock
}

type Config struct {
	Mode             string
	Port             int
	Env              string
	Date             string
	TimeZone         string
	LockTTL          time.Duration
	OtelCollectorUrl string
	OtelSampleRatio  float64
	DB               DBConfig
	Redis            RedisConfig
	SeatCheck        SeatCheckConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SeatCheckConfig struct {
	Offset     time.Duration
	Dispatcher string
	Command    string
	UserUnits  bool
	QueueKey   string
	Brokers    string
	Topic      string
}

// ParseConfig reads the command-line flags in args. The DSN and Redis address
// default to BOXOFFICE_DB_DSN and BOXOFFICE_REDIS_URL. The returned bool is
// set when -version was requested.
func ParseConfig(args []string) (Config, bool, error) {
	var cfg Config

	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)

	fs.StringVar(&cfg.Mode, "mode", ModeServe, "Run mode (serve|migrate|aggregate|schedule|due|all)")
	fs.IntVar(&cfg.Port, "port", 3000, "server port")
	fs.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.Date, "date", "", "Business date for batch modes (YYYY-MM-DD, default today)")
	fs.StringVar(&cfg.TimeZone, "tz", "", "Time zone showtimes are recorded in (default local)")
	fs.DurationVar(&cfg.LockTTL, "lock-ttl", 30*time.Minute, "Expiry of the single-writer lock")
	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector gRPC endpoint")
	fs.Float64Var(&cfg.OtelSampleRatio, "otel-sample-ratio", 1, "Fraction of root traces sampled (0..1)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("BOXOFFICE_DB_DSN"), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.URL, "redis-url", os.Getenv("BOXOFFICE_REDIS_URL"), "Redis address (lock and task queue are disabled when empty)")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	fs.DurationVar(&cfg.SeatCheck.Offset, "check-offset", scheduler.DefaultCheckOffset, "How long before showtime a seat check runs")
	fs.StringVar(&cfg.SeatCheck.Dispatcher, "dispatcher", DispatcherSystemd, "Seat-check dispatcher (systemd|redis|kafka|log)")
	fs.StringVar(&cfg.SeatCheck.Command, "seat-check-command", "", "Command run by each seat check, the screening URL is appended")
	fs.BoolVar(&cfg.SeatCheck.UserUnits, "systemd-user", false, "Register seat checks as systemd user units")
	fs.StringVar(&cfg.SeatCheck.QueueKey, "queue-key", dispatch.DefaultQueueKey, "Redis key of the seat-check queue")
	fs.StringVar(&cfg.SeatCheck.Brokers, "kafka-brokers", "", "Comma-separated Kafka brokers for the kafka dispatcher")
	fs.StringVar(&cfg.SeatCheck.Topic, "kafka-topic", dispatch.DefaultTopic, "Kafka topic seat checks are published to")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return cfg, false, err
	}

	if *displayVersion {
		return cfg, true, nil
	}

	return cfg, false, cfg.validate()
}

func (cfg Config) validate() error {
	switch cfg.Mode {
	case ModeServe, ModeMigrate, ModeAggregate, ModeSchedule, ModeDue, ModeAll:
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	switch cfg.SeatCheck.Dispatcher {
	case DispatcherSystemd, DispatcherRedis, DispatcherKafka, DispatcherLog:
	default:
		return fmt.Errorf("unknown dispatcher %q", cfg.SeatCheck.Dispatcher)
	}

	if cfg.DB.DSN == "" {
		return errors.New("-db-dsn is required")
	}

	if cfg.SeatCheck.Dispatcher == DispatcherSystemd && usesScheduler(cfg.Mode) && cfg.SeatCheck.Command == "" {
		return errors.New("-seat-check-command is required with the systemd dispatcher")
	}

	if (cfg.SeatCheck.Dispatcher == DispatcherRedis || cfg.Mode == ModeDue) && cfg.Redis.URL == "" {
		return errors.New("-redis-url is required for the redis task queue")
	}

	if cfg.SeatCheck.Dispatcher == DispatcherKafka && cfg.SeatCheck.Brokers == "" {
		return errors.New("-kafka-brokers is required with the kafka dispatcher")
	}

	if cfg.OtelSampleRatio < 0 || cfg.OtelSampleRatio > 1 {
		return errors.New("-otel-sample-ratio must be between 0 and 1")
	}

	if cfg.SeatCheck.Offset < 0 {
		return errors.New("-check-offset must not be negative")
	}

	return nil
}

func usesScheduler(mode string) bool {
	return mode == ModeSchedule || mode == ModeAll
}

// Location resolves the configured time zone.
func (cfg Config) Location() (*time.Location, error) {
	if cfg.TimeZone == "" {
		return time.Local, nil
	}

	return time.LoadLocation(cfg.TimeZone)
}

// BusinessDate resolves -date, defaulting to today in loc.
func (cfg Config) BusinessDate(now time.Time, loc *time.Location) (time.Time, error) {
	if cfg.Date == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	date, err := time.Parse(time.DateOnly, cfg.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q: %w", cfg.Date, err)
	}

	return date, nil
}

func Run() error {
	// a .env file is optional; flags still win over it
	_ = godotenv.Load()

	cfg, displayVersion, err := ParseConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		return nil
	}

	textHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(textHandler)

	if cfg.Mode == ModeMigrate {
		return MigrateUp(cfg.DB.DSN, logger)
	}

	app := &Application{
		config: cfg,
		logger: logger,
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(textHandler, otelslog.NewHandler(serviceName)))
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient redis.UniversalClient
	if cfg.Redis.URL != "" {
		client, err := NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		redisClient = client
	}

	app, err = NewApp(cfg, logger, db, redisClient, appvalidator.NewValidator(),
		repository.NewPostgresTheaterRepository(db),
		repository.NewPostgresMovieRepository(db),
		repository.NewPostgresMovieLocationRepository(db),
		repository.NewPostgresScreeningRepository(db),
		repository.NewPostgresTicketRepository(db),
		repository.NewPostgresSeatRepository(db),
	)
	if err != nil {
		return err
	}

	defer app.Close()

	ctx, stop := signalContext()
	defer stop()

	return app.runMode(ctx)
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	theaterRepo domain.TheaterRepository,
	movieRepo domain.MovieRepository,
	movieLocationRepo domain.MovieLocationRepository,
	screeningRepo domain.ScreeningRepository,
	ticketRepo domain.TicketRepository,
	seatRepo domain.SeatRepository,
) (*Application, error) {

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid -tz: %w", err)
	}

	app := &Application{
		config:            cfg,
		logger:            logger,
		db:                db,
		redis:             redisClient,
		validator:         validator,
		location:          location,
		theaterRepo:       theaterRepo,
		movieRepo:         movieRepo,
		movieLocationRepo: movieLocationRepo,
		screeningRepo:     screeningRepo,
		ticketRepo:        ticketRepo,
		seatRepo:          seatRepo,
	}

	app.engine = aggregate.NewEngine(aggregate.Repositories{
		Screenings:     screeningRepo,
		Tickets:        ticketRepo,
		Seats:          seatRepo,
		MovieLocations: movieLocationRepo,
		Movies:         movieRepo,
		Theaters:       theaterRepo,
	}, logger)

	if redisClient != nil {
		app.queue = dispatch.NewRedisDispatcher(redisClient, cfg.SeatCheck.QueueKey)
		app.writerLock = lock.NewRedisLock(redisClient, lock.DefaultKey, cfg.LockTTL)
	}

	dispatcher, err := app.newDispatcher()
	if err != nil {
		return nil, err
	}

	app.dispatcher = dispatcher
	app.scheduler = scheduler.New(screeningRepo, dispatcher, logger,
		scheduler.WithLocation(location),
		scheduler.WithCheckOffset(cfg.SeatCheck.Offset),
	)

	return app, nil
}

func (app *Application) newDispatcher() (domain.TaskDispatcher, error) {
	switch app.config.SeatCheck.Dispatcher {
	case DispatcherRedis:
		if app.queue == nil {
			return nil, errors.New("redis dispatcher requires a redis client")
		}
		return app.queue, nil
	case DispatcherKafka:
		brokers := strings.Split(app.config.SeatCheck.Brokers, ",")
		return dispatch.NewKafkaDispatcher(dispatch.NewKafkaWriter(brokers, app.config.SeatCheck.Topic)), nil
	case DispatcherLog, "":
		return dispatch.NewLogDispatcher(app.logger), nil
	default:
		return dispatch.NewSystemdDispatcher(
			strings.Fields(app.config.SeatCheck.Command),
			app.config.SeatCheck.UserUnits,
			app.logger,
		), nil
	}
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		rdb.Close()
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Close releases what NewApp opened on its own. The pool and the Redis client
// belong to the caller.
func (app *Application) Close() {
	closer, ok := app.dispatcher.(io.Closer)
	if !ok {
		return
	}

	if err := closer.Close(); err != nil {
		app.logger.Error("failed to close seat-check dispatcher", "error", err)
	}
}
