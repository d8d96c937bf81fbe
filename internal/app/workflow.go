package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxstd "github.com/jackc/pgx/v5/stdlib"
	"github.com/metinatakli/box-office-ledger/migrations"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func (app *Application) runMode(ctx context.Context) error {
	switch app.config.Mode {
	case ModeServe:
		return app.serve(ctx)
	case ModeAggregate:
		return app.withWriterLock(ctx, app.runAggregate)
	case ModeSchedule:
		return app.withWriterLock(ctx, app.runSchedule)
	case ModeAll:
		return app.withWriterLock(ctx, func(ctx context.Context, logger *slog.Logger) error {
			// a failed aggregation does not stop the seat checks for the day
			aggErr := app.runAggregate(ctx, logger)
			return errors.Join(aggErr, app.runSchedule(ctx, logger))
		})
	case ModeDue:
		return app.runDue(ctx, os.Stdout, time.Now())
	default:
		return fmt.Errorf("unknown mode %q", app.config.Mode)
	}
}

// withWriterLock runs fn as the only writer of the ledger. Without redis the
// lock is skipped and operators must not overlap runs themselves.
func (app *Application) withWriterLock(
	ctx context.Context,
	fn func(context.Context, *slog.Logger) error) error {

	logger := app.logger.With("run_id", uuid.NewString(), "mode", app.config.Mode)

	if app.writerLock == nil {
		logger.Warn("redis not configured, running without the writer lock")
		return fn(ctx, logger)
	}

	release, err := app.writerLock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire writer lock: %w", err)
	}

	defer func() {
		// the run context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := release(releaseCtx); err != nil {
			logger.Error("failed to release writer lock", "error", err)
		}
	}()

	return fn(ctx, logger)
}

// lockLedger takes the writer lock for a single request so an HTTP roll-up
// never overlaps a batch run in another process. It fails with lock.ErrLocked
// instead of waiting.
func (app *Application) lockLedger(ctx context.Context) (func(), error) {
	if app.writerLock == nil {
		return func() {}, nil
	}

	release, err := app.writerLock.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := release(releaseCtx); err != nil {
			app.logger.Error("failed to release writer lock", "error", err)
		}
	}, nil
}

func (app *Application) runAggregate(ctx context.Context, logger *slog.Logger) error {
	date, err := app.config.BusinessDate(time.Now(), app.location)
	if err != nil {
		return err
	}

	logger.Info("aggregating screenings", "date", date.Format(time.DateOnly))

	summary, err := app.engine.AggregateDate(ctx, date)
	if err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d screenings failed to aggregate", summary.Failed)
	}

	return nil
}

func (app *Application) runSchedule(ctx context.Context, logger *slog.Logger) error {
	date, err := app.config.BusinessDate(time.Now(), app.location)
	if err != nil {
		return err
	}

	logger.Info("scheduling seat checks", "date", date.Format(time.DateOnly))

	entries, err := app.scheduler.Schedule(ctx, date)
	if err != nil {
		return err
	}

	failed := 0
	for _, e := range entries {
		if e.DispatchErr != nil {
			failed++
		}
	}

	logger.Info("scheduled seat checks", "planned", len(entries), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d seat checks could not be registered", failed)
	}

	return nil
}

// runDue pops the seat checks due at now and prints one URL per line for the
// seat collector.
func (app *Application) runDue(ctx context.Context, out io.Writer, now time.Time) error {
	if app.queue == nil {
		return errors.New("due mode requires redis")
	}

	tasks, err := app.queue.Due(ctx, now)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		app.logger.Info("seat check due", "task", task.Name, "screening_id", task.ScreeningID, "instant", task.At)
		fmt.Fprintln(out, task.URL)
	}

	return nil
}

// MigrateUp applies the embedded schema migrations to the database at dsn.
func MigrateUp(dsn string, logger *slog.Logger) error {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	db := pgxstd.OpenDB(*config)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("pgx migration driver error: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source error: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx", driver)
	if err != nil {
		return fmt.Errorf("migrate.New error: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	v, dirty, _ := m.Version()
	logger.Info("migrations applied", "version", v, "dirty", dirty)

	return nil
}
