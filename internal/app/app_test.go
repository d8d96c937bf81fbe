package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/metinatakli/box-office-ledger/internal/dispatch"
	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/metinatakli/box-office-ledger/internal/lock"
	"github.com/metinatakli/box-office-ledger/internal/mocks"
	"github.com/metinatakli/box-office-ledger/internal/scheduler"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, displayVersion, err := ParseConfig([]string{"-db-dsn", "postgres://localhost/boxoffice", "-dispatcher", "log"})
		require.NoError(t, err)
		assert.False(t, displayVersion)

		assert.Equal(t, ModeServe, cfg.Mode)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 3*time.Minute, cfg.SeatCheck.Offset)
		assert.Equal(t, dispatch.DefaultQueueKey, cfg.SeatCheck.QueueKey)
		assert.Equal(t, 30*time.Minute, cfg.LockTTL)
	})

	t.Run("version", func(t *testing.T) {
		_, displayVersion, err := ParseConfig([]string{"-version"})
		require.NoError(t, err)
		assert.True(t, displayVersion)
	})

	t.Run("connection strings from environment", func(t *testing.T) {
		t.Setenv("BOXOFFICE_DB_DSN", "postgres://env/boxoffice")
		t.Setenv("BOXOFFICE_REDIS_URL", "localhost:6380")

		cfg, _, err := ParseConfig([]string{"-dispatcher", "redis"})
		require.NoError(t, err)
		assert.Equal(t, "postgres://env/boxoffice", cfg.DB.DSN)
		assert.Equal(t, "localhost:6380", cfg.Redis.URL)

		cfg, _, err = ParseConfig([]string{"-db-dsn", "postgres://flag/boxoffice"})
		require.NoError(t, err)
		assert.Equal(t, "postgres://flag/boxoffice", cfg.DB.DSN)
	})

	t.Run("help", func(t *testing.T) {
		_, _, err := ParseConfig([]string{"-h"})
		assert.ErrorIs(t, err, flag.ErrHelp)
	})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown mode",
			args:    []string{"-db-dsn", "postgres://x", "-mode", "backfill"},
			wantErr: `unknown mode "backfill"`,
		},
		{
			name:    "missing dsn",
			args:    []string{"-dispatcher", "log"},
			wantErr: "-db-dsn is required",
		},
		{
			name:    "systemd without command",
			args:    []string{"-db-dsn", "postgres://x", "-mode", "schedule"},
			wantErr: "-seat-check-command is required with the systemd dispatcher",
		},
		{
			name:    "redis queue without redis",
			args:    []string{"-db-dsn", "postgres://x", "-mode", "due"},
			wantErr: "-redis-url is required for the redis task queue",
		},
		{
			name:    "kafka without brokers",
			args:    []string{"-db-dsn", "postgres://x", "-dispatcher", "kafka"},
			wantErr: "-kafka-brokers is required with the kafka dispatcher",
		},
		{
			name:    "unknown dispatcher",
			args:    []string{"-db-dsn", "postgres://x", "-dispatcher", "cron"},
			wantErr: `unknown dispatcher "cron"`,
		},
		{
			name:    "sample ratio above one",
			args:    []string{"-db-dsn", "postgres://x", "-dispatcher", "log", "-otel-sample-ratio", "1.5"},
			wantErr: "-otel-sample-ratio must be between 0 and 1",
		},
		{
			name:    "negative offset",
			args:    []string{"-db-dsn", "postgres://x", "-dispatcher", "log", "-check-offset", "-1m"},
			wantErr: "-check-offset must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseConfig(tt.args)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestBusinessDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC is still the previous evening in New York
	now := time.Date(2026, 10, 16, 2, 30, 0, 0, time.UTC)

	got, err := Config{}.BusinessDate(now, ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = Config{Date: "2018-01-25"}.BusinessDate(now, ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 1, 25, 0, 0, 0, 0, time.UTC), got)

	_, err = Config{Date: "25/01/2018"}.BusinessDate(now, ny)
	assert.Error(t, err)
}

func newRedisTestApplication(t *testing.T, repos *testRepos) (*Application, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	app := newTestApplication(repos, func(a *Application) {
		a.redis = client
		a.queue = dispatch.NewRedisDispatcher(client, dispatch.DefaultQueueKey)
		a.writerLock = lock.NewRedisLock(client, lock.DefaultKey, time.Minute)
	})

	return app, mr
}

func TestWithWriterLock(t *testing.T) {
	app, _ := newRedisTestApplication(t, newTestRepos())
	ctx := context.Background()

	err := app.withWriterLock(ctx, func(ctx context.Context, _ *slog.Logger) error {
		// a second writer is turned away while the first one runs
		nested := app.withWriterLock(ctx, func(context.Context, *slog.Logger) error {
			t.Error("nested run must not start")
			return nil
		})
		assert.ErrorIs(t, nested, lock.ErrLocked)
		return nil
	})
	require.NoError(t, err)

	// released after the run
	ran := false
	err = app.withWriterLock(ctx, func(context.Context, *slog.Logger) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithWriterLockWithoutRedis(t *testing.T) {
	app := newTestApplication(newTestRepos())

	want := errors.New("boom")
	err := app.withWriterLock(context.Background(), func(context.Context, *slog.Logger) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}

func TestRunScheduleThroughRedisQueue(t *testing.T) {
	repos := newTestRepos()
	app, _ := newRedisTestApplication(t, repos)
	app.config.Date = "2026-10-15"

	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	repos.screenings.On("GetDailyReserved", mock.Anything, date).Return([]domain.ScreeningRef{
		{ID: 11, URL: "https://tickets.example.com/11", Date: date, Time: domain.NewClockTime(0, 2)},
		{ID: 12, URL: "https://tickets.example.com/12", Date: date, Time: domain.NewClockTime(23, 59)},
	}, nil)

	app.scheduler = scheduler.New(repos.screenings, app.queue, app.logger, scheduler.WithLocation(time.UTC))

	err := app.runSchedule(context.Background(), app.logger)
	require.NoError(t, err)

	pending, err := app.queue.Pending(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending)

	// at midnight only the 00:02 screening's check (23:59 the day before) is due
	var out bytes.Buffer
	require.NoError(t, app.runDue(context.Background(), &out, date))
	assert.Equal(t, "https://tickets.example.com/11\n", out.String())

	pending, err = app.queue.Pending(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	repos.assertExpectations(t)
}

func TestRunScheduleReportsDispatchFailures(t *testing.T) {
	repos := newTestRepos()
	app := newTestApplication(repos)
	app.config.Date = "2026-10-15"

	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	repos.screenings.On("GetDailyReserved", mock.Anything, date).Return([]domain.ScreeningRef{
		{ID: 11, URL: "https://tickets.example.com/11", Date: date, Time: domain.NewClockTime(14, 45)},
	}, nil)

	dispatcher := new(mocks.MockDispatcher)
	dispatcher.On("RegisterOneShot", mock.Anything, mock.Anything).Return(errors.New("systemd-run: exit status 1"))

	app.scheduler = scheduler.New(repos.screenings, dispatcher, app.logger, scheduler.WithLocation(time.UTC))

	err := app.runSchedule(context.Background(), app.logger)
	assert.EqualError(t, err, "1 seat checks could not be registered")

	dispatcher.AssertExpectations(t)
}

func TestRunAggregate(t *testing.T) {
	repos := newTestRepos()
	app := newTestApplication(repos)
	app.config.Date = "2026-10-15"

	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	repos.screenings.On("GetDaily", mock.Anything, date).Return([]domain.ScreeningRef{{ID: 2}}, nil)
	repos.screenings.On("GetByID", mock.Anything, 2).Return(&domain.Screening{ID: 2}, nil)
	repos.seats.On("GetByScreening", mock.Anything, 2).Return([]domain.Seat{}, nil)
	repos.tickets.On("GetByScreening", mock.Anything, 2).Return([]domain.Ticket{}, nil)

	// missing prices are expected before ticket collection and do not fail the run
	err := app.runAggregate(context.Background(), app.logger)
	require.NoError(t, err)

	repos.assertExpectations(t)
}

func TestNewAppDispatcher(t *testing.T) {
	tests := []struct {
		name string
		cfg  SeatCheckConfig
		want domain.TaskDispatcher
	}{
		{name: "log", cfg: SeatCheckConfig{Dispatcher: DispatcherLog}, want: &dispatch.LogDispatcher{}},
		{name: "systemd", cfg: SeatCheckConfig{Dispatcher: DispatcherSystemd, Command: "seatcheck --headless"}, want: &dispatch.SystemdDispatcher{}},
		{name: "kafka", cfg: SeatCheckConfig{Dispatcher: DispatcherKafka, Brokers: "k1:9092,k2:9092"}, want: &dispatch.KafkaDispatcher{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newTestRepos()
			cfg := Config{Env: "test", TimeZone: "UTC", SeatCheck: tt.cfg}

			app, err := NewApp(cfg, slog.New(slog.DiscardHandler), nil, nil, nil,
				repos.theaters, repos.movies, repos.movieLocations, repos.screenings, repos.tickets, repos.seats)
			require.NoError(t, err)
			defer app.Close()

			assert.IsType(t, tt.want, app.dispatcher)
			assert.Nil(t, app.queue)
			assert.Nil(t, app.writerLock)
		})
	}

	t.Run("redis queue needs a client", func(t *testing.T) {
		repos := newTestRepos()
		cfg := Config{TimeZone: "UTC", SeatCheck: SeatCheckConfig{Dispatcher: DispatcherRedis}}

		_, err := NewApp(cfg, slog.New(slog.DiscardHandler), nil, nil, nil,
			repos.theaters, repos.movies, repos.movieLocations, repos.screenings, repos.tickets, repos.seats)
		assert.EqualError(t, err, "redis dispatcher requires a redis client")
	})

	t.Run("unknown time zone", func(t *testing.T) {
		repos := newTestRepos()
		cfg := Config{TimeZone: "Mars/Olympus_Mons"}

		_, err := NewApp(cfg, slog.New(slog.DiscardHandler), nil, nil, nil,
			repos.theaters, repos.movies, repos.movieLocations, repos.screenings, repos.tickets, repos.seats)
		assert.ErrorContains(t, err, "invalid -tz")
	})
}
