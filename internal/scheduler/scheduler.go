// Package scheduler assigns seat-check instants to reserved-seating
// screenings and hands them to a TaskDispatcher.
//
// Each screening is checked a fixed offset before its showtime. Screenings
// are processed by ascending showtime; when an instant is already taken the
// later screening walks back one minute at a time until it finds a free one.
// After collisions the instants are therefore not guaranteed to be monotonic
// with showtime order.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultCheckOffset  = 3 * time.Minute
	instrumentationName = "github.com/metinatakli/box-office-ledger/internal/scheduler"
)

type Scheduler struct {
	screenings domain.ScreeningRepository
	dispatcher domain.TaskDispatcher
	logger     *slog.Logger
	location   *time.Location
	offset     time.Duration

	dispatched metric.Int64Counter
	collisions metric.Int64Counter
}

type Option func(*Scheduler)

// WithLocation sets the time zone showtimes are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.location = loc
	}
}

// WithCheckOffset sets how long before showtime the seat check runs.
func WithCheckOffset(offset time.Duration) Option {
	return func(s *Scheduler) {
		s.offset = offset
	}
}

func New(
	screenings domain.ScreeningRepository,
	dispatcher domain.TaskDispatcher,
	logger *slog.Logger,
	opts ...Option) *Scheduler {

	s := &Scheduler{
		screenings: screenings,
		dispatcher: dispatcher,
		logger:     logger,
		location:   time.Local,
		offset:     DefaultCheckOffset,
	}

	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)

	var err error
	s.dispatched, err = meter.Int64Counter("boxoffice.seatchecks.dispatched",
		metric.WithDescription("Seat checks handed to the task dispatcher"))
	if err != nil {
		logger.Warn("failed to create dispatch counter", "error", err)
	}

	s.collisions, err = meter.Int64Counter("boxoffice.seatchecks.collisions",
		metric.WithDescription("Seat-check instants moved earlier to avoid a collision"))
	if err != nil {
		logger.Warn("failed to create collision counter", "error", err)
	}

	return s
}

// Entry is one planned seat check.
type Entry struct {
	ScreeningID int
	URL         string
	Showtime    time.Time
	Instant     time.Time
	// Shift is how far the instant was moved earlier than the naive
	// showtime-minus-offset instant.
	Shift time.Duration
	Task  domain.SeatCheckTask
	// DispatchErr is set when the dispatcher rejected the task.
	DispatchErr error
}

// Plan assigns a distinct minute to every screening in refs, in order. It is
// deterministic and does not dispatch anything.
func (s *Scheduler) Plan(refs []domain.ScreeningRef) []Entry {
	assigned := make(map[int64]struct{}, len(refs))
	entries := make([]Entry, 0, len(refs))

	for _, ref := range refs {
		showtime := ref.Time.On(ref.Date, s.location)
		candidate := showtime.Add(-s.offset).Truncate(time.Minute)
		naive := candidate

		for {
			if _, taken := assigned[candidate.Unix()]; !taken {
				break
			}
			candidate = candidate.Add(-time.Minute)
		}

		assigned[candidate.Unix()] = struct{}{}

		entries = append(entries, Entry{
			ScreeningID: ref.ID,
			URL:         ref.URL,
			Showtime:    showtime,
			Instant:     candidate,
			Shift:       naive.Sub(candidate),
			Task:        domain.NewSeatCheckTask(ref.ID, ref.URL, candidate),
		})
	}

	return entries
}

// Schedule plans seat checks for every reserved-seating screening on date and
// registers each with the dispatcher in plan order. Dispatch failures are
// logged and recorded on the entry; they do not stop the remaining entries.
func (s *Scheduler) Schedule(ctx context.Context, date time.Time) ([]Entry, error) {
	refs, err := s.screenings.GetDailyReserved(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list reserved screenings on %s: %w", date.Format(time.DateOnly), err)
	}

	entries := s.Plan(refs)

	for i := range entries {
		entry := &entries[i]

		if entry.Shift > 0 {
			s.add(ctx, s.collisions)
			s.logger.Info("seat check moved to avoid collision",
				"screening_id", entry.ScreeningID,
				"showtime", entry.Showtime.Format("15:04"),
				"instant", entry.Instant.Format("15:04"),
				"shift", entry.Shift)
		}

		if err := ctx.Err(); err != nil {
			return entries, err
		}

		entry.DispatchErr = s.dispatcher.RegisterOneShot(ctx, entry.Task)
		if entry.DispatchErr != nil {
			s.logger.Error("failed to dispatch seat check",
				"task", entry.Task.Name,
				"url", entry.URL,
				"error", entry.DispatchErr)
			continue
		}

		s.add(ctx, s.dispatched)
		s.logger.Debug("dispatched seat check", "task", entry.Task.Name, "instant", entry.Instant)
	}

	s.logger.Info("scheduled seat checks", "date", date.Format(time.DateOnly), "count", len(entries))

	return entries, nil
}

func (s *Scheduler) add(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}
