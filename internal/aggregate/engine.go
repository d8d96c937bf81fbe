// Package aggregate rolls seat-level sales up into screening, movie-location,
// movie and theater earnings.
//
// Every call re-sums from the rows below it instead of applying deltas, so
// running it again, or out of order, converges on the same totals.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/metinatakli/box-office-ledger/internal/aggregate"

type Repositories struct {
	Screenings     domain.ScreeningRepository
	Tickets        domain.TicketRepository
	Seats          domain.SeatRepository
	MovieLocations domain.MovieLocationRepository
	Movies         domain.MovieRepository
	Theaters       domain.TheaterRepository
}

type Engine struct {
	repos  Repositories
	logger *slog.Logger
	runs   metric.Int64Counter

	// mu serializes aggregations so two roll-ups never interleave their
	// read of the rows below with the write of the total.
	mu sync.Mutex
}

func NewEngine(repos Repositories, logger *slog.Logger) *Engine {
	runs, err := otel.Meter(instrumentationName).Int64Counter(
		"boxoffice.aggregations",
		metric.WithDescription("Screening aggregations by outcome"),
	)
	if err != nil {
		logger.Warn("failed to create aggregation counter", "error", err)
	}

	return &Engine{
		repos:  repos,
		logger: logger,
		runs:   runs,
	}
}

// Result carries the totals written by one aggregation.
type Result struct {
	ScreeningID           int
	Capacity              int
	SeatsSold             int
	ReferencePrice        decimal.Decimal
	ScreeningEarnings     decimal.Decimal
	MovieLocationID       int
	MovieLocationEarnings decimal.Decimal
	MovieID               int
	MovieEarnings         decimal.Decimal
	TheaterID             int
	TheaterEarnings       decimal.Decimal
}

// AggregateScreening recomputes the screening's capacity, seats sold and
// earnings, then the totals of its movie-location, movie and theater.
//
// It fails with domain.ErrMissingPriceData before writing anything when the
// screening has no ticket rows yet.
func (e *Engine) AggregateScreening(ctx context.Context, screeningID int) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.aggregateScreening(ctx, screeningID)
	e.record(ctx, err)

	return result, err
}

func (e *Engine) aggregateScreening(ctx context.Context, screeningID int) (*Result, error) {
	screening, err := e.repos.Screenings.GetByID(ctx, screeningID)
	if err != nil {
		return nil, fmt.Errorf("get screening %d: %w", screeningID, err)
	}

	seats, err := e.repos.Seats.GetByScreening(ctx, screeningID)
	if err != nil {
		return nil, fmt.Errorf("get seats of screening %d: %w", screeningID, err)
	}

	capacity, sold := domain.Occupancy(seats)

	tickets, err := e.repos.Tickets.GetByScreening(ctx, screeningID)
	if err != nil {
		return nil, fmt.Errorf("get tickets of screening %d: %w", screeningID, err)
	}

	price, err := domain.ReferencePrice(tickets)
	if err != nil {
		return nil, fmt.Errorf("screening %d: %w", screeningID, err)
	}

	result := &Result{
		ScreeningID:       screeningID,
		Capacity:          capacity,
		SeatsSold:         sold,
		ReferencePrice:    price,
		ScreeningEarnings: price.Mul(decimal.NewFromInt(int64(sold))),
		MovieLocationID:   screening.MovieLocationID,
	}

	err = e.repos.Screenings.UpdateAggregates(ctx, screeningID, domain.ScreeningAggregates{
		Capacity:  result.Capacity,
		SeatsSold: result.SeatsSold,
		Earnings:  result.ScreeningEarnings,
	})
	if err != nil {
		return nil, fmt.Errorf("update screening %d: %w", screeningID, err)
	}

	ml, err := e.repos.MovieLocations.GetByID(ctx, screening.MovieLocationID)
	if err != nil {
		return nil, fmt.Errorf("get movie location %d: %w", screening.MovieLocationID, err)
	}

	result.MovieID = ml.MovieID
	result.TheaterID = ml.TheaterID

	result.MovieLocationEarnings, err = e.rollUpMovieLocation(ctx, ml.ID)
	if err != nil {
		return nil, err
	}

	result.MovieEarnings, err = e.rollUpMovie(ctx, ml.MovieID)
	if err != nil {
		return nil, err
	}

	result.TheaterEarnings, err = e.rollUpTheater(ctx, ml.TheaterID)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("aggregated screening",
		"screening_id", screeningID,
		"capacity", result.Capacity,
		"seats_sold", result.SeatsSold,
		"earnings", result.ScreeningEarnings.StringFixed(2))

	return result, nil
}

func (e *Engine) rollUpMovieLocation(ctx context.Context, movieLocationID int) (decimal.Decimal, error) {
	screenings, err := e.repos.Screenings.ListByMovieLocation(ctx, movieLocationID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list screenings of movie location %d: %w", movieLocationID, err)
	}

	total := decimal.Zero
	for _, s := range screenings {
		if s.EstimatedEarnings.Valid {
			total = total.Add(s.EstimatedEarnings.Decimal)
		}
	}

	if err := e.repos.MovieLocations.UpdateEarnings(ctx, movieLocationID, total); err != nil {
		return decimal.Zero, fmt.Errorf("update movie location %d: %w", movieLocationID, err)
	}

	return total, nil
}

func (e *Engine) rollUpMovie(ctx context.Context, movieID int) (decimal.Decimal, error) {
	locations, err := e.repos.MovieLocations.ListByMovie(ctx, movieID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list locations of movie %d: %w", movieID, err)
	}

	total := sumLocations(locations)

	if err := e.repos.Movies.UpdateEarnings(ctx, movieID, total); err != nil {
		return decimal.Zero, fmt.Errorf("update movie %d: %w", movieID, err)
	}

	return total, nil
}

func (e *Engine) rollUpTheater(ctx context.Context, theaterID int) (decimal.Decimal, error) {
	locations, err := e.repos.MovieLocations.ListByTheater(ctx, theaterID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list locations of theater %d: %w", theaterID, err)
	}

	total := sumLocations(locations)

	if err := e.repos.Theaters.UpdateEarnings(ctx, theaterID, total); err != nil {
		return decimal.Zero, fmt.Errorf("update theater %d: %w", theaterID, err)
	}

	return total, nil
}

func sumLocations(locations []domain.MovieLocation) decimal.Decimal {
	total := decimal.Zero
	for _, ml := range locations {
		if ml.EstimatedEarnings.Valid {
			total = total.Add(ml.EstimatedEarnings.Decimal)
		}
	}

	return total
}

// Summary reports the outcome of aggregating a whole day.
type Summary struct {
	Aggregated   int
	MissingPrice int
	Failed       int
	// Errors holds the per-screening failures, missing prices included.
	Errors []error
}

// AggregateDate aggregates every screening on date. A failing screening is
// logged and recorded in the summary; the others still run. The returned
// error is reserved for failures that stop the whole run.
func (e *Engine) AggregateDate(ctx context.Context, date time.Time) (Summary, error) {
	var summary Summary

	refs, err := e.repos.Screenings.GetDaily(ctx, date)
	if err != nil {
		return summary, fmt.Errorf("list screenings on %s: %w", date.Format(time.DateOnly), err)
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		_, err := e.AggregateScreening(ctx, ref.ID)
		switch {
		case err == nil:
			summary.Aggregated++
			continue
		case errors.Is(err, domain.ErrMissingPriceData):
			summary.MissingPrice++
			e.logger.Warn("skipping screening without ticket prices", "screening_id", ref.ID, "url", ref.URL)
		default:
			summary.Failed++
			e.logger.Error("failed to aggregate screening", "screening_id", ref.ID, "url", ref.URL, "error", err)
		}

		summary.Errors = append(summary.Errors, err)
	}

	e.logger.Info("aggregated screenings",
		"date", date.Format(time.DateOnly),
		"aggregated", summary.Aggregated,
		"missing_price", summary.MissingPrice,
		"failed", summary.Failed)

	return summary, nil
}

func (e *Engine) record(ctx context.Context, err error) {
	if e.runs == nil {
		return
	}

	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrMissingPriceData):
		outcome = "missing_price"
	case err != nil:
		outcome = "error"
	}

	e.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
