package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/aggregate"
	"github.com/metinatakli/box-office-ledger/internal/dispatch"
	"github.com/metinatakli/box-office-ledger/internal/mocks"
	"github.com/metinatakli/box-office-ledger/internal/scheduler"
	"github.com/metinatakli/box-office-ledger/internal/validator"
)

type testRepos struct {
	theaters       *mocks.MockTheaterRepo
	movies         *mocks.MockMovieRepo
	movieLocations *mocks.MockMovieLocationRepo
	screenings     *mocks.MockScreeningRepo
	tickets        *mocks.MockTicketRepo
	seats          *mocks.MockSeatRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		theaters:       new(mocks.MockTheaterRepo),
		movies:         new(mocks.MockMovieRepo),
		movieLocations: new(mocks.MockMovieLocationRepo),
		screenings:     new(mocks.MockScreeningRepo),
		tickets:        new(mocks.MockTicketRepo),
		seats:          new(mocks.MockSeatRepo),
	}
}

func (r *testRepos) assertExpectations(t *testing.T) {
	r.theaters.AssertExpectations(t)
	r.movies.AssertExpectations(t)
	r.movieLocations.AssertExpectations(t)
	r.screenings.AssertExpectations(t)
	r.tickets.AssertExpectations(t)
	r.seats.AssertExpectations(t)
}

func newTestApplication(repos *testRepos, opts ...func(*Application)) *Application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &Application{
		config:            Config{Env: "test"},
		validator:         validator.NewValidator(),
		logger:            logger,
		location:          time.UTC,
		theaterRepo:       repos.theaters,
		movieRepo:         repos.movies,
		movieLocationRepo: repos.movieLocations,
		screeningRepo:     repos.screenings,
		ticketRepo:        repos.tickets,
		seatRepo:          repos.seats,
	}

	app.engine = aggregate.NewEngine(aggregate.Repositories{
		Screenings:     repos.screenings,
		Tickets:        repos.tickets,
		Seats:          repos.seats,
		MovieLocations: repos.movieLocations,
		Movies:         repos.movies,
		Theaters:       repos.theaters,
	}, logger)

	app.scheduler = scheduler.New(repos.screenings, dispatch.NewLogDispatcher(logger), logger,
		scheduler.WithLocation(time.UTC))

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, app *Application, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()

	app.Routes().ServeHTTP(w, r)

	return w
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	t.Helper()

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	var validationResp ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if tt.wantErrMessage == "" {
		return
	}

	if len(validationResp.ValidationErrors) > 0 {
		issues := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			issues[vErr.Issue] = true
		}

		if !issues[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}
		return
	}

	if validationResp.Message != tt.wantErrMessage {
		t.Errorf("Error message = %v, want %v", validationResp.Message, tt.wantErrMessage)
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return v
}

func ptr[T any](v T) *T {
	return &v
}
