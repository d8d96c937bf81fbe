package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	StatusCreated      = "created"
	StatusAlreadyAdded = "already added"
)

type CreateTheaterRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url" validate:"required,url"`
}

type CreateMovieRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type CreateMovieLocationRequest struct {
	MovieID   int `json:"movieId" validate:"required,gt=0"`
	TheaterID int `json:"theaterId" validate:"required,gt=0"`
}

// CreatedResponse answers every ingest call that inserts a single row.
type CreatedResponse struct {
	Id     int    `json:"id"`
	Status string `json:"status"`
}

type TheaterResponse struct {
	Id                int                 `json:"id"`
	Name              string              `json:"name"`
	URL               string              `json:"url"`
	EstimatedEarnings decimal.NullDecimal `json:"estimatedEarnings"`
}

type MovieResponse struct {
	Id                int                 `json:"id"`
	Title             string              `json:"title"`
	EstimatedEarnings decimal.NullDecimal `json:"estimatedEarnings"`
}

type MovieLocationResponse struct {
	Id                int                 `json:"id"`
	MovieId           int                 `json:"movieId"`
	TheaterId         int                 `json:"theaterId"`
	EstimatedEarnings decimal.NullDecimal `json:"estimatedEarnings"`
}

func (app *Application) CreateTheater(w http.ResponseWriter, r *http.Request) {
	var input CreateTheaterRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	theater := domain.Theater{Name: input.Name, URL: input.URL}

	err = app.theaterRepo.Create(r.Context(), &theater)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.contextGetLogger(r).Info("theater added", "theater_id", theater.ID, "url", theater.URL)

	err = app.writeJSON(w, http.StatusCreated, CreatedResponse{Id: theater.ID, Status: StatusCreated}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) LookupTheater(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		app.badRequestResponse(w, r, errors.New("url query parameter is required"))
		return
	}

	theater, err := app.theaterRepo.GetByURL(r.Context(), url)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toTheaterResponse(theater), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var input CreateMovieRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movie := domain.Movie{Title: input.Title}

	err = app.movieRepo.Create(r.Context(), &movie)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.contextGetLogger(r).Info("movie added", "movie_id", movie.ID, "title", movie.Title)

	err = app.writeJSON(w, http.StatusCreated, CreatedResponse{Id: movie.ID, Status: StatusCreated}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) LookupMovie(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		app.badRequestResponse(w, r, errors.New("title query parameter is required"))
		return
	}

	movie, err := app.movieRepo.GetByTitle(r.Context(), title)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateMovieLocation(w http.ResponseWriter, r *http.Request) {
	var input CreateMovieLocationRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ml := domain.MovieLocation{MovieID: input.MovieID, TheaterID: input.TheaterID}

	created, err := app.movieLocationRepo.Create(r.Context(), &ml)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	status, resp := http.StatusOK, CreatedResponse{Id: ml.ID, Status: StatusAlreadyAdded}
	if created {
		status, resp.Status = http.StatusCreated, StatusCreated
	}

	err = app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) LookupMovieLocation(w http.ResponseWriter, r *http.Request) {
	movieID, err := readIntQuery(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	theaterID, err := readIntQuery(r, "theaterId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ml, err := app.movieLocationRepo.GetByPair(r.Context(), movieID, theaterID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := MovieLocationResponse{
		Id:                ml.ID,
		MovieId:           ml.MovieID,
		TheaterId:         ml.TheaterID,
		EstimatedEarnings: ml.EstimatedEarnings,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toTheaterResponse(theater *domain.Theater) TheaterResponse {
	if theater == nil {
		return TheaterResponse{}
	}

	return TheaterResponse{
		Id:                theater.ID,
		Name:              theater.Name,
		URL:               theater.URL,
		EstimatedEarnings: theater.EstimatedEarnings,
	}
}

func toMovieResponse(movie *domain.Movie) MovieResponse {
	if movie == nil {
		return MovieResponse{}
	}

	return MovieResponse{
		Id:                movie.ID,
		Title:             movie.Title,
		EstimatedEarnings: movie.EstimatedEarnings,
	}
}
