package app

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type TheaterReportResponse struct {
	Theaters []TheaterResponse `json:"theaters"`
	Total    decimal.Decimal   `json:"total"`
}

type MovieReportResponse struct {
	Movies []MovieResponse `json:"movies"`
	Total  decimal.Decimal `json:"total"`
}

// GetTheaterReport lists theaters by estimated earnings, highest first.
// Theaters that were never aggregated come last with a null estimate.
func (app *Application) GetTheaterReport(w http.ResponseWriter, r *http.Request) {
	theaters, err := app.theaterRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := TheaterReportResponse{
		Theaters: make([]TheaterResponse, len(theaters)),
		Total:    decimal.Zero,
	}

	for i := range theaters {
		resp.Theaters[i] = toTheaterResponse(&theaters[i])
		if theaters[i].EstimatedEarnings.Valid {
			resp.Total = resp.Total.Add(theaters[i].EstimatedEarnings.Decimal)
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovieReport(w http.ResponseWriter, r *http.Request) {
	movies, err := app.movieRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := MovieReportResponse{
		Movies: make([]MovieResponse, len(movies)),
		Total:  decimal.Zero,
	}

	for i := range movies {
		resp.Movies[i] = toMovieResponse(&movies[i])
		if movies[i].EstimatedEarnings.Valid {
			resp.Total = resp.Total.Add(movies[i].EstimatedEarnings.Decimal)
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
