package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/metinatakli/box-office-ledger/internal/lock"
	"github.com/shopspring/decimal"
)

// CreateScreeningRequest records a screening. Date and Time fall back to the
// sdate parameter of URL when omitted.
type CreateScreeningRequest struct {
	URL             string `json:"url" validate:"required,url"`
	MovieLocationID int    `json:"movieLocationId" validate:"required,gt=0"`
	Date            string `json:"date" validate:"omitempty,date_only"`
	Time            string `json:"time" validate:"omitempty,clock_time"`
	ScreeningType   string `json:"screeningType" validate:"required,screening_type"`
	ReservedSeating bool   `json:"reservedSeating"`
}

type SetAuditoriumRequest struct {
	Auditorium string `json:"auditorium" validate:"required,max=64"`
}

type ScreeningResponse struct {
	Id                int                 `json:"id"`
	URL               string              `json:"url"`
	MovieLocationId   int                 `json:"movieLocationId"`
	Date              string              `json:"date"`
	Time              string              `json:"time"`
	ScreeningType     string              `json:"screeningType"`
	ReservedSeating   bool                `json:"reservedSeating"`
	Auditorium        *string             `json:"auditorium"`
	Capacity          *int                `json:"capacity"`
	SeatsSold         *int                `json:"seatsSold"`
	EstimatedEarnings decimal.NullDecimal `json:"estimatedEarnings"`
}

type ScreeningRefResponse struct {
	Id   int    `json:"id"`
	URL  string `json:"url"`
	Date string `json:"date"`
	Time string `json:"time"`
}

type DailyScreeningsResponse struct {
	Date       string                 `json:"date"`
	Reserved   bool                   `json:"reserved"`
	Screenings []ScreeningRefResponse `json:"screenings"`
}

type AggregateResponse struct {
	ScreeningId           int             `json:"screeningId"`
	Capacity              int             `json:"capacity"`
	SeatsSold             int             `json:"seatsSold"`
	ReferencePrice        decimal.Decimal `json:"referencePrice"`
	EstimatedEarnings     decimal.Decimal `json:"estimatedEarnings"`
	MovieLocationId       int             `json:"movieLocationId"`
	MovieLocationEarnings decimal.Decimal `json:"movieLocationEarnings"`
	MovieId               int             `json:"movieId"`
	MovieEarnings         decimal.Decimal `json:"movieEarnings"`
	TheaterId             int             `json:"theaterId"`
	TheaterEarnings       decimal.Decimal `json:"theaterEarnings"`
}

func (app *Application) CreateScreening(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input CreateScreeningRequest

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

	date, clock, err := screeningShowtime(input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	screening := domain.Screening{
		URL:             input.URL,
		MovieLocationID: input.MovieLocationID,
		Date:            date,
		Time:            clock,
		Type:            domain.ScreeningType(input.ScreeningType),
		ReservedSeating: input.ReservedSeating,
	}

	err = app.screeningRepo.Create(r.Context(), &screening)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			app.conflictResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("screening for unknown movie location", "movie_location_id", input.MovieLocationID)
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	logger.Info("screening added", "screening_id", screening.ID, "url", screening.URL)

	err = app.writeJSON(w, http.StatusCreated, CreatedResponse{Id: screening.ID, Status: StatusCreated}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// screeningShowtime resolves the showtime of a new screening, taking what the
// request omits from the vendor URL.
func screeningShowtime(input CreateScreeningRequest) (time.Time, domain.ClockTime, error) {
	var (
		date  time.Time
		clock domain.ClockTime
		err   error
	)

	if input.Date == "" || input.Time == "" {
		date, clock, err = domain.ParseShowtimeURL(input.URL)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("date and time are required: %w", err)
		}
	}

	if input.Date != "" {
		date, err = time.Parse(time.DateOnly, input.Date)
		if err != nil {
			return time.Time{}, 0, err
		}
	}

	if input.Time != "" {
		clock, err = domain.ParseClockTime(input.Time)
		if err != nil {
			return time.Time{}, 0, err
		}
	}

	return date, clock, nil
}

func (app *Application) LookupScreening(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		app.badRequestResponse(w, r, errors.New("url query parameter is required"))
		return
	}

	screening, err := app.screeningRepo.GetByURL(r.Context(), url)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toScreeningResponse(screening), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetDailyScreenings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date, err := time.Parse(time.DateOnly, query.Get("date"))
	if err != nil {
		app.badRequestResponse(w, r, errors.New("date query parameter must be in YYYY-MM-DD format"))
		return
	}

	reserved := false
	if v := query.Get("reserved"); v != "" {
		reserved, err = strconv.ParseBool(v)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("reserved query parameter must be a boolean"))
			return
		}
	}

	var refs []domain.ScreeningRef
	if reserved {
		refs, err = app.screeningRepo.GetDailyReserved(r.Context(), date)
	} else {
		refs, err = app.screeningRepo.GetDaily(r.Context(), date)
	}
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := DailyScreeningsResponse{
		Date:       date.Format(time.DateOnly),
		Reserved:   reserved,
		Screenings: make([]ScreeningRefResponse, len(refs)),
	}

	for i, ref := range refs {
		resp.Screenings[i] = ScreeningRefResponse{
			Id:   ref.ID,
			URL:  ref.URL,
			Date: ref.Date.Format(time.DateOnly),
			Time: ref.Time.String(),
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) SetAuditorium(w http.ResponseWriter, r *http.Request) {
	screeningID, err := readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input SetAuditoriumRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	err = app.screeningRepo.UpdateAuditorium(r.Context(), screeningID, input.Auditorium)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) AggregateScreening(w http.ResponseWriter, r *http.Request) {
	screeningID, err := readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	release, err := app.lockLedger(r.Context())
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			app.ledgerBusyResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}
	defer release()

	result, err := app.engine.AggregateScreening(r.Context(), screeningID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrMissingPriceData):
			app.missingPriceResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := AggregateResponse{
		ScreeningId:           result.ScreeningID,
		Capacity:              result.Capacity,
		SeatsSold:             result.SeatsSold,
		ReferencePrice:        result.ReferencePrice,
		EstimatedEarnings:     result.ScreeningEarnings,
		MovieLocationId:       result.MovieLocationID,
		MovieLocationEarnings: result.MovieLocationEarnings,
		MovieId:               result.MovieID,
		MovieEarnings:         result.MovieEarnings,
		TheaterId:             result.TheaterID,
		TheaterEarnings:       result.TheaterEarnings,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toScreeningResponse(s *domain.Screening) ScreeningResponse {
	if s == nil {
		return ScreeningResponse{}
	}

	return ScreeningResponse{
		Id:                s.ID,
		URL:               s.URL,
		MovieLocationId:   s.MovieLocationID,
		Date:              s.Date.Format(time.DateOnly),
		Time:              s.Time.String(),
		ScreeningType:     string(s.Type),
		ReservedSeating:   s.ReservedSeating,
		Auditorium:        s.Auditorium,
		Capacity:          s.Capacity,
		SeatsSold:         s.SeatsSold,
		EstimatedEarnings: s.EstimatedEarnings,
	}
}
