package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	StatusUpdated  = "updated"
	StatusNotFound = "not found"
	StatusFailed   = "failed"
)

type TicketInput struct {
	Description string          `json:"description" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price" validate:"gte=0,lt=10000000000,cents"`
}

type AddTicketsRequest struct {
	Tickets []TicketInput `json:"tickets" validate:"required,min=1,dive"`
}

type SeatInput struct {
	Location string `json:"location" validate:"required,max=16"`
	Type     string `json:"type" validate:"required,seat_type"`
	Status   string `json:"status" validate:"required,seat_status"`
}

type AddSeatsRequest struct {
	Seats []SeatInput `json:"seats" validate:"required,min=1,dive"`
}

type SeatStatusInput struct {
	Location string `json:"location" validate:"required,max=16"`
	Status   string `json:"status" validate:"required,seat_status"`
}

type RefreshSeatsRequest struct {
	Seats []SeatStatusInput `json:"seats" validate:"required,min=1,dive"`
}

// RowResult is the outcome of one row of a batch. Key is the ticket
// description or seat location.
type RowResult struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type BatchResponse struct {
	ScreeningId int         `json:"screeningId"`
	Results     []RowResult `json:"results"`
}

func (app *Application) AddTickets(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningID, ok := app.readScreening(w, r)
	if !ok {
		return
	}

	var input AddTicketsRequest

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

	resp := BatchResponse{ScreeningId: screeningID, Results: make([]RowResult, len(input.Tickets))}

	for i, in := range input.Tickets {
		ticket := domain.Ticket{ScreeningID: screeningID, Description: in.Description, Price: in.Price}

		created, err := app.ticketRepo.Create(r.Context(), &ticket)
		if err != nil {
			logger.Error("failed to add ticket", "screening_id", screeningID, "description", in.Description, "error", err)
		}

		resp.Results[i] = rowResult(in.Description, created, err)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) AddSeats(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningID, ok := app.readScreening(w, r)
	if !ok {
		return
	}

	var input AddSeatsRequest

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

	resp := BatchResponse{ScreeningId: screeningID, Results: make([]RowResult, len(input.Seats))}

	for i, in := range input.Seats {
		seat := domain.Seat{
			ScreeningID: screeningID,
			Location:    in.Location,
			Type:        domain.SeatType(in.Type),
			Status:      domain.SeatStatus(in.Status),
		}

		created, err := app.seatRepo.Create(r.Context(), &seat)
		if err != nil {
			logger.Error("failed to add seat", "screening_id", screeningID, "location", in.Location, "error", err)
		}

		resp.Results[i] = rowResult(in.Location, created, err)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// RefreshSeats rewrites the status of seats already recorded for the
// screening. Unknown locations are reported per row and never inserted.
func (app *Application) RefreshSeats(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningID, ok := app.readScreening(w, r)
	if !ok {
		return
	}

	var input RefreshSeatsRequest

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

	resp := BatchResponse{ScreeningId: screeningID, Results: make([]RowResult, len(input.Seats))}

	for i, in := range input.Seats {
		err := app.seatRepo.UpdateStatus(r.Context(), screeningID, in.Location, domain.SeatStatus(in.Status))

		switch {
		case err == nil:
			resp.Results[i] = RowResult{Key: in.Location, Status: StatusUpdated}
		case errors.Is(err, domain.ErrRecordNotFound):
			resp.Results[i] = RowResult{Key: in.Location, Status: StatusNotFound}
		default:
			logger.Error("failed to refresh seat", "screening_id", screeningID, "location", in.Location, "error", err)
			resp.Results[i] = RowResult{Key: in.Location, Status: StatusFailed, Error: err.Error()}
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// readScreening resolves the screening of the route and writes the error
// response when it cannot.
func (app *Application) readScreening(w http.ResponseWriter, r *http.Request) (int, bool) {
	screeningID, err := readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return 0, false
	}

	err = app.screeningExists(r.Context(), screeningID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return 0, false
	}

	return screeningID, true
}

func (app *Application) screeningExists(ctx context.Context, id int) error {
	_, err := app.screeningRepo.GetByID(ctx, id)
	return err
}

func rowResult(key string, created bool, err error) RowResult {
	switch {
	case err != nil:
		return RowResult{Key: key, Status: StatusFailed, Error: err.Error()}
	case created:
		return RowResult{Key: key, Status: StatusCreated}
	default:
		return RowResult{Key: key, Status: StatusAlreadyAdded}
	}
}
