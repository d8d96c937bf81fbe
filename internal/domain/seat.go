package domain

import "context"

type SeatType string

const (
	SeatTypeStandard   SeatType = "standard"
	SeatTypeWheelchair SeatType = "wheelchair"
	SeatTypeCompanion  SeatType = "companion"
)

type SeatStatus string

const (
	SeatStatusAvailable   SeatStatus = "availableSeat"
	SeatStatusReserved    SeatStatus = "reservedSeat"
	SeatStatusUnavailable SeatStatus = "unavailableSeat"
)

func (t SeatType) Valid() bool {
	switch t {
	case SeatTypeStandard, SeatTypeWheelchair, SeatTypeCompanion:
		return true
	}
	return false
}

func (s SeatStatus) Valid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusUnavailable:
		return true
	}
	return false
}

type Seat struct {
	ID          int
	ScreeningID int
	Location    string
	Type        SeatType
	Status      SeatStatus
}

type SeatRepository interface {
	// Create inserts the seat. It reports false without error when the
	// screening already has a seat at that location.
	Create(ctx context.Context, seat *Seat) (bool, error)
	// UpdateStatus rewrites the status of an existing seat row. It is the
	// explicit re-poll path; Create never changes a recorded status.
	UpdateStatus(ctx context.Context, screeningID int, location string, status SeatStatus) error
	GetByScreening(ctx context.Context, screeningID int) ([]Seat, error)
}

// Occupancy counts sellable and sold seats. Unavailable seats are not part
// of the capacity.
func Occupancy(seats []Seat) (capacity, sold int) {
	for _, s := range seats {
		if s.Status != SeatStatusUnavailable {
			capacity++
		}
		if s.Status == SeatStatusReserved {
			sold++
		}
	}

	return capacity, sold
}
