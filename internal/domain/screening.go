package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ScreeningType string

const (
	ScreeningTypeStandard           ScreeningType = "Standard"
	ScreeningTypeRealD3D            ScreeningType = "RealD 3D"
	ScreeningTypeCinemarkXD         ScreeningType = "Cinemark XD"
	ScreeningTypeIMAX               ScreeningType = "IMAX"
	ScreeningTypeDBox               ScreeningType = "D-Box"
	ScreeningTypeAlternativeContent ScreeningType = "Alternative Content"
	ScreeningTypeMetOpera           ScreeningType = "The Met Opera"
)

var screeningTypes = map[ScreeningType]struct{}{
	ScreeningTypeStandard:           {},
	ScreeningTypeRealD3D:            {},
	ScreeningTypeCinemarkXD:         {},
	ScreeningTypeIMAX:               {},
	ScreeningTypeDBox:               {},
	ScreeningTypeAlternativeContent: {},
	ScreeningTypeMetOpera:           {},
}

func (t ScreeningType) Valid() bool {
	_, ok := screeningTypes[t]
	return ok
}

// Screening is a single showtime instance, keyed by the vendor ticketing URL.
// Auditorium and the aggregate fields stay unset until ticket and seat data
// have been recorded.
type Screening struct {
	ID                int
	URL               string
	MovieLocationID   int
	Date              time.Time
	Time              ClockTime
	Type              ScreeningType
	ReservedSeating   bool
	Auditorium        *string
	Capacity          *int
	SeatsSold         *int
	EstimatedEarnings decimal.NullDecimal
}

// StartsAt combines the screening date and time in loc.
func (s Screening) StartsAt(loc *time.Location) time.Time {
	return s.Time.On(s.Date, loc)
}

type ScreeningAggregates struct {
	Capacity  int
	SeatsSold int
	Earnings  decimal.Decimal
}

// ScreeningRef is the projection returned by the daily listings.
type ScreeningRef struct {
	ID   int
	URL  string
	Date time.Time
	Time ClockTime
}

type ScreeningRepository interface {
	Create(ctx context.Context, screening *Screening) error
	GetByID(ctx context.Context, id int) (*Screening, error)
	GetByURL(ctx context.Context, url string) (*Screening, error)
	ListByMovieLocation(ctx context.Context, movieLocationID int) ([]Screening, error)
	UpdateAuditorium(ctx context.Context, id int, auditorium string) error
	UpdateAggregates(ctx context.Context, id int, aggregates ScreeningAggregates) error
	// GetDaily lists every screening on date ordered by id.
	GetDaily(ctx context.Context, date time.Time) ([]ScreeningRef, error)
	// GetDailyReserved lists reserved-seating screenings on date ordered by
	// showtime ascending.
	GetDailyReserved(ctx context.Context, date time.Time) ([]ScreeningRef, error)
}

// ClockTime is a wall-clock time of day in minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}

	return NewClockTime(t.Hour(), t.Minute()), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On places the clock time on the calendar day of date in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc)
}

// ParseShowtimeURL extracts the showtime date and time from a vendor ticketing
// URL carrying them in the sdate query parameter, e.g. sdate=2018-01-25+14:45.
func ParseShowtimeURL(rawURL string) (time.Time, ClockTime, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}, 0, err
	}

	sdate := u.Query().Get("sdate")
	if sdate == "" {
		return time.Time{}, 0, fmt.Errorf("url has no sdate parameter: %s", rawURL)
	}

	datePart, timePart, ok := strings.Cut(sdate, " ")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("malformed sdate parameter: %q", sdate)
	}

	date, err := time.Parse(time.DateOnly, datePart)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("malformed sdate date: %w", err)
	}

	clock, err := ParseClockTime(timePart)
	if err != nil {
		return time.Time{}, 0, err
	}

	return date, clock, nil
}
