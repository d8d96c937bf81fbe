package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShowtimeURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantDate string
		wantTime string
		wantErr  bool
	}{
		{
			name: "should extract date and time from sdate parameter",
			url: "https://tickets.fandango.com/transaction/ticketing/express/ticketboxoffice.aspx" +
				"?row_count=210902271&tid=AAVPA&sdate=2018-01-25+14:45&mid=202672&from=mov_det_showtimes",
			wantDate: "2018-01-25",
			wantTime: "14:45",
		},
		{
			name:    "should fail when sdate is missing",
			url:     "https://tickets.example.com/ticketboxoffice.aspx?tid=AAVPA",
			wantErr: true,
		},
		{
			name:    "should fail when sdate has no time",
			url:     "https://tickets.example.com/ticketboxoffice.aspx?sdate=2018-01-25",
			wantErr: true,
		},
		{
			name:    "should fail when time is malformed",
			url:     "https://tickets.example.com/ticketboxoffice.aspx?sdate=2018-01-25+25:99",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, clock, err := ParseShowtimeURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, date.Format(time.DateOnly))
			assert.Equal(t, tt.wantTime, clock.String())
		})
	}
}

func TestClockTime(t *testing.T) {
	c, err := ParseClockTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, NewClockTime(9, 5), c)
	assert.Equal(t, "09:05", c.String())

	_, err = ParseClockTime("9pm")
	assert.ErrorIs(t, err, ErrInvalidClockTime)

	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 15, 14, 45, 0, 0, time.UTC), NewClockTime(14, 45).On(date, time.UTC))
}

func TestClockTimeOnDaylightSavingDay(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// clocks jump from 02:00 CST to 03:00 CDT
	springForward := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	at := NewClockTime(14, 45).On(springForward, chicago)

	assert.Equal(t, 14, at.Hour())
	assert.Equal(t, 45, at.Minute())
	assert.Equal(t, time.Date(2026, 3, 8, 19, 45, 0, 0, time.UTC), at.UTC())

	fallBack := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	at = NewClockTime(20, 0).On(fallBack, chicago)
	assert.Equal(t, time.Date(2026, 11, 2, 2, 0, 0, 0, time.UTC), at.UTC())
}

func TestScreeningTypeValid(t *testing.T) {
	assert.True(t, ScreeningTypeRealD3D.Valid())
	assert.True(t, ScreeningType("The Met Opera").Valid())
	assert.False(t, ScreeningType("4DX").Valid())
}
