package domain

import (
	"context"
	"fmt"
	"time"
)

// SeatCheckTask asks an external scheduler to re-poll the seats of a
// screening at a given instant.
type SeatCheckTask struct {
	Name        string    `json:"name"`
	ScreeningID int       `json:"screeningId"`
	URL         string    `json:"url"`
	At          time.Time `json:"at"`
}

func NewSeatCheckTask(screeningID int, url string, at time.Time) SeatCheckTask {
	return SeatCheckTask{
		Name:        SeatCheckTaskName(screeningID, at),
		ScreeningID: screeningID,
		URL:         url,
		At:          at,
	}
}

func SeatCheckTaskName(screeningID int, at time.Time) string {
	return fmt.Sprintf("seatcheck-%d-%s", screeningID, at.Format("200601021504"))
}

// TaskDispatcher registers one-shot invocations with a scheduler outside the
// process. Registration is fire-and-forget.
type TaskDispatcher interface {
	RegisterOneShot(ctx context.Context, task SeatCheckTask) error
}
