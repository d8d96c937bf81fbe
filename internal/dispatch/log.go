package dispatch

import (
	"context"
	"log/slog"

	"github.com/metinatakli/box-office-ledger/internal/domain"
)

// LogDispatcher only logs the tasks it receives. Used for dry runs.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) RegisterOneShot(_ context.Context, task domain.SeatCheckTask) error {
	d.logger.Info("seat check planned",
		"task", task.Name,
		"screening_id", task.ScreeningID,
		"url", task.URL,
		"at", task.At.Format("2006-01-02 15:04"))

	return nil
}
