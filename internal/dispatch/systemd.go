package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/metinatakli/box-office-ledger/internal/domain"
)

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SystemdDispatcher registers every seat check as a transient, named,
// fire-once systemd timer that runs the seat-check command with the
// screening URL as its last argument.
type SystemdDispatcher struct {
	command []string
	user    bool
	run     Runner
	logger  *slog.Logger
}

func NewSystemdDispatcher(command []string, user bool, logger *slog.Logger) *SystemdDispatcher {
	return &SystemdDispatcher{
		command: command,
		user:    user,
		run:     execRunner,
		logger:  logger,
	}
}

func (d *SystemdDispatcher) RegisterOneShot(ctx context.Context, task domain.SeatCheckTask) error {
	if len(d.command) == 0 {
		return fmt.Errorf("no seat-check command configured for %s", task.Name)
	}

	args := d.args(task)

	out, err := d.run(ctx, "systemd-run", args...)
	if err != nil {
		// unit names carry the screening and the instant, so an existing unit
		// is this same check registered by an earlier run
		if strings.Contains(string(out), "already exists") {
			d.logger.Info("systemd timer already registered", "unit", task.Name, "at", task.At)
			return nil
		}

		return fmt.Errorf("systemd-run %s: %w: %s", task.Name, err, strings.TrimSpace(string(out)))
	}

	d.logger.Debug("registered systemd timer", "unit", task.Name, "at", task.At)

	return nil
}

func (d *SystemdDispatcher) args(task domain.SeatCheckTask) []string {
	args := make([]string, 0, len(d.command)+6)

	if d.user {
		args = append(args, "--user")
	}

	args = append(args,
		"--unit="+task.Name,
		"--on-calendar="+task.At.UTC().Format("2006-01-02 15:04:05")+" UTC",
		"--timer-property=AccuracySec=1s",
		"--collect",
	)
	args = append(args, d.command...)

	return append(args, task.URL)
}
