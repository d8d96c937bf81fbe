package app

import (
	"net/http"

	"github.com/metinatakli/box-office-ledger/internal/vcs"
)

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "UP"

	if app.db != nil {
		if err := app.db.Ping(r.Context()); err != nil {
			app.contextGetLogger(r).Warn("database ping failed", "error", err)
			status = "DEGRADED"
		}
	}

	resp := HealthcheckResponse{
		Status: status,
		SystemInfo: SystemInfo{
			Version:     vcs.Version(),
			Environment: app.config.Env,
		},
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
