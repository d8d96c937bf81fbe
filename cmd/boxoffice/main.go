package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/metinatakli/box-office-ledger/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}

		slog.Error("box office ledger exited", "error", err)
		os.Exit(1)
	}
}
