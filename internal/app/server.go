package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		<-ctx.Done()

		app.logger.Info("shutting down server", "reason", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.GetHealth)

		r.Route("/theaters", func(r chi.Router) {
			r.Post("/", app.CreateTheater)
			r.Get("/lookup", app.LookupTheater)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Post("/", app.CreateMovie)
			r.Get("/lookup", app.LookupMovie)
		})

		r.Route("/movie-locations", func(r chi.Router) {
			r.Post("/", app.CreateMovieLocation)
			r.Get("/lookup", app.LookupMovieLocation)
		})

		r.Route("/screenings", func(r chi.Router) {
			r.Post("/", app.CreateScreening)
			r.Get("/", app.GetDailyScreenings)
			r.Get("/lookup", app.LookupScreening)

			r.Route("/{screeningId}", func(r chi.Router) {
				r.Put("/auditorium", app.SetAuditorium)
				r.Post("/tickets", app.AddTickets)
				r.Post("/seats", app.AddSeats)
				r.Put("/seats", app.RefreshSeats)
				r.Post("/aggregate", app.AggregateScreening)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/theaters", app.GetTheaterReport)
			r.Get("/movies", app.GetMovieReport)
		})
	})

	return r
}
