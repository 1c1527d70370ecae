package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"stakeMetrics/internal/aggregate"
)

// Deps are the collaborators the HTTP API reads from.
type Deps struct {
	Source Source
	Params aggregate.Params
	// Ready lists the services /readyz checks.
	Ready  []Pinger
	Logger *zap.Logger
}

// NewRouter builds the chi router for the API.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(recoverer(logger))
	r.Use(requestLogger(logger))
	r.Use(requestMetrics())

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", health())
	r.Get("/readyz", ready(deps.Ready))

	r.Route("/api", func(r chi.Router) {
		r.Get("/stake", stake(deps.Source, logger))
		r.Get("/stake/display", stakeDisplay(deps.Source, deps.Params, logger))
	})
	return r
}

// Serve runs the API on addr until ctx ends, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
