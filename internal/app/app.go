// Package app wires configuration, storage, services and the HTTP router
// into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/abhicism/dailyplanner/internal/api"
	"github.com/abhicism/dailyplanner/internal/api/metrics"
	"github.com/abhicism/dailyplanner/internal/core/service"
	"github.com/abhicism/dailyplanner/internal/infrastructure/config"
)

type App struct {
	cfg      *config.Config
	log      zerolog.Logger
	backends *Backends
	echo     *echo.Echo
}

// Options tweaks wiring that tests need to control.
type Options struct {
	Registerer    prometheus.Registerer
	Gatherer      prometheus.Gatherer
	AuthRateLimit float64
}

// New opens the configured backends and builds the server.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	backends, err := OpenBackends(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return Build(cfg, log, backends, Options{}), nil
}

// Build assembles services and the router on top of already opened backends.
func Build(cfg *config.Config, log zerolog.Logger, backends *Backends, opts Options) *App {
	tokens := service.NewJWTService(cfg.JWTSecret, cfg.Auth.TokenTTL)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	recorder := metrics.New(opts.Registerer)

	authSvc := service.NewAuthService(
		backends.Users,
		hasher,
		tokens,
		backends.Throttle,
		cfg.Auth.MinPasswordLength,
		log.With().Str("component", "auth").Logger(),
	).WithMetrics(recorder)
	sessions := service.NewSessionResolver(tokens, backends.Users, log.With().Str("component", "session").Logger()).
		WithMetrics(recorder)
	planner := service.NewPlannerService(backends.Days, log.With().Str("component", "planner").Logger()).
		WithMetrics(recorder)

	e := api.NewRouter(api.Dependencies{
		Log:           log,
		Auth:          authSvc,
		Planner:       planner,
		Sessions:      sessions,
		Readiness:     backends.Readiness,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: opts.AuthRateLimit,
		Registerer:    opts.Registerer,
		Gatherer:      opts.Gatherer,
	})

	return &App{cfg: cfg, log: log, backends: backends, echo: e}
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// closes the backends.
func (a *App) Run(ctx context.Context) error {
	addr := net.JoinHostPort("", a.cfg.Port)
	errCh := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", addr).Str("env", a.cfg.Env).Msg("http server listening")
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	if err := a.backends.Close(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("closing backends")
	}

	a.log.Info().Msg("server stopped")
	return serveErr
}
