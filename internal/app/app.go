package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/taskgate/internal/apiclient"
	"github.com/florianilch/taskgate/internal/credential"
	"github.com/florianilch/taskgate/internal/web"
)

// App orchestrates the lifecycle of the web server and related services.
type App struct {
	cfg     *Config
	session *credential.Session
	server  *web.Server
}

// New creates a new App instance.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	session, client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	server, err := web.New(session, client,
		web.WithLogger(slog.Default()),
		web.WithAllowedHosts(web.LoopbackHosts(cfg.Server.Host)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create web server: %w", err)
	}

	return &App{
		cfg:     cfg,
		session: session,
		server:  server,
	}, nil
}

// NewClient builds the session and API client described by cfg. Extra options
// are applied after the configured ones.
func NewClient(cfg *Config, opts ...apiclient.Option) (*credential.Session, *apiclient.Client, error) {
	store, err := cfg.Auth.NewTokenStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token store: %w", err)
	}

	session, err := credential.NewSession(store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	opts = append([]apiclient.Option{apiclient.WithTimeout(cfg.Backend.Timeout)}, opts...)
	client, err := apiclient.New(cfg.Backend.BaseURL, session, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return session, client, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
	var shutdownFuncs []func(context.Context) error

	slog.InfoContext(gCtx, "starting web server", "address", address, "backend", a.cfg.Backend.BaseURL)
	serverErrCh, err := a.server.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("web server startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.server.Shutdown)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-serverErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "web server runtime error", "error", err)
				return fmt.Errorf("web server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready",
		"address", address,
		"signed_in", a.session.Authenticated(gCtx),
		"token_storage", string(a.cfg.Auth.Storage))

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
