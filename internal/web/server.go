package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/florianilch/taskgate/internal/apiclient"
	"github.com/florianilch/taskgate/internal/route"
)

// Backend is the subset of the API client the views need.
type Backend interface {
	Login(ctx context.Context, creds apiclient.Credentials) error
	Register(ctx context.Context, reg apiclient.Registration) error
	Logout(ctx context.Context) error
	ListTasks(ctx context.Context) ([]apiclient.Task, error)
	GetTask(ctx context.Context, id int64) (apiclient.Task, error)
	CreateTask(ctx context.Context, task apiclient.Task) (apiclient.Task, error)
	UpdateTask(ctx context.Context, task apiclient.Task) (apiclient.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Option configures a Server.
type Option func(*config)

type config struct {
	routes       *route.Table
	logger       *slog.Logger
	allowedHosts []string
}

// WithRoutes replaces the default route table.
func WithRoutes(table *route.Table) Option {
	return func(c *config) {
		c.routes = table
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithAllowedHosts restricts the Host header to hosts. See LoopbackHosts.
func WithAllowedHosts(hosts ...string) Option {
	return func(c *config) {
		c.allowedHosts = hosts
	}
}

// Server serves the guarded views and their form actions.
type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server

	auth    route.Authenticator
	backend Backend
	routes  *route.Table
	views   map[route.View]*template.Template
}

// Compile-time check that Server implements http.Handler
var _ http.Handler = (*Server)(nil)

// New creates a Server. auth decides navigation and backend serves the data.
func New(auth route.Authenticator, backend Backend, opts ...Option) (*Server, error) {
	if auth == nil {
		return nil, fmt.Errorf("missing authenticator")
	}
	if backend == nil {
		return nil, fmt.Errorf("missing backend")
	}

	cfg := &config{
		routes: route.DefaultTable(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	views, err := parseViews()
	if err != nil {
		return nil, err
	}

	s := &Server{
		mux:     http.NewServeMux(),
		auth:    auth,
		backend: backend,
		routes:  cfg.routes,
		views:   views,
	}

	if err := s.registerRoutes(); err != nil {
		return nil, err
	}

	s.handler = applyMiddlewares(s.mux,
		Logging(cfg.logger),
		HostCheck(cfg.allowedHosts),
		CrossOrigin,
		Recovery,
	)

	return s, nil
}

// registerRoutes mounts every view behind its guard, plus the form actions.
func (s *Server) registerRoutes() error {
	pages := map[route.View]http.HandlerFunc{
		route.ViewHome:     s.handleHome,
		route.ViewTaskList: s.handleTaskList,
		route.ViewLogin:    s.handleLoginPage,
		route.ViewRegister: s.handleRegisterPage,
	}
	actions := map[route.View][]struct {
		pattern string
		handler http.HandlerFunc
	}{
		route.ViewTaskList: {
			{"POST /tasks", s.handleCreateTask},
			{"POST /tasks/{id}/toggle", s.handleToggleTask},
			{"POST /tasks/{id}/delete", s.handleDeleteTask},
		},
		route.ViewLogin:    {{"POST /login", s.handleLogin}},
		route.ViewRegister: {{"POST /register", s.handleRegister}},
	}

	for _, d := range s.routes.Routes() {
		page, ok := pages[d.View]
		if !ok {
			return fmt.Errorf("route %s: no handler for view %q", d.Path, d.View)
		}
		guard := route.Guard(s.auth, d)

		pattern := "GET " + d.Path
		if d.Path == "/" {
			pattern = "GET /{$}"
		}
		s.mux.Handle(pattern, guard(page))

		for _, action := range actions[d.View] {
			s.mux.Handle(action.pattern, guard(action.handler))
		}
	}

	s.mux.HandleFunc("POST /logout", s.handleLogout)
	return nil
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start listens on address and serves in a background goroutine.
//
// A listen failure is returned directly. Serve errors after that arrive on the
// returned channel, which is closed when serving stops. Call Shutdown to stop.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return errCh, nil
}

// Shutdown drains open requests until ctx ends, then closes what is left.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
