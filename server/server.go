// Package server is the HTTP admin dashboard: HTML screens, the JSON API
// behind them and the websocket change feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/melkeydev/logistics-admin/auth"
	"github.com/melkeydev/logistics-admin/databases"
	"github.com/melkeydev/logistics-admin/events"
)

type Options struct {
	Connector databases.Connector
	Auth      *auth.Service
	// Publisher receives every change; Hub, when set, also serves /ws/changes.
	Publisher    events.Publisher
	Hub          *events.Hub
	Logger       *slog.Logger
	RowLimit     int
	CookieName   string
	SecureCookie bool
}

type Server struct {
	e          *echo.Echo
	connector  databases.Connector
	auth       *auth.Service
	publisher  events.Publisher
	hub        *events.Hub
	logger     *slog.Logger
	rowLimit   int
	cookieName string
	secure     bool
	errors     *ErrorMapper
	workspaces *workspaces
}

func New(opts Options) (*Server, error) {
	if opts.Connector == nil {
		return nil, errors.New("server requires a connector")
	}
	if opts.Auth == nil {
		return nil, errors.New("server requires an auth service")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}

	s := &Server{
		e:          echo.New(),
		connector:  opts.Connector,
		auth:       opts.Auth,
		publisher:  opts.Publisher,
		hub:        opts.Hub,
		logger:     opts.Logger,
		rowLimit:   opts.RowLimit,
		cookieName: opts.CookieName,
		secure:     opts.SecureCookie,
		errors:     NewDomainErrorMapper(),
	}
	s.workspaces = newWorkspaces(s.newWorkspace)

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.HTTPErrorHandler = s.handleError
	SetupRoutes(s.e, s)

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
