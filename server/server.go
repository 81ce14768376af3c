// Package server is a development backend implementing the taskdeck REST
// contract: JWT-based auth with refresh tokens, a profile per account and
// task documents. It exists so the client is runnable and testable
// end-to-end without the production backend.
package server

import (
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/existflow/taskdeck/internal/logger"
)

const (
	idTokenTTL      = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// Server is the dev API server
type Server struct {
	store     *Store
	echo      *echo.Echo
	jwtSecret []byte
}

// New creates a server. driver is "sqlite" or "postgres"; dsn is the
// file path or connection URL respectively.
func New(driver, dsn string, jwtSecret []byte) (*Server, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Server{
		store:     NewStore(db),
		jwtSecret: jwtSecret,
	}

	if err := s.store.Migrate(); err != nil {
		return nil, err
	}

	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request logging through the shared logger
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))
			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)

	// Public auth endpoints
	e.POST("/auth/register", s.handleRegister)
	e.POST("/auth/login", s.handleLogin)
	e.POST("/auth/refresh", s.handleRefresh)

	// Everything else requires a bearer token
	authed := e.Group("", s.authMiddleware)
	authed.GET("/profile", s.handleGetProfile)
	authed.PUT("/profile", s.handleUpdateProfile)
	authed.DELETE("/profile/delete-account", s.handleDeleteAccount)
	authed.GET("/tasks", s.handleListTasks)
	authed.POST("/tasks", s.handleCreateTask)
	authed.PUT("/tasks/:id", s.handleUpdateTask)
	authed.DELETE("/tasks/:id", s.handleDeleteTask)

	s.echo = e
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}

// Start runs the server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Handler exposes the HTTP handler, mainly for tests
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

// Close closes the database
func (s *Server) Close() error {
	return s.store.Close()
}
