// Package web serves the task board HTTP API.
package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Joseda-hg/taskboard/internal/auth"
	"github.com/Joseda-hg/taskboard/internal/db"
)

type Server struct {
	store   *db.Store
	tokens  *auth.Tokens
	logger  *log.Logger
	schemas *schemas
	options Options
	echo    *echo.Echo
}

type Options struct {
	// APIPrefix is prepended to every API route, e.g. "/api".
	APIPrefix string
	// SecureCookies marks the token cookie Secure; set in production.
	SecureCookies bool
	Logger        *log.Logger
}

func NewServer(store *db.Store, tokens *auth.Tokens, options Options) (*Server, error) {
	compiled, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		store:   store,
		tokens:  tokens,
		logger:  logger,
		schemas: compiled,
		options: options,
		echo:    echo.New(),
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())

	e.GET("/", s.indexHandler)

	api := e.Group(s.options.APIPrefix)
	api.POST("/register", s.registerHandler)
	api.POST("/login", s.loginHandler)
	api.POST("/logout", s.logoutHandler)

	// Protected routes carry the middleware per route so that unknown paths
	// under the prefix still 404.
	api.GET("/sections", s.listSectionsHandler, s.requireIdentity)
	api.POST("/sections", s.createSectionHandler, s.requireIdentity)
	api.PUT("/sections/:id", s.updateSectionHandler, s.requireIdentity)
	api.DELETE("/sections/:id", s.deleteSectionHandler, s.requireIdentity)

	api.GET("/tasks", s.listTasksHandler, s.requireIdentity)
	api.GET("/tasks/:id", s.getTaskHandler, s.requireIdentity)
	api.POST("/tasks", s.createTaskHandler, s.requireIdentity)
	api.PATCH("/tasks/:id", s.updateTaskHandler, s.requireIdentity)
	api.DELETE("/tasks/:id", s.deleteTaskHandler, s.requireIdentity)

	api.GET("/user/profile", s.getProfileHandler, s.requireIdentity)
	api.PATCH("/user/profile", s.updateProfileHandler, s.requireIdentity)
	api.DELETE("/user/profile", s.deleteProfileHandler, s.requireIdentity)
}

func (s *Server) indexHandler(c echo.Context) error {
	return c.String(http.StatusOK, "Kanban API")
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Status >= http.StatusInternalServerError {
				s.logger.Warn("request", fields...)
			} else {
				s.logger.Info("request", fields...)
			}
			return nil
		},
	})
}

// parseID reads a numeric path parameter. Anything else cannot name a row.
func parseID(c echo.Context, name, notFoundMessage string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound(notFoundMessage)
	}
	return id, nil
}
