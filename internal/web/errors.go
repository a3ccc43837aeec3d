package web

import (
	"errors"
	"net/http"

	goerrors "github.com/go-errors/errors"
	"github.com/labstack/echo/v4"

	"github.com/Joseda-hg/taskboard/internal/db"
)

const internalMessage = "Internal Server Error"

// apiError is a handler failure with a plain-text response body.
type apiError struct {
	Status  int
	Message string
	cause   *goerrors.Error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// FieldError is one entry of a validation failure response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationError struct {
	Fields []FieldError
}

func (e *validationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Field + ": " + e.Fields[0].Message
}

var (
	errUnauthorized  = &apiError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	errMisconfigured = &apiError{Status: http.StatusInternalServerError, Message: internalMessage}
)

func notFound(message string) error {
	return &apiError{Status: http.StatusNotFound, Message: message}
}

func badRequest(message string) error {
	return &apiError{Status: http.StatusBadRequest, Message: message}
}

// internalError records the stack at the handler boundary.
func internalError(err error) error {
	return &apiError{Status: http.StatusInternalServerError, Message: internalMessage, cause: goerrors.Wrap(err, 1)}
}

// storeError maps store sentinels onto responses.
func storeError(err error, notFoundMessage, conflictMessage string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return notFound(notFoundMessage)
	case errors.Is(err, db.ErrConflict) && conflictMessage != "":
		return badRequest(conflictMessage)
	default:
		return internalError(err)
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		validation *validationError
		apiErr     *apiError
		httpErr    *echo.HTTPError
	)
	switch {
	case errors.As(err, &validation):
		err = c.JSON(http.StatusBadRequest, validation.Fields)
	case errors.As(err, &apiErr):
		if apiErr == errMisconfigured {
			s.logger.Error("rejecting request: token signing secret is not configured", "uri", c.Request().RequestURI)
		}
		if apiErr.cause != nil {
			s.logger.Error(apiErr.cause.Error(), "uri", c.Request().RequestURI, "stack", apiErr.cause.ErrorStack())
		}
		err = c.String(apiErr.Status, apiErr.Message)
	case errors.As(err, &httpErr):
		err = c.String(httpErr.Code, http.StatusText(httpErr.Code))
	default:
		s.logger.Error(err.Error(), "uri", c.Request().RequestURI, "stack", goerrors.Wrap(err, 1).ErrorStack())
		err = c.String(http.StatusInternalServerError, internalMessage)
	}
	if err != nil {
		s.logger.Error("write error response", "err", err)
	}
}
