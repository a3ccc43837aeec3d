package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Joseda-hg/taskboard/internal/auth"
	"github.com/Joseda-hg/taskboard/internal/db"
)

type userPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (s *Server) registerHandler(c echo.Context) error {
	var payload userPayload
	if err := bind(c, s.schemas.user, &payload); err != nil {
		return err
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return err
	}

	user, err := s.store.CreateUser(c.Request().Context(), db.UserInput{
		Name:         payload.Username,
		PasswordHash: hash,
		Email:        payload.Email,
	})
	if err != nil {
		return storeError(err, "The user could not be created", "The user already exists")
	}

	return c.JSON(http.StatusCreated, user)
}

func (s *Server) loginHandler(c echo.Context) error {
	var payload loginPayload
	if err := bind(c, s.schemas.login, &payload); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(c.Request().Context(), payload.Email)
	if errors.Is(err, db.ErrNotFound) {
		return badRequest("The user does not exist")
	}
	if err != nil {
		return internalError(err)
	}

	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return badRequest("The password is invalid")
		}
		return internalError(err)
	}

	token, err := s.tokens.Issue(user.Identity())
	if errors.Is(err, auth.ErrMissingSecret) {
		return errMisconfigured
	}
	if err != nil {
		return internalError(err)
	}

	s.setTokenCookie(c, token)
	return c.JSON(http.StatusOK, loginResponse{ID: user.ID, Email: user.Email})
}

// hashPassword reports an over-long password as a field error.
func hashPassword(plain string) (string, error) {
	hash, err := auth.HashPassword(plain)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", &validationError{Fields: []FieldError{{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes),
		}}}
	}
	if err != nil {
		return "", internalError(err)
	}
	return hash, nil
}

func (s *Server) logoutHandler(c echo.Context) error {
	s.clearTokenCookie(c)
	return c.String(http.StatusOK, "Logged out")
}
