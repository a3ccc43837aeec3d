package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Joseda-hg/taskboard/internal/db"
)

const userNotFound = "User not found"

func (s *Server) getProfileHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	user, err := s.store.GetUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return storeError(err, userNotFound, "")
	}
	return c.JSON(http.StatusOK, user)
}

// updateProfileHandler overwrites name, password and email together and
// rotates the token cookie so its claims match the new profile.
func (s *Server) updateProfileHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	var payload userPayload
	if err := bind(c, s.schemas.user, &payload); err != nil {
		return err
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return err
	}

	user, err := s.store.UpdateUser(c.Request().Context(), identity.UserID, db.UserInput{
		Name:         payload.Username,
		PasswordHash: hash,
		Email:        payload.Email,
	})
	if err != nil {
		return storeError(err, userNotFound, "The user already exists")
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return internalError(err)
	}
	s.setTokenCookie(c, token)
	return c.JSON(http.StatusOK, user)
}

// deleteProfileHandler removes the user; sections and tasks go with it.
func (s *Server) deleteProfileHandler(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	user, err := s.store.DeleteUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return storeError(err, userNotFound, "")
	}
	s.clearTokenCookie(c)
	return c.JSON(http.StatusOK, user)
}
