package web

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Joseda-hg/taskboard/internal/auth"
	"github.com/Joseda-hg/taskboard/internal/model"
)

const tokenCookieName = "token"

// requireIdentity verifies the token cookie and attaches the identity to the
// request context. A missing signing secret fails closed with a 500.
func (s *Server) requireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(tokenCookieName)
		if err != nil || cookie.Value == "" {
			return errUnauthorized
		}
		if !s.tokens.Configured() {
			return errMisconfigured
		}

		identity, err := s.tokens.Verify(cookie.Value)
		if err != nil {
			s.logger.Debug("rejecting token", "err", err)
			return errUnauthorized
		}

		req := c.Request()
		c.SetRequest(req.WithContext(auth.NewContext(req.Context(), identity)))
		return next(c)
	}
}

// identityOf returns the identity attached by requireIdentity.
func identityOf(c echo.Context) (model.Identity, error) {
	identity, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return model.Identity{}, errUnauthorized
	}
	return identity, nil
}

func (s *Server) setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.options.SecureCookies,
	})
}

func (s *Server) clearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.options.SecureCookies,
	})
}
