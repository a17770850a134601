package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ridemyway/ridemyway/domain"
)

const (
	tokenCookie  = "token"
	principalKey = "principal"
)

// AuthMiddleware resolves the token cookie, or a Bearer header, to the
// calling principal and stores it in the context.
func (h *Handler) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ""
		if cookie, err := c.Cookie(tokenCookie); err == nil {
			token = cookie.Value
		}
		if token == "" {
			if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			return h.Error(c, http.StatusUnauthorized, "Unauthorized (No token)", nil)
		}

		p, err := h.idp.Authenticate(c.Request().Context(), token)
		if err != nil {
			return h.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		}

		c.Set(principalKey, p)
		return next(c)
	}
}

// RequireRole rejects callers whose principal does not carry role. It must
// run after AuthMiddleware.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := c.Get(principalKey).(domain.Principal)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			if p.Role != role {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"status": "Forbidden",
					"code":   http.StatusForbidden,
					"error":  "forbidden: requires role " + string(role),
				})
			}
			return next(c)
		}
	}
}

func principal(c echo.Context) domain.Principal {
	p, _ := c.Get(principalKey).(domain.Principal)
	return p
}
