package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ctxUserID  = "userID"
	ctxIsStaff = "isStaff"
)

// Name of the cookie carrying the access token for browser clients.
const jwtCookie = "jwt"

// RequireAuth authenticates the request from the Authorization header or the
// jwt cookie and stores the caller's identity on the context.
func (h *Handler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			if cookie, err := c.Cookie(jwtCookie); err == nil {
				raw = cookie.Value
			}
		}
		if raw == "" {
			return respondError(c, http.StatusUnauthorized, "authentication required")
		}

		claims, err := h.tokens.VerifyAccess(raw)
		if err != nil {
			return respondError(c, http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxIsStaff, claims.IsStaff)
		return next(c)
	}
}

// RequireStaff rejects non-staff callers. Must run after RequireAuth.
func (h *Handler) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if staff, _ := c.Get(ctxIsStaff).(bool); !staff {
			return respondError(c, http.StatusForbidden, "staff access required")
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

func callerID(c echo.Context) int64 {
	id, _ := c.Get(ctxUserID).(int64)
	return id
}

func callerIsStaff(c echo.Context) bool {
	staff, _ := c.Get(ctxIsStaff).(bool)
	return staff
}
