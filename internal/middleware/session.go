package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-console/internal/console"
	"github.com/iliyamo/parking-console/internal/utils"
)

// SessionCookie holds the signed operator session.
const SessionCookie = "console_session"

// OperatorKey is the echo context key the signed-in operator is stored under.
const OperatorKey = "operator"

// SessionAuth admits requests carrying a valid session token, either in
// SessionCookie or as a Bearer token.  Browsers without one are redirected
// to /login; API clients get 401.  With auth disabled every request runs as
// fallbackOperator.
func SessionAuth(secret string, enabled bool, fallbackOperator string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return admit(c, next, fallbackOperator)
			}
			raw := sessionToken(c)
			if raw == "" {
				return deny(c, "missing session")
			}
			op, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return deny(c, "invalid session")
			}
			return admit(c, next, op)
		}
	}
}

func admit(c echo.Context, next echo.HandlerFunc, operator string) error {
	c.Set(OperatorKey, operator)
	req := c.Request()
	c.SetRequest(req.WithContext(console.WithOperator(req.Context(), operator)))
	return next(c)
}

func sessionToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

func deny(c echo.Context, reason string) error {
	if WantsJSON(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": reason})
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// WantsJSON reports whether the client asked for JSON rather than HTML.
func WantsJSON(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// CurrentOperator returns the operator stored by SessionAuth.
func CurrentOperator(c echo.Context) string {
	if s, ok := c.Get(OperatorKey).(string); ok && s != "" {
		return s
	}
	return ""
}
