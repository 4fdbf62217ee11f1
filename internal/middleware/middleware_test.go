package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-console/internal/config"
	"github.com/iliyamo/parking-console/internal/console"
	"github.com/iliyamo/parking-console/internal/logger"
	"github.com/iliyamo/parking-console/internal/utils"
)

func protected(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/dashboard", func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentOperator(c)+"|"+console.OperatorFrom(c.Request().Context()))
	}, mw)
	return e
}

func TestSessionAuthAcceptsCookieAndBearer(t *testing.T) {
	tok, err := utils.NewSessionToken("secret", "admin", 10)
	require.NoError(t, err)
	e := protected(SessionAuth("secret", true, ""))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin|admin", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuthRejects(t *testing.T) {
	e := protected(SessionAuth("secret", true, ""))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid session"}`, rec.Body.String())
}

func TestSessionAuthDisabledUsesFallback(t *testing.T) {
	e := protected(SessionAuth("", false, "admin"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, "admin|admin", rec.Body.String())
}

func TestTokenBucketPassThroughWithoutRedis(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, logger.Discard())
	e := protected(mw)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/billing/pay", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/billing/pay")

	cfg := config.RateLimitConfig{Prefix: "console-rl"}
	assert.Equal(t, "console-rl:ip:10.0.0.7:op:anon:route:POST /billing/pay", buildRateKey(cfg, c))

	c.Set(OperatorKey, "admin")
	cfg.KeyStrategy = "operator"
	assert.Equal(t, "console-rl:op:admin", buildRateKey(cfg, c))
}

func TestWantsJSON(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAccept, "text/html,application/json")
	assert.False(t, WantsJSON(e.NewContext(req, httptest.NewRecorder())))
	req.Header.Set(echo.HeaderAccept, "application/json")
	assert.True(t, WantsJSON(e.NewContext(req, httptest.NewRecorder())))
}
