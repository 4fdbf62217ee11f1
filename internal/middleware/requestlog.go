package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-console/internal/logger"
)

// RequestLogger logs one entry per request with status, latency, method,
// path and operator.
func RequestLogger(log *logger.Log) echo.MiddlewareFunc {
	l := log.WithEntryName("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			entry := l.WithField("status", c.Response().Status).
				WithField("latency", time.Since(start).Round(time.Millisecond)).
				WithField("method", c.Request().Method).
				WithField("path", c.Request().URL.Path).
				WithOperator(CurrentOperator(c))
			if err != nil {
				entry.WithErr(err).Warn("request failed")
			} else {
				entry.Debug("request handled")
			}
			return nil
		}
	}
}
