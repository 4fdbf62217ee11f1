// Package router wires the console's handlers and middleware onto echo.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-console/internal/handler"
)

// RegisterRoutes registers routes that need no session: the health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers sign-in and sign-out.  The limiter guards the
// password check against guessing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	e.GET("/login", a.LoginForm)
	e.POST("/login", a.Login, limiter)
	e.POST("/logout", a.Logout)
}

// RegisterConsole registers the four screens behind the session
// middleware.  Every POST also passes the rate limiter.
func RegisterConsole(e *echo.Echo, h *handler.ConsoleHandler, session, limiter echo.MiddlewareFunc) {
	e.GET("/", h.Root)

	g := e.Group("", session)
	g.GET("/dashboard", h.Dashboard)

	g.GET("/users", h.Users)
	g.GET("/users/edit", h.EditUser)
	g.POST("/users", h.AddUser, limiter)
	g.POST("/users/delete", h.DeleteUser, limiter)
	g.POST("/users/:id", h.UpdateUser, limiter)
	g.POST("/users/:id/delete", h.DeleteUser, limiter)

	g.GET("/reservations", h.Reservations)
	g.POST("/reservations", h.Book, limiter)
	g.POST("/reservations/release", h.Release, limiter)

	g.GET("/billing", h.Billing)
	g.POST("/billing/pay", h.Pay, limiter)
}
