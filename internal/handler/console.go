package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-console/internal/console"
	"github.com/iliyamo/parking-console/internal/middleware"
	"github.com/iliyamo/parking-console/internal/view"
)

// ConsoleHandler exposes the console screens over HTTP.  Every outcome the
// console can produce, including store failures, is a 200 page carrying
// notices; only undecodable requests get 400.
type ConsoleHandler struct {
	Console *console.Console
}

func NewConsoleHandler(c *console.Console) *ConsoleHandler {
	return &ConsoleHandler{Console: c}
}

type releaseReq struct {
	ReservationID string `form:"reservation_id" json:"reservation_id"`
}

type payReq struct {
	UserID    string `form:"user_id" json:"user_id"`
	PaymentID string `form:"payment_id" json:"payment_id"`
}

type deleteReq struct {
	UserID string `form:"user_id" json:"user_id"`
}

// Root sends the operator to the dashboard.
func (h *ConsoleHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, console.Dashboard.Path())
}

func (h *ConsoleHandler) Dashboard(c echo.Context) error {
	return respond(c, h.Console.Show(c.Request().Context(), console.Dashboard, c.QueryParams()))
}

// Users serves GET /users, with ?find= for a lookup.
func (h *ConsoleHandler) Users(c echo.Context) error {
	return respond(c, h.Console.Show(c.Request().Context(), console.UserManagement, c.QueryParams()))
}

// EditUser serves GET /users/edit?id= to pre-fill the update form.
func (h *ConsoleHandler) EditUser(c echo.Context) error {
	return respond(c, h.Console.EditUser(c.Request().Context(), c.QueryParam("id")))
}

func (h *ConsoleHandler) AddUser(c echo.Context) error {
	var f console.UserForm
	if err := c.Bind(&f); err != nil {
		return badRequest(c)
	}
	return respond(c, h.Console.AddUser(c.Request().Context(), f))
}

func (h *ConsoleHandler) UpdateUser(c echo.Context) error {
	var f console.UserUpdateForm
	if err := c.Bind(&f); err != nil {
		return badRequest(c)
	}
	return respond(c, h.Console.UpdateUser(c.Request().Context(), c.Param("id"), f))
}

// DeleteUser takes the identifier from the path or, for the plain form,
// from the user_id field.
func (h *ConsoleHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		var req deleteReq
		if err := c.Bind(&req); err != nil {
			return badRequest(c)
		}
		id = req.UserID
	}
	return respond(c, h.Console.DeleteUser(c.Request().Context(), id))
}

func (h *ConsoleHandler) Reservations(c echo.Context) error {
	return respond(c, h.Console.Show(c.Request().Context(), console.Reservations, c.QueryParams()))
}

func (h *ConsoleHandler) Book(c echo.Context) error {
	var f console.BookingForm
	if err := c.Bind(&f); err != nil {
		return badRequest(c)
	}
	return respond(c, h.Console.Book(c.Request().Context(), f))
}

func (h *ConsoleHandler) Release(c echo.Context) error {
	var req releaseReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	return respond(c, h.Console.Release(c.Request().Context(), req.ReservationID))
}

// Billing serves GET /billing?user=.
func (h *ConsoleHandler) Billing(c echo.Context) error {
	return respond(c, h.Console.Show(c.Request().Context(), console.Billing, c.QueryParams()))
}

func (h *ConsoleHandler) Pay(c echo.Context) error {
	var req payReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	return respond(c, h.Console.Pay(c.Request().Context(), req.UserID, req.PaymentID))
}

// respond renders p as JSON for API clients and as the screen's HTML
// template otherwise.
func respond(c echo.Context, p *console.Page) error {
	if middleware.WantsJSON(c) {
		return c.JSON(http.StatusOK, p)
	}
	return c.Render(http.StatusOK, p.Screen.Template(), view.NewFrame(p, middleware.CurrentOperator(c)))
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}
