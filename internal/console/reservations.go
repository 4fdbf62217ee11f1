package console

import (
	"context"
	"strings"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/queue"
)

type ReservationsData struct {
	Available []model.ParkingSpace `json:"available"`
	Booked    []model.Reservation  `json:"booked"`
	All       []model.Reservation  `json:"all"`
	Form      BookingForm          `json:"form"`
}

// ReservationScreen shows the booking form, the reservations that can be
// released and the full reservation history.
func (c *Console) ReservationScreen(ctx context.Context) *Page {
	p := NewPage(Reservations)
	c.fillReservations(ctx, p, DefaultBookingForm(c.now()))
	return p
}

// Book validates the Make Reservation form and hands it to the booking
// procedure.  Overlaps are the procedure's to detect.
func (c *Console) Book(ctx context.Context, f BookingForm) *Page {
	p := NewPage(Reservations)
	form := f
	if c.book(ctx, p, f) {
		form = DefaultBookingForm(c.now())
	}
	c.fillReservations(ctx, p, form)
	return p
}

func (c *Console) book(ctx context.Context, p *Page, f BookingForm) bool {
	userID := model.NormalizeID(f.UserID)
	if userID == "" {
		p.Error("Please enter a User ID.")
		return false
	}
	spaceID := model.SpaceIDFromLabel(f.SpaceID)
	if spaceID == "" {
		p.Error("No available spaces to select.")
		return false
	}
	start, end, err := f.Window()
	if err != nil {
		p.Error("Please enter a valid date and time.")
		return false
	}
	if !end.After(start) {
		p.Error("End time must be after start time.")
		return false
	}
	u, ok := c.users.Find(ctx, p, userID)
	if !ok {
		p.Error("User ID not found.")
		return false
	}
	if u.Status == model.UserInactive {
		p.Error("This user is deactivated and cannot make reservations.")
		return false
	}

	out := c.reservations.Book(ctx, p, userID, spaceID, start, end)
	if !out.OK {
		return false
	}
	if msg, ok := out.Message(); ok {
		p.Success(msg)
	} else {
		p.Success("Reservation booked successfully.")
	}
	detail := map[string]string{
		"space_id": spaceID,
		"start":    start.Format(DateLayout + " " + ClockLayout),
		"end":      end.Format(DateLayout + " " + ClockLayout),
	}
	if out.Record.Has("RES_ID") {
		detail["reservation_id"] = out.Record.String("RES_ID")
	}
	c.record(ctx, queue.KindReservationBooked, userID, detail)
	return true
}

// Release completes a Booked reservation through the release procedure,
// which also bills it and frees the space.
func (c *Console) Release(ctx context.Context, reservationID string) *Page {
	p := NewPage(Reservations)
	c.release(ctx, p, strings.TrimSpace(reservationID))
	c.fillReservations(ctx, p, DefaultBookingForm(c.now()))
	return p
}

func (c *Console) release(ctx context.Context, p *Page, id string) {
	if id == "" {
		p.Error("Please select a reservation to release.")
		return
	}
	out := c.reservations.Release(ctx, p, id)
	if !out.OK {
		return
	}
	if msg, ok := out.Message(); ok {
		p.Success(msg)
	} else {
		p.Success("Reservation " + id + " released.")
	}
	detail := map[string]string{}
	for _, col := range []string{"PAYMENT_ID", "AMOUNT"} {
		if out.Record.Has(col) {
			detail[strings.ToLower(col)] = out.Record.String(col)
		}
	}
	c.record(ctx, queue.KindReservationReleased, id, detail)
}

func (c *Console) fillReservations(ctx context.Context, p *Page, form BookingForm) {
	data := ReservationsData{
		Available: c.spaces.ListAvailable(ctx, p),
		Booked:    c.reservations.ListBooked(ctx, p),
		All:       c.reservations.ListAll(ctx, p),
		Form:      form,
	}
	if len(data.Available) == 0 {
		p.Error("No available parking spaces found.")
	}
	if len(data.Booked) == 0 {
		p.Info("No active reservations to release.")
	}
	if len(data.All) == 0 {
		p.Info("No reservations found.")
	}
	p.Data = data
}
