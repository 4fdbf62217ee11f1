package model

import "time"

type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "Booked"
	ReservationCompleted ReservationStatus = "Completed"
)

// Reservation mirrors a RESERVATION row.
type Reservation struct {
	ID      string            `json:"res_id"`
	UserID  string            `json:"user_id"`
	SpaceID string            `json:"space_id"`
	Start   time.Time         `json:"start_time"`
	End     time.Time         `json:"end_time"`
	Status  ReservationStatus `json:"status"`
}

// Overlaps reports whether [start, end) intersects the reservation window.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.Start.Before(end) && r.End.After(start)
}
