package model

import "strings"

// SpaceStatus is the occupancy state of a parking space.  Only the booking
// and release procedures flip it.
type SpaceStatus string

const (
	SpaceAvailable SpaceStatus = "Available"
	SpaceOccupied  SpaceStatus = "Occupied"
)

// ParkingSpace mirrors a PARKING_SPACE row.
type ParkingSpace struct {
	ID       string      `json:"space_id"`
	Location string      `json:"location"`
	Status   SpaceStatus `json:"status"`
	Priority int64       `json:"priority"`
}

// Available reports whether the space can be offered for a new booking.
func (s ParkingSpace) Available() bool { return s.Status == SpaceAvailable }

// Label is the "S1 - North Gate" form used in the space selector.
func (s ParkingSpace) Label() string { return s.ID + " - " + s.Location }

// SpaceIDFromLabel extracts the identifier from a Label string.  A bare
// identifier is returned unchanged.
func SpaceIDFromLabel(label string) string {
	id, _, _ := strings.Cut(strings.TrimSpace(label), " - ")
	return strings.TrimSpace(id)
}
