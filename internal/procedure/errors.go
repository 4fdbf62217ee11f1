// Package procedure hosts the reservation lifecycle that the database's
// stored procedures and triggers own in a full deployment: booking a space,
// releasing a reservation into a bill, and refusing to deactivate or delete
// a user who still owes money.  Each operation runs inside the transaction
// the store gateway opens for it, so a rejection leaves no partial writes.
package procedure

import (
	"errors"
	"fmt"
)

// Sentinel kinds.  The operator sees the wrapping rejection's message;
// callers and tests match the kind with errors.Is.
var (
	ErrInvalidWindow        = errors.New("invalid reservation window")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserInactive         = errors.New("user inactive")
	ErrSpaceNotFound        = errors.New("space not found")
	ErrSpaceUnavailable     = errors.New("space unavailable")
	ErrOverlap              = errors.New("overlapping reservation")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationNotBooked = errors.New("reservation not booked")
	ErrPendingPayments      = errors.New("pending payments")
	ErrBadArguments         = errors.New("bad procedure arguments")
)

type rejection struct {
	kind error
	msg  string
}

func (r *rejection) Error() string { return r.msg }
func (r *rejection) Unwrap() error { return r.kind }

func reject(kind error, format string, args ...any) error {
	return &rejection{kind: kind, msg: fmt.Sprintf(format, args...)}
}
