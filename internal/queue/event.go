// Package queue carries the console's audit trail over RabbitMQ: the event
// payload, a publisher used by the server and the consumer behind
// cmd/auditlog.
package queue

// AuditQueue is the durable queue audit events are published to.
const AuditQueue = "parking.audit"

const (
	KindUserAdded           = "user.added"
	KindUserUpdated         = "user.updated"
	KindUserDeleted         = "user.deleted"
	KindReservationBooked   = "reservation.booked"
	KindReservationReleased = "reservation.released"
	KindPaymentCompleted    = "payment.completed"
)

// AuditEvent is published after every successful console mutation.  It
// carries enough to reconstruct who did what without reading the database.
type AuditEvent struct {
	Kind     string            `json:"kind"`
	Operator string            `json:"operator"`
	Subject  string            `json:"subject"`
	Detail   map[string]string `json:"detail,omitempty"`
	At       string            `json:"at"`
}
