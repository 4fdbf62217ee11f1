// Package console holds the operator console's screen controllers.  Each
// operation takes the operator's input, validates it locally, talks to the
// store through the repository interfaces below and returns a Page.  No
// data-access failure escapes a controller: failures arrive on the Page as
// notices.
package console

import (
	"context"
	"net/url"
	"time"

	"github.com/iliyamo/parking-console/internal/logger"
	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/queue"
	"github.com/iliyamo/parking-console/internal/store"
)

// SpaceStore reads the lot's parking spaces.
type SpaceStore interface {
	ListAll(ctx context.Context, rep store.Reporter) []model.ParkingSpace
	ListAvailable(ctx context.Context, rep store.Reporter) []model.ParkingSpace
}

type UserStore interface {
	Find(ctx context.Context, rep store.Reporter, id string) (model.User, bool)
	Create(ctx context.Context, rep store.Reporter, u model.User) bool
	Update(ctx context.Context, rep store.Reporter, u model.User) bool
	Delete(ctx context.Context, rep store.Reporter, id string) bool
	PendingPayments(ctx context.Context, rep store.Reporter, id string) int64
}

type ReservationStore interface {
	ListBooked(ctx context.Context, rep store.Reporter) []model.Reservation
	ListAll(ctx context.Context, rep store.Reporter) []model.Reservation
	Book(ctx context.Context, rep store.Reporter, userID, spaceID string, start, end time.Time) store.Outcome
	Release(ctx context.Context, rep store.Reporter, reservationID string) store.Outcome
}

type PaymentStore interface {
	ListForUser(ctx context.Context, rep store.Reporter, userID string) []model.Payment
	MarkPaid(ctx context.Context, rep store.Reporter, paymentID string, at time.Time) bool
}

// Auditor receives one event per successful mutation.
type Auditor interface {
	Publish(ctx context.Context, ev queue.AuditEvent) error
}

// Deps wires a Console.  Audit, Log and Now are optional.
type Deps struct {
	Spaces       SpaceStore
	Users        UserStore
	Reservations ReservationStore
	Payments     PaymentStore
	Audit        Auditor
	Log          *logger.Log
	Now          func() time.Time
}

type Console struct {
	spaces       SpaceStore
	users        UserStore
	reservations ReservationStore
	payments     PaymentStore
	audit        Auditor
	log          *logger.Log
	now          func() time.Time
}

func New(d Deps) *Console {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Console{
		spaces:       d.Spaces,
		users:        d.Users,
		reservations: d.Reservations,
		payments:     d.Payments,
		audit:        d.Audit,
		log:          d.Log.WithEntryName("console"),
		now:          d.Now,
	}
}

// Show is the navigation shell's dispatch: it renders the read-only state of
// screen s.  Query keys: "find" and "edit" for user management, "user" for
// billing.
func (c *Console) Show(ctx context.Context, s Screen, q url.Values) *Page {
	switch s {
	case UserManagement:
		if id := q.Get("edit"); id != "" {
			return c.EditUser(ctx, id)
		}
		if q.Has("find") {
			return c.FindUser(ctx, q.Get("find"))
		}
		return c.UserScreen(ctx)
	case Reservations:
		return c.ReservationScreen(ctx)
	case Billing:
		return c.BillingScreen(ctx, q.Get("user"))
	default:
		return c.Dashboard(ctx)
	}
}

type operatorKey struct{}

// WithOperator tags ctx with the signed-in operator for audit events.
func WithOperator(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operatorKey{}, name)
}

func OperatorFrom(ctx context.Context) string {
	if s, ok := ctx.Value(operatorKey{}).(string); ok && s != "" {
		return s
	}
	return "anonymous"
}

func (c *Console) record(ctx context.Context, kind, subject string, detail map[string]string) {
	if c.audit == nil {
		return
	}
	ev := queue.AuditEvent{
		Kind:     kind,
		Operator: OperatorFrom(ctx),
		Subject:  subject,
		Detail:   detail,
		At:       c.now().Format(time.RFC3339),
	}
	if err := c.audit.Publish(ctx, ev); err != nil {
		c.log.WithErr(err).WithField("kind", kind).Warn("audit publish failed")
	}
}
