// Package consoletest provides an in-memory parking lot that satisfies the
// console's repository interfaces, for controller and handler tests.  It
// enforces the same rules as the booking and release procedures and the
// pending-payment guards, reporting rejections the way the store does.
package consoletest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/procedure"
	"github.com/iliyamo/parking-console/internal/queue"
	"github.com/iliyamo/parking-console/internal/store"
)

type Lot struct {
	mu           sync.Mutex
	spaces       map[string]model.ParkingSpace
	users        map[string]model.User
	reservations map[string]model.Reservation
	payments     map[string]model.Payment
	calls        map[string]int
	seq          int
	rates        procedure.Rates

	// Now stamps releases.  Defaults to time.Now.
	Now func() time.Time
	// Down makes every call report a connection failure.
	Down bool
}

func NewLot() *Lot {
	return &Lot{
		spaces:       map[string]model.ParkingSpace{},
		users:        map[string]model.User{},
		reservations: map[string]model.Reservation{},
		payments:     map[string]model.Payment{},
		calls:        map[string]int{},
		rates:        procedure.DefaultRates(),
		Now:          time.Now,
	}
}

func (l *Lot) AddSpace(s model.ParkingSpace) *Lot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s.Status == "" {
		s.Status = model.SpaceAvailable
	}
	l.spaces[s.ID] = s
	return l
}

func (l *Lot) AddUser(u model.User) *Lot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u.Status == "" {
		u.Status = model.UserActive
	}
	if u.Type == "" {
		u.Type = model.UserStudent
	}
	l.users[u.ID] = u
	return l
}

// AddReservation seeds a reservation.  A Booked one occupies its space.
func (l *Lot) AddReservation(r model.Reservation) *Lot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r.Status == "" {
		r.Status = model.ReservationBooked
	}
	l.reservations[r.ID] = r
	if r.Status == model.ReservationBooked {
		s := l.spaces[r.SpaceID]
		s.Status = model.SpaceOccupied
		l.spaces[r.SpaceID] = s
	}
	return l
}

func (l *Lot) AddPayment(p model.Payment) *Lot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	l.payments[p.ID] = p
	return l
}

// Calls returns how many times the named method has been invoked.
func (l *Lot) Calls(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[method]
}

func (l *Lot) Space(id string) (model.ParkingSpace, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.spaces[id]
	return s, ok
}

func (l *Lot) User(id string) (model.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.users[id]
	return u, ok
}

func (l *Lot) Reservation(id string) (model.Reservation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[id]
	return r, ok
}

func (l *Lot) Payment(id string) (model.Payment, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.payments[id]
	return p, ok
}

// PaymentsFor returns every payment on the user's reservations.
func (l *Lot) PaymentsFor(userID string) []model.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paymentsFor(userID)
}

// enter counts the call and reports a connection failure when the lot is
// down.  Callers hold l.mu.
func (l *Lot) enter(rep store.Reporter, method string) bool {
	l.calls[method]++
	if l.Down {
		rep.Report("Error connecting to database: connection refused")
		return false
	}
	return true
}

// SpaceRepo, UserRepo, ReservationRepo and PaymentRepo are the lot's
// views for each console interface.
type (
	SpaceRepo       struct{ l *Lot }
	UserRepo        struct{ l *Lot }
	ReservationRepo struct{ l *Lot }
	PaymentRepo     struct{ l *Lot }
)

func (l *Lot) Spaces() SpaceRepo             { return SpaceRepo{l} }
func (l *Lot) Users() UserRepo               { return UserRepo{l} }
func (l *Lot) Reservations() ReservationRepo { return ReservationRepo{l} }
func (l *Lot) Payments() PaymentRepo         { return PaymentRepo{l} }

func (v SpaceRepo) ListAll(ctx context.Context, rep store.Reporter) []model.ParkingSpace {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Spaces.ListAll") {
		return []model.ParkingSpace{}
	}
	return l.sortedSpaces(false)
}

func (v SpaceRepo) ListAvailable(ctx context.Context, rep store.Reporter) []model.ParkingSpace {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Spaces.ListAvailable") {
		return []model.ParkingSpace{}
	}
	return l.sortedSpaces(true)
}

func (l *Lot) sortedSpaces(onlyAvailable bool) []model.ParkingSpace {
	out := []model.ParkingSpace{}
	for _, s := range l.spaces {
		if !onlyAvailable || s.Available() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v UserRepo) Find(ctx context.Context, rep store.Reporter, id string) (model.User, bool) {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Users.Find") {
		return model.User{}, false
	}
	u, ok := l.users[id]
	return u, ok
}

func (v UserRepo) Create(ctx context.Context, rep store.Reporter, u model.User) bool {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Users.Create") {
		return false
	}
	if _, dup := l.users[u.ID]; dup {
		rep.Report(fmt.Sprintf("Database Command Error: Duplicate entry '%s' for key 'USERS.PRIMARY'", u.ID))
		return false
	}
	u.Status = model.UserActive
	l.users[u.ID] = u
	return true
}

// Update mirrors the UPDATE statement plus trg_BeforeUserDeactivate.  An
// unknown identifier matches no row and still succeeds.
func (v UserRepo) Update(ctx context.Context, rep store.Reporter, u model.User) bool {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Users.Update") {
		return false
	}
	cur, ok := l.users[u.ID]
	if !ok {
		return true
	}
	if cur.Deactivates(u.Status) && l.pendingFor(u.ID) > 0 {
		rep.Report("Database Command Error: Cannot deactivate user. User has pending payments.")
		return false
	}
	cur.Email, cur.Phone, cur.VehicleNo = u.Email, u.Phone, u.VehicleNo
	cur.Type, cur.Status = u.Type, u.Status
	l.users[u.ID] = cur
	return true
}

// Delete mirrors DELETE plus trg_BeforeUserDelete and the reservation
// foreign key.
func (v UserRepo) Delete(ctx context.Context, rep store.Reporter, id string) bool {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Users.Delete") {
		return false
	}
	if l.pendingFor(id) > 0 {
		rep.Report("Database Command Error: Cannot delete user. User has pending payments.")
		return false
	}
	for _, r := range l.reservations {
		if r.UserID == id {
			rep.Report("Database Command Error: Cannot delete or update a parent row: a foreign key constraint fails")
			return false
		}
	}
	delete(l.users, id)
	return true
}

func (v UserRepo) PendingPayments(ctx context.Context, rep store.Reporter, id string) int64 {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Users.PendingPayments") {
		return 0
	}
	return l.pendingFor(id)
}

func (l *Lot) pendingFor(userID string) int64 {
	var n int64
	for _, p := range l.paymentsFor(userID) {
		if p.Pending() {
			n++
		}
	}
	return n
}

func (v ReservationRepo) ListBooked(ctx context.Context, rep store.Reporter) []model.Reservation {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Reservations.ListBooked") {
		return []model.Reservation{}
	}
	out := []model.Reservation{}
	for _, r := range l.reservations {
		if r.Status == model.ReservationBooked {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (v ReservationRepo) ListAll(ctx context.Context, rep store.Reporter) []model.Reservation {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Reservations.ListAll") {
		return []model.Reservation{}
	}
	out := make([]model.Reservation, 0, len(l.reservations))
	for _, r := range l.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out
}

// Book follows sp_BookReservation's checks in the same order.
func (v ReservationRepo) Book(ctx context.Context, rep store.Reporter, userID, spaceID string, start, end time.Time) store.Outcome {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Reservations.Book") {
		return store.Outcome{}
	}
	fail := func(format string, args ...any) store.Outcome {
		rep.Report(fmt.Sprintf("Procedure Error (%s): ", procedure.BookReservation) + fmt.Sprintf(format, args...))
		return store.Outcome{}
	}
	if !end.After(start) {
		return fail("End time must be after start time.")
	}
	u, ok := l.users[userID]
	if !ok {
		return fail("User %s does not exist.", userID)
	}
	if u.Status != model.UserActive {
		return fail("User %s is inactive and cannot make reservations.", userID)
	}
	s, ok := l.spaces[spaceID]
	if !ok {
		return fail("Parking space %s does not exist.", spaceID)
	}
	for _, r := range l.reservations {
		if r.SpaceID == spaceID && r.Status == model.ReservationBooked && r.Overlaps(start, end) {
			return fail("Parking space %s is already booked for an overlapping period.", spaceID)
		}
	}
	if !s.Available() {
		return fail("Parking space %s is not available.", spaceID)
	}

	id := l.nextID("R")
	l.reservations[id] = model.Reservation{ID: id, UserID: userID, SpaceID: spaceID, Start: start, End: end, Status: model.ReservationBooked}
	s.Status = model.SpaceOccupied
	l.spaces[spaceID] = s
	return store.Outcome{OK: true, Record: store.Record{
		"message": fmt.Sprintf("Reservation %s booked: space %s for user %s.", id, spaceID, userID),
		"RES_ID":  id,
	}}
}

// Release follows sp_ReleaseReservation, billing with the default rates.
func (v ReservationRepo) Release(ctx context.Context, rep store.Reporter, reservationID string) store.Outcome {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Reservations.Release") {
		return store.Outcome{}
	}
	fail := func(format string, args ...any) store.Outcome {
		rep.Report(fmt.Sprintf("Procedure Error (%s): ", procedure.ReleaseReservation) + fmt.Sprintf(format, args...))
		return store.Outcome{}
	}
	r, ok := l.reservations[reservationID]
	if !ok {
		return fail("Reservation %s does not exist.", reservationID)
	}
	if r.Status != model.ReservationBooked {
		return fail("Reservation %s is not active.", reservationID)
	}
	at := l.Now()
	_, amount := l.rates.Bill(l.users[r.UserID].Type, r.Start, r.End, at)

	r.Status = model.ReservationCompleted
	l.reservations[r.ID] = r
	pid := l.nextID("P")
	l.payments[pid] = model.Payment{
		ID: pid, ReservationID: r.ID, SpaceID: r.SpaceID, Start: r.Start, End: r.End,
		Amount: amount, Status: model.PaymentPending, Timestamp: at,
	}
	s := l.spaces[r.SpaceID]
	s.Status = model.SpaceAvailable
	l.spaces[r.SpaceID] = s
	return store.Outcome{OK: true, Record: store.Record{
		"message":    fmt.Sprintf("Reservation %s released. Bill of %s generated.", r.ID, amount),
		"PAYMENT_ID": pid,
		"AMOUNT":     amount.Decimal(),
	}}
}

func (v PaymentRepo) ListForUser(ctx context.Context, rep store.Reporter, userID string) []model.Payment {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Payments.ListForUser") {
		return []model.Payment{}
	}
	return l.paymentsFor(userID)
}

// MarkPaid completes the bill if it is still pending.  Like the UPDATE it
// stands in for, a non-matching identifier is not an error.
func (v PaymentRepo) MarkPaid(ctx context.Context, rep store.Reporter, paymentID string, at time.Time) bool {
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enter(rep, "Payments.MarkPaid") {
		return false
	}
	if p, ok := l.payments[paymentID]; ok && p.Pending() {
		p.Status = model.PaymentCompleted
		p.Timestamp = at
		l.payments[paymentID] = p
	}
	return true
}

// paymentsFor returns the user's payments, newest timestamp first.
func (l *Lot) paymentsFor(userID string) []model.Payment {
	out := []model.Payment{}
	for _, p := range l.payments {
		if r, ok := l.reservations[p.ReservationID]; ok && r.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (l *Lot) nextID(prefix string) string {
	l.seq++
	return fmt.Sprintf("%s%03d", prefix, l.seq)
}

// Audit records published events.
type Audit struct {
	mu     sync.Mutex
	Events []queue.AuditEvent
}

func (a *Audit) Publish(ctx context.Context, ev queue.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Events = append(a.Events, ev)
	return nil
}

// Kinds lists the recorded event kinds in publish order.
func (a *Audit) Kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.Events))
	for _, ev := range a.Events {
		out = append(out, ev.Kind)
	}
	return out
}
