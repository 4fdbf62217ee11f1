package procedure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/store"
)

// Names under which the database exposes the procedures.
const (
	BookReservation    = "sp_BookReservation"
	ReleaseReservation = "sp_ReleaseReservation"
)

const (
	lockUserSQL  = `SELECT STATUS FROM USERS WHERE USER_ID = ? FOR UPDATE`
	lockSpaceSQL = `SELECT STATUS FROM PARKING_SPACE WHERE SPACE_ID = ? FOR UPDATE`
	overlapSQL   = `SELECT COUNT(*) FROM RESERVATION
		WHERE SPACE_ID = ? AND STATUS = 'Booked' AND START_TIME < ? AND END_TIME > ?`
	insertReservationSQL = `INSERT INTO RESERVATION (RES_ID, USER_ID, SPACE_ID, START_TIME, END_TIME, STATUS)
		VALUES (?, ?, ?, ?, ?, 'Booked')`
	occupySpaceSQL     = `UPDATE PARKING_SPACE SET STATUS = 'Occupied' WHERE SPACE_ID = ?`
	lockReservationSQL = `SELECT r.SPACE_ID, r.STATUS, r.START_TIME, r.END_TIME, u.USER_TYPE
		FROM RESERVATION r JOIN USERS u ON u.USER_ID = r.USER_ID
		WHERE r.RES_ID = ? FOR UPDATE`
	completeReservationSQL = `UPDATE RESERVATION SET STATUS = 'Completed' WHERE RES_ID = ?`
	insertPaymentSQL       = `INSERT INTO PAYMENT (PAYMENT_ID, RES_ID, AMOUNT, PAYMENT_STATUS, TIME_STAMP)
		VALUES (?, ?, ?, 'Pending', ?)`
	freeSpaceSQL = `UPDATE PARKING_SPACE SET STATUS = 'Available' WHERE SPACE_ID = ?`
)

// Service implements the booking and release procedures in-process.
type Service struct {
	rates Rates
	now   func() time.Time
	newID func() string
}

// NewService returns a Service billing with rates.  A nil map uses
// DefaultRates.
func NewService(rates Rates) *Service {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Service{rates: rates, now: time.Now, newID: uuid.NewString}
}

// WithClock replaces the release clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDs replaces the identifier generator.
func (s *Service) WithIDs(next func() string) *Service {
	s.newID = next
	return s
}

// Register installs both procedures on the gateway so Call runs them here
// instead of in the database.
func (s *Service) Register(g *store.Gateway) {
	g.Register(BookReservation, s.Book)
	g.Register(ReleaseReservation, s.Release)
}

// Book implements sp_BookReservation(userId, spaceId, start, end).
func (s *Service) Book(ctx context.Context, tx *sql.Tx, args ...any) (store.Record, error) {
	if len(args) != 4 {
		return nil, reject(ErrBadArguments, "%s expects 4 arguments, got %d.", BookReservation, len(args))
	}
	userID, ok1 := args[0].(string)
	spaceID, ok2 := args[1].(string)
	start, ok3 := args[2].(time.Time)
	end, ok4 := args[3].(time.Time)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, reject(ErrBadArguments, "%s expects (user id, space id, start, end).", BookReservation)
	}
	if !end.After(start) {
		return nil, reject(ErrInvalidWindow, "End time must be after start time.")
	}

	var userStatus string
	if err := tx.QueryRowContext(ctx, lockUserSQL, userID).Scan(&userStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reject(ErrUserNotFound, "User %s does not exist.", userID)
		}
		return nil, err
	}
	if model.UserStatus(userStatus) == model.UserInactive {
		return nil, reject(ErrUserInactive, "User %s is inactive and cannot make reservations.", userID)
	}

	var spaceStatus string
	if err := tx.QueryRowContext(ctx, lockSpaceSQL, spaceID).Scan(&spaceStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reject(ErrSpaceNotFound, "Parking space %s does not exist.", spaceID)
		}
		return nil, err
	}

	var overlaps int64
	if err := tx.QueryRowContext(ctx, overlapSQL, spaceID, end, start).Scan(&overlaps); err != nil {
		return nil, err
	}
	if overlaps > 0 {
		return nil, reject(ErrOverlap, "Parking space %s is already booked for an overlapping period.", spaceID)
	}
	if model.SpaceStatus(spaceStatus) != model.SpaceAvailable {
		return nil, reject(ErrSpaceUnavailable, "Parking space %s is not available.", spaceID)
	}

	resID := s.newID()
	if _, err := tx.ExecContext(ctx, insertReservationSQL, resID, userID, spaceID, start, end); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, occupySpaceSQL, spaceID); err != nil {
		return nil, err
	}
	return store.Record{
		"message": fmt.Sprintf("Reservation %s booked: space %s for user %s.", resID, spaceID, userID),
		"RES_ID":  resID,
	}, nil
}

// Release implements sp_ReleaseReservation(reservationId): it completes the
// reservation, writes exactly one pending payment and frees the space.
func (s *Service) Release(ctx context.Context, tx *sql.Tx, args ...any) (store.Record, error) {
	if len(args) != 1 {
		return nil, reject(ErrBadArguments, "%s expects 1 argument, got %d.", ReleaseReservation, len(args))
	}
	resID, ok := args[0].(string)
	if !ok {
		return nil, reject(ErrBadArguments, "%s expects a reservation id.", ReleaseReservation)
	}

	var (
		spaceID, status, userType string
		start, end                time.Time
	)
	err := tx.QueryRowContext(ctx, lockReservationSQL, resID).Scan(&spaceID, &status, &start, &end, &userType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reject(ErrReservationNotFound, "Reservation %s does not exist.", resID)
		}
		return nil, err
	}
	if model.ReservationStatus(status) != model.ReservationBooked {
		return nil, reject(ErrReservationNotBooked, "Reservation %s is not active.", resID)
	}

	at := s.now()
	_, amount := s.rates.Bill(model.UserType(userType), start, end, at)

	if _, err := tx.ExecContext(ctx, completeReservationSQL, resID); err != nil {
		return nil, err
	}
	paymentID := s.newID()
	if _, err := tx.ExecContext(ctx, insertPaymentSQL, paymentID, resID, amount.Decimal(), at); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, freeSpaceSQL, spaceID); err != nil {
		return nil, err
	}
	return store.Record{
		"message":    fmt.Sprintf("Reservation %s released. Bill of %s generated.", resID, amount),
		"PAYMENT_ID": paymentID,
		"AMOUNT":     amount.Decimal(),
	}, nil
}
