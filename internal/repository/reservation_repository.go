package repository

import (
	"context"
	"time"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/procedure"
	"github.com/iliyamo/parking-console/internal/store"
)

// ReservationRepo lists reservations and starts the two lifecycle
// procedures.  Rows are only ever created or completed by those procedures.
type ReservationRepo struct {
	gw *store.Gateway
}

func NewReservationRepo(gw *store.Gateway) *ReservationRepo { return &ReservationRepo{gw: gw} }

const (
	bookedReservationsSQL = `SELECT RES_ID, USER_ID, SPACE_ID, START_TIME, END_TIME, STATUS
		FROM RESERVATION WHERE STATUS = 'Booked' ORDER BY START_TIME ASC`
	allReservationsSQL = `SELECT RES_ID, USER_ID, SPACE_ID, START_TIME, END_TIME, STATUS
		FROM RESERVATION ORDER BY START_TIME DESC`
)

// ListBooked returns active reservations, earliest start first.
func (r *ReservationRepo) ListBooked(ctx context.Context, rep store.Reporter) []model.Reservation {
	return reservationsFrom(r.gw.Fetch(ctx, rep, bookedReservationsSQL))
}

// ListAll returns every reservation, newest start first.
func (r *ReservationRepo) ListAll(ctx context.Context, rep store.Reporter) []model.Reservation {
	return reservationsFrom(r.gw.Fetch(ctx, rep, allReservationsSQL))
}

// Book calls sp_BookReservation.  Overlap, user and space checks are the
// procedure's.
func (r *ReservationRepo) Book(ctx context.Context, rep store.Reporter, userID, spaceID string, start, end time.Time) store.Outcome {
	return r.gw.Call(ctx, rep, procedure.BookReservation, userID, spaceID, start, end)
}

// Release calls sp_ReleaseReservation.
func (r *ReservationRepo) Release(ctx context.Context, rep store.Reporter, reservationID string) store.Outcome {
	return r.gw.Call(ctx, rep, procedure.ReleaseReservation, reservationID)
}

func reservationsFrom(recs []store.Record) []model.Reservation {
	out := make([]model.Reservation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.Reservation{
			ID:      rec.String("RES_ID"),
			UserID:  rec.String("USER_ID"),
			SpaceID: rec.String("SPACE_ID"),
			Start:   rec.Time("START_TIME"),
			End:     rec.Time("END_TIME"),
			Status:  model.ReservationStatus(rec.String("STATUS")),
		})
	}
	return out
}
