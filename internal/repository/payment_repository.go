package repository

import (
	"context"
	"time"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/store"
)

// PaymentRepo reads bills and marks them paid.  Bills are created only by
// sp_ReleaseReservation.
type PaymentRepo struct {
	gw *store.Gateway
}

func NewPaymentRepo(gw *store.Gateway) *PaymentRepo { return &PaymentRepo{gw: gw} }

const (
	userPaymentsSQL = `SELECT
			p.PAYMENT_ID,
			p.RES_ID,
			r.SPACE_ID,
			r.START_TIME,
			r.END_TIME,
			p.AMOUNT,
			p.PAYMENT_STATUS,
			p.TIME_STAMP
		FROM PAYMENT p
		JOIN RESERVATION r ON p.RES_ID = r.RES_ID
		WHERE r.USER_ID = ?
		ORDER BY p.TIME_STAMP DESC`
	markPaidSQL = `UPDATE PAYMENT
		SET PAYMENT_STATUS = 'Completed', TIME_STAMP = ?
		WHERE PAYMENT_ID = ? AND PAYMENT_STATUS = 'Pending'`
)

// ListForUser returns the user's bills, newest first.
func (r *PaymentRepo) ListForUser(ctx context.Context, rep store.Reporter, userID string) []model.Payment {
	recs := r.gw.Fetch(ctx, rep, userPaymentsSQL, userID)
	out := make([]model.Payment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.Payment{
			ID:            rec.String("PAYMENT_ID"),
			ReservationID: rec.String("RES_ID"),
			SpaceID:       rec.String("SPACE_ID"),
			Start:         rec.Time("START_TIME"),
			End:           rec.Time("END_TIME"),
			Amount:        rec.Money("AMOUNT"),
			Status:        model.PaymentStatus(rec.String("PAYMENT_STATUS")),
			Timestamp:     rec.Time("TIME_STAMP"),
		})
	}
	return out
}

// MarkPaid completes exactly one pending bill, stamping it with at.
func (r *PaymentRepo) MarkPaid(ctx context.Context, rep store.Reporter, paymentID string, at time.Time) bool {
	return r.gw.Execute(ctx, rep, markPaidSQL, at, paymentID)
}
