package model

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
)

// Payment is a PAYMENT row joined with the reservation it bills, the shape
// shown on the billing screen.
type Payment struct {
	ID            string        `json:"payment_id"`
	ReservationID string        `json:"res_id"`
	SpaceID       string        `json:"space_id"`
	Start         time.Time     `json:"start_time"`
	End           time.Time     `json:"end_time"`
	Amount        Money         `json:"amount"`
	Status        PaymentStatus `json:"payment_status"`
	Timestamp     time.Time     `json:"time_stamp"`
}

func (p Payment) Pending() bool { return p.Status == PaymentPending }

// SplitPayments separates pending bills from history, keeping order.
func SplitPayments(all []Payment) (pending, history []Payment) {
	for _, p := range all {
		if p.Pending() {
			pending = append(pending, p)
		} else {
			history = append(history, p)
		}
	}
	return pending, history
}

// TotalDue sums the amounts of the given payments.
func TotalDue(ps []Payment) Money {
	var total Money
	for _, p := range ps {
		total += p.Amount
	}
	return total
}
