package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/queue"
)

type BillingData struct {
	UserID   string          `json:"user_id"`
	User     *model.User     `json:"user,omitempty"`
	Pending  []model.Payment `json:"pending"`
	History  []model.Payment `json:"history"`
	TotalDue model.Money     `json:"total_due"`
}

// BillingScreen lists a user's bills split into pending and history.  An
// empty identifier shows only the lookup form.
func (c *Console) BillingScreen(ctx context.Context, rawUser string) *Page {
	p := NewPage(Billing)
	data := &BillingData{UserID: model.NormalizeID(rawUser), Pending: []model.Payment{}, History: []model.Payment{}}
	p.Data = data
	if data.UserID != "" {
		c.fillBilling(ctx, p, data)
	}
	return p
}

// Pay marks one of the user's pending bills as paid.  The bill must be in
// the user's pending list as it stands now.
func (c *Console) Pay(ctx context.Context, rawUser, paymentID string) *Page {
	p := NewPage(Billing)
	data := &BillingData{UserID: model.NormalizeID(rawUser), Pending: []model.Payment{}, History: []model.Payment{}}
	p.Data = data
	if data.UserID == "" {
		p.Info("Please enter a User ID.")
		return p
	}
	c.pay(ctx, p, data.UserID, strings.TrimSpace(paymentID))
	c.fillBilling(ctx, p, data)
	return p
}

func (c *Console) pay(ctx context.Context, p *Page, userID, paymentID string) {
	if paymentID == "" {
		p.Error("Please select a bill to pay.")
		return
	}
	pending, _ := model.SplitPayments(c.payments.ListForUser(ctx, p, userID))
	var bill *model.Payment
	for i := range pending {
		if pending[i].ID == paymentID {
			bill = &pending[i]
			break
		}
	}
	if bill == nil {
		p.Error(fmt.Sprintf("Payment %s is not a pending bill for user %s.", paymentID, userID))
		return
	}
	if !c.payments.MarkPaid(ctx, p, paymentID, c.now()) {
		p.Error("Failed to process payment.")
		return
	}
	p.Success(fmt.Sprintf("Payment %s marked as completed!", paymentID))
	c.record(ctx, queue.KindPaymentCompleted, userID, map[string]string{
		"payment_id":     paymentID,
		"reservation_id": bill.ReservationID,
		"amount":         bill.Amount.Decimal(),
	})
}

func (c *Console) fillBilling(ctx context.Context, p *Page, data *BillingData) {
	u, ok := c.users.Find(ctx, p, data.UserID)
	if !ok {
		p.Error("User not found.")
		return
	}
	data.User = &u

	all := c.payments.ListForUser(ctx, p, data.UserID)
	if len(all) == 0 {
		p.Info("No payment records found for this user.")
		return
	}
	pending, history := model.SplitPayments(all)
	if pending != nil {
		data.Pending = pending
	}
	if history != nil {
		data.History = history
	}
	data.TotalDue = model.TotalDue(pending)
	if len(pending) == 0 {
		p.Success("No pending payments.")
	}
	if len(history) == 0 {
		p.Info("No payment history found.")
	}
}
