package repository

import (
	"context"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/procedure"
	"github.com/iliyamo/parking-console/internal/store"
)

// UserRepo manages USERS rows.  Updates and deletes carry the
// pending-payment guard inside their transaction; the console performs its
// own check beforehand as well.
type UserRepo struct {
	gw *store.Gateway
}

func NewUserRepo(gw *store.Gateway) *UserRepo { return &UserRepo{gw: gw} }

const (
	findUserSQL = `SELECT USER_ID, FIRST_NAME, LAST_NAME, EMAIL, PHONE_NUM, VEHICLE_NO, USER_TYPE, STATUS
		FROM USERS WHERE USER_ID = ?`
	insertUserSQL = `INSERT INTO USERS (USER_ID, FIRST_NAME, LAST_NAME, EMAIL, PHONE_NUM, VEHICLE_NO, USER_TYPE, STATUS)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'Active')`
	updateUserSQL = `UPDATE USERS SET EMAIL = ?, PHONE_NUM = ?, VEHICLE_NO = ?, USER_TYPE = ?, STATUS = ?
		WHERE USER_ID = ?`
	deleteUserSQL   = `DELETE FROM USERS WHERE USER_ID = ?`
	pendingCountSQL = `SELECT COUNT(*) AS pending_count
		FROM PAYMENT p
		JOIN RESERVATION r ON p.RES_ID = r.RES_ID
		WHERE r.USER_ID = ? AND p.PAYMENT_STATUS = 'Pending'`
)

// Find looks a user up by exact identifier.  The bool is false both when
// the user does not exist and when the lookup failed (already reported).
func (r *UserRepo) Find(ctx context.Context, rep store.Reporter, id string) (model.User, bool) {
	recs := r.gw.Fetch(ctx, rep, findUserSQL, id)
	if len(recs) == 0 {
		return model.User{}, false
	}
	rec := recs[0]
	return model.User{
		ID:        rec.String("USER_ID"),
		FirstName: rec.String("FIRST_NAME"),
		LastName:  rec.String("LAST_NAME"),
		Email:     rec.String("EMAIL"),
		Phone:     rec.String("PHONE_NUM"),
		VehicleNo: rec.String("VEHICLE_NO"),
		Type:      model.UserType(rec.String("USER_TYPE")),
		Status:    model.UserStatus(rec.String("STATUS")),
	}, true
}

// Create inserts an Active user.  Duplicate identifiers surface as the
// store's own command error.
func (r *UserRepo) Create(ctx context.Context, rep store.Reporter, u model.User) bool {
	return r.gw.Execute(ctx, rep, insertUserSQL,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.VehicleNo, string(u.Type))
}

// Update writes the editable fields and status in one statement.
func (r *UserRepo) Update(ctx context.Context, rep store.Reporter, u model.User) bool {
	return r.gw.ExecuteGuarded(ctx, rep, procedure.DeactivationGuard(u.ID, u.Status), updateUserSQL,
		u.Email, u.Phone, u.VehicleNo, string(u.Type), string(u.Status), u.ID)
}

// Delete removes the user permanently.
func (r *UserRepo) Delete(ctx context.Context, rep store.Reporter, id string) bool {
	return r.gw.ExecuteGuarded(ctx, rep, procedure.DeletionGuard(id), deleteUserSQL, id)
}

// PendingPayments counts the user's unpaid bills.  A failed query counts as
// zero, leaving the in-transaction guard to refuse the change.
func (r *UserRepo) PendingPayments(ctx context.Context, rep store.Reporter, id string) int64 {
	recs := r.gw.Fetch(ctx, rep, pendingCountSQL, id)
	if len(recs) == 0 {
		return 0
	}
	return recs[0].Int64("pending_count")
}
