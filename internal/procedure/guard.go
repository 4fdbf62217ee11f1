package procedure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/store"
)

const pendingForUserSQL = `SELECT COUNT(*) FROM PAYMENT p
	JOIN RESERVATION r ON p.RES_ID = r.RES_ID
	WHERE r.USER_ID = ? AND p.PAYMENT_STATUS = 'Pending'`

// DeactivationGuard is the in-transaction twin of trg_BeforeUserDeactivate.
// It only fires when the stored status is Active and next is Inactive.
func DeactivationGuard(userID string, next model.UserStatus) store.Guard {
	return func(ctx context.Context, tx *sql.Tx) error {
		if next != model.UserInactive {
			return nil
		}
		var current string
		if err := tx.QueryRowContext(ctx, lockUserSQL, userID).Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if model.UserStatus(current) != model.UserActive {
			return nil
		}
		return refuseIfPending(ctx, tx, userID, "Cannot deactivate user. User has pending payments.")
	}
}

// DeletionGuard is the in-transaction twin of trg_BeforeUserDelete.
func DeletionGuard(userID string) store.Guard {
	return func(ctx context.Context, tx *sql.Tx) error {
		return refuseIfPending(ctx, tx, userID, "Cannot delete user. User has pending payments.")
	}
}

func refuseIfPending(ctx context.Context, tx *sql.Tx, userID, msg string) error {
	var n int64
	if err := tx.QueryRowContext(ctx, pendingForUserSQL, userID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return reject(ErrPendingPayments, "%s", msg)
	}
	return nil
}
