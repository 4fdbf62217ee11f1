package console

import (
	"context"
	"fmt"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/queue"
)

type UsersData struct {
	Find     string             `json:"find,omitempty"`
	Found    *model.User        `json:"found,omitempty"`
	Edit     *model.User        `json:"edit,omitempty"`
	Types    []model.UserType   `json:"types"`
	Statuses []model.UserStatus `json:"statuses"`
}

func newUsersData() *UsersData {
	return &UsersData{Types: model.UserTypes(), Statuses: model.UserStatuses()}
}

// UserScreen is the user management screen with no lookup made yet.
func (c *Console) UserScreen(ctx context.Context) *Page {
	p := NewPage(UserManagement)
	p.Data = newUsersData()
	return p
}

// FindUser looks a user up by identifier.
func (c *Console) FindUser(ctx context.Context, raw string) *Page {
	p := NewPage(UserManagement)
	data := newUsersData()
	p.Data = data

	id := model.NormalizeID(raw)
	data.Find = id
	if id == "" {
		p.Info("Please enter a User ID.")
		return p
	}
	if u, ok := c.users.Find(ctx, p, id); ok {
		data.Found = &u
	} else {
		p.Warn("User not found.")
	}
	return p
}

// AddUser creates an Active user from the Add User form.
func (c *Console) AddUser(ctx context.Context, f UserForm) *Page {
	p := NewPage(UserManagement)
	p.Data = newUsersData()

	f.normalize()
	if err := validate.Struct(f); err != nil {
		p.Error(formProblem(err))
		return p
	}
	u := model.User{
		ID:        f.ID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		VehicleNo: f.VehicleNo,
		Type:      model.UserType(f.Type),
		Status:    model.UserActive,
	}
	if !c.users.Create(ctx, p, u) {
		return p
	}
	p.Success(fmt.Sprintf("User '%s %s' (%s) added successfully!", u.FirstName, u.LastName, u.ID))
	c.record(ctx, queue.KindUserAdded, u.ID, map[string]string{"type": string(u.Type)})
	return p
}

// EditUser loads a user to pre-fill the Update User form.
func (c *Console) EditUser(ctx context.Context, raw string) *Page {
	p := NewPage(UserManagement)
	data := newUsersData()
	p.Data = data

	id := model.NormalizeID(raw)
	if id == "" {
		p.Info("Please enter a User ID.")
		return p
	}
	if u, ok := c.users.Find(ctx, p, id); ok {
		data.Edit = &u
	} else {
		p.Warn("User not found. Please enter a valid User ID.")
	}
	return p
}

// UpdateUser applies the Update User form.  Deactivating a user who still
// owes money is refused here, before the store's own guard sees it.
func (c *Console) UpdateUser(ctx context.Context, raw string, f UserUpdateForm) *Page {
	p := NewPage(UserManagement)
	data := newUsersData()
	p.Data = data

	id := model.NormalizeID(raw)
	current, ok := c.users.Find(ctx, p, id)
	if !ok {
		p.Warn("User not found. Please enter a valid User ID.")
		return p
	}
	data.Edit = &current

	f.normalize()
	if err := validate.Struct(f); err != nil {
		p.Error(formProblem(err))
		return p
	}
	next := current
	next.Email = f.Email
	next.Phone = f.Phone
	next.VehicleNo = f.VehicleNo
	next.Type = model.UserType(f.Type)
	next.Status = model.UserStatus(f.Status)

	if current.Deactivates(next.Status) && c.users.PendingPayments(ctx, p, id) > 0 {
		p.Error("Cannot deactivate user. User has pending payments.")
		return p
	}
	if !c.users.Update(ctx, p, next) {
		return p
	}
	p.Success(fmt.Sprintf("User %s updated successfully!", id))
	c.record(ctx, queue.KindUserUpdated, id, map[string]string{
		"from_status": string(current.Status),
		"status":      string(next.Status),
	})
	if fresh, ok := c.users.Find(ctx, p, id); ok {
		data.Edit = &fresh
	} else {
		data.Edit = &next
	}
	return p
}

// DeleteUser removes a user permanently unless they have pending payments.
func (c *Console) DeleteUser(ctx context.Context, raw string) *Page {
	p := NewPage(UserManagement)
	p.Data = newUsersData()

	id := model.NormalizeID(raw)
	if id == "" {
		p.Info("Please enter a User ID.")
		return p
	}
	if c.users.PendingPayments(ctx, p, id) > 0 {
		p.Error("Cannot delete user. User has pending payments.")
		return p
	}
	if !c.users.Delete(ctx, p, id) {
		return p
	}
	p.Success(fmt.Sprintf("User %s deleted successfully.", id))
	c.record(ctx, queue.KindUserDeleted, id, nil)
	return p
}
