package model

import "strings"

type UserType string

const (
	UserStudent UserType = "Student"
	UserFaculty UserType = "Faculty"
	UserStaff   UserType = "Staff"
)

// UserTypes lists the selectable user types in form order.
func UserTypes() []UserType { return []UserType{UserStudent, UserFaculty, UserStaff} }

type UserStatus string

const (
	UserActive   UserStatus = "Active"
	UserInactive UserStatus = "Inactive"
)

// UserStatuses lists the selectable account states in form order.
func UserStatuses() []UserStatus { return []UserStatus{UserActive, UserInactive} }

// User mirrors a USERS row.
type User struct {
	ID        string     `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone_num"`
	VehicleNo string     `json:"vehicle_no"`
	Type      UserType   `json:"user_type"`
	Status    UserStatus `json:"status"`
}

func (u User) FullName() string { return strings.TrimSpace(u.FirstName + " " + u.LastName) }

// Deactivates reports whether moving from u to next is an Active -> Inactive
// transition, the one change guarded by the pending-payment rule.
func (u User) Deactivates(next UserStatus) bool {
	return u.Status == UserActive && next == UserInactive
}

// NormalizeID canonicalises user and vehicle identifiers the way every form
// does before touching the store.
func NormalizeID(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
