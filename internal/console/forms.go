package console

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/parking-console/internal/model"
)

var validate = validator.New()

// UserForm is the Add User form.
type UserForm struct {
	ID        string `form:"user_id" json:"user_id" validate:"required,alphanum"`
	FirstName string `form:"first_name" json:"first_name" validate:"required"`
	LastName  string `form:"last_name" json:"last_name" validate:"required"`
	Email     string `form:"email" json:"email" validate:"required"`
	Phone     string `form:"phone_num" json:"phone_num" validate:"required"`
	VehicleNo string `form:"vehicle_no" json:"vehicle_no" validate:"required"`
	Type      string `form:"user_type" json:"user_type" validate:"required,oneof=Student Faculty Staff"`
}

// normalize canonicalises the identifiers and trims contact details.  Names
// are stored as typed.
func (f *UserForm) normalize() {
	f.ID = model.NormalizeID(f.ID)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.VehicleNo = model.NormalizeID(f.VehicleNo)
	f.Type = strings.TrimSpace(f.Type)
}

// UserUpdateForm carries the fields the Update User form may change.
type UserUpdateForm struct {
	Email     string `form:"email" json:"email" validate:"required"`
	Phone     string `form:"phone_num" json:"phone_num" validate:"required"`
	VehicleNo string `form:"vehicle_no" json:"vehicle_no" validate:"required"`
	Type      string `form:"user_type" json:"user_type" validate:"required,oneof=Student Faculty Staff"`
	Status    string `form:"status" json:"status" validate:"required,oneof=Active Inactive"`
}

func (f *UserUpdateForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.VehicleNo = model.NormalizeID(f.VehicleNo)
	f.Type = strings.TrimSpace(f.Type)
	f.Status = strings.TrimSpace(f.Status)
}

// formProblem turns a validation failure into the single notice shown to
// the operator.  Missing fields win over bad choices.
func formProblem(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return "Please fill out all fields."
		}
	}
	fe := ve[0]
	if fe.Tag() == "alphanum" {
		return "User ID may only contain letters and digits."
	}
	return fmt.Sprintf("%s must be one of %s.", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
}

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// BookingForm is the Make Reservation form.  Dates and times of day are
// entered separately and combined in the server's local zone.
type BookingForm struct {
	UserID    string `form:"user_id" json:"user_id"`
	SpaceID   string `form:"space_id" json:"space_id"`
	StartDate string `form:"start_date" json:"start_date"`
	StartTime string `form:"start_time" json:"start_time"`
	EndDate   string `form:"end_date" json:"end_date"`
	EndTime   string `form:"end_time" json:"end_time"`
}

// DefaultBookingForm pre-fills today's date with a 09:00 to 17:00 window.
func DefaultBookingForm(today time.Time) BookingForm {
	d := today.Format(DateLayout)
	return BookingForm{StartDate: d, StartTime: "09:00", EndDate: d, EndTime: "17:00"}
}

// Window combines the form's dates and times.
func (f BookingForm) Window() (start, end time.Time, err error) {
	if start, err = combine(f.StartDate, f.StartTime); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	if end, err = combine(f.EndDate, f.EndTime); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

func combine(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, time.Local)
	if err == nil {
		return t, nil
	}
	// Some browsers submit seconds.
	return time.ParseInLocation(DateLayout+" "+ClockLayout+":05", date+" "+clock, time.Local)
}
