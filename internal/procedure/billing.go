package procedure

import (
	"time"

	"github.com/iliyamo/parking-console/internal/model"
)

// Rates is the hourly tariff per user type.  Unknown types pay the
// student rate.
type Rates map[model.UserType]model.Money

// DefaultRates matches the tariff compiled into sp_ReleaseReservation.
func DefaultRates() Rates {
	return Rates{
		model.UserStudent: model.Rupees(20),
		model.UserFaculty: model.Rupees(40),
		model.UserStaff:   model.Rupees(30),
	}
}

func (r Rates) hourly(t model.UserType) model.Money {
	if m, ok := r[t]; ok {
		return m
	}
	return r[model.UserStudent]
}

// Bill prices a reservation released at the given moment.  Usage runs from
// start to the earlier of release and scheduled end, counted in whole
// minutes and charged per started hour, with a one-hour minimum.
func (r Rates) Bill(t model.UserType, start, end, releasedAt time.Time) (hours int64, amount model.Money) {
	until := end
	if releasedAt.Before(end) {
		until = releasedAt
	}
	minutes := int64(until.Sub(start) / time.Minute)
	hours = (minutes + 59) / 60
	if hours < 1 {
		hours = 1
	}
	return hours, model.Money(hours) * r.hourly(t)
}
