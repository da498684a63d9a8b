package calendar

import (
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// DayStatus mirrors the inventory provider's per-date availability states.
type DayStatus string

const (
	StatusAvailable DayStatus = "available"
	StatusBooked    DayStatus = "booked"
	StatusBlocked   DayStatus = "blocked"
)

// Day is one calendar date of one listing as reported by the provider.
type Day struct {
	Date      time.Time
	Status    DayStatus
	Price     money.Money
	MinNights int
}

// Bookable reports whether the night can be sold.
func (d Day) Bookable() bool {
	return d.Status == StatusAvailable
}

// StayNights filters fetched days down to the billable nights of the range:
// everything in [CheckIn, CheckOut). The provider returns the check-out date
// too, which must never be billed or availability-checked.
func StayNights(days []Day, dr daterange.DateRange) []Day {
	nights := make([]Day, 0, len(days))
	for _, day := range days {
		if dr.Contains(day.Date) {
			nights = append(nights, day)
		}
	}
	return nights
}

// BlockedDates returns the dates of every non-bookable day, in input order.
func BlockedDates(days []Day) []time.Time {
	var blocked []time.Time
	for _, day := range days {
		if !day.Bookable() {
			blocked = append(blocked, daterange.Normalize(day.Date))
		}
	}
	return blocked
}
