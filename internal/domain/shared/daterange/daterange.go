package daterange

import (
	"errors"
	"time"
)

var (
	ErrCheckOutBeforeCheckIn = errors.New("daterange: check-out must not precede check-in")
	ErrZeroDate              = errors.New("daterange: check-in and check-out are required")
)

// DateRange is a stay window: check-in inclusive, check-out exclusive.
// The check-out date is an arrival day for the next guest and is never a
// stay-night.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New normalizes both dates to UTC midnight and validates ordering. A range
// with CheckIn == CheckOut is legal and has zero nights; quote computation
// must tolerate it.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return DateRange{}, ErrZeroDate
	}
	dr := DateRange{CheckIn: Normalize(checkIn), CheckOut: Normalize(checkOut)}
	if dr.CheckOut.Before(dr.CheckIn) {
		return DateRange{}, ErrCheckOutBeforeCheckIn
	}
	return dr, nil
}

// Nights returns the count of billable stay-nights in the range.
func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn) / (24 * time.Hour))
}

// StayNights enumerates every billable date: [CheckIn, CheckOut).
func (dr DateRange) StayNights() []time.Time {
	nights := dr.Nights()
	if nights <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, nights)
	for d := dr.CheckIn; d.Before(dr.CheckOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Contains reports whether date falls on a stay-night of the range.
func (dr DateRange) Contains(date time.Time) bool {
	d := Normalize(date)
	return !d.Before(dr.CheckIn) && d.Before(dr.CheckOut)
}

// Normalize truncates a timestamp to UTC midnight so calendar dates compare
// by equality regardless of the zone they were parsed in.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

const dateLayout = "2006-01-02"

// FormatDate renders a date the way the provider's wire format expects it.
func FormatDate(t time.Time) string {
	return Normalize(t).Format(dateLayout)
}

// ParseDate parses a provider-format date into UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
