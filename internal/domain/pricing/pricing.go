package pricing

import (
	"math"
	"sort"
	"time"

	"staybook/internal/domain/calendar"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// Config holds the fee and tax rules applied on top of nightly rates. The
// provider recomputes authoritative pricing at reservation-creation time;
// these values exist to show the guest the same numbers the provider will.
type Config struct {
	TaxRate     float64
	CleaningFee int64
	ServiceFee  int64
	// Multi-room bookings of at least RoomDiscountMin rooms get a flat
	// RoomDiscountRate off the combined total. Product rule: the threshold
	// is fixed, not a sliding per-room scale.
	RoomDiscountMin  int
	RoomDiscountRate float64
	Currency         string
}

// DefaultConfig mirrors the rules currently in production: 13% tax, no
// cleaning or service fee, 5% off at three or more rooms.
func DefaultConfig() Config {
	return Config{
		TaxRate:          0.13,
		CleaningFee:      0,
		ServiceFee:       0,
		RoomDiscountMin:  3,
		RoomDiscountRate: 0.05,
		Currency:         "USD",
	}
}

// Breakdown is the ephemeral result of an availability and price
// computation. It is derived, never stored: total always equals
// accommodation + cleaning + service + taxes.
type Breakdown struct {
	Available        bool
	Nights           int
	PricePerNight    money.Money
	Accommodation    money.Money
	CleaningFee      money.Money
	ServiceFee       money.Money
	Taxes            money.Money
	Total            money.Money
	UnavailableDates []time.Time
}

// Compute derives availability and pricing for a stay from the fetched
// calendar days. Stay-nights are [CheckIn, CheckOut): the check-out date is
// an arrival day for the next guest and is neither billed nor checked.
func (c Config) Compute(days []calendar.Day, dr daterange.DateRange) Breakdown {
	nights := calendar.StayNights(days, dr)

	var unavailable []time.Time
	var accommodation int64
	currency := c.Currency
	for _, night := range nights {
		if !night.Bookable() {
			unavailable = append(unavailable, daterange.Normalize(night.Date))
			continue
		}
		accommodation += night.Price.Amount
		if night.Price.Currency != "" {
			currency = night.Price.Currency
		}
	}
	sort.Slice(unavailable, func(i, j int) bool { return unavailable[i].Before(unavailable[j]) })

	nightsCount := len(nights)
	perNight := int64(0)
	if nightsCount > 0 {
		perNight = roundDiv(accommodation, int64(nightsCount))
	}
	taxes := roundRate(accommodation+c.CleaningFee, c.TaxRate)
	total := accommodation + c.CleaningFee + c.ServiceFee + taxes

	return Breakdown{
		Available:        len(unavailable) == 0,
		Nights:           nightsCount,
		PricePerNight:    money.Money{Amount: perNight, Currency: currency},
		Accommodation:    money.Money{Amount: accommodation, Currency: currency},
		CleaningFee:      money.Money{Amount: c.CleaningFee, Currency: currency},
		ServiceFee:       money.Money{Amount: c.ServiceFee, Currency: currency},
		Taxes:            money.Money{Amount: taxes, Currency: currency},
		Total:            money.Money{Amount: total, Currency: currency},
		UnavailableDates: unavailable,
	}
}

// CombinedTotal applies the multi-room rule to a single-room total: the
// total is multiplied by the room count and, at RoomDiscountMin rooms or
// more, reduced by the flat discount rate. Displayed and charged totals must
// agree, so every surface goes through this one function.
func (c Config) CombinedTotal(single money.Money, rooms int) money.Money {
	if rooms < 1 {
		rooms = 1
	}
	combined := single.Multiply(int64(rooms))
	if rooms >= c.RoomDiscountMin && c.RoomDiscountMin > 0 {
		combined.Amount = roundRate(combined.Amount, 1-c.RoomDiscountRate)
	}
	return combined
}

func roundRate(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}

func roundDiv(amount, by int64) int64 {
	return int64(math.Round(float64(amount) / float64(by)))
}
