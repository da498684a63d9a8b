package money

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: currency must be a 3-letter code")
	ErrCurrencyMismatch = errors.New("money: cannot combine different currencies")
)

// Money is an amount in whole currency units. The inventory provider quotes
// nightly rates and totals as whole-unit integers, so no minor-unit scaling
// exists anywhere in this codebase.
type Money struct {
	Amount   int64
	Currency string
}

// New validates and uppercases the currency code.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must is New for fixtures; it panics on an invalid currency.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add sums two same-currency amounts.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m minus other. A negative result is legal; the reservation
// modification check reads the sign to detect a downgrade.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply scales the amount, as in combined multi-room totals.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// IsZero reports a zero amount.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
