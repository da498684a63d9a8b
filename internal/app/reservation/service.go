package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/quote"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/provider"
)

var (
	ErrNotFound = errors.New("reservation: not found")
	// ErrPriceDowngrade enforces the self-service modification rule: the new
	// total must be greater than or equal to the original. Product decision,
	// preserved exactly.
	ErrPriceDowngrade   = errors.New("reservation: modification must be same price or higher")
	ErrNotModifiable    = errors.New("reservation: no longer modifiable")
	ErrDatesUnavailable = errors.New("reservation: requested dates are unavailable")
)

// Status values accepted by the provider.
type Status string

const (
	StatusInquiry   Status = "inquiry"
	StatusReserved  Status = "reserved"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ProviderAPI is the slice of the provider client this service needs.
type ProviderAPI interface {
	CreateReservation(ctx context.Context, req provider.CreateReservationRequest) (provider.Reservation, error)
	UpdateReservation(ctx context.Context, confirmationCode string, req provider.CreateReservationRequest) (provider.Reservation, error)
	CancelReservation(ctx context.Context, confirmationCode string) (provider.Reservation, error)
	ListReservations(ctx context.Context, filter provider.ReservationFilter) ([]provider.Reservation, error)
}

// QuoteSource reprices a stay, used by the modification check.
type QuoteSource interface {
	Quote(ctx context.Context, req quote.Request) (quote.Result, error)
}

// Events publishes reservation lifecycle events. A nil Events disables
// publishing.
type Events interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

type Guest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type PriceSummary struct {
	Accommodation money.Money
	CleaningFee   money.Money
	Taxes         money.Money
	Total         money.Money
}

// Reservation is the provider's view of a booking plus the self-service
// flags the account pages render.
type Reservation struct {
	ConfirmationCode string
	ListingID        listings.ListingID
	CheckIn          time.Time
	CheckOut         time.Time
	Status           Status
	Guest            Guest
	GuestsCount      int
	Price            PriceSummary
	CanModify        bool
	CanCancel        bool
}

type CreateParams struct {
	ListingID        listings.ListingID
	CheckIn          time.Time
	CheckOut         time.Time
	Guest            Guest
	GuestsCount      int
	Status           Status
	Notes            string
	PaymentReference string
	QuoteID          string
}

// Service creates and manages reservations against the provider, which owns
// all reservation state. Creation is not idempotent at this layer, so it is
// never auto-retried; duplicate submission is the caller's problem to
// prevent.
type Service struct {
	api    ProviderAPI
	quotes QuoteSource
	events Events
	source string
	now    func() time.Time
	logger *slog.Logger
}

func NewService(api ProviderAPI, quotes QuoteSource, events Events, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		quotes: quotes,
		events: events,
		source: "website",
		now:    time.Now,
		logger: logger,
	}
}

// Create submits the reservation. The provider assigns the confirmation
// code and recomputes authoritative pricing; whatever quote the guest
// accepted is only echoed for reconciliation.
func (s *Service) Create(ctx context.Context, params CreateParams) (Reservation, error) {
	created, err := s.api.CreateReservation(ctx, provider.CreateReservationRequest{
		ListingID:        string(params.ListingID),
		CheckIn:          daterange.FormatDate(params.CheckIn),
		CheckOut:         daterange.FormatDate(params.CheckOut),
		Guest:            mapGuestOut(params.Guest),
		GuestsCount:      params.GuestsCount,
		Status:           string(params.Status),
		Source:           s.source,
		Notes:            params.Notes,
		PaymentReference: params.PaymentReference,
		QuoteID:          params.QuoteID,
	})
	if err != nil {
		return Reservation{}, err
	}

	mapped := s.mapReservation(created)
	s.publish(ctx, "reservation.created", mapped)
	s.logger.Info("reservation created",
		"confirmation_code", mapped.ConfirmationCode,
		"listing_id", mapped.ListingID,
		"status", mapped.Status,
	)
	return mapped, nil
}

// LookupByConfirmation finds one reservation by confirmation code and the
// guest's last name (case-insensitive).
func (s *Service) LookupByConfirmation(ctx context.Context, code, lastName string) (Reservation, error) {
	results, err := s.api.ListReservations(ctx, provider.ReservationFilter{ConfirmationCode: code})
	if err != nil {
		return Reservation{}, err
	}
	for _, raw := range results {
		if strings.EqualFold(strings.TrimSpace(raw.Guest.LastName), strings.TrimSpace(lastName)) {
			return s.mapReservation(raw), nil
		}
	}
	return Reservation{}, ErrNotFound
}

// LookupByEmail lists every reservation for a guest email.
func (s *Service) LookupByEmail(ctx context.Context, email string) ([]Reservation, error) {
	results, err := s.api.ListReservations(ctx, provider.ReservationFilter{GuestEmail: email})
	if err != nil {
		return nil, err
	}
	mapped := make([]Reservation, 0, len(results))
	for _, raw := range results {
		mapped = append(mapped, s.mapReservation(raw))
	}
	return mapped, nil
}

// ModificationCheck prices the proposed dates and reports whether the
// switch is allowed.
type ModificationCheck struct {
	Allowed  bool
	NewTotal money.Money
	OldTotal money.Money
	Reason   string
}

// CheckModification verifies a proposed date change against the
// no-downgrade rule without mutating anything.
func (s *Service) CheckModification(ctx context.Context, code, lastName string, checkIn, checkOut time.Time) (ModificationCheck, error) {
	current, err := s.LookupByConfirmation(ctx, code, lastName)
	if err != nil {
		return ModificationCheck{}, err
	}
	if !current.CanModify {
		return ModificationCheck{}, ErrNotModifiable
	}

	result, err := s.quotes.Quote(ctx, quote.Request{
		ListingID: current.ListingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    current.GuestsCount,
	})
	if err != nil {
		return ModificationCheck{}, err
	}
	if !result.Available || result.Quote == nil {
		return ModificationCheck{Allowed: false, OldTotal: current.Price.Total, Reason: result.Reason}, nil
	}
	delta, err := result.Quote.Total.Sub(current.Price.Total)
	if err != nil {
		return ModificationCheck{}, fmt.Errorf("reservation: compare totals: %w", err)
	}
	if delta.Amount < 0 {
		return ModificationCheck{
			Allowed:  false,
			NewTotal: result.Quote.Total,
			OldTotal: current.Price.Total,
			Reason:   "price_downgrade",
		}, nil
	}
	return ModificationCheck{Allowed: true, NewTotal: result.Quote.Total, OldTotal: current.Price.Total}, nil
}

// Modify applies a date change after re-running the modification check.
func (s *Service) Modify(ctx context.Context, code, lastName string, checkIn, checkOut time.Time) (Reservation, error) {
	check, err := s.CheckModification(ctx, code, lastName, checkIn, checkOut)
	if err != nil {
		return Reservation{}, err
	}
	if !check.Allowed {
		if check.Reason == "price_downgrade" {
			return Reservation{}, ErrPriceDowngrade
		}
		return Reservation{}, ErrDatesUnavailable
	}
	current, err := s.LookupByConfirmation(ctx, code, lastName)
	if err != nil {
		return Reservation{}, err
	}
	updated, err := s.api.UpdateReservation(ctx, code, provider.CreateReservationRequest{
		ListingID:   string(current.ListingID),
		CheckIn:     daterange.FormatDate(checkIn),
		CheckOut:    daterange.FormatDate(checkOut),
		Guest:       mapGuestOut(current.Guest),
		GuestsCount: current.GuestsCount,
		Status:      string(current.Status),
		Source:      s.source,
	})
	if err != nil {
		return Reservation{}, err
	}
	mapped := s.mapReservation(updated)
	s.publish(ctx, "reservation.modified", mapped)
	return mapped, nil
}

// Cancel cancels a reservation the guest is allowed to cancel.
func (s *Service) Cancel(ctx context.Context, code, lastName string) (Reservation, error) {
	current, err := s.LookupByConfirmation(ctx, code, lastName)
	if err != nil {
		return Reservation{}, err
	}
	if !current.CanCancel {
		return Reservation{}, ErrNotModifiable
	}
	cancelled, err := s.api.CancelReservation(ctx, code)
	if err != nil {
		return Reservation{}, err
	}
	mapped := s.mapReservation(cancelled)
	s.publish(ctx, "reservation.cancelled", mapped)
	return mapped, nil
}

func (s *Service) publish(ctx context.Context, eventType string, r Reservation) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, r.ConfirmationCode, r); err != nil {
		// Event fan-out is best effort; the reservation itself succeeded.
		s.logger.Warn("reservation event publish failed", "event", eventType, "confirmation_code", r.ConfirmationCode, "error", err)
	}
}

func (s *Service) mapReservation(raw provider.Reservation) Reservation {
	checkIn, _ := daterange.ParseDate(raw.CheckIn)
	checkOut, _ := daterange.ParseDate(raw.CheckOut)
	status := Status(raw.Status)
	currency := raw.Money.Currency

	r := Reservation{
		ConfirmationCode: raw.ConfirmationCode,
		ListingID:        listings.ListingID(raw.ListingID),
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Status:           status,
		Guest: Guest{
			FirstName: raw.Guest.FirstName,
			LastName:  raw.Guest.LastName,
			Email:     raw.Guest.Email,
			Phone:     raw.Guest.Phone,
		},
		GuestsCount: raw.GuestsCount,
		Price: PriceSummary{
			Accommodation: money.Money{Amount: raw.Money.Accommodation, Currency: currency},
			CleaningFee:   money.Money{Amount: raw.Money.CleaningFee, Currency: currency},
			Taxes:         money.Money{Amount: raw.Money.Taxes, Currency: currency},
			Total:         money.Money{Amount: raw.Money.Total, Currency: currency},
		},
	}

	upcoming := checkIn.After(daterange.Normalize(s.now()))
	active := status == StatusConfirmed || status == StatusReserved || status == StatusInquiry
	r.CanModify = upcoming && active
	r.CanCancel = upcoming && active
	return r
}

func mapGuestOut(g Guest) provider.Guest {
	return provider.Guest{
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Email:     g.Email,
		Phone:     g.Phone,
	}
}
