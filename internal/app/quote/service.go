package quote

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/domain/calendar"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

// ListingSource resolves listings, normally the cached catalog.
type ListingSource interface {
	Get(ctx context.Context, id listings.ListingID) (listings.Listing, error)
}

// CalendarSource resolves calendar windows, normally the cached calendar
// service.
type CalendarSource interface {
	Calendar(ctx context.Context, listingID string, from, to time.Time, refresh bool) ([]calendar.Day, error)
}

// Request asks for a price/availability quote for one room.
type Request struct {
	ListingID listings.ListingID
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
}

// ListingInfo echoes listing identity back to the UI regardless of the
// availability outcome, so an unavailable response can still render the
// property header and true capacity.
type ListingInfo struct {
	ID        listings.ListingID
	Title     string
	MaxGuests int
}

// Result is a structured outcome, not an error: expected negatives
// (capacity exceeded, dates unavailable) are values the UI renders a
// recovery action for.
type Result struct {
	Available        bool
	Listing          ListingInfo
	Quote            *pricing.Breakdown
	UnavailableDates []time.Time
	Reason           string
}

const (
	ReasonCapacityExceeded = "guests_exceed_capacity"
	ReasonDatesUnavailable = "dates_unavailable"
)

// Service orchestrates listing lookup, calendar fetch and the pricing
// calculator into one quote.
type Service struct {
	listings  ListingSource
	calendars CalendarSource
	rules     pricing.Config
	logger    *slog.Logger
}

func NewService(listings ListingSource, calendars CalendarSource, rules pricing.Config, logger *slog.Logger) *Service {
	return &Service{listings: listings, calendars: calendars, rules: rules, logger: logger}
}

// Rules exposes the pricing rules so the combined multi-room total is
// computed from the same configuration everywhere.
func (s *Service) Rules() pricing.Config {
	return s.rules
}

// Quote computes a quote for the request. Capacity is validated before any
// calendar fetch: an over-capacity request costs zero provider calls.
func (s *Service) Quote(ctx context.Context, req Request) (Result, error) {
	listing, err := s.listings.Get(ctx, req.ListingID)
	if err != nil {
		return Result{}, err
	}
	info := ListingInfo{ID: listing.ID, Title: listing.Title, MaxGuests: listing.Accommodates}

	if req.Guests > listing.Accommodates {
		return Result{Available: false, Listing: info, Reason: ReasonCapacityExceeded}, nil
	}

	dr, err := daterange.New(req.CheckIn, req.CheckOut)
	if err != nil {
		return Result{}, err
	}

	days, err := s.calendars.Calendar(ctx, string(listing.ID), dr.CheckIn, dr.CheckOut, false)
	if err != nil {
		return Result{}, err
	}

	breakdown := s.rules.Compute(days, dr)
	if !breakdown.Available {
		s.logger.Info("quote rejected for unavailable dates",
			"listing_id", listing.ID,
			"check_in", daterange.FormatDate(dr.CheckIn),
			"check_out", daterange.FormatDate(dr.CheckOut),
			"conflicts", len(breakdown.UnavailableDates),
		)
		return Result{
			Available:        false,
			Listing:          info,
			UnavailableDates: breakdown.UnavailableDates,
			Reason:           ReasonDatesUnavailable,
		}, nil
	}
	return Result{Available: true, Listing: info, Quote: &breakdown}, nil
}
