package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"staybook/internal/domain/calendar"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/cache"
	"staybook/internal/infra/provider"
)

// CalendarAPI is the slice of the provider client this service needs.
type CalendarAPI interface {
	GetCalendar(ctx context.Context, listingID string, from, to time.Time) ([]provider.CalendarDay, error)
}

// NightlyPrice is one date's price, surfaced to the booking widget.
type NightlyPrice struct {
	Date  time.Time
	Price money.Money
}

// Service caches per-listing per-range calendar snapshots. The TTL is
// deliberately short: stale availability directly risks double-booking, so
// only bursts of near-simultaneous lookups share an entry.
type Service struct {
	api    CalendarAPI
	days   *cache.TTL[string, []calendar.Day]
	logger *slog.Logger
}

func NewService(api CalendarAPI, ttl time.Duration, clock cache.Clock, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		days:   cache.NewTTL[string, []calendar.Day](ttl, clock),
		logger: logger,
	}
}

// Caches exposes the internal cache for the periodic sweeper.
func (s *Service) Caches() []interface{ Sweep() int } {
	return []interface{ Sweep() int }{s.days}
}

// Calendar returns availability and pricing for every date in [from, to]
// inclusive. refresh bypasses the cache; the widget uses it after a quote
// reveals the cached picture was stale.
func (s *Service) Calendar(ctx context.Context, listingID string, from, to time.Time, refresh bool) ([]calendar.Day, error) {
	key := cacheKey(listingID, from, to)
	if !refresh {
		if days, freshness := s.days.Get(key); freshness == cache.Fresh {
			return days, nil
		}
	}

	fetched, err := s.api.GetCalendar(ctx, listingID, from, to)
	if err != nil {
		return nil, err
	}
	days := make([]calendar.Day, 0, len(fetched))
	for _, raw := range fetched {
		date, perr := daterange.ParseDate(raw.Date)
		if perr != nil {
			s.logger.Warn("provider returned unparseable calendar date", "listing_id", listingID, "date", raw.Date)
			continue
		}
		days = append(days, calendar.Day{
			Date:      date,
			Status:    calendar.DayStatus(raw.Status),
			Price:     money.Money{Amount: raw.Price, Currency: raw.Currency},
			MinNights: raw.MinNights,
		})
	}
	s.days.Set(key, days)
	return days, nil
}

// BlockedDates splits a calendar window into the blocked-date list and the
// nightly price list the widget endpoint serves.
func (s *Service) BlockedDates(ctx context.Context, listingID string, from, to time.Time, refresh bool) ([]time.Time, []NightlyPrice, error) {
	days, err := s.Calendar(ctx, listingID, from, to, refresh)
	if err != nil {
		return nil, nil, err
	}
	blocked := calendar.BlockedDates(days)
	prices := make([]NightlyPrice, 0, len(days))
	for _, day := range days {
		if day.Bookable() {
			prices = append(prices, NightlyPrice{Date: day.Date, Price: day.Price})
		}
	}
	return blocked, prices, nil
}

func cacheKey(listingID string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s", listingID, daterange.FormatDate(from), daterange.FormatDate(to))
}
