package bookingwidget

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"staybook/internal/app/quote"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrCheckOutNotAfterCheckIn = errors.New("bookingwidget: check-out must follow check-in")

// State is the widget's quote lifecycle.
type State string

const (
	StateNoDates    State = "no_dates"
	StatePending    State = "pending_quote"
	StateQuoteReady State = "quote_ready"
	StateQuoteError State = "quote_error"
)

// QuoteFetcher asks the quote service for a single-room quote.
type QuoteFetcher interface {
	Quote(ctx context.Context, req quote.Request) (quote.Result, error)
}

// CalendarRefresher re-fetches a listing's calendar bypassing the cache.
// Fired in the background after a quote reveals the cached blocked-date set
// was stale.
type CalendarRefresher interface {
	Refresh(ctx context.Context, listingID listings.ListingID, from, to time.Time)
}

// Config bounds the widget.
type Config struct {
	Debounce         time.Duration
	MaxRooms         int
	MaxGuestsPerRoom int
}

func DefaultConfig() Config {
	return Config{Debounce: 300 * time.Millisecond, MaxRooms: 5, MaxGuestsPerRoom: 4}
}

// Flow keeps a date-selection UI consistent with asynchronously-discovered
// truth about availability. Any change to dates or guests debounces a quote
// re-fetch; responses racing each other are ordered by a generation counter
// so a stale response can never overwrite a fresher selection. When a quote
// reports dates unavailable, those dates are merged into the blocked set but
// the user's selection is kept: silently clearing their choice is worse UX
// than an inline error.
type Flow struct {
	cfg       Config
	listingID listings.ListingID
	fetcher   QuoteFetcher
	refresher CalendarRefresher
	rules     pricing.Config
	logger    *slog.Logger

	mu         sync.Mutex
	checkIn    time.Time
	checkOut   time.Time
	rooms      []RoomConfig
	blocked    *BlockedDateSet
	state      State
	current    *pricing.Breakdown
	lastError  string
	generation uint64
	inFlight   bool
	timer      *time.Timer
}

func NewFlow(listingID listings.ListingID, cfg Config, fetcher QuoteFetcher, refresher CalendarRefresher, rules pricing.Config, logger *slog.Logger) *Flow {
	return &Flow{
		cfg:       cfg,
		listingID: listingID,
		fetcher:   fetcher,
		refresher: refresher,
		rules:     rules,
		logger:    logger,
		rooms:     []RoomConfig{{Adults: 1}},
		blocked:   NewBlockedDateSet(),
		state:     StateNoDates,
	}
}

// SelectCheckIn sets the check-in date. Check-out auto-advances to the next
// day when it is unset or no longer strictly after the new check-in.
func (f *Flow) SelectCheckIn(ctx context.Context, date time.Time) {
	f.mu.Lock()
	f.checkIn = daterange.Normalize(date)
	if f.checkOut.IsZero() || !f.checkOut.After(f.checkIn) {
		f.checkOut = f.checkIn.AddDate(0, 0, 1)
	}
	gen := f.bumpLocked()
	f.mu.Unlock()
	f.schedule(ctx, gen)
}

// SelectCheckOut sets the check-out date, which must strictly follow
// check-in.
func (f *Flow) SelectCheckOut(ctx context.Context, date time.Time) error {
	f.mu.Lock()
	d := daterange.Normalize(date)
	if !f.checkIn.IsZero() && !d.After(f.checkIn) {
		f.mu.Unlock()
		return ErrCheckOutNotAfterCheckIn
	}
	f.checkOut = d
	gen := f.bumpLocked()
	f.mu.Unlock()
	f.schedule(ctx, gen)
	return nil
}

// ClearDates resets the selection.
func (f *Flow) ClearDates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkIn, f.checkOut = time.Time{}, time.Time{}
	f.current = nil
	f.lastError = ""
	f.state = StateNoDates
	f.generation++
	f.stopTimerLocked()
}

// AddRoom appends a room with one adult, bounded by the room limit.
func (f *Flow) AddRoom(ctx context.Context) error {
	f.mu.Lock()
	if f.cfg.MaxRooms > 0 && len(f.rooms) >= f.cfg.MaxRooms {
		f.mu.Unlock()
		return ErrTooManyRooms
	}
	f.rooms = append(f.rooms, RoomConfig{Adults: 1})
	gen := f.bumpLocked()
	f.mu.Unlock()
	f.schedule(ctx, gen)
	return nil
}

// RemoveRoom drops a room; the last room cannot be removed.
func (f *Flow) RemoveRoom(ctx context.Context, index int) error {
	f.mu.Lock()
	if index < 0 || index >= len(f.rooms) || len(f.rooms) == 1 {
		f.mu.Unlock()
		return ErrNoSuchRoom
	}
	f.rooms = append(f.rooms[:index], f.rooms[index+1:]...)
	gen := f.bumpLocked()
	f.mu.Unlock()
	f.schedule(ctx, gen)
	return nil
}

// SetRoomOccupants updates one room's occupants within the configured
// bounds.
func (f *Flow) SetRoomOccupants(ctx context.Context, index, adults, children int) error {
	f.mu.Lock()
	if index < 0 || index >= len(f.rooms) {
		f.mu.Unlock()
		return ErrNoSuchRoom
	}
	room := RoomConfig{Adults: adults, Children: children}
	if err := validateRoom(room, f.cfg.MaxGuestsPerRoom); err != nil {
		f.mu.Unlock()
		return err
	}
	f.rooms[index] = room
	gen := f.bumpLocked()
	f.mu.Unlock()
	f.schedule(ctx, gen)
	return nil
}

// TotalGuests sums occupants across rooms; this is the guest count sent
// with quote requests.
func (f *Flow) TotalGuests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalGuestsLocked()
}

// Rooms returns a copy of the current room configuration.
func (f *Flow) Rooms() []RoomConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RoomConfig(nil), f.rooms...)
}

// State returns the current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Quote returns the held quote, nil unless the state is quote_ready.
func (f *Flow) Quote() *pricing.Breakdown {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil
	}
	snapshot := *f.current
	return &snapshot
}

// LastError returns the reason for the most recent quote failure.
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

// BlockedDates returns the locally known blocked dates.
func (f *Flow) BlockedDates() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocked.Dates()
}

// SeedBlockedDates loads the calendar-derived blocked set, replacing local
// knowledge.
func (f *Flow) SeedBlockedDates(dates []time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocked.Replace(dates)
}

// CanReserve gates the checkout button: a quote must be held and no fetch
// may be in flight.
func (f *Flow) CanReserve() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == StateQuoteReady && f.current != nil && !f.inFlight
}

// DisplayTotal is the combined, discount-adjusted total for the configured
// room count. The same rule runs wherever the chargeable total is computed,
// so display and charge always agree.
func (f *Flow) DisplayTotal() money.Money {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return money.Money{}
	}
	return f.rules.CombinedTotal(f.current.Total, len(f.rooms))
}

// RefreshNow skips the debounce and fetches immediately. Used for the
// explicit "try again" action.
func (f *Flow) RefreshNow(ctx context.Context) {
	f.mu.Lock()
	gen := f.bumpLocked()
	f.stopTimerLocked()
	f.mu.Unlock()
	if gen != 0 {
		f.fetch(ctx, gen)
	}
}

// bumpLocked invalidates any in-flight fetch and moves the widget into the
// pending state. Returns 0 when no dates are selected and nothing should be
// fetched.
func (f *Flow) bumpLocked() uint64 {
	f.generation++
	if f.checkIn.IsZero() || f.checkOut.IsZero() {
		f.state = StateNoDates
		return 0
	}
	f.state = StatePending
	return f.generation
}

func (f *Flow) schedule(ctx context.Context, gen uint64) {
	if gen == 0 {
		return
	}
	f.mu.Lock()
	f.stopTimerLocked()
	if f.cfg.Debounce <= 0 {
		f.mu.Unlock()
		f.fetch(ctx, gen)
		return
	}
	f.timer = time.AfterFunc(f.cfg.Debounce, func() {
		f.fetch(ctx, gen)
	})
	f.mu.Unlock()
}

func (f *Flow) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Flow) fetch(ctx context.Context, gen uint64) {
	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		return
	}
	f.inFlight = true
	req := quote.Request{
		ListingID: f.listingID,
		CheckIn:   f.checkIn,
		CheckOut:  f.checkOut,
		Guests:    f.totalGuestsLocked(),
	}
	f.mu.Unlock()

	result, err := f.fetcher.Quote(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		// A newer selection superseded this fetch; drop the response.
		f.logger.Debug("discarding superseded quote response", "listing_id", f.listingID, "generation", gen)
		return
	}
	f.inFlight = false

	switch {
	case err != nil:
		f.state = StateQuoteError
		f.current = nil
		f.lastError = "quote_failed"
		f.logger.Warn("quote fetch failed", "listing_id", f.listingID, "error", err)
	case !result.Available:
		// Merge newly discovered conflicts, keep the user's selection, and
		// refresh the full calendar in the background so the next attempt
		// sees a less stale picture.
		f.state = StateQuoteError
		f.current = nil
		f.lastError = result.Reason
		if added := f.blocked.Merge(result.UnavailableDates); added > 0 {
			f.logger.Info("learned new blocked dates from quote", "listing_id", f.listingID, "added", added)
		}
		if f.refresher != nil && len(result.UnavailableDates) > 0 {
			from, to := f.checkIn, f.checkOut
			// The refresh must outlive the request-scoped ctx that carried
			// the quote.
			go f.refresher.Refresh(context.WithoutCancel(ctx), f.listingID, from, to)
		}
	default:
		f.state = StateQuoteReady
		f.current = result.Quote
		f.lastError = ""
	}
}

func (f *Flow) totalGuestsLocked() int {
	total := 0
	for _, r := range f.rooms {
		total += r.Occupancy()
	}
	return total
}
