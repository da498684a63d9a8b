package reservation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/quote"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/provider"
)

type fakeProvider struct {
	reservations []provider.Reservation
	createCalls  int
	updateCalls  int
	cancelCalls  int
	createErr    error
}

func (f *fakeProvider) CreateReservation(_ context.Context, req provider.CreateReservationRequest) (provider.Reservation, error) {
	f.createCalls++
	if f.createErr != nil {
		return provider.Reservation{}, f.createErr
	}
	return provider.Reservation{
		ID:               "r-1",
		ConfirmationCode: "ABC123",
		ListingID:        req.ListingID,
		CheckIn:          req.CheckIn,
		CheckOut:         req.CheckOut,
		Status:           req.Status,
		Guest:            req.Guest,
		GuestsCount:      req.GuestsCount,
	}, nil
}

func (f *fakeProvider) UpdateReservation(_ context.Context, code string, req provider.CreateReservationRequest) (provider.Reservation, error) {
	f.updateCalls++
	for _, r := range f.reservations {
		if r.ConfirmationCode == code {
			r.CheckIn = req.CheckIn
			r.CheckOut = req.CheckOut
			return r, nil
		}
	}
	return provider.Reservation{}, provider.ErrNotFound
}

func (f *fakeProvider) CancelReservation(_ context.Context, code string) (provider.Reservation, error) {
	f.cancelCalls++
	for _, r := range f.reservations {
		if r.ConfirmationCode == code {
			r.Status = "cancelled"
			return r, nil
		}
	}
	return provider.Reservation{}, provider.ErrNotFound
}

func (f *fakeProvider) ListReservations(_ context.Context, filter provider.ReservationFilter) ([]provider.Reservation, error) {
	var out []provider.Reservation
	for _, r := range f.reservations {
		if filter.ConfirmationCode != "" && r.ConfirmationCode != filter.ConfirmationCode {
			continue
		}
		if filter.GuestEmail != "" && r.Guest.Email != filter.GuestEmail {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeQuotes struct {
	result quote.Result
	err    error
}

func (f *fakeQuotes) Quote(_ context.Context, _ quote.Request) (quote.Result, error) {
	return f.result, f.err
}

type capturedEvent struct {
	eventType string
	key       string
}

type fakeEvents struct {
	published []capturedEvent
	err       error
}

func (f *fakeEvents) Publish(_ context.Context, eventType, key string, _ any) error {
	f.published = append(f.published, capturedEvent{eventType, key})
	return f.err
}

func availableQuote(total int64) quote.Result {
	return quote.Result{
		Available: true,
		Quote:     &pricing.Breakdown{Available: true, Total: money.Must(total, "USD")},
	}
}

func upcomingReservation() provider.Reservation {
	return provider.Reservation{
		ID:               "r-1",
		ConfirmationCode: "ABC123",
		ListingID:        "villa-1",
		CheckIn:          "2026-07-10",
		CheckOut:         "2026-07-13",
		Status:           "confirmed",
		Guest:            provider.Guest{FirstName: "Ana", LastName: "Mora", Email: "ana@example.com"},
		GuestsCount:      2,
		Money:            provider.Money{Accommodation: 400, Taxes: 52, Total: 452, Currency: "USD"},
	}
}

func newTestService(api *fakeProvider, quotes *fakeQuotes, events Events) *Service {
	svc := NewService(api, quotes, events, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreatePublishesEvent(t *testing.T) {
	api := &fakeProvider{}
	events := &fakeEvents{}
	svc := newTestService(api, &fakeQuotes{}, events)

	created, err := svc.Create(context.Background(), CreateParams{
		ListingID:   "villa-1",
		CheckIn:     time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC),
		Guest:       Guest{FirstName: "Ana", LastName: "Mora", Email: "ana@example.com"},
		GuestsCount: 2,
		Status:      StatusConfirmed,
	})
	require.NoError(t, err)

	assert.Equal(t, "ABC123", created.ConfirmationCode)
	assert.Equal(t, 1, api.createCalls)
	require.Len(t, events.published, 1)
	assert.Equal(t, "reservation.created", events.published[0].eventType)
	assert.Equal(t, "ABC123", events.published[0].key)
}

func TestCreateSurvivesEventPublishFailure(t *testing.T) {
	api := &fakeProvider{}
	events := &fakeEvents{err: errors.New("broker down")}
	svc := newTestService(api, &fakeQuotes{}, events)

	_, err := svc.Create(context.Background(), CreateParams{ListingID: "villa-1", Status: StatusInquiry})
	assert.NoError(t, err, "event fan-out is best effort")
}

func TestLookupByConfirmationMatchesLastName(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	svc := newTestService(api, &fakeQuotes{}, nil)

	got, err := svc.LookupByConfirmation(context.Background(), "ABC123", "  mora ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Guest.FirstName)
	assert.True(t, got.CanModify)
	assert.True(t, got.CanCancel)

	_, err = svc.LookupByConfirmation(context.Background(), "ABC123", "smith")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupPastStayNotModifiable(t *testing.T) {
	past := upcomingReservation()
	past.CheckIn = "2026-05-01"
	past.CheckOut = "2026-05-04"
	api := &fakeProvider{reservations: []provider.Reservation{past}}
	svc := newTestService(api, &fakeQuotes{}, nil)

	got, err := svc.LookupByConfirmation(context.Background(), "ABC123", "Mora")
	require.NoError(t, err)
	assert.False(t, got.CanModify)
	assert.False(t, got.CanCancel)
}

func TestCheckModificationRejectsDowngrade(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	quotes := &fakeQuotes{result: availableQuote(400)}
	svc := newTestService(api, quotes, nil)

	check, err := svc.CheckModification(context.Background(), "ABC123", "Mora",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.False(t, check.Allowed)
	assert.Equal(t, "price_downgrade", check.Reason)
	assert.Equal(t, int64(452), check.OldTotal.Amount)
	assert.Equal(t, int64(400), check.NewTotal.Amount)
}

func TestCheckModificationAllowsEqualPrice(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	quotes := &fakeQuotes{result: availableQuote(452)}
	svc := newTestService(api, quotes, nil)

	check, err := svc.CheckModification(context.Background(), "ABC123", "Mora",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.True(t, check.Allowed, "same price is not a downgrade")
}

func TestModifyAppliesAllowedChange(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	quotes := &fakeQuotes{result: availableQuote(500)}
	events := &fakeEvents{}
	svc := newTestService(api, quotes, events)

	updated, err := svc.Modify(context.Background(), "ABC123", "Mora",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, api.updateCalls)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), updated.CheckIn)
	require.Len(t, events.published, 1)
	assert.Equal(t, "reservation.modified", events.published[0].eventType)
}

func TestModifyRejectsDowngradeWithoutUpdate(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	quotes := &fakeQuotes{result: availableQuote(300)}
	svc := newTestService(api, quotes, nil)

	_, err := svc.Modify(context.Background(), "ABC123", "Mora",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, ErrPriceDowngrade)
	assert.Equal(t, 0, api.updateCalls, "a rejected modification never reaches the provider")
}

func TestModifyRejectsUnavailableDates(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	quotes := &fakeQuotes{result: quote.Result{
		Available:        false,
		Reason:           quote.ReasonDatesUnavailable,
		UnavailableDates: []time.Time{time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)},
	}}
	svc := newTestService(api, quotes, nil)

	_, err := svc.Modify(context.Background(), "ABC123", "Mora",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, ErrDatesUnavailable, "a full stay reads as unavailable, not as a price problem")
	assert.NotErrorIs(t, err, ErrPriceDowngrade)
	assert.Equal(t, 0, api.updateCalls)
}

func TestCheckModificationCurrencyMismatch(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	quotes := &fakeQuotes{result: quote.Result{
		Available: true,
		Quote:     &pricing.Breakdown{Available: true, Total: money.Must(500, "EUR")},
	}}
	svc := newTestService(api, quotes, nil)

	_, err := svc.CheckModification(context.Background(), "ABC123", "Mora",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestModifyRejectsPastStay(t *testing.T) {
	past := upcomingReservation()
	past.CheckIn = "2026-05-01"
	past.CheckOut = "2026-05-04"
	api := &fakeProvider{reservations: []provider.Reservation{past}}
	svc := newTestService(api, &fakeQuotes{result: availableQuote(999)}, nil)

	_, err := svc.Modify(context.Background(), "ABC123", "Mora",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, ErrNotModifiable)
}

func TestCancelPublishesEvent(t *testing.T) {
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation()}}
	events := &fakeEvents{}
	svc := newTestService(api, &fakeQuotes{}, events)

	cancelled, err := svc.Cancel(context.Background(), "ABC123", "Mora")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 1, api.cancelCalls)
	require.Len(t, events.published, 1)
	assert.Equal(t, "reservation.cancelled", events.published[0].eventType)
}

func TestLookupByEmail(t *testing.T) {
	other := upcomingReservation()
	other.ConfirmationCode = "XYZ789"
	other.Guest.Email = "someone@example.com"
	api := &fakeProvider{reservations: []provider.Reservation{upcomingReservation(), other}}
	svc := newTestService(api, &fakeQuotes{}, nil)

	got, err := svc.LookupByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ABC123", got[0].ConfirmationCode)
}
