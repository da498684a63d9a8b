package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/listings"
	"staybook/internal/infra/provider"
)

type fakeInventory struct {
	listings  []provider.Listing
	failList  bool
	failGet   bool
	listCalls int
	getCalls  int
}

func (f *fakeInventory) ListListings(_ context.Context, _ provider.ListParams) ([]provider.Listing, error) {
	f.listCalls++
	if f.failList {
		return nil, errors.New("upstream down")
	}
	return f.listings, nil
}

func (f *fakeInventory) GetListing(_ context.Context, id string) (provider.Listing, error) {
	f.getCalls++
	if f.failGet {
		return provider.Listing{}, errors.New("upstream down")
	}
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return provider.Listing{}, provider.ErrNotFound
}

func fixtureListings() []provider.Listing {
	return []provider.Listing{
		{ID: "villa-1", Title: "Seaside Villa", Accommodates: 6, BasePrice: 200, Currency: "USD", Active: true, Type: "standalone",
			Address: provider.Address{City: "Santa Teresa", Country: "Costa Rica"}},
		{ID: "lodge-1", Title: "Jungle Lodge", Accommodates: 12, BasePrice: 120, Currency: "USD", Active: true, Type: "parent",
			Address: provider.Address{City: "Nosara", Country: "Costa Rica"}},
		{ID: "room-a", Title: "Lodge Room A", Accommodates: 2, Active: true, Type: "child", ParentID: "lodge-1"},
		{ID: "room-b", Title: "Lodge Room B", Accommodates: 2, Active: true, Type: "child", ParentID: "lodge-1"},
		{ID: "room-c", Title: "Lodge Room C", Accommodates: 2, Active: false, Type: "child", ParentID: "lodge-1"},
	}
}

func newTestService(api InventoryAPI, now func() time.Time) *Service {
	return NewService(api, time.Hour, 30*time.Minute, now, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSearchHidesChildrenAndCountsRooms(t *testing.T) {
	api := &fakeInventory{listings: fixtureListings()}
	svc := newTestService(api, nil)

	got, err := svc.Search(context.Background(), listings.Filter{})
	require.NoError(t, err)

	require.Len(t, got, 2, "child listings never appear in search")
	byID := map[listings.ListingID]listings.Listing{}
	for _, l := range got {
		byID[l.ID] = l
	}
	assert.Contains(t, byID, listings.ListingID("villa-1"))
	assert.Equal(t, 2, byID["lodge-1"].RoomsAvailable, "only active children count")
}

func TestSearchFiltersInMemory(t *testing.T) {
	api := &fakeInventory{listings: fixtureListings()}
	svc := newTestService(api, nil)

	got, err := svc.Search(context.Background(), listings.Filter{City: "nosara"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, listings.ListingID("lodge-1"), got[0].ID)

	got, err = svc.Search(context.Background(), listings.Filter{Guests: 8})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, listings.ListingID("lodge-1"), got[0].ID)

	assert.Equal(t, 1, api.listCalls, "repeat searches hit the cache")
}

func TestSearchFallsBackToStaleCache(t *testing.T) {
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	api := &fakeInventory{listings: fixtureListings()}
	svc := newTestService(api, func() time.Time { return now })

	_, err := svc.Search(context.Background(), listings.Filter{})
	require.NoError(t, err)

	// Cache expires, upstream dies: stale data is served instead of an
	// error.
	now = now.Add(2 * time.Hour)
	api.failList = true
	got, err := svc.Search(context.Background(), listings.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchSurvivesSweepDuringOutage(t *testing.T) {
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	api := &fakeInventory{listings: fixtureListings()}
	svc := newTestService(api, func() time.Time { return now })

	_, err := svc.Search(context.Background(), listings.Filter{})
	require.NoError(t, err)

	// The entry expires and the periodic sweep runs before the upstream
	// outage: the stale collection must still be there to fall back on.
	now = now.Add(2 * time.Hour)
	for _, target := range svc.Caches() {
		target.Sweep()
	}
	api.failList = true

	got, err := svc.Search(context.Background(), listings.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchErrorsWithEmptyCache(t *testing.T) {
	api := &fakeInventory{failList: true}
	svc := newTestService(api, nil)

	_, err := svc.Search(context.Background(), listings.Filter{})
	assert.Error(t, err)
}

func TestGetUsesBulkCacheOpportunistically(t *testing.T) {
	api := &fakeInventory{listings: fixtureListings()}
	svc := newTestService(api, nil)

	_, err := svc.Search(context.Background(), listings.Filter{})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "villa-1")
	require.NoError(t, err)
	assert.Equal(t, "Seaside Villa", got.Title)
	assert.Equal(t, 0, api.getCalls, "single lookup served from the bulk set")
}

func TestGetStaleFallbackAndNotFound(t *testing.T) {
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	api := &fakeInventory{listings: fixtureListings()}
	svc := newTestService(api, func() time.Time { return now })

	_, err := svc.Get(context.Background(), "villa-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	api.failGet = true
	got, err := svc.Get(context.Background(), "villa-1")
	require.NoError(t, err, "stale per-listing cache beats a hard failure")
	assert.Equal(t, "Seaside Villa", got.Title)

	api.failGet = false
	_, err = svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, listings.ErrNotFound)
}
