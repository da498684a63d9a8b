package listings

import (
	"errors"
	"strings"

	"staybook/internal/domain/shared/money"
)

var ErrNotFound = errors.New("listings: listing not found")

type ListingID string

// Relationship captures how a listing relates to a multi-unit property.
// Only standalone and parent listings are exposed to browse/search; child
// listings exist solely so a parent can report how many rooms it has free.
type Relationship string

const (
	RelStandalone Relationship = "standalone"
	RelParent     Relationship = "parent"
	RelChild      Relationship = "child"
)

type Address struct {
	Line1   string
	City    string
	Region  string
	Country string
	Lat     float64
	Lon     float64
}

type ReviewAggregate struct {
	Average float64
	Count   int
}

// Listing is a bookable unit sourced from the inventory provider. It is
// read-only from this system's perspective: mutations happen in the provider
// and reach us through cache refreshes.
type Listing struct {
	ID             ListingID
	Title          string
	PropertyType   string
	Accommodates   int
	Bedrooms       int
	Bathrooms      int
	NightlyRate    money.Money
	Address        Address
	Amenities      []string
	Reviews        ReviewAggregate
	Active         bool
	Relationship   Relationship
	ParentID       ListingID
	RoomsAvailable int
	ThumbnailURL   string
}

// Browsable reports whether the listing may appear in search and browse
// results. Children are always hidden.
func (l Listing) Browsable() bool {
	return l.Active && l.Relationship != RelChild
}

// IsChildOf reports whether the listing is a room of the given parent.
func (l Listing) IsChildOf(parent ListingID) bool {
	return l.Relationship == RelChild && l.ParentID == parent
}

// Filter narrows a listings collection in memory. Filtering locally against
// the cached collection keeps outbound provider calls to a minimum.
type Filter struct {
	City     string
	Country  string
	Guests   int
	PriceMin int64
	PriceMax int64
}

// Matches applies the filter to a single listing. Zero-valued fields are
// ignored.
func (f Filter) Matches(l Listing) bool {
	if !l.Browsable() {
		return false
	}
	if f.City != "" && !strings.EqualFold(strings.TrimSpace(f.City), l.Address.City) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(strings.TrimSpace(f.Country), l.Address.Country) {
		return false
	}
	if f.Guests > 0 && l.Accommodates < f.Guests {
		return false
	}
	if f.PriceMin > 0 && l.NightlyRate.Amount < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && l.NightlyRate.Amount > f.PriceMax {
		return false
	}
	return true
}
