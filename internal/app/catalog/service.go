package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/cache"
	"staybook/internal/infra/provider"
)

const bulkKey = "all"

// Service serves listing browse/search reads from time-boxed caches. The
// full collection is cached with a long TTL and filtered in memory; single
// listings get a medium TTL and are opportunistically filled from the bulk
// set. On upstream failure an expired cache entry is preferred over a hard
// error: browse pages degrade to stale data instead of breaking.
type Service struct {
	api    InventoryAPI
	bulk   *cache.TTL[string, []listings.Listing]
	single *cache.TTL[listings.ListingID, listings.Listing]
	logger *slog.Logger
}

func NewService(api InventoryAPI, bulkTTL, singleTTL time.Duration, clock cache.Clock, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		bulk:   cache.NewTTL[string, []listings.Listing](bulkTTL, clock),
		single: cache.NewTTL[listings.ListingID, listings.Listing](singleTTL, clock),
		logger: logger,
	}
}

// Caches exposes the internal caches for the periodic sweeper.
func (s *Service) Caches() []interface{ Sweep() int } {
	return []interface{ Sweep() int }{s.bulk, s.single}
}

// Search returns browsable listings matching the filter. Child listings are
// never returned; parents carry a RoomsAvailable count derived from their
// children.
func (s *Service) Search(ctx context.Context, filter listings.Filter) ([]listings.Listing, error) {
	all, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]listings.Listing, 0, len(all))
	for _, l := range all {
		if filter.Matches(l) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// Get returns one listing by id, child listings included (the booking page
// for a parent needs its children's capacity).
func (s *Service) Get(ctx context.Context, id listings.ListingID) (listings.Listing, error) {
	if cached, freshness := s.single.Get(id); freshness == cache.Fresh {
		return cached, nil
	}

	// A fresh bulk set is a free source for single lookups.
	if all, freshness := s.bulk.Get(bulkKey); freshness == cache.Fresh {
		for _, l := range all {
			if l.ID == id {
				s.single.Set(id, l)
				return l, nil
			}
		}
	}

	fetched, err := s.api.GetListing(ctx, string(id))
	if err != nil {
		if cached, freshness := s.single.Get(id); freshness != cache.Miss {
			s.logger.Warn("serving stale listing after upstream failure", "listing_id", id, "error", err)
			return cached, nil
		}
		if errors.Is(err, provider.ErrNotFound) {
			return listings.Listing{}, listings.ErrNotFound
		}
		return listings.Listing{}, err
	}
	mapped := mapListing(fetched)
	s.single.Set(id, mapped)
	return mapped, nil
}

// collection returns the full mapped collection, fetching on cache miss and
// falling back to a stale copy when the provider is down.
func (s *Service) collection(ctx context.Context) ([]listings.Listing, error) {
	if all, freshness := s.bulk.Get(bulkKey); freshness == cache.Fresh {
		return all, nil
	}

	fetched, err := s.api.ListListings(ctx, provider.ListParams{ActiveOnly: true})
	if err != nil {
		if all, freshness := s.bulk.Get(bulkKey); freshness != cache.Miss {
			s.logger.Warn("serving stale listings collection after upstream failure", "error", err)
			return all, nil
		}
		return nil, err
	}

	mapped := make([]listings.Listing, 0, len(fetched))
	for _, raw := range fetched {
		mapped = append(mapped, mapListing(raw))
	}
	attachRoomCounts(mapped)
	s.bulk.Set(bulkKey, mapped)
	for _, l := range mapped {
		s.single.Set(l.ID, l)
	}
	return mapped, nil
}

// attachRoomCounts fills RoomsAvailable on multi-unit parents from their
// active children.
func attachRoomCounts(all []listings.Listing) {
	counts := make(map[listings.ListingID]int)
	for _, l := range all {
		if l.Relationship == listings.RelChild && l.Active {
			counts[l.ParentID]++
		}
	}
	for i := range all {
		if all[i].Relationship == listings.RelParent {
			all[i].RoomsAvailable = counts[all[i].ID]
		}
	}
}

func mapListing(raw provider.Listing) listings.Listing {
	return listings.Listing{
		ID:           listings.ListingID(raw.ID),
		Title:        raw.Title,
		PropertyType: raw.PropertyType,
		Accommodates: raw.Accommodates,
		Bedrooms:     raw.Bedrooms,
		Bathrooms:    raw.Bathrooms,
		NightlyRate:  money.Money{Amount: raw.BasePrice, Currency: raw.Currency},
		Address: listings.Address{
			Line1:   raw.Address.Street,
			City:    raw.Address.City,
			Region:  raw.Address.Region,
			Country: raw.Address.Country,
			Lat:     raw.Address.Lat,
			Lon:     raw.Address.Lng,
		},
		Amenities: append([]string(nil), raw.Amenities...),
		Reviews: listings.ReviewAggregate{
			Average: raw.Reviews.Average,
			Count:   raw.Reviews.Count,
		},
		Active:       raw.Active,
		Relationship: mapRelationship(raw.Type),
		ParentID:     listings.ListingID(raw.ParentID),
		ThumbnailURL: raw.Thumbnail,
	}
}

func mapRelationship(value string) listings.Relationship {
	switch value {
	case "parent":
		return listings.RelParent
	case "child":
		return listings.RelChild
	default:
		return listings.RelStandalone
	}
}
