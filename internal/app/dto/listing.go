package dto

import (
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type AddressDTO struct {
	Line1   string  `json:"line1"`
	City    string  `json:"city"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type ReviewsDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type ListingSummary struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	PropertyType   string     `json:"property_type"`
	Accommodates   int        `json:"accommodates"`
	Bedrooms       int        `json:"bedrooms"`
	Bathrooms      int        `json:"bathrooms"`
	NightlyRate    MoneyDTO   `json:"nightly_rate"`
	Address        AddressDTO `json:"address"`
	Amenities      []string   `json:"amenities"`
	Reviews        ReviewsDTO `json:"reviews"`
	RoomsAvailable int        `json:"rooms_available,omitempty"`
	ThumbnailURL   string     `json:"thumbnail_url,omitempty"`
}

type ListingCollection struct {
	Items []ListingSummary `json:"items"`
}

func MapListing(l listings.Listing) ListingSummary {
	return ListingSummary{
		ID:           string(l.ID),
		Title:        l.Title,
		PropertyType: l.PropertyType,
		Accommodates: l.Accommodates,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		NightlyRate:  MapMoney(l.NightlyRate),
		Address: AddressDTO{
			Line1:   l.Address.Line1,
			City:    l.Address.City,
			Region:  l.Address.Region,
			Country: l.Address.Country,
			Lat:     l.Address.Lat,
			Lon:     l.Address.Lon,
		},
		Amenities:      l.Amenities,
		Reviews:        ReviewsDTO{Average: l.Reviews.Average, Count: l.Reviews.Count},
		RoomsAvailable: l.RoomsAvailable,
		ThumbnailURL:   l.ThumbnailURL,
	}
}

func MapListingCollection(items []listings.Listing) ListingCollection {
	out := ListingCollection{Items: make([]ListingSummary, 0, len(items))}
	for _, l := range items {
		out.Items = append(out.Items, MapListing(l))
	}
	return out
}
