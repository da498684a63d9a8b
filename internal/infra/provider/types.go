package provider

// Wire shapes for the inventory provider's REST API. Field names follow the
// provider's JSON, not our domain vocabulary; mapping to domain types
// happens in the app services.

type Listing struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	PropertyType string   `json:"propertyType"`
	Accommodates int      `json:"accommodates"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	BasePrice    int64    `json:"basePrice"`
	Currency     string   `json:"currency"`
	Address      Address  `json:"address"`
	Amenities    []string `json:"amenities"`
	Reviews      Reviews  `json:"reviews"`
	Active       bool     `json:"active"`
	Type         string   `json:"type"`
	ParentID     string   `json:"parentId,omitempty"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
}

type Address struct {
	Street  string  `json:"street"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type Reviews struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type listingsPage struct {
	Results []Listing `json:"results"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
	MinNights int    `json:"minimumNights,omitempty"`
}

type calendarPage struct {
	Results []CalendarDay `json:"results"`
}

type Guest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type CreateReservationRequest struct {
	ListingID        string `json:"listingId"`
	CheckIn          string `json:"checkInDateLocalized"`
	CheckOut         string `json:"checkOutDateLocalized"`
	Guest            Guest  `json:"guest"`
	GuestsCount      int    `json:"guestsCount"`
	Status           string `json:"status"`
	Source           string `json:"source"`
	Notes            string `json:"notes,omitempty"`
	PaymentReference string `json:"paymentReference,omitempty"`
	QuoteID          string `json:"quoteId,omitempty"`
}

type Money struct {
	Accommodation int64  `json:"fareAccommodation"`
	CleaningFee   int64  `json:"fareCleaning"`
	Taxes         int64  `json:"totalTaxes"`
	Total         int64  `json:"totalPrice"`
	Currency      string `json:"currency"`
}

type Reservation struct {
	ID               string `json:"id"`
	ConfirmationCode string `json:"confirmationCode"`
	ListingID        string `json:"listingId"`
	CheckIn          string `json:"checkInDateLocalized"`
	CheckOut         string `json:"checkOutDateLocalized"`
	Status           string `json:"status"`
	Guest            Guest  `json:"guest"`
	GuestsCount      int    `json:"guestsCount"`
	Money            Money  `json:"money"`
}

type reservationsPage struct {
	Results []Reservation `json:"results"`
}

// ListParams controls listings pagination and the active filter.
type ListParams struct {
	Limit      int
	ActiveOnly bool
}

// ReservationFilter narrows a reservation listing.
type ReservationFilter struct {
	ListingID        string
	ConfirmationCode string
	GuestEmail       string
	Status           string
	From             string
	To               string
}
