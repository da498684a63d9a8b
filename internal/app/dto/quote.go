package dto

import (
	"time"

	"staybook/internal/app/quote"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

type QuoteDTO struct {
	Nights        int      `json:"nights"`
	PricePerNight MoneyDTO `json:"price_per_night"`
	Accommodation MoneyDTO `json:"accommodation"`
	CleaningFee   MoneyDTO `json:"cleaning_fee"`
	ServiceFee    MoneyDTO `json:"service_fee"`
	Taxes         MoneyDTO `json:"taxes"`
	Total         MoneyDTO `json:"total"`
}

type QuoteListingDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	MaxGuests int    `json:"max_guests"`
}

// QuoteResponse is the quote endpoint's envelope. Business-rule negatives
// ride in success=true responses with quote=null so the widget can render a
// specific recovery action.
type QuoteResponse struct {
	Success          bool            `json:"success"`
	Available        bool            `json:"available"`
	Listing          QuoteListingDTO `json:"listing"`
	Quote            *QuoteDTO       `json:"quote"`
	UnavailableDates []string        `json:"unavailableDates,omitempty"`
	Error            string          `json:"error,omitempty"`
}

func MapQuoteResult(result quote.Result) QuoteResponse {
	resp := QuoteResponse{
		Success:   true,
		Available: result.Available,
		Listing: QuoteListingDTO{
			ID:        string(result.Listing.ID),
			Title:     result.Listing.Title,
			MaxGuests: result.Listing.MaxGuests,
		},
		UnavailableDates: formatDates(result.UnavailableDates),
		Error:            result.Reason,
	}
	if result.Quote != nil {
		resp.Quote = mapBreakdown(*result.Quote)
	}
	return resp
}

func mapBreakdown(b pricing.Breakdown) *QuoteDTO {
	return &QuoteDTO{
		Nights:        b.Nights,
		PricePerNight: MapMoney(b.PricePerNight),
		Accommodation: MapMoney(b.Accommodation),
		CleaningFee:   MapMoney(b.CleaningFee),
		ServiceFee:    MapMoney(b.ServiceFee),
		Taxes:         MapMoney(b.Taxes),
		Total:         MapMoney(b.Total),
	}
}

func formatDates(dates []time.Time) []string {
	if len(dates) == 0 {
		return nil
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, daterange.FormatDate(d))
	}
	return out
}
