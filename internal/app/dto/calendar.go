package dto

import (
	"staybook/internal/app/availability"
	"staybook/internal/domain/shared/daterange"
)

type NightlyPriceDTO struct {
	Date  string   `json:"date"`
	Price MoneyDTO `json:"price"`
}

// CalendarResponse backs the widget's blocked-dates endpoint.
type CalendarResponse struct {
	Success      bool              `json:"success"`
	BlockedDates []string          `json:"blockedDates"`
	Availability []NightlyPriceDTO `json:"availability"`
}

func MapCalendarWindow(blocked []string, prices []availability.NightlyPrice) CalendarResponse {
	resp := CalendarResponse{
		Success:      true,
		BlockedDates: blocked,
		Availability: make([]NightlyPriceDTO, 0, len(prices)),
	}
	for _, p := range prices {
		resp.Availability = append(resp.Availability, NightlyPriceDTO{
			Date:  daterange.FormatDate(p.Date),
			Price: MapMoney(p.Price),
		})
	}
	return resp
}
