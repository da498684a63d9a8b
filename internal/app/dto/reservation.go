package dto

import (
	"staybook/internal/app/reservation"
	"staybook/internal/domain/shared/daterange"
)

type GuestDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type ReservationMoneyDTO struct {
	Accommodation MoneyDTO `json:"accommodation"`
	CleaningFee   MoneyDTO `json:"cleaning_fee"`
	Taxes         MoneyDTO `json:"taxes"`
	Total         MoneyDTO `json:"total"`
}

type ReservationDTO struct {
	ConfirmationCode string              `json:"confirmationCode"`
	ListingID        string              `json:"listing_id"`
	CheckIn          string              `json:"check_in"`
	CheckOut         string              `json:"check_out"`
	Status           string              `json:"status"`
	Guest            GuestDTO            `json:"guest"`
	GuestsCount      int                 `json:"guests_count"`
	Money            ReservationMoneyDTO `json:"money"`
	CanModify        bool                `json:"canModify"`
	CanCancel        bool                `json:"canCancel"`
}

type ReservationResponse struct {
	Success     bool            `json:"success"`
	Reservation *ReservationDTO `json:"reservation,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type ReservationCollection struct {
	Success bool             `json:"success"`
	Items   []ReservationDTO `json:"items"`
}

type ModificationCheckResponse struct {
	Success  bool     `json:"success"`
	Allowed  bool     `json:"allowed"`
	NewTotal MoneyDTO `json:"new_total"`
	OldTotal MoneyDTO `json:"old_total"`
	Reason   string   `json:"reason,omitempty"`
}

func MapReservation(r reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		ConfirmationCode: r.ConfirmationCode,
		ListingID:        string(r.ListingID),
		CheckIn:          daterange.FormatDate(r.CheckIn),
		CheckOut:         daterange.FormatDate(r.CheckOut),
		Status:           string(r.Status),
		Guest: GuestDTO{
			FirstName: r.Guest.FirstName,
			LastName:  r.Guest.LastName,
			Email:     r.Guest.Email,
			Phone:     r.Guest.Phone,
		},
		GuestsCount: r.GuestsCount,
		Money: ReservationMoneyDTO{
			Accommodation: MapMoney(r.Price.Accommodation),
			CleaningFee:   MapMoney(r.Price.CleaningFee),
			Taxes:         MapMoney(r.Price.Taxes),
			Total:         MapMoney(r.Price.Total),
		},
		CanModify: r.CanModify,
		CanCancel: r.CanCancel,
	}
}

func MapReservationCollection(items []reservation.Reservation) ReservationCollection {
	out := ReservationCollection{Success: true, Items: make([]ReservationDTO, 0, len(items))}
	for _, r := range items {
		out.Items = append(out.Items, MapReservation(r))
	}
	return out
}

func MapModificationCheck(check reservation.ModificationCheck) ModificationCheckResponse {
	return ModificationCheckResponse{
		Success:  true,
		Allowed:  check.Allowed,
		NewTotal: MapMoney(check.NewTotal),
		OldTotal: MapMoney(check.OldTotal),
		Reason:   check.Reason,
	}
}
