package ginserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	"staybook/internal/app/reservation"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
)

// ReservationService is the slice of the reservation service the handler
// needs.
type ReservationService interface {
	Create(ctx context.Context, params reservation.CreateParams) (reservation.Reservation, error)
	LookupByConfirmation(ctx context.Context, code, lastName string) (reservation.Reservation, error)
	LookupByEmail(ctx context.Context, email string) ([]reservation.Reservation, error)
	CheckModification(ctx context.Context, code, lastName string, checkIn, checkOut time.Time) (reservation.ModificationCheck, error)
	Modify(ctx context.Context, code, lastName string, checkIn, checkOut time.Time) (reservation.Reservation, error)
	Cancel(ctx context.Context, code, lastName string) (reservation.Reservation, error)
}

type ReservationHandler struct {
	Reservations ReservationService
}

type createReservationRequest struct {
	ListingID        string       `json:"listingId" binding:"required"`
	CheckIn          string       `json:"checkIn" binding:"required"`
	CheckOut         string       `json:"checkOut" binding:"required"`
	Guest            dto.GuestDTO `json:"guest" binding:"required"`
	GuestsCount      int          `json:"guestsCount" binding:"required,min=1"`
	BookingType      string       `json:"bookingType"`
	PaymentReference string       `json:"paymentReference"`
	QuoteID          string       `json:"quoteId"`
	Notes            string       `json:"notes"`
}

// Create submits a reservation to the provider. The call is not idempotent,
// so no automatic retry happens here and the UI must disable resubmission
// while a request is in flight.
func (h ReservationHandler) Create(c *gin.Context) {
	if h.Reservations == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "reservation handler unavailable"})
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	checkIn, err := daterange.ParseDate(req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid checkIn date"})
		return
	}
	checkOut, err := daterange.ParseDate(req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid checkOut date"})
		return
	}

	// Instant bookings arrive with payment already captured and confirm
	// immediately; anything else is a request-to-book inquiry.
	status := reservation.StatusInquiry
	if req.BookingType == "instant" {
		status = reservation.StatusConfirmed
	}

	created, err := h.Reservations.Create(c.Request.Context(), reservation.CreateParams{
		ListingID: listings.ListingID(req.ListingID),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guest: reservation.Guest{
			FirstName: req.Guest.FirstName,
			LastName:  req.Guest.LastName,
			Email:     req.Guest.Email,
			Phone:     req.Guest.Phone,
		},
		GuestsCount:      req.GuestsCount,
		Status:           status,
		Notes:            req.Notes,
		PaymentReference: req.PaymentReference,
		QuoteID:          req.QuoteID,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	mapped := dto.MapReservation(created)
	c.JSON(http.StatusCreated, dto.ReservationResponse{Success: true, Reservation: &mapped})
}

// Lookup finds one reservation by confirmation code and guest last name.
func (h ReservationHandler) Lookup(c *gin.Context) {
	code := c.Query("confirmationCode")
	lastName := c.Query("lastName")
	if code == "" || lastName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "confirmationCode and lastName are required"})
		return
	}
	found, err := h.Reservations.LookupByConfirmation(c.Request.Context(), code, lastName)
	if err != nil {
		h.renderError(c, err)
		return
	}
	mapped := dto.MapReservation(found)
	c.JSON(http.StatusOK, dto.ReservationResponse{Success: true, Reservation: &mapped})
}

// ListByEmail lists every reservation for a guest email.
func (h ReservationHandler) ListByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email is required"})
		return
	}
	found, err := h.Reservations.LookupByEmail(c.Request.Context(), email)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReservationCollection(found))
}

type modifyRequest struct {
	LastName string `json:"lastName" binding:"required"`
	CheckIn  string `json:"checkIn" binding:"required"`
	CheckOut string `json:"checkOut" binding:"required"`
}

// ModifyCheck prices a proposed date change without applying it.
func (h ReservationHandler) ModifyCheck(c *gin.Context) {
	code, req, checkIn, checkOut, ok := h.bindModify(c)
	if !ok {
		return
	}
	check, err := h.Reservations.CheckModification(c.Request.Context(), code, req.LastName, checkIn, checkOut)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapModificationCheck(check))
}

// Modify applies a date change that passed the no-downgrade rule.
func (h ReservationHandler) Modify(c *gin.Context) {
	code, req, checkIn, checkOut, ok := h.bindModify(c)
	if !ok {
		return
	}
	updated, err := h.Reservations.Modify(c.Request.Context(), code, req.LastName, checkIn, checkOut)
	if err != nil {
		h.renderError(c, err)
		return
	}
	mapped := dto.MapReservation(updated)
	c.JSON(http.StatusOK, dto.ReservationResponse{Success: true, Reservation: &mapped})
}

type cancelRequest struct {
	LastName string `json:"lastName" binding:"required"`
}

// Cancel cancels a reservation.
func (h ReservationHandler) Cancel(c *gin.Context) {
	code := c.Param("code")
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	cancelled, err := h.Reservations.Cancel(c.Request.Context(), code, req.LastName)
	if err != nil {
		h.renderError(c, err)
		return
	}
	mapped := dto.MapReservation(cancelled)
	c.JSON(http.StatusOK, dto.ReservationResponse{Success: true, Reservation: &mapped})
}

func (h ReservationHandler) bindModify(c *gin.Context) (string, modifyRequest, time.Time, time.Time, bool) {
	code := c.Param("code")
	var req modifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return "", req, time.Time{}, time.Time{}, false
	}
	checkIn, err := daterange.ParseDate(req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid checkIn date"})
		return "", req, time.Time{}, time.Time{}, false
	}
	checkOut, err := daterange.ParseDate(req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid checkOut date"})
		return "", req, time.Time{}, time.Time{}, false
	}
	return code, req, checkIn, checkOut, true
}

func (h ReservationHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "reservation not found"})
	case errors.Is(err, reservation.ErrPriceDowngrade),
		errors.Is(err, reservation.ErrNotModifiable),
		errors.Is(err, reservation.ErrDatesUnavailable):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
	}
}

var _ ReservationHTTP = ReservationHandler{}
