package ginserver

import (
	"context"
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	appquote "staybook/internal/app/quote"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
)

// QuoteService computes quotes.
type QuoteService interface {
	Quote(ctx context.Context, req appquote.Request) (appquote.Result, error)
}

type QuoteHandler struct {
	Quotes QuoteService
}

type quoteRequest struct {
	ListingID   string `json:"listingId" binding:"required"`
	CheckIn     string `json:"checkIn" binding:"required"`
	CheckOut    string `json:"checkOut" binding:"required"`
	GuestsCount int    `json:"guestsCount" binding:"required,min=1"`
}

// Create computes a quote for the requested stay. Expected negatives
// (capacity, availability) come back as success=true with quote=null.
func (h QuoteHandler) Create(c *gin.Context) {
	if h.Quotes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "quote handler unavailable"})
		return
	}
	var req quoteRequest
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

	result, err := h.Quotes.Quote(c.Request.Context(), appquote.Request{
		ListingID: listings.ListingID(req.ListingID),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    req.GuestsCount,
	})
	if err != nil {
		if errors.Is(err, listings.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "listing not found"})
			return
		}
		if errors.Is(err, daterange.ErrCheckOutBeforeCheckIn) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MapQuoteResult(result))
}

var _ QuoteHTTP = QuoteHandler{}
