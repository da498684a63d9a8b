package ginserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	"staybook/internal/domain/listings"
)

// CatalogService is the slice of the catalog the listing handler needs.
type CatalogService interface {
	Search(ctx context.Context, filter listings.Filter) ([]listings.Listing, error)
	Get(ctx context.Context, id listings.ListingID) (listings.Listing, error)
}

type ListingHandler struct {
	Listings CatalogService
}

// Catalog responds with the filtered, browsable listings collection.
func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Listings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	filter := listings.Filter{
		City:     c.Query("city"),
		Country:  c.Query("country"),
		Guests:   parseInt(c.Query("guests")),
		PriceMin: parseInt64(c.Query("price_min")),
		PriceMax: parseInt64(c.Query("price_max")),
	}
	result, err := h.Listings.Search(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MapListingCollection(result))
}

// Get responds with one listing by id.
func (h ListingHandler) Get(c *gin.Context) {
	if h.Listings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	listing, err := h.Listings.Get(c.Request.Context(), listings.ListingID(id))
	if err != nil {
		if errors.Is(err, listings.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(listing))
}

func parseInt(value string) int {
	v, _ := strconv.Atoi(value)
	return v
}

func parseInt64(value string) int64 {
	v, _ := strconv.ParseInt(value, 10, 64)
	return v
}

var _ ListingHTTP = ListingHandler{}
