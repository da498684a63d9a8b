package ginserver

import (
	"context"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/availability"
	"staybook/internal/app/dto"
	"staybook/internal/domain/shared/daterange"
)

// CalendarService resolves a listing's calendar window.
type CalendarService interface {
	BlockedDates(ctx context.Context, listingID string, from, to time.Time, refresh bool) ([]time.Time, []availability.NightlyPrice, error)
}

type CalendarHandler struct {
	Calendars CalendarService
}

// Window serves the widget's blocked-dates and nightly-price view. The
// refresh flag bypasses the cache after a quote conflict.
func (h CalendarHandler) Window(c *gin.Context) {
	if h.Calendars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "calendar handler unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "listing id is required"})
		return
	}
	from, to, err := resolveWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid date window"})
		return
	}
	refresh := c.Query("refresh") == "true"

	blocked, prices, err := h.Calendars.BlockedDates(c.Request.Context(), listingID, from, to, refresh)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	formatted := make([]string, 0, len(blocked))
	for _, d := range blocked {
		formatted = append(formatted, daterange.FormatDate(d))
	}
	c.JSON(http.StatusOK, dto.MapCalendarWindow(formatted, prices))
}

// resolveWindow defaults to the next six months when the caller gives no
// bounds.
func resolveWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := daterange.Normalize(time.Now())
	from, to := now, now.AddDate(0, 6, 0)
	var err error
	if fromRaw != "" {
		if from, err = daterange.ParseDate(fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toRaw != "" {
		if to, err = daterange.ParseDate(toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

var _ CalendarHTTP = CalendarHandler{}
