package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the inventory provider's REST API. Every call flows
// through the request queue (serialized, spaced dispatches) and the shared
// retry policy, with a bearer token from the token source.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  *TokenSource
	Queue   *Queue
	Retry   RetryPolicy
	Logger  *slog.Logger
}

const defaultPageSize = 100

// ListListings fetches the full listings collection, walking the provider's
// limit/skip pagination until a short page comes back.
func (c *Client) ListListings(ctx context.Context, params ListParams) ([]Listing, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	var all []Listing
	for skip := 0; ; skip += limit {
		query := url.Values{
			"limit": {strconv.Itoa(limit)},
			"skip":  {strconv.Itoa(skip)},
		}
		if params.ActiveOnly {
			query.Set("active", "true")
		}
		var page listingsPage
		if err := c.do(ctx, http.MethodGet, "/listings", query, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if len(page.Results) < limit {
			return all, nil
		}
	}
}

// GetListing fetches a single listing by id.
func (c *Client) GetListing(ctx context.Context, id string) (Listing, error) {
	var listing Listing
	err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, nil, &listing)
	return listing, err
}

// GetCalendar fetches per-date availability and pricing for a listing over
// [from, to] inclusive.
func (c *Client) GetCalendar(ctx context.Context, listingID string, from, to time.Time) ([]CalendarDay, error) {
	query := url.Values{
		"from": {from.Format("2006-01-02")},
		"to":   {to.Format("2006-01-02")},
	}
	var page calendarPage
	err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(listingID)+"/calendar", query, nil, &page)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateReservation submits a reservation to the provider. The provider
// assigns the confirmation code and authoritative pricing. This is the only
// state-mutating call in the client and it is not idempotent: it is never
// auto-retried past the transport layer, and callers must not resubmit.
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (Reservation, error) {
	var created Reservation
	err := c.doOnce(ctx, http.MethodPost, "/reservations", nil, req, &created)
	return created, err
}

// UpdateReservation replaces the stay dates and guest count of an existing
// reservation.
func (c *Client) UpdateReservation(ctx context.Context, confirmationCode string, req CreateReservationRequest) (Reservation, error) {
	var updated Reservation
	err := c.doOnce(ctx, http.MethodPut, "/reservations/"+url.PathEscape(confirmationCode), nil, req, &updated)
	return updated, err
}

// CancelReservation marks a reservation cancelled.
func (c *Client) CancelReservation(ctx context.Context, confirmationCode string) (Reservation, error) {
	var cancelled Reservation
	err := c.doOnce(ctx, http.MethodPost, "/reservations/"+url.PathEscape(confirmationCode)+"/cancel", nil, nil, &cancelled)
	return cancelled, err
}

// ListReservations fetches reservations matching the filter.
func (c *Client) ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	query := url.Values{}
	if filter.ListingID != "" {
		query.Set("listingId", filter.ListingID)
	}
	if filter.ConfirmationCode != "" {
		query.Set("confirmationCode", filter.ConfirmationCode)
	}
	if filter.GuestEmail != "" {
		query.Set("guestEmail", filter.GuestEmail)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.From != "" {
		query.Set("from", filter.From)
	}
	if filter.To != "" {
		query.Set("to", filter.To)
	}
	var page reservationsPage
	if err := c.do(ctx, http.MethodGet, "/reservations", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// do dispatches through the queue with retry-on-429 around the whole
// request.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.Retry.Do(ctx, func() error {
		return c.dispatch(ctx, method, path, query, body, out)
	})
}

// doOnce dispatches without the retry wrapper. Used for reservation writes,
// where a retried request could double-book.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.dispatch(ctx, method, path, query, body, out)
}

func (c *Client) dispatch(ctx context.Context, method, path string, query url.Values, body, out any) error {
	call := func() error {
		return c.roundTrip(ctx, method, path, query, body, out)
	}
	if c.Queue != nil {
		return c.Queue.Enqueue(ctx, call)
	}
	return call()
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return err
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(snippet)}
		if c.Logger != nil {
			c.Logger.Warn("provider request failed", "method", method, "path", path, "status", resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("provider: decode %s %s: %w", method, path, err)
	}
	return nil
}
