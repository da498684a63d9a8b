package bookingwidget

import (
	"sort"
	"time"

	"staybook/internal/domain/shared/daterange"
)

// BlockedDateSet is the client's local knowledge of which dates cannot be
// booked. It is advisory: built from calendar fetches and lazily extended
// whenever a quote reveals dates the client did not know were taken. The
// provider stays the source of truth.
type BlockedDateSet struct {
	dates map[string]time.Time
}

func NewBlockedDateSet() *BlockedDateSet {
	return &BlockedDateSet{dates: make(map[string]time.Time)}
}

// Merge unions the given dates into the set and reports how many were new.
// Feeding the same dates twice is a no-op.
func (s *BlockedDateSet) Merge(dates []time.Time) int {
	added := 0
	for _, d := range dates {
		key := daterange.FormatDate(d)
		if _, ok := s.dates[key]; !ok {
			s.dates[key] = daterange.Normalize(d)
			added++
		}
	}
	return added
}

// Replace swaps the whole set for a freshly fetched calendar.
func (s *BlockedDateSet) Replace(dates []time.Time) {
	s.dates = make(map[string]time.Time, len(dates))
	s.Merge(dates)
}

// Contains reports whether the date is known-blocked.
func (s *BlockedDateSet) Contains(date time.Time) bool {
	_, ok := s.dates[daterange.FormatDate(date)]
	return ok
}

// Len returns the number of blocked dates.
func (s *BlockedDateSet) Len() int {
	return len(s.dates)
}

// Dates returns the blocked dates in ascending order.
func (s *BlockedDateSet) Dates() []time.Time {
	out := make([]time.Time, 0, len(s.dates))
	for _, d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
