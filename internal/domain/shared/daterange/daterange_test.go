package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNormalizesAndValidates(t *testing.T) {
	in := time.Date(2026, 7, 10, 15, 30, 0, 0, time.FixedZone("CET", 3600))
	out := time.Date(2026, 7, 12, 9, 0, 0, 0, time.UTC)

	dr, err := New(in, out)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 7, 10), dr.CheckIn)
	assert.Equal(t, date(2026, 7, 12), dr.CheckOut)

	_, err = New(out, in)
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)

	_, err = New(time.Time{}, out)
	assert.ErrorIs(t, err, ErrZeroDate)
}

func TestZeroNightRangeIsLegal(t *testing.T) {
	d := date(2026, 7, 10)
	dr, err := New(d, d)
	require.NoError(t, err)
	assert.Equal(t, 0, dr.Nights())
	assert.Empty(t, dr.StayNights())
}

func TestStayNightsExcludesCheckOut(t *testing.T) {
	dr, err := New(date(2026, 7, 10), date(2026, 7, 13))
	require.NoError(t, err)

	nights := dr.StayNights()
	require.Len(t, nights, 3)
	assert.Equal(t, date(2026, 7, 10), nights[0])
	assert.Equal(t, date(2026, 7, 11), nights[1])
	assert.Equal(t, date(2026, 7, 12), nights[2])

	assert.True(t, dr.Contains(date(2026, 7, 10)))
	assert.True(t, dr.Contains(date(2026, 7, 12)))
	assert.False(t, dr.Contains(date(2026, 7, 13)), "check-out day is not a stay-night")
	assert.False(t, dr.Contains(date(2026, 7, 9)))
}

func TestFormatParseRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2026-07-10")
	require.NoError(t, err)
	assert.Equal(t, date(2026, 7, 10), parsed)
	assert.Equal(t, "2026-07-10", FormatDate(parsed))

	_, err = ParseDate("10/07/2026")
	assert.Error(t, err)
}
