package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 1, d.Day())

	d, err = ParseDate("2025-03-01T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, d.Hour())

	_, err = ParseDate("01/03/2025")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestFormatDatePtr(t *testing.T) {
	assert.Nil(t, FormatDatePtr(nil))

	d := time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC)
	got := FormatDatePtr(&d)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03-01", *got)
}

func TestDayCount(t *testing.T) {
	day := func(s string) *time.Time {
		d, err := ParseDate(s)
		require.NoError(t, err)
		return &d
	}

	assert.Equal(t, 1, DayCount(day("2025-03-01"), day("2025-03-01")))
	assert.Equal(t, 3, DayCount(day("2025-03-01"), day("2025-03-03")))
	assert.Equal(t, 0, DayCount(day("2025-03-03"), day("2025-03-01")))
	assert.Equal(t, 0, DayCount(nil, day("2025-03-01")))
	assert.Equal(t, 0, DayCount(day("2025-03-01"), nil))
}
