package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "already midnight UTC",
			in:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "afternoon truncates to same day",
			in:   time.Date(2024, 1, 15, 16, 30, 0, 0, time.UTC),
			want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC zone converts before truncating",
			in:   time.Date(2024, 1, 15, 22, 0, 0, 0, ny),
			want: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Day(tt.in))
		})
	}
}

func TestNewDateRange(t *testing.T) {
	rng, err := NewDateRange(
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), rng.End)
}

func TestNewDateRangeRejectsReversed(t *testing.T) {
	_, err := NewDateRange(
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	)
	assert.Error(t, err)
}

func TestNewDateRangeSameDayDifferentHours(t *testing.T) {
	// Start later in the day than End, but the same calendar date: valid.
	rng, err := NewDateRange(
		time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, rng.DayCount())
}

func TestDateRangeContains(t *testing.T) {
	rng, err := NewDateRange(
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.True(t, rng.Contains(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rng.Contains(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)))
	assert.True(t, rng.Contains(time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)))
	assert.False(t, rng.Contains(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)))
	assert.False(t, rng.Contains(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)))
}

func TestDateRangeDays(t *testing.T) {
	rng, err := NewDateRange(
		time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	days := rng.Days()
	require.Len(t, days, 4)
	// Leap year: February 29 exists in 2024.
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), days[2])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), days[3])
}

func TestDateRangeDayCount(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2024-01-01", "2024-01-01", 1},
		{"2024-01-01", "2024-01-10", 10},
		{"2024-01-01", "2024-12-31", 366},
	}

	for _, tt := range tests {
		start, err := time.Parse(DateFormat, tt.start)
		require.NoError(t, err)
		end, err := time.Parse(DateFormat, tt.end)
		require.NoError(t, err)

		rng, err := NewDateRange(start, end)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rng.DayCount(), "%s..%s", tt.start, tt.end)
	}
}

func TestDateRangeString(t *testing.T) {
	rng, err := NewDateRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01..2024-01-10", rng.String())
}
