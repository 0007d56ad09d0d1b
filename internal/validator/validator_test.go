package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/models"
)

func TestParseRangeValid(t *testing.T) {
	rng, err := ParseRange("2024-01-01", "2024-06-30")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), rng.End)
}

func TestParseRangeSingleDay(t *testing.T) {
	rng, err := ParseRange("2024-05-01", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 1, rng.DayCount())
}

func TestParseRangeFormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		input string
	}{
		{"impossible calendar date", "2024-02-30", "2024-03-01", "2024-02-30"},
		{"wrong separator", "2024/01/01", "2024-01-31", "2024/01/01"},
		{"garbage start", "yesterday", "2024-01-31", "yesterday"},
		{"bad end date", "2024-01-01", "2024-13-01", "2024-13-01"},
		{"truncated date", "2024-01", "2024-01-31", "2024-01"},
		{"empty start", "", "2024-01-31", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRange(tt.start, tt.end)
			require.Error(t, err)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.input, fe.Input)
			assert.Contains(t, err.Error(), "YYYY-MM-DD")
		})
	}
}

func TestParseRangeOrderError(t *testing.T) {
	_, err := ParseRange("2024-05-01", "2024-04-01")
	require.Error(t, err)

	var oe *OrderError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), oe.Start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), oe.End)

	var fe *FormatError
	assert.False(t, errors.As(err, &fe))
}

func TestFormatErrorUnwrap(t *testing.T) {
	_, err := ParseRange("not-a-date", "2024-01-31")
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Error(t, fe.Unwrap())
}

func TestParseRangeNormalizesToUTC(t *testing.T) {
	rng, err := ParseRange("2024-01-15", "2024-01-16")
	require.NoError(t, err)

	assert.Equal(t, time.UTC, rng.Start.Location())
	assert.Equal(t, models.Day(rng.Start), rng.Start)
}

func TestValidateTickerSymbol(t *testing.T) {
	valid := []string{"AAPL", "msft", "^GSPC", "BRK-B", "RDS.A", "GC=F", "0700.HK"}
	for _, ticker := range valid {
		t.Run("valid "+ticker, func(t *testing.T) {
			assert.NoError(t, ValidateTickerSymbol(ticker))
		})
	}

	invalid := []string{"", "   ", "AAPL MSFT", "AB$", "-AAPL", "TOOLONGTICKER", "AA\nPL"}
	for _, ticker := range invalid {
		t.Run("invalid "+ticker, func(t *testing.T) {
			assert.Error(t, ValidateTickerSymbol(ticker))
		})
	}
}
