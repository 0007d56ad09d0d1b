// Package models provides the data structures shared across the application:
// daily price rows, trading-date ranges, and their validation rules.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRow is one day of OHLCV data for a ticker. Prices and volume are kept
// as decimal strings so no precision is lost between the market-data provider
// and the store.
type PriceRow struct {
	Ticker string    `json:"ticker" db:"ticker"`
	Date   time.Time `json:"date" db:"date"`
	Open   string    `json:"open" db:"open"`
	High   string    `json:"high" db:"high"`
	Low    string    `json:"low" db:"low"`
	Close  string    `json:"close" db:"close"`
	Volume string    `json:"volume" db:"volume"`
}

// ValidationError reports a price row field that failed validation.
type ValidationError struct {
	Field   string // name of the field that failed validation
	Message string // description of the failure
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %s: %s", e.Field, e.Message)
}

// Validate checks the row: all prices must be positive decimals, volume
// non-negative, high >= max(open, close), low <= min(open, close), and the
// ticker and date must be set.
func (p *PriceRow) Validate() error {
	if p.Ticker == "" {
		return &ValidationError{Field: "ticker", Message: "ticker cannot be empty"}
	}
	if p.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date cannot be zero"}
	}

	open, err := decimal.NewFromString(p.Open)
	if err != nil {
		return &ValidationError{Field: "open", Message: fmt.Sprintf("invalid open price format: %v", err)}
	}
	high, err := decimal.NewFromString(p.High)
	if err != nil {
		return &ValidationError{Field: "high", Message: fmt.Sprintf("invalid high price format: %v", err)}
	}
	low, err := decimal.NewFromString(p.Low)
	if err != nil {
		return &ValidationError{Field: "low", Message: fmt.Sprintf("invalid low price format: %v", err)}
	}
	close, err := decimal.NewFromString(p.Close)
	if err != nil {
		return &ValidationError{Field: "close", Message: fmt.Sprintf("invalid close price format: %v", err)}
	}
	volume, err := decimal.NewFromString(p.Volume)
	if err != nil {
		return &ValidationError{Field: "volume", Message: fmt.Sprintf("invalid volume format: %v", err)}
	}

	zero := decimal.Zero
	if open.LessThanOrEqual(zero) {
		return &ValidationError{Field: "open", Message: "open price must be greater than 0"}
	}
	if high.LessThanOrEqual(zero) {
		return &ValidationError{Field: "high", Message: "high price must be greater than 0"}
	}
	if low.LessThanOrEqual(zero) {
		return &ValidationError{Field: "low", Message: "low price must be greater than 0"}
	}
	if close.LessThanOrEqual(zero) {
		return &ValidationError{Field: "close", Message: "close price must be greater than 0"}
	}
	if volume.LessThan(zero) {
		return &ValidationError{Field: "volume", Message: "volume must be greater than or equal to 0"}
	}

	if maxOpenClose := decimal.Max(open, close); high.LessThan(maxOpenClose) {
		return &ValidationError{
			Field:   "high",
			Message: fmt.Sprintf("high price (%s) must be greater than or equal to max(open, close) (%s)", high, maxOpenClose),
		}
	}
	if minOpenClose := decimal.Min(open, close); low.GreaterThan(minOpenClose) {
		return &ValidationError{
			Field:   "low",
			Message: fmt.Sprintf("low price (%s) must be less than or equal to min(open, close) (%s)", low, minOpenClose),
		}
	}

	return nil
}

// OpenDecimal returns the open price as a decimal.Decimal.
func (p *PriceRow) OpenDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Open)
}

// HighDecimal returns the high price as a decimal.Decimal.
func (p *PriceRow) HighDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.High)
}

// LowDecimal returns the low price as a decimal.Decimal.
func (p *PriceRow) LowDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Low)
}

// CloseDecimal returns the close price as a decimal.Decimal.
func (p *PriceRow) CloseDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Close)
}

// VolumeDecimal returns the volume as a decimal.Decimal.
func (p *PriceRow) VolumeDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Volume)
}

// String returns a human-readable representation of the row.
func (p *PriceRow) String() string {
	return fmt.Sprintf("PriceRow{Ticker: %s, Date: %s, O: %s, H: %s, L: %s, C: %s, V: %s}",
		p.Ticker, p.Date.Format(DateFormat), p.Open, p.High, p.Low, p.Close, p.Volume)
}

// NewPriceRow creates a validated price row. The date is day-normalized.
func NewPriceRow(ticker string, date time.Time, open, high, low, close, volume string) (*PriceRow, error) {
	row := &PriceRow{
		Ticker: ticker,
		Date:   Day(date),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
	if err := row.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create price row: %w", err)
	}
	return row, nil
}
