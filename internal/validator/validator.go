// Package validator checks user input before the pipeline runs: the requested
// date range and the syntactic shape of the ticker symbol. All functions are
// pure and report typed errors; the caller decides how to exit.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/stocklens/stocklens/internal/models"
)

// FormatError reports an input string that does not parse as a calendar date.
// Impossible dates such as 2024-02-30 are format errors too.
type FormatError struct {
	Input string
	Err   error
}

// Error implements the error interface for FormatError.
func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid date %q: expected a real calendar date in YYYY-MM-DD format", e.Input)
}

// Unwrap returns the underlying parse error.
func (e *FormatError) Unwrap() error { return e.Err }

// OrderError reports a start date strictly after the end date.
type OrderError struct {
	Start time.Time
	End   time.Time
}

// Error implements the error interface for OrderError.
func (e *OrderError) Error() string {
	return fmt.Sprintf("start date %s cannot be after end date %s",
		e.Start.Format(models.DateFormat), e.End.Format(models.DateFormat))
}

// ParseRange parses the start and end date strings and returns the validated
// requested range. It fails with *FormatError when either string does not
// parse and with *OrderError when start is strictly after end.
func ParseRange(startText, endText string) (models.DateRange, error) {
	start, err := time.Parse(models.DateFormat, startText)
	if err != nil {
		return models.DateRange{}, &FormatError{Input: startText, Err: err}
	}
	end, err := time.Parse(models.DateFormat, endText)
	if err != nil {
		return models.DateRange{}, &FormatError{Input: endText, Err: err}
	}
	if start.After(end) {
		return models.DateRange{}, &OrderError{Start: start, End: end}
	}
	return models.DateRange{Start: models.Day(start), End: models.Day(end)}, nil
}

// Yahoo-style symbols: letters, digits, and the separators used by index,
// futures and class tickers (^GSPC, BRK-B, GC=F, RDS.A).
var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.^=-]{0,11}$`)

// ValidateTickerSymbol checks the ticker syntactically. It does not verify
// that the symbol exists; that requires a provider round-trip and is the
// fetcher's job.
func ValidateTickerSymbol(ticker string) error {
	if strings.TrimSpace(ticker) == "" {
		return fmt.Errorf("ticker symbol is required")
	}
	if !tickerPattern.MatchString(ticker) {
		return fmt.Errorf("invalid ticker symbol %q", ticker)
	}
	return nil
}
