// Package fetch is the market-data boundary: it downloads daily price series
// from the remote provider for the sub-ranges the gap detector found missing.
package fetch

import (
	"context"

	"github.com/stocklens/stocklens/internal/models"
)

// Fetcher downloads historical daily prices.
type Fetcher interface {
	// Fetch returns the daily price rows for the ticker within rng, ascending
	// by date. Non-trading days simply yield no rows; that is not an error.
	// One call is made per coalesced missing range.
	Fetch(ctx context.Context, ticker string, rng models.DateRange) ([]models.PriceRow, error)

	// ValidateTicker verifies with the provider that the ticker exists.
	ValidateTicker(ctx context.Context, ticker string) error
}
