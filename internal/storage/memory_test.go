package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/models"
)

func testRow(ticker, date string) models.PriceRow {
	d, err := time.Parse(models.DateFormat, date)
	if err != nil {
		panic(err)
	}
	return models.PriceRow{
		Ticker: ticker,
		Date:   d,
		Open:   "100.00",
		High:   "105.00",
		Low:    "99.00",
		Close:  "104.00",
		Volume: "1000000",
	}
}

func testRange(t *testing.T, start, end string) models.DateRange {
	t.Helper()
	s, err := time.Parse(models.DateFormat, start)
	require.NoError(t, err)
	e, err := time.Parse(models.DateFormat, end)
	require.NoError(t, err)
	rng, err := models.NewDateRange(s, e)
	require.NoError(t, err)
	return rng
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Initialize(ctx))
	defer store.Close()

	rows := []models.PriceRow{
		testRow("AAPL", "2024-01-03"),
		testRow("AAPL", "2024-01-02"),
		testRow("AAPL", "2024-01-04"),
	}
	require.NoError(t, store.WriteRows(ctx, rows))

	got, err := store.ReadRows(ctx, "AAPL", testRange(t, "2024-01-01", "2024-01-10"))
	require.NoError(t, err)
	require.Len(t, got, 3)

	// ReadRows returns rows ordered by date ascending.
	assert.Equal(t, "2024-01-02", got[0].Date.Format(models.DateFormat))
	assert.Equal(t, "2024-01-03", got[1].Date.Format(models.DateFormat))
	assert.Equal(t, "2024-01-04", got[2].Date.Format(models.DateFormat))
}

func TestMemoryStoreDuplicatesSkipped(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := testRow("AAPL", "2024-01-02")
	require.NoError(t, store.WriteRows(ctx, []models.PriceRow{first}))

	// Re-writing the same (ticker, date) leaves the first row in place.
	second := testRow("AAPL", "2024-01-02")
	second.Close = "999.00"
	second.High = "999.00"
	require.NoError(t, store.WriteRows(ctx, []models.PriceRow{second}))

	got, err := store.ReadRows(ctx, "AAPL", testRange(t, "2024-01-01", "2024-01-10"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "104.00", got[0].Close)
}

func TestMemoryStoreRejectsInvalidRow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	bad := testRow("AAPL", "2024-01-02")
	bad.High = "1.00" // below open and close

	err := store.WriteRows(ctx, []models.PriceRow{bad})
	require.Error(t, err)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert", se.Operation)
	assert.Equal(t, "prices", se.Table)
}

func TestMemoryStoreExistingDates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.WriteRows(ctx, []models.PriceRow{
		testRow("AAPL", "2024-01-02"),
		testRow("AAPL", "2024-01-05"),
		testRow("AAPL", "2024-02-01"),
		testRow("MSFT", "2024-01-02"),
	}))

	dates, err := store.ExistingDates(ctx, "AAPL", testRange(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)

	// Only the requested ticker and range, in no particular order.
	assert.ElementsMatch(t, []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}, dates)
}

func TestMemoryStoreExistingDatesUnknownTicker(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	dates, err := store.ExistingDates(ctx, "NOPE", testRange(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestMemoryStoreReadRowsRangeFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.WriteRows(ctx, []models.PriceRow{
		testRow("AAPL", "2024-01-01"),
		testRow("AAPL", "2024-01-15"),
		testRow("AAPL", "2024-01-31"),
	}))

	got, err := store.ReadRows(ctx, "AAPL", testRange(t, "2024-01-10", "2024-01-20"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-15", got[0].Date.Format(models.DateFormat))
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.WriteRows(ctx, []models.PriceRow{
		testRow("AAPL", "2024-01-02"),
		testRow("AAPL", "2024-01-03"),
		testRow("MSFT", "2024-02-01"),
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalRows)
	assert.Equal(t, 2, stats.TotalTickers)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), stats.EarliestDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), stats.LatestDate)
}

func TestMemoryStoreCloseClears(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.WriteRows(ctx, []models.PriceRow{testRow("AAPL", "2024-01-02")}))
	require.NoError(t, store.Close())

	got, err := store.ReadRows(ctx, "AAPL", testRange(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreHealthCheck(t *testing.T) {
	assert.NoError(t, NewMemoryStore().HealthCheck(context.Background()))
}
