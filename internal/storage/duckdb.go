package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb/v2"
	"github.com/shopspring/decimal"

	"github.com/stocklens/stocklens/internal/models"
)

// DuckDBStore implements PriceStore on DuckDB. Bulk inserts go through the
// DuckDB Appender API, which is considerably faster than prepared INSERT
// statements for batch loads.
type DuckDBStore struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewDuckDBStore creates a DuckDB-backed store. dbPath may be ":memory:" for
// an in-memory database or a file path for persistent storage.
func NewDuckDBStore(dbPath string, logger *slog.Logger) (*DuckDBStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, NewStorageError("open", "", fmt.Errorf("failed to open DuckDB database: %w", err))
	}

	// Single writer pattern as recommended for DuckDB.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &DuckDBStore{
		db:     db,
		dbPath: dbPath,
		logger: logger.With("component", "duckdb_store"),
	}, nil
}

// Initialize implements StoreManager.Initialize. It creates the prices table
// and its indexes; safe to call on every start.
func (d *DuckDBStore) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Debug("initializing DuckDB store", "db_path", d.dbPath)

	createTable := `
	CREATE TABLE IF NOT EXISTS prices (
		ticker VARCHAR NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		open DOUBLE NOT NULL,
		high DOUBLE NOT NULL,
		low DOUBLE NOT NULL,
		close DOUBLE NOT NULL,
		volume DOUBLE NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT prices_pk PRIMARY KEY (ticker, date),
		CONSTRAINT prices_ohlc_valid CHECK (high >= open AND high >= close AND low <= open AND low <= close),
		CONSTRAINT prices_positive CHECK (open > 0 AND high > 0 AND low > 0 AND close > 0),
		CONSTRAINT prices_volume_non_negative CHECK (volume >= 0)
	)`
	if _, err := d.db.ExecContext(ctx, createTable); err != nil {
		return NewStorageError("initialize", "prices", fmt.Errorf("failed to create prices table: %w", err))
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_prices_ticker ON prices (ticker)",
		"CREATE INDEX IF NOT EXISTS idx_prices_ticker_date ON prices (ticker, date)",
	}
	for _, stmt := range indexes {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return NewStorageError("initialize", "prices", fmt.Errorf("failed to create index: %w", err))
		}
	}

	return nil
}

// WriteRows implements PriceWriter.WriteRows. Rows already present for
// (ticker, date) are filtered out before the append, since the Appender API
// has no ON CONFLICT handling.
func (d *DuckDBStore) WriteRows(ctx context.Context, rows []models.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()

	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return NewInsertError("prices", fmt.Errorf("invalid row at index %d: %w", i, err))
		}
	}

	fresh, err := d.filterExisting(ctx, rows)
	if err != nil {
		return NewInsertError("prices", fmt.Errorf("failed to check existing rows: %w", err))
	}
	if len(fresh) == 0 {
		d.logger.Debug("all rows already stored", "count", len(rows))
		return nil
	}

	conn, err := d.db.Conn(ctx)
	if err != nil {
		return NewInsertError("prices", fmt.Errorf("failed to get connection: %w", err))
	}
	defer conn.Close()

	var driverConn *duckdb.Conn
	err = conn.Raw(func(dc interface{}) error {
		var ok bool
		driverConn, ok = dc.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("underlying connection is not a DuckDB connection")
		}
		return nil
	})
	if err != nil {
		return NewInsertError("prices", fmt.Errorf("failed to get DuckDB connection: %w", err))
	}

	appender, err := duckdb.NewAppenderFromConn(driverConn, "", "prices")
	if err != nil {
		return NewInsertError("prices", fmt.Errorf("failed to create appender: %w", err))
	}
	defer appender.Close()

	for i := range fresh {
		if err := d.appendRow(appender, &fresh[i]); err != nil {
			return NewInsertError("prices", fmt.Errorf("failed to append row %s: %w", fresh[i].String(), err))
		}
	}
	if err := appender.Flush(); err != nil {
		return NewInsertError("prices", fmt.Errorf("failed to flush appender: %w", err))
	}

	d.logger.Debug("stored price rows",
		"written", len(fresh),
		"skipped", len(rows)-len(fresh),
		"duration", time.Since(start))

	return nil
}

// filterExisting drops rows whose (ticker, date) key is already stored.
func (d *DuckDBStore) filterExisting(ctx context.Context, rows []models.PriceRow) ([]models.PriceRow, error) {
	spans := make(map[string]models.DateRange)
	for _, row := range rows {
		span, ok := spans[row.Ticker]
		if !ok {
			spans[row.Ticker] = models.DateRange{Start: row.Date, End: row.Date}
			continue
		}
		if row.Date.Before(span.Start) {
			span.Start = row.Date
		}
		if row.Date.After(span.End) {
			span.End = row.Date
		}
		spans[row.Ticker] = span
	}

	type key struct {
		ticker string
		date   time.Time
	}
	have := make(map[key]struct{})
	for ticker, span := range spans {
		dates, err := d.ExistingDates(ctx, ticker, span)
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			have[key{ticker, models.Day(date)}] = struct{}{}
		}
	}

	fresh := make([]models.PriceRow, 0, len(rows))
	for _, row := range rows {
		if _, dup := have[key{row.Ticker, models.Day(row.Date)}]; dup {
			continue
		}
		fresh = append(fresh, row)
	}
	return fresh, nil
}

// appendRow appends a single price row through the DuckDB appender. The value
// order must match the prices table column order.
func (d *DuckDBStore) appendRow(appender *duckdb.Appender, row *models.PriceRow) error {
	open, err := decimal.NewFromString(row.Open)
	if err != nil {
		return fmt.Errorf("invalid open price: %w", err)
	}
	high, err := decimal.NewFromString(row.High)
	if err != nil {
		return fmt.Errorf("invalid high price: %w", err)
	}
	low, err := decimal.NewFromString(row.Low)
	if err != nil {
		return fmt.Errorf("invalid low price: %w", err)
	}
	close, err := decimal.NewFromString(row.Close)
	if err != nil {
		return fmt.Errorf("invalid close price: %w", err)
	}
	volume, err := decimal.NewFromString(row.Volume)
	if err != nil {
		return fmt.Errorf("invalid volume: %w", err)
	}

	openF, _ := open.Float64()
	highF, _ := high.Float64()
	lowF, _ := low.Float64()
	closeF, _ := close.Float64()
	volumeF, _ := volume.Float64()

	return appender.AppendRow(
		row.Ticker,
		row.Date,
		openF,
		highF,
		lowF,
		closeF,
		volumeF,
		time.Now().UTC(),
	)
}

// ExistingDates implements PriceReader.ExistingDates.
func (d *DuckDBStore) ExistingDates(ctx context.Context, ticker string, rng models.DateRange) ([]time.Time, error) {
	query := `SELECT date FROM prices WHERE ticker = ? AND date >= ? AND date <= ?`

	rows, err := d.db.QueryContext(ctx, query, ticker, rng.Start, rng.End)
	if err != nil {
		return nil, NewQueryError("prices", fmt.Errorf("failed to query existing dates: %w", err))
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, NewQueryError("prices", fmt.Errorf("failed to scan date: %w", err))
		}
		dates = append(dates, models.Day(date))
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("prices", err)
	}
	return dates, nil
}

// ReadRows implements PriceReader.ReadRows. Results are ordered by date
// ascending, ready for the presenter.
func (d *DuckDBStore) ReadRows(ctx context.Context, ticker string, rng models.DateRange) ([]models.PriceRow, error) {
	query := `
	SELECT ticker, date, open, high, low, close, volume
	FROM prices
	WHERE ticker = ? AND date >= ? AND date <= ?
	ORDER BY date ASC`

	rows, err := d.db.QueryContext(ctx, query, ticker, rng.Start, rng.End)
	if err != nil {
		return nil, NewQueryError("prices", fmt.Errorf("failed to query rows: %w", err))
	}
	defer rows.Close()

	var result []models.PriceRow
	for rows.Next() {
		var row models.PriceRow
		var open, high, low, close, volume float64
		if err := rows.Scan(&row.Ticker, &row.Date, &open, &high, &low, &close, &volume); err != nil {
			return nil, NewQueryError("prices", fmt.Errorf("failed to scan row: %w", err))
		}
		row.Date = models.Day(row.Date)
		row.Open = decimal.NewFromFloat(open).String()
		row.High = decimal.NewFromFloat(high).String()
		row.Low = decimal.NewFromFloat(low).String()
		row.Close = decimal.NewFromFloat(close).String()
		row.Volume = decimal.NewFromFloat(volume).String()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("prices", err)
	}
	return result, nil
}

// Stats implements StoreManager.Stats.
func (d *DuckDBStore) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{}

	row := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT ticker) FROM prices`)
	if err := row.Scan(&stats.TotalRows, &stats.TotalTickers); err != nil {
		return nil, NewQueryError("prices", fmt.Errorf("failed to query stats: %w", err))
	}

	if stats.TotalRows > 0 {
		var earliest, latest time.Time
		row = d.db.QueryRowContext(ctx, `SELECT MIN(date), MAX(date) FROM prices`)
		if err := row.Scan(&earliest, &latest); err != nil {
			return nil, NewQueryError("prices", fmt.Errorf("failed to query date bounds: %w", err))
		}
		stats.EarliestDate = models.Day(earliest)
		stats.LatestDate = models.Day(latest)
	}

	return stats, nil
}

// HealthCheck implements StoreManager.HealthCheck.
func (d *DuckDBStore) HealthCheck(ctx context.Context) error {
	var one int
	if err := d.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return NewStorageError("health_check", "", err)
	}
	return nil
}

// Close implements StoreManager.Close.
func (d *DuckDBStore) Close() error {
	d.logger.Debug("closing DuckDB store")
	return d.db.Close()
}
