// Package storage defines the persistence layer for daily price rows.
// The interfaces abstract over concrete backends (DuckDB, in-memory) and keep
// the orchestrator decoupled from any particular database.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/stocklens/stocklens/internal/models"
)

// PriceWriter persists price rows.
type PriceWriter interface {
	// WriteRows persists a batch of validated rows. Rows whose (ticker, date)
	// key is already stored are skipped silently: a coalesced re-download may
	// overlap the edge of data written by an earlier run.
	WriteRows(ctx context.Context, rows []models.PriceRow) error
}

// PriceReader retrieves stored price data.
type PriceReader interface {
	// ExistingDates returns the trading dates for which a row is already
	// stored for the ticker within rng. No ordering is guaranteed; callers
	// that care about order must sort or use set semantics.
	ExistingDates(ctx context.Context, ticker string, rng models.DateRange) ([]time.Time, error)

	// ReadRows returns the stored rows for the ticker within rng in
	// ascending date order.
	ReadRows(ctx context.Context, ticker string, rng models.DateRange) ([]models.PriceRow, error)
}

// StoreManager handles the store lifecycle.
type StoreManager interface {
	// Initialize prepares the backend: creates tables and indexes.
	// Idempotent and safe to call on every start.
	Initialize(ctx context.Context) error

	// Close releases connections and flushes pending writes. The store must
	// not be used afterwards.
	Close() error

	// HealthCheck verifies connectivity with a lightweight query.
	HealthCheck(ctx context.Context) error

	// Stats returns operational statistics about the stored data.
	Stats(ctx context.Context) (*StoreStats, error)
}

// PriceStore combines all storage capabilities. This is the interface the
// orchestrator consumes.
type PriceStore interface {
	PriceWriter
	PriceReader
	StoreManager
}

// StoreStats summarizes the stored data volume.
type StoreStats struct {
	// TotalRows is the total number of price rows stored.
	TotalRows int64

	// TotalTickers is the number of distinct tickers with data.
	TotalTickers int

	// EarliestDate is the oldest stored trading date.
	EarliestDate time.Time

	// LatestDate is the newest stored trading date.
	LatestDate time.Time
}

// StorageError wraps a failed storage operation with context about what was
// attempted. It supports errors.Is/As through Unwrap.
type StorageError struct {
	Operation string // operation that failed, e.g. "insert", "query"
	Table     string // table involved, may be empty
	Err       error  // underlying cause
}

// Error implements the error interface for StorageError.
func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("storage operation %s on table %s failed: %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("storage operation %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for error chain support.
func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError creates a StorageError for an arbitrary operation.
func NewStorageError(operation, table string, err error) *StorageError {
	return &StorageError{Operation: operation, Table: table, Err: err}
}

// NewQueryError creates a StorageError for a query operation.
func NewQueryError(table string, err error) *StorageError {
	return &StorageError{Operation: "query", Table: table, Err: err}
}

// NewInsertError creates a StorageError for an insert operation.
func NewInsertError(table string, err error) *StorageError {
	return &StorageError{Operation: "insert", Table: table, Err: err}
}
