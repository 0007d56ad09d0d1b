package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stocklens/stocklens/internal/models"
)

// MemoryStore implements PriceStore with an in-memory map. It backs tests and
// throwaway runs where persistence across invocations is not wanted.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[time.Time]models.PriceRow // ticker -> date -> row
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[time.Time]models.PriceRow),
	}
}

// Initialize implements StoreManager.Initialize. No schema to create.
func (m *MemoryStore) Initialize(ctx context.Context) error {
	return nil
}

// WriteRows implements PriceWriter.WriteRows. Duplicate (ticker, date) keys
// are skipped, matching the DuckDB backend's behavior.
func (m *MemoryStore) WriteRows(ctx context.Context, rows []models.PriceRow) error {
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return NewInsertError("prices", fmt.Errorf("invalid row at index %d: %w", i, err))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range rows {
		byDate, ok := m.data[row.Ticker]
		if !ok {
			byDate = make(map[time.Time]models.PriceRow)
			m.data[row.Ticker] = byDate
		}
		date := models.Day(row.Date)
		if _, dup := byDate[date]; dup {
			continue
		}
		row.Date = date
		byDate[date] = row
	}
	return nil
}

// ExistingDates implements PriceReader.ExistingDates. Map iteration order is
// deliberately left as-is: callers must not rely on ordering.
func (m *MemoryStore) ExistingDates(ctx context.Context, ticker string, rng models.DateRange) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dates []time.Time
	for date := range m.data[ticker] {
		if rng.Contains(date) {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

// ReadRows implements PriceReader.ReadRows, ordered by date ascending.
func (m *MemoryStore) ReadRows(ctx context.Context, ticker string, rng models.DateRange) ([]models.PriceRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []models.PriceRow
	for date, row := range m.data[ticker] {
		if rng.Contains(date) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

// Stats implements StoreManager.Stats.
func (m *MemoryStore) Stats(ctx context.Context) (*StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &StoreStats{TotalTickers: len(m.data)}
	for _, byDate := range m.data {
		for date := range byDate {
			stats.TotalRows++
			if stats.EarliestDate.IsZero() || date.Before(stats.EarliestDate) {
				stats.EarliestDate = date
			}
			if date.After(stats.LatestDate) {
				stats.LatestDate = date
			}
		}
	}
	return stats, nil
}

// HealthCheck implements StoreManager.HealthCheck. Always healthy.
func (m *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}

// Close implements StoreManager.Close.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[time.Time]models.PriceRow)
	return nil
}
