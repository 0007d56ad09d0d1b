// Package gaps identifies missing trading dates in stored price data and
// groups them into contiguous ranges suitable for batch re-download.
package gaps

import (
	"time"

	"github.com/stocklens/stocklens/internal/models"
)

// FindMissingDates returns every calendar date in rng that is absent from
// stored, in ascending order. The stored slice carries no ordering guarantee
// from the store; it is normalized and deduplicated here. Every calendar day
// is a candidate, so weekends and holidays that the store never received rows
// for will be reported as missing.
//
// An empty result means the store already covers the full range and there is
// nothing to fetch.
func FindMissingDates(rng models.DateRange, stored []time.Time) []time.Time {
	have := make(map[time.Time]struct{}, len(stored))
	for _, d := range stored {
		have[models.Day(d)] = struct{}{}
	}

	var missing []time.Time
	for d := models.Day(rng.Start); !d.After(models.Day(rng.End)); d = d.AddDate(0, 0, 1) {
		if _, ok := have[d]; !ok {
			missing = append(missing, d)
		}
	}
	return missing
}

// CoalesceRanges groups an ascending sequence of dates into contiguous runs.
// A run extends while the next date is exactly one calendar day after the
// current last; any larger step closes the run and opens a new one. Every
// input date lands in exactly one output range, ranges are disjoint and
// ascending, and a single date yields a range with Start == End. Empty input
// yields no ranges.
func CoalesceRanges(missing []time.Time) []models.DateRange {
	if len(missing) == 0 {
		return nil
	}

	var ranges []models.DateRange
	first, last := missing[0], missing[0]
	for _, d := range missing[1:] {
		if d.Equal(last.AddDate(0, 0, 1)) {
			last = d
			continue
		}
		ranges = append(ranges, models.DateRange{Start: first, End: last})
		first, last = d, d
	}
	return append(ranges, models.DateRange{Start: first, End: last})
}
