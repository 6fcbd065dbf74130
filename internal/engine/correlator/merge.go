package correlator

import (
	"sort"

	"TransferScope/internal/model"
)

// Merge combines any number of per-source event streams into one sequence
// ordered by timestamp. The sort is stable: events with equal timestamps
// keep their original arrival order and are never reordered.
func Merge(streams ...[]model.Event) []model.Event {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	merged := make([]model.Event, 0, total)
	for _, s := range streams {
		merged = append(merged, s...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}
