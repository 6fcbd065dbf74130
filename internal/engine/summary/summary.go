// Package summary folds a run's correlated transfers into the aggregate
// statistics block of the report.
package summary

import (
	"TransferScope/internal/model"
)

// Summarize reduces the transfer sequence to summary statistics. It
// returns nil for an empty sequence; the caller skips the summary block
// entirely in that case, so no division by zero can occur.
func Summarize(transfers []model.CorrelatedTransfer) *model.SummaryStats {
	if len(transfers) == 0 {
		return nil
	}

	s := &model.SummaryStats{Count: len(transfers)}

	var latencySum, durationSum, overlapSum float64
	for i, tr := range transfers {
		latency := tr.Latency.Seconds()
		duration := tr.Duration.Seconds()

		latencySum += latency
		durationSum += duration
		if i == 0 || latency < s.MinLatency {
			s.MinLatency = latency
		}
		if latency > s.MaxLatency {
			s.MaxLatency = latency
		}
		if i == 0 || duration < s.MinDuration {
			s.MinDuration = duration
		}
		if duration > s.MaxDuration {
			s.MaxDuration = duration
		}

		if tr.CompletedAfterFalse {
			s.CompletedAfterFalseCount++
			overlap := tr.OverlapAfterFalse.Seconds()
			overlapSum += overlap
			if overlap > s.MaxOverlapAfterFalse {
				s.MaxOverlapAfterFalse = overlap
			}
		}
		if tr.OverlappedWithPrevious {
			s.OverlappedWithPreviousCount++
		}
	}

	n := float64(s.Count)
	s.AvgLatency = latencySum / n
	s.AvgDuration = durationSum / n
	s.CompletedAfterFalsePct = float64(s.CompletedAfterFalseCount) / n * 100
	s.OverlappedWithPreviousPct = float64(s.OverlappedWithPreviousCount) / n * 100
	if s.CompletedAfterFalseCount > 0 {
		s.AvgOverlapAfterFalse = overlapSum / float64(s.CompletedAfterFalseCount)
	}

	return s
}
