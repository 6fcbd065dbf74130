package summary

import (
	"math"
	"testing"
	"time"

	"TransferScope/internal/model"
)

func transfer(latency, duration time.Duration) model.CorrelatedTransfer {
	return model.CorrelatedTransfer{Latency: latency, Duration: duration}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil); got != nil {
		t.Fatalf("expected nil summary for empty input, got %+v", got)
	}
}

func TestSummarize_Stats(t *testing.T) {
	transfers := []model.CorrelatedTransfer{
		transfer(1*time.Second, 2*time.Second),
		transfer(3*time.Second, 6*time.Second),
	}
	transfers[1].CompletedAfterFalse = true
	transfers[1].OverlapAfterFalse = 1500 * time.Millisecond
	transfers[1].OverlappedWithPrevious = true

	s := Summarize(transfers)
	if s == nil {
		t.Fatal("expected a summary")
	}
	if s.Count != 2 {
		t.Fatalf("expected count 2, got %d", s.Count)
	}

	approx := func(name string, got, want float64) {
		t.Helper()
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: got %f, want %f", name, got, want)
		}
	}
	approx("avg latency", s.AvgLatency, 2.0)
	approx("min latency", s.MinLatency, 1.0)
	approx("max latency", s.MaxLatency, 3.0)
	approx("avg duration", s.AvgDuration, 4.0)
	approx("min duration", s.MinDuration, 2.0)
	approx("max duration", s.MaxDuration, 6.0)

	if s.CompletedAfterFalseCount != 1 {
		t.Errorf("expected 1 completed-after-false, got %d", s.CompletedAfterFalseCount)
	}
	approx("completed-after-false pct", s.CompletedAfterFalsePct, 50.0)
	approx("avg overlap", s.AvgOverlapAfterFalse, 1.5)
	approx("max overlap", s.MaxOverlapAfterFalse, 1.5)

	if s.OverlappedWithPreviousCount != 1 {
		t.Errorf("expected 1 overlapped-with-previous, got %d", s.OverlappedWithPreviousCount)
	}
	approx("overlapped pct", s.OverlappedWithPreviousPct, 50.0)
}

func TestSummarize_NoAnomalies(t *testing.T) {
	s := Summarize([]model.CorrelatedTransfer{transfer(time.Second, time.Second)})
	if s.CompletedAfterFalseCount != 0 || s.CompletedAfterFalsePct != 0 {
		t.Errorf("expected zero false-signal stats, got %+v", s)
	}
	if s.AvgOverlapAfterFalse != 0 || s.MaxOverlapAfterFalse != 0 {
		t.Errorf("expected zero overlap stats, got %+v", s)
	}
}
