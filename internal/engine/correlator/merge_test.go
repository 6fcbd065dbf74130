package correlator

import (
	"testing"
	"time"

	"TransferScope/internal/model"
)

func TestMerge_OrderedAndStable(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	signals := []model.Event{
		{Source: model.SourceSignal, Kind: model.SignalOn, Timestamp: t0},
		{Source: model.SourceSignal, Kind: model.SignalOff, Timestamp: t0.Add(2 * time.Second)},
	}
	protocol := []model.Event{
		// Same timestamp as the SIGNAL_ON above: arrival order must hold.
		{Source: model.SourceProtocol, Kind: model.TransferStart, Timestamp: t0},
		{Source: model.SourceProtocol, Kind: model.TransferComplete, Timestamp: t0.Add(time.Second)},
	}

	merged := Merge(signals, protocol)
	if len(merged) != 4 {
		t.Fatalf("expected 4 merged events, got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Timestamp.Before(merged[i-1].Timestamp) {
			t.Fatalf("merged sequence not ordered at index %d", i)
		}
	}
	// Equal timestamps: signal stream was passed first, so its event
	// must precede the protocol event.
	if merged[0].Source != model.SourceSignal || merged[1].Source != model.SourceProtocol {
		t.Error("stable merge reordered equal-timestamp events")
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %d events", len(got))
	}
}
