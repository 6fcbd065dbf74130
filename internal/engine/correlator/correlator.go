package correlator

import (
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/model"
)

// Default tolerance windows used when pairing events across the two
// instrumentation channels.
const (
	DefaultStartWindow = 10 * time.Second
	DefaultConnWindow  = 30 * time.Second
)

// Correlator pairs control-plane signal events with protocol events and
// derives timing anomalies for each transfer. It carries no state across
// invocations; a Correlator is safe to reuse, and runs analyzed in
// parallel must simply use separate input slices.
type Correlator struct {
	startWindow time.Duration
	connWindow  time.Duration
	log         zerolog.Logger
}

// New creates a Correlator with the given tolerance windows. Both windows
// must be non-negative; the Default* constants match the tooling's
// historical values.
func New(startWindow, connWindow time.Duration, log zerolog.Logger) *Correlator {
	return &Correlator{
		startWindow: startWindow,
		connWindow:  connWindow,
		log:         log,
	}
}

// Correlate executes one batch pass over the pre-sorted signal and
// protocol event sequences and returns the correlated transfer records.
//
// For every SIGNAL_ON, the first TRANSFER_START within the closed
// interval [signalOn, signalOn+startWindow] is matched, then the first
// TRANSFER_COMPLETE after it (unbounded). A SIGNAL_ON with no qualifying
// pair is logged and contributes nothing. Connection association is
// heuristic and non-exclusive: the same CONN_OPEN/CONN_CLOSE event may be
// attributed to multiple overlapping transfers.
func (c *Correlator) Correlate(signals, protocol []model.Event) []model.CorrelatedTransfer {
	var results []model.CorrelatedTransfer

	// Completion time of the previously emitted record. Local to this
	// pass so concurrent invocations cannot contaminate each other.
	var lastCompletion time.Time
	haveLast := false

	for i, sig := range signals {
		if sig.Kind != model.SignalOn {
			continue
		}
		onTime := sig.Timestamp

		start, ok := c.findTransferStart(protocol, onTime)
		if !ok {
			c.log.Info().
				Time("signal_on", onTime).
				Msg("no transfer start within tolerance window, skipping signal")
			continue
		}

		complete, ok := findTransferComplete(protocol, start.Timestamp)
		if !ok {
			c.log.Info().
				Time("signal_on", onTime).
				Time("transfer_start", start.Timestamp).
				Msg("transfer start without completion, skipping signal")
			continue
		}

		rec := model.CorrelatedTransfer{
			SignalOnTime:         onTime,
			TransferStartTime:    start.Timestamp,
			TransferCompleteTime: complete.Timestamp,
			Duration:             complete.Timestamp.Sub(start.Timestamp),
			Latency:              start.Timestamp.Sub(onTime),
			Label:                start.Label,
		}

		// Overlap with the next "off" signal, independent of the
		// matched transfer.
		if off, ok := findNextSignalOff(signals, i); ok {
			rec.NextSignalOffTime = off.Timestamp
			if complete.Timestamp.After(off.Timestamp) {
				rec.CompletedAfterFalse = true
				rec.OverlapAfterFalse = complete.Timestamp.Sub(off.Timestamp)
			}
		}

		rec.ConnOpenTime = c.findConnOpen(protocol, start.Timestamp)
		rec.ConnCloseTime = c.findConnClose(protocol, complete.Timestamp)

		if haveLast && onTime.Before(lastCompletion) {
			rec.OverlappedWithPrevious = true
		}

		results = append(results, rec)
		lastCompletion = complete.Timestamp
		haveLast = true
	}

	return results
}

// findTransferStart returns the first TRANSFER_START inside the closed
// window [onTime, onTime+startWindow].
func (c *Correlator) findTransferStart(protocol []model.Event, onTime time.Time) (model.Event, bool) {
	deadline := onTime.Add(c.startWindow)
	for _, ev := range protocol {
		if ev.Kind != model.TransferStart {
			continue
		}
		if ev.Timestamp.Before(onTime) {
			continue
		}
		if ev.Timestamp.After(deadline) {
			// Events are sorted; nothing later can qualify.
			return model.Event{}, false
		}
		return ev, true
	}
	return model.Event{}, false
}

// findTransferComplete returns the first TRANSFER_COMPLETE strictly after
// startTime. No window bounds this scan.
func findTransferComplete(protocol []model.Event, startTime time.Time) (model.Event, bool) {
	for _, ev := range protocol {
		if ev.Kind == model.TransferComplete && ev.Timestamp.After(startTime) {
			return ev, true
		}
	}
	return model.Event{}, false
}

// findNextSignalOff returns the first SIGNAL_OFF after index i in the
// signal sequence.
func findNextSignalOff(signals []model.Event, i int) (model.Event, bool) {
	for j := i + 1; j < len(signals); j++ {
		if signals[j].Kind == model.SignalOff {
			return signals[j], true
		}
	}
	return model.Event{}, false
}

// findConnOpen walks backward from startTime for the nearest preceding
// CONN_OPEN within the connection window. Returns the zero time when none
// qualifies; absence is not an error.
func (c *Correlator) findConnOpen(protocol []model.Event, startTime time.Time) time.Time {
	for k := len(protocol) - 1; k >= 0; k-- {
		ev := protocol[k]
		if ev.Kind != model.ConnOpen || !ev.Timestamp.Before(startTime) {
			continue
		}
		if startTime.Sub(ev.Timestamp) <= c.connWindow {
			return ev.Timestamp
		}
		return time.Time{}
	}
	return time.Time{}
}

// findConnClose walks forward from completeTime for the nearest following
// CONN_CLOSE within the connection window.
func (c *Correlator) findConnClose(protocol []model.Event, completeTime time.Time) time.Time {
	for _, ev := range protocol {
		if ev.Kind != model.ConnClose || !ev.Timestamp.After(completeTime) {
			continue
		}
		if ev.Timestamp.Sub(completeTime) <= c.connWindow {
			return ev.Timestamp
		}
		return time.Time{}
	}
	return time.Time{}
}
