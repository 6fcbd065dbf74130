package model

import "time"

// CorrelatedTransfer is produced at most once per SIGNAL_ON event by the
// correlator. It is never mutated after creation. Optional timestamps use
// the zero time.Time as "unset".
type CorrelatedTransfer struct {
	SignalOnTime         time.Time     `json:"signal_on_time"`
	TransferStartTime    time.Time     `json:"transfer_start_time"`
	TransferCompleteTime time.Time     `json:"transfer_complete_time"`
	Duration             time.Duration `json:"duration_ns"`
	Latency              time.Duration `json:"latency_ns"`
	Label                string        `json:"label,omitempty"`

	// NextSignalOffTime is the first SIGNAL_OFF observed after this
	// record's SIGNAL_ON, independent of the matched transfer.
	NextSignalOffTime   time.Time     `json:"next_signal_off_time,omitzero"`
	CompletedAfterFalse bool          `json:"completed_after_false"`
	OverlapAfterFalse   time.Duration `json:"overlap_after_false_ns,omitempty"`

	// Connection association is heuristic and non-exclusive: the same
	// CONN_OPEN or CONN_CLOSE event may back more than one record.
	ConnOpenTime  time.Time `json:"conn_open_time,omitzero"`
	ConnCloseTime time.Time `json:"conn_close_time,omitzero"`

	OverlappedWithPrevious bool `json:"overlapped_with_previous_transfer"`
}
