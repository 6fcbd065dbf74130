package model

import "time"

// EventSource identifies which instrumentation channel produced an event.
type EventSource uint8

const (
	// SourceSignal is the control-plane signaling channel.
	SourceSignal EventSource = iota
	// SourceProtocol is the file-transfer / packet-observation channel.
	SourceProtocol
)

// EventKind is the closed set of event types the correlator understands.
type EventKind uint8

const (
	SignalOn EventKind = iota
	SignalOff
	TransferStart
	TransferComplete
	ConnOpen
	ConnClose
)

// String returns the log-friendly name of the event kind.
func (k EventKind) String() string {
	switch k {
	case SignalOn:
		return "SIGNAL_ON"
	case SignalOff:
		return "SIGNAL_OFF"
	case TransferStart:
		return "TRANSFER_START"
	case TransferComplete:
		return "TRANSFER_COMPLETE"
	case ConnOpen:
		return "CONN_OPEN"
	case ConnClose:
		return "CONN_CLOSE"
	}
	return "UNKNOWN"
}

// Event is the canonical typed representation every adapter must produce.
// Timestamps carry millisecond precision. Label is only set for
// TransferStart events and holds the transferred file name.
type Event struct {
	Source    EventSource
	Kind      EventKind
	Timestamp time.Time
	Label     string
}
