package metrics

import "time"

// Column names recognized in the packet table. They follow the capture
// tool's field names so the CSV adapter can map headers directly.
const (
	ColFrameTime = "frame.time"
	ColFrameLen  = "frame.len"
	ColSrcAddr   = "ip.src"
	ColDstAddr   = "ip.dst"

	ColSYN = "tcp.flags.syn"
	ColFIN = "tcp.flags.fin"
	ColRST = "tcp.flags.reset"

	ColRetransmission = "tcp.analysis.retransmission"
	ColZeroWindow     = "tcp.analysis.zero_window"
	ColWindowFull     = "tcp.analysis.window_full"
	ColLostSegment    = "tcp.analysis.lost_segment"
	ColDuplicateACK   = "tcp.analysis.duplicate_ack"

	// RTT column name varies by capture-tool version and is resolved
	// once per run; both known spellings are listed for the resolver.
	ColRTT       = "tcp.analysis.ack_rtt"
	ColRTTLegacy = "tcp.analysis.rtt"

	ColProtoRequest  = "ftp.request.command"
	ColProtoResponse = "ftp.response.code"
)

// Row is one packet/flow observation. Which fields are meaningful is
// governed by the table's column set; a field whose column is absent
// holds its zero value and must not be read. HasRTT marks a non-null RTT
// sample within a present RTT column.
type Row struct {
	Time     time.Time
	FrameLen float64
	SrcAddr  string
	DstAddr  string

	SYN bool
	FIN bool
	RST bool

	Retransmission bool
	ZeroWindow     bool
	WindowFull     bool
	LostSegment    bool
	DuplicateACK   bool

	RTT    float64 // seconds
	HasRTT bool

	ProtoRequest  string
	ProtoResponse string
}

// Table is a row-oriented packet table with an explicit column-presence
// set. Any subset of the recognized columns may be absent; consumers must
// fall back to zero values for metrics whose columns are missing.
type Table struct {
	columns map[string]struct{}
	Rows    []Row
}

// NewTable creates a table declaring the given columns as present.
func NewTable(columns ...string) *Table {
	t := &Table{columns: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		t.columns[c] = struct{}{}
	}
	return t
}

// HasColumn reports whether the named column was present in the source.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Columns returns the set of declared columns, for subset tables.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.columns))
	for c := range t.columns {
		cols = append(cols, c)
	}
	return cols
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// FilterByAddress returns the subset of rows whose source or destination
// address equals addr. The subset shares the parent's column set.
func (t *Table) FilterByAddress(addr string) *Table {
	sub := NewTable(t.Columns()...)
	if !t.HasColumn(ColSrcAddr) && !t.HasColumn(ColDstAddr) {
		return sub
	}
	for _, r := range t.Rows {
		if r.SrcAddr == addr || r.DstAddr == addr {
			sub.Append(r)
		}
	}
	return sub
}

// DetectedAddresses returns the configured addresses that actually appear
// as source or destination of at least one row, in the order configured.
func (t *Table) DetectedAddresses(configured []string) []string {
	if !t.HasColumn(ColSrcAddr) && !t.HasColumn(ColDstAddr) {
		return nil
	}
	seen := make(map[string]bool, len(configured))
	for _, r := range t.Rows {
		seen[r.SrcAddr] = true
		seen[r.DstAddr] = true
	}
	var detected []string
	for _, addr := range configured {
		if seen[addr] {
			detected = append(detected, addr)
		}
	}
	return detected
}
