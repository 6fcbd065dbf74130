package metrics

import (
	"strings"
	"time"

	"TransferScope/internal/model"
)

// Compute derives network-quality metrics from the packet table. Every
// counter falls back to zero when its backing column is absent; a missing
// column is never an error. captureDuration at or below zero disables the
// throughput figure. rttColumn is the per-run resolved RTT column name
// (empty when unavailable). addresses is the set of flow addresses of
// interest for connection detection and flow counting.
func Compute(t *Table, captureDuration time.Duration, rttColumn string, addresses []string) model.FlowMetrics {
	var m model.FlowMetrics

	if t.HasColumn(ColRetransmission) {
		m.Retransmissions = countFlag(t, func(r Row) bool { return r.Retransmission })
	}
	if t.HasColumn(ColZeroWindow) {
		m.ZeroWindowCount = countFlag(t, func(r Row) bool { return r.ZeroWindow })
	}
	if t.HasColumn(ColWindowFull) {
		m.WindowFullCount = countFlag(t, func(r Row) bool { return r.WindowFull })
	}
	if t.HasColumn(ColLostSegment) {
		m.LostSegments = countFlag(t, func(r Row) bool { return r.LostSegment })
	}
	if t.HasColumn(ColDuplicateACK) {
		m.DuplicateACKs = countFlag(t, func(r Row) bool { return r.DuplicateACK })
	}

	if durS := captureDuration.Seconds(); durS > 0 && t.HasColumn(ColFrameLen) {
		var totalBytes float64
		for _, r := range t.Rows {
			totalBytes += r.FrameLen
		}
		m.ThroughputMbps = (totalBytes * 8) / (durS * 1024 * 1024)
	}

	if rttColumn != "" && t.HasColumn(rttColumn) {
		var sum float64
		var n int
		for _, r := range t.Rows {
			if r.HasRTT {
				sum += r.RTT
				n++
			}
		}
		if n > 0 {
			// Samples arrive in seconds; report milliseconds.
			m.AvgRTTMillis = sum / float64(n) * 1000
		}
	}

	m.ConnOpenedAt, m.ConnClosedAt = connTimestamps(t, addresses)
	m.DetectedFlowCount = len(t.DetectedAddresses(addresses))

	return m
}

func countFlag(t *Table, flag func(Row) bool) int {
	n := 0
	for _, r := range t.Rows {
		if flag(r) {
			n++
		}
	}
	return n
}

// connTimestamps determines connection open/close times. Primary
// detection uses TCP SYN (open) and FIN-or-RST (close) flags on rows
// touching one of the given addresses; when a layer yields nothing it
// falls back to protocol-level open (service ready / login success) and
// close (quit / goodbye) indicators. Both layers may legitimately yield
// nothing, in which case the zero time is returned.
func connTimestamps(t *Table, addresses []string) (opened, closed time.Time) {
	addrSet := make(map[string]bool, len(addresses))
	for _, a := range addresses {
		addrSet[a] = true
	}
	matchesAddr := func(r Row) bool {
		return addrSet[r.SrcAddr] || addrSet[r.DstAddr]
	}
	hasAddrs := t.HasColumn(ColSrcAddr) || t.HasColumn(ColDstAddr)

	if t.HasColumn(ColSYN) && hasAddrs && t.HasColumn(ColFrameTime) {
		for _, r := range t.Rows {
			if !r.SYN || !matchesAddr(r) {
				continue
			}
			if opened.IsZero() || r.Time.Before(opened) {
				opened = r.Time
			}
		}
	}

	if (t.HasColumn(ColFIN) || t.HasColumn(ColRST)) && hasAddrs && t.HasColumn(ColFrameTime) {
		for _, r := range t.Rows {
			if (!r.FIN && !r.RST) || !matchesAddr(r) {
				continue
			}
			if closed.IsZero() || r.Time.After(closed) {
				closed = r.Time
			}
		}
	}

	if opened.IsZero() && t.HasColumn(ColProtoResponse) && t.HasColumn(ColFrameTime) {
		for _, r := range t.Rows {
			if !isProtoOpen(r) {
				continue
			}
			if opened.IsZero() || r.Time.Before(opened) {
				opened = r.Time
			}
		}
	}

	if closed.IsZero() && t.HasColumn(ColProtoRequest) && t.HasColumn(ColFrameTime) {
		for _, r := range t.Rows {
			if !isProtoClose(r) {
				continue
			}
			if closed.IsZero() || r.Time.After(closed) {
				closed = r.Time
			}
		}
	}

	return opened, closed
}

func isProtoOpen(r Row) bool {
	return strings.HasPrefix(r.ProtoResponse, "220") ||
		strings.HasPrefix(r.ProtoResponse, "230") ||
		strings.Contains(strings.ToUpper(r.ProtoRequest), "USER")
}

func isProtoClose(r Row) bool {
	return strings.Contains(strings.ToUpper(r.ProtoRequest), "QUIT") ||
		strings.HasPrefix(r.ProtoResponse, "221")
}
