package metrics

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func fullColumns() []string {
	return []string{
		ColFrameTime, ColFrameLen, ColSrcAddr, ColDstAddr,
		ColSYN, ColFIN, ColRST,
		ColRetransmission, ColZeroWindow, ColWindowFull,
		ColLostSegment, ColDuplicateACK,
		ColRTT, ColProtoRequest, ColProtoResponse,
	}
}

func TestCompute_MissingColumnsYieldZeros(t *testing.T) {
	// A table with no recognized columns at all must produce all-zero
	// metrics without raising.
	tab := NewTable()
	tab.Append(Row{})
	tab.Append(Row{})

	m := Compute(tab, 60*time.Second, ColRTT, []string{"192.168.1.20"})

	if m.Retransmissions != 0 || m.ZeroWindowCount != 0 || m.WindowFullCount != 0 ||
		m.LostSegments != 0 || m.DuplicateACKs != 0 {
		t.Errorf("expected zero counters, got %+v", m)
	}
	if m.ThroughputMbps != 0.0 {
		t.Errorf("expected zero throughput, got %f", m.ThroughputMbps)
	}
	if m.AvgRTTMillis != 0.0 {
		t.Errorf("expected zero RTT, got %f", m.AvgRTTMillis)
	}
	if !m.ConnOpenedAt.IsZero() || !m.ConnClosedAt.IsZero() {
		t.Error("expected undetermined connection timestamps")
	}
	if m.DetectedFlowCount != 0 {
		t.Errorf("expected zero detected flows, got %d", m.DetectedFlowCount)
	}
}

func TestCompute_Counters(t *testing.T) {
	tab := NewTable(ColRetransmission, ColZeroWindow, ColDuplicateACK)
	tab.Append(Row{Retransmission: true, DuplicateACK: true})
	tab.Append(Row{Retransmission: true})
	tab.Append(Row{ZeroWindow: true})

	m := Compute(tab, 0, "", nil)
	if m.Retransmissions != 2 {
		t.Errorf("expected 2 retransmissions, got %d", m.Retransmissions)
	}
	if m.ZeroWindowCount != 1 {
		t.Errorf("expected 1 zero-window, got %d", m.ZeroWindowCount)
	}
	if m.DuplicateACKs != 1 {
		t.Errorf("expected 1 duplicate ack, got %d", m.DuplicateACKs)
	}
	// Columns not declared stay zero even though the struct fields exist.
	if m.WindowFullCount != 0 || m.LostSegments != 0 {
		t.Errorf("expected zero for absent columns, got %+v", m)
	}
}

func TestCompute_Throughput(t *testing.T) {
	tab := NewTable(ColFrameLen)
	tab.Append(Row{FrameLen: 1024 * 1024})
	tab.Append(Row{FrameLen: 1024 * 1024})

	m := Compute(tab, 16*time.Second, "", nil)
	// 2 MiB * 8 bits / (16s * 1024 * 1024) = 1 Mbps.
	if math.Abs(m.ThroughputMbps-1.0) > 1e-9 {
		t.Errorf("expected 1.0 Mbps, got %f", m.ThroughputMbps)
	}

	// Non-positive duration disables the figure.
	m = Compute(tab, 0, "", nil)
	if m.ThroughputMbps != 0.0 {
		t.Errorf("expected 0.0 Mbps for zero duration, got %f", m.ThroughputMbps)
	}
}

func TestCompute_AvgRTT(t *testing.T) {
	tab := NewTable(ColRTT)
	tab.Append(Row{RTT: 0.010, HasRTT: true})
	tab.Append(Row{RTT: 0.030, HasRTT: true})
	tab.Append(Row{}) // null sample, ignored

	m := Compute(tab, 0, ColRTT, nil)
	if math.Abs(m.AvgRTTMillis-20.0) > 1e-9 {
		t.Errorf("expected 20ms average RTT, got %f", m.AvgRTTMillis)
	}

	// Entirely-null column yields 0.0.
	empty := NewTable(ColRTT)
	empty.Append(Row{})
	if got := Compute(empty, 0, ColRTT, nil).AvgRTTMillis; got != 0.0 {
		t.Errorf("expected 0.0 for all-null RTT column, got %f", got)
	}
}

func TestCompute_ConnectionTimestampsFromTCPFlags(t *testing.T) {
	addr := "192.168.1.20"
	tab := NewTable(ColFrameTime, ColSrcAddr, ColDstAddr, ColSYN, ColFIN, ColRST)
	tab.Append(Row{Time: t0, SrcAddr: addr, SYN: true})
	tab.Append(Row{Time: t0.Add(time.Second), SrcAddr: "10.0.0.9", SYN: true}) // other host
	tab.Append(Row{Time: t0.Add(5 * time.Second), DstAddr: addr, FIN: true})
	tab.Append(Row{Time: t0.Add(7 * time.Second), SrcAddr: addr, RST: true})

	m := Compute(tab, 0, "", []string{addr})
	if !m.ConnOpenedAt.Equal(t0) {
		t.Errorf("expected open at t0, got %v", m.ConnOpenedAt)
	}
	// Close is the latest FIN or RST touching the address.
	if !m.ConnClosedAt.Equal(t0.Add(7 * time.Second)) {
		t.Errorf("expected close at t0+7s, got %v", m.ConnClosedAt)
	}
}

func TestCompute_ConnectionTimestampsProtocolFallback(t *testing.T) {
	tab := NewTable(ColFrameTime, ColProtoRequest, ColProtoResponse)
	tab.Append(Row{Time: t0, ProtoResponse: "220 Service ready"})
	tab.Append(Row{Time: t0.Add(time.Second), ProtoResponse: "230 User logged in"})
	tab.Append(Row{Time: t0.Add(9 * time.Second), ProtoRequest: "QUIT"})
	tab.Append(Row{Time: t0.Add(10 * time.Second), ProtoResponse: "221 Goodbye"})

	m := Compute(tab, 0, "", nil)
	if !m.ConnOpenedAt.Equal(t0) {
		t.Errorf("expected fallback open at t0, got %v", m.ConnOpenedAt)
	}
	// Close fallback considers both the quit command and the goodbye
	// response; the latest indicator wins.
	if !m.ConnClosedAt.Equal(t0.Add(10 * time.Second)) {
		t.Errorf("expected fallback close at t0+10s, got %v", m.ConnClosedAt)
	}
}

func TestCompute_PerFlowAndDetection(t *testing.T) {
	cams := []string{"192.168.1.20", "192.168.1.21", "192.168.1.22"}
	tab := NewTable(fullColumns()...)
	tab.Append(Row{Time: t0, SrcAddr: cams[0], DstAddr: "10.0.0.1", FrameLen: 500, Retransmission: true})
	tab.Append(Row{Time: t0.Add(time.Second), SrcAddr: cams[1], DstAddr: "10.0.0.1", FrameLen: 700})
	tab.Append(Row{Time: t0.Add(2 * time.Second), SrcAddr: "10.0.0.1", DstAddr: cams[1], FrameLen: 300})

	overall := Compute(tab, 10*time.Second, ColRTT, cams)
	if overall.DetectedFlowCount != 2 {
		t.Fatalf("expected 2 detected flows, got %d", overall.DetectedFlowCount)
	}

	sub := tab.FilterByAddress(cams[0])
	if len(sub.Rows) != 1 {
		t.Fatalf("expected 1 row for %s, got %d", cams[0], len(sub.Rows))
	}
	perFlow := Compute(sub, 10*time.Second, ColRTT, []string{cams[0]})
	if perFlow.DetectedFlowCount != 1 {
		t.Errorf("expected per-flow detection count 1, got %d", perFlow.DetectedFlowCount)
	}
	if perFlow.Retransmissions != 1 {
		t.Errorf("expected 1 retransmission in the subset, got %d", perFlow.Retransmissions)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	tab := NewTable(fullColumns()...)
	tab.Append(Row{Time: t0, SrcAddr: "192.168.1.20", FrameLen: 1200, SYN: true, RTT: 0.02, HasRTT: true})
	tab.Append(Row{Time: t0.Add(time.Second), DstAddr: "192.168.1.20", FrameLen: 900, FIN: true})

	first := Compute(tab, 30*time.Second, ColRTT, []string{"192.168.1.20"})
	second := Compute(tab, 30*time.Second, ColRTT, []string{"192.168.1.20"})
	if !reflect.DeepEqual(first, second) {
		t.Error("metrics computation is not deterministic across runs")
	}
}
