package model

import "time"

// FlowMetrics is the per-capture or per-flow-address aggregate derived
// from the packet table. Every counter defaults to zero when its backing
// column is absent from the table.
type FlowMetrics struct {
	Retransmissions int `json:"total_retransmissions"`
	ZeroWindowCount int `json:"zero_window_count"`
	WindowFullCount int `json:"window_full_count"`
	LostSegments    int `json:"lost_segments_count"`
	DuplicateACKs   int `json:"duplicate_ack_count"`

	ThroughputMbps float64 `json:"measured_throughput_mbps"`
	AvgRTTMillis   float64 `json:"avg_rtt_ms"`

	// Connection lifecycle timestamps; zero when undetermined at both
	// the TCP and the protocol layer.
	ConnOpenedAt time.Time `json:"conn_opened_timestamp,omitzero"`
	ConnClosedAt time.Time `json:"conn_closed_timestamp,omitzero"`

	DetectedFlowCount int `json:"num_flows_detected"`
}

// SummaryStats aggregates a run's correlated transfers for reporting.
// Latencies, durations and overlaps are in seconds.
type SummaryStats struct {
	Count int `json:"count"`

	AvgLatency float64 `json:"avg_latency_s"`
	MinLatency float64 `json:"min_latency_s"`
	MaxLatency float64 `json:"max_latency_s"`

	AvgDuration float64 `json:"avg_duration_s"`
	MinDuration float64 `json:"min_duration_s"`
	MaxDuration float64 `json:"max_duration_s"`

	CompletedAfterFalseCount int     `json:"completed_after_false_count"`
	CompletedAfterFalsePct   float64 `json:"completed_after_false_pct"`
	AvgOverlapAfterFalse     float64 `json:"avg_overlap_after_false_s"`
	MaxOverlapAfterFalse     float64 `json:"max_overlap_after_false_s"`

	OverlappedWithPreviousCount int     `json:"overlapped_with_previous_count"`
	OverlappedWithPreviousPct   float64 `json:"overlapped_with_previous_pct"`
}
