// Package query reads persisted analysis results back out of ClickHouse
// for the HTTP API.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"TransferScope/internal/config"
)

const defaultLimit = 100

// ReportFilter narrows a report-row query. Zero values mean "no filter".
type ReportFilter struct {
	Address string    `json:"address"`
	Since   time.Time `json:"since"`
	Until   time.Time `json:"until"`
	Limit   int       `json:"limit"`
}

// ReportRow is one persisted result row: the "Overall" row of a run or
// one of its per-flow rows.
type ReportRow struct {
	Timestamp         time.Time  `json:"timestamp"`
	Address           string     `json:"address"`
	IntervalOnMillis  int32      `json:"interval_on_ms"`
	IntervalOffMillis int32      `json:"interval_off_ms"`
	Repeats           int32      `json:"repeats"`
	FilesBefore       int32      `json:"files_before"`
	FilesAfter        int32      `json:"files_after"`
	AvgFileSizeMB     float64    `json:"avg_file_size_mb"`
	Retransmissions   int32      `json:"retransmissions"`
	ZeroWindowCount   int32      `json:"zero_window_count"`
	WindowFullCount   int32      `json:"window_full_count"`
	AvgRTTMillis      float64    `json:"avg_rtt_ms"`
	LostSegments      int32      `json:"lost_segments"`
	DuplicateACKs     int32      `json:"duplicate_acks"`
	ThroughputMbps    float64    `json:"throughput_mbps"`
	FlowsDetected     int32      `json:"flows_detected"`
	ConnOpenedAt      *time.Time `json:"conn_opened_at,omitempty"`
	ConnClosedAt      *time.Time `json:"conn_closed_at,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// TransferFilter narrows a transfer-detail query. A non-zero
// RunTimestamp selects a single run.
type TransferFilter struct {
	RunTimestamp time.Time `json:"run_timestamp"`
	Since        time.Time `json:"since"`
	Limit        int       `json:"limit"`
}

// TransferRow is one persisted correlated transfer.
type TransferRow struct {
	RunTimestamp           time.Time  `json:"run_timestamp"`
	SignalOnTime           time.Time  `json:"signal_on_time"`
	TransferStartTime      time.Time  `json:"transfer_start_time"`
	TransferCompleteTime   time.Time  `json:"transfer_complete_time"`
	DurationSeconds        float64    `json:"duration_s"`
	LatencySeconds         float64    `json:"latency_s"`
	Label                  string     `json:"label"`
	NextSignalOffTime      *time.Time `json:"next_signal_off_time,omitempty"`
	CompletedAfterFalse    bool       `json:"completed_after_false"`
	OverlapAfterFalse      float64    `json:"overlap_after_false_s"`
	ConnOpenTime           *time.Time `json:"conn_open_time,omitempty"`
	ConnCloseTime          *time.Time `json:"conn_close_time,omitempty"`
	OverlappedWithPrevious bool       `json:"overlapped_with_previous"`
}

// Querier defines the read side of the result store.
type Querier interface {
	Reports(ctx context.Context, f ReportFilter) ([]ReportRow, error)
	Transfers(ctx context.Context, f TransferFilter) ([]TransferRow, error)
}

type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a querier over the result store.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (clickhouse.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// Reports returns persisted report rows, newest runs first.
func (q *clickhouseQuerier) Reports(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT
			Timestamp, Address, IntervalOnMs, IntervalOffMs, Repeats,
			FilesBefore, FilesAfter, AvgFileSizeMB,
			Retransmissions, ZeroWindowCount, WindowFullCount, AvgRTTMs,
			LostSegments, DuplicateACKs, ThroughputMbps, FlowsDetected,
			ConnOpenedAt, ConnClosedAt, Notes
		FROM transfer_report
	`)

	var where []string
	args := []interface{}{}
	if f.Address != "" {
		where = append(where, "Address = ?")
		args = append(args, f.Address)
	}
	if !f.Since.IsZero() {
		where = append(where, "Timestamp >= ?")
		args = append(args, f.Since)
	}
	if !f.Until.IsZero() {
		where = append(where, "Timestamp <= ?")
		args = append(args, f.Until)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY Timestamp DESC, Address LIMIT ?")
	args = append(args, limitOrDefault(f.Limit))

	rows, err := q.conn.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report rows: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var r ReportRow
		err := rows.Scan(
			&r.Timestamp, &r.Address, &r.IntervalOnMillis, &r.IntervalOffMillis, &r.Repeats,
			&r.FilesBefore, &r.FilesAfter, &r.AvgFileSizeMB,
			&r.Retransmissions, &r.ZeroWindowCount, &r.WindowFullCount, &r.AvgRTTMillis,
			&r.LostSegments, &r.DuplicateACKs, &r.ThroughputMbps, &r.FlowsDetected,
			&r.ConnOpenedAt, &r.ConnClosedAt, &r.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Transfers returns persisted transfer details, oldest first within a run.
func (q *clickhouseQuerier) Transfers(ctx context.Context, f TransferFilter) ([]TransferRow, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT
			RunTimestamp, SignalOnTime, TransferStartTime, TransferCompleteTime,
			DurationS, LatencyS, Label, NextSignalOffTime,
			CompletedAfterFalse, OverlapAfterFalseS,
			ConnOpenTime, ConnCloseTime, OverlappedWithPrevious
		FROM transfer_details
	`)

	var where []string
	args := []interface{}{}
	if !f.RunTimestamp.IsZero() {
		where = append(where, "RunTimestamp = ?")
		args = append(args, f.RunTimestamp)
	}
	if !f.Since.IsZero() {
		where = append(where, "SignalOnTime >= ?")
		args = append(args, f.Since)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY RunTimestamp DESC, SignalOnTime LIMIT ?")
	args = append(args, limitOrDefault(f.Limit))

	rows, err := q.conn.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer details: %w", err)
	}
	defer rows.Close()

	var out []TransferRow
	for rows.Next() {
		var (
			r                     TransferRow
			completed, overlapped uint8
		)
		err := rows.Scan(
			&r.RunTimestamp, &r.SignalOnTime, &r.TransferStartTime, &r.TransferCompleteTime,
			&r.DurationSeconds, &r.LatencySeconds, &r.Label, &r.NextSignalOffTime,
			&completed, &r.OverlapAfterFalse,
			&r.ConnOpenTime, &r.ConnCloseTime, &overlapped,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer detail: %w", err)
		}
		r.CompletedAfterFalse = completed != 0
		r.OverlappedWithPrevious = overlapped != 0
		out = append(out, r)
	}
	return out, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
