package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog"

	"TransferScope/internal/config"
	"TransferScope/internal/model"
)

const createReportTable = `
CREATE TABLE IF NOT EXISTS transfer_report (
    Timestamp       DateTime64(3),
    Address         String,
    IntervalOnMs    Int32,
    IntervalOffMs   Int32,
    Repeats         Int32,
    FilesBefore     Int32,
    FilesAfter      Int32,
    AvgFileSizeMB   Float64,
    Retransmissions Int32,
    ZeroWindowCount Int32,
    WindowFullCount Int32,
    AvgRTTMs        Float64,
    LostSegments    Int32,
    DuplicateACKs   Int32,
    ThroughputMbps  Float64,
    FlowsDetected   Int32,
    ConnOpenedAt    Nullable(DateTime64(3)),
    ConnClosedAt    Nullable(DateTime64(3)),
    Notes           String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Address, Timestamp);
`

const createDetailTable = `
CREATE TABLE IF NOT EXISTS transfer_details (
    RunTimestamp           DateTime64(3),
    SignalOnTime           DateTime64(3),
    TransferStartTime      DateTime64(3),
    TransferCompleteTime   DateTime64(3),
    DurationS              Float64,
    LatencyS               Float64,
    Label                  String,
    NextSignalOffTime      Nullable(DateTime64(3)),
    CompletedAfterFalse    UInt8,
    OverlapAfterFalseS     Float64,
    ConnOpenTime           Nullable(DateTime64(3)),
    ConnCloseTime          Nullable(DateTime64(3)),
    OverlappedWithPrevious UInt8
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(RunTimestamp)
ORDER BY (RunTimestamp, SignalOnTime);
`

// ClickHouseWriter persists flattened report rows and per-transfer
// detail rows.
type ClickHouseWriter struct {
	conn driver.Conn
	log  zerolog.Logger
}

// NewClickHouseWriter connects and ensures both result tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig, log zerolog.Logger) (*ClickHouseWriter, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	ctx := context.Background()
	for _, ddl := range []string{createReportTable, createDetailTable} {
		if err := conn.Exec(ctx, ddl); err != nil {
			return nil, fmt.Errorf("failed to create result table: %w", err)
		}
	}
	log.Info().Str("host", cfg.Host).Msg("connected to clickhouse, result tables ensured")
	return &ClickHouseWriter{conn: conn, log: log}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
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

// Write persists the report: its flattened rows and, when any transfers
// were correlated, the per-transfer details.
func (w *ClickHouseWriter) Write(rep *model.Report) error {
	ctx := context.Background()

	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO transfer_report")
	if err != nil {
		return fmt.Errorf("failed to prepare report batch: %w", err)
	}
	for _, row := range Flatten(rep) {
		err = batch.Append(
			row.Timestamp,
			row.Address,
			int32(row.IntervalOnMillis),
			int32(row.IntervalOffMillis),
			int32(row.Repeats),
			int32(row.FilesBefore),
			int32(row.FilesAfter),
			row.AvgFileSizeMB,
			int32(row.Retransmissions),
			int32(row.ZeroWindowCount),
			int32(row.WindowFullCount),
			row.AvgRTTMillis,
			int32(row.LostSegments),
			int32(row.DuplicateACKs),
			row.ThroughputMbps,
			int32(row.FlowsDetected),
			nullableTime(row.ConnOpenedAt),
			nullableTime(row.ConnClosedAt),
			row.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to append report row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send report batch: %w", err)
	}

	if len(rep.Transfers) > 0 {
		if err := w.writeDetails(ctx, rep); err != nil {
			return err
		}
	}

	w.log.Info().Int("rows", 1+len(rep.PerFlow)).Int("transfers", len(rep.Transfers)).
		Msg("report persisted to clickhouse")
	return nil
}

func (w *ClickHouseWriter) writeDetails(ctx context.Context, rep *model.Report) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO transfer_details")
	if err != nil {
		return fmt.Errorf("failed to prepare detail batch: %w", err)
	}
	for _, tr := range rep.Transfers {
		err = batch.Append(
			rep.GeneratedAt,
			tr.SignalOnTime,
			tr.TransferStartTime,
			tr.TransferCompleteTime,
			tr.Duration.Seconds(),
			tr.Latency.Seconds(),
			tr.Label,
			nullableTime(tr.NextSignalOffTime),
			boolFlag(tr.CompletedAfterFalse),
			tr.OverlapAfterFalse.Seconds(),
			nullableTime(tr.ConnOpenTime),
			nullableTime(tr.ConnCloseTime),
			boolFlag(tr.OverlappedWithPrevious),
		)
		if err != nil {
			return fmt.Errorf("failed to append detail row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send detail batch: %w", err)
	}
	return nil
}

// Close closes the connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func boolFlag(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
