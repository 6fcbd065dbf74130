// Package capturecsv parses the capture tool's field-export CSV into the
// sparse packet table and derives protocol events from its FTP columns.
package capturecsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/engine/metrics"
	"TransferScope/internal/model"
)

// recognized is the set of column headers the table models. Headers
// outside this set are carried over from the export but ignored.
var recognized = map[string]struct{}{
	metrics.ColFrameTime:      {},
	metrics.ColFrameLen:       {},
	metrics.ColSrcAddr:        {},
	metrics.ColDstAddr:        {},
	metrics.ColSYN:            {},
	metrics.ColFIN:            {},
	metrics.ColRST:            {},
	metrics.ColRetransmission: {},
	metrics.ColZeroWindow:     {},
	metrics.ColWindowFull:     {},
	metrics.ColLostSegment:    {},
	metrics.ColDuplicateACK:   {},
	metrics.ColRTT:            {},
	metrics.ColRTTLegacy:      {},
	metrics.ColProtoRequest:   {},
	metrics.ColProtoResponse:  {},
}

// frameTimeEpoch is the epoch-seconds variant of the frame time column;
// it is normalized to ColFrameTime during parsing.
const frameTimeEpoch = "frame.time_epoch"

// Parser reads a field-export CSV into a packet table. Malformed rows are
// skipped with a warning; they never reach the core.
type Parser struct {
	log zerolog.Logger
}

func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log}
}

// ParseFile parses the CSV at path. A missing file is a MissingInput
// error; a header-only or empty file is an EmptyInput error.
func (p *Parser) ParseFile(path string) (*metrics.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture export %q: %w", path, model.ErrMissingInput)
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse parses a field-export CSV stream. name is used in diagnostics.
func (p *Parser) Parse(r io.Reader, name string) (*metrics.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("capture export %q: %w", name, model.ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read capture export header: %w", err)
	}

	// Map recognized headers to their positions, normalizing the epoch
	// time column to the canonical frame time column.
	index := make(map[string]int, len(header))
	var columns []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == frameTimeEpoch {
			h = metrics.ColFrameTime
		}
		if _, ok := recognized[h]; !ok {
			continue
		}
		if _, dup := index[h]; dup {
			continue
		}
		index[h] = i
		columns = append(columns, h)
	}

	table := metrics.NewTable(columns...)
	rowNo := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNo++
		if err != nil {
			p.log.Warn().Int("row", rowNo).Str("source", name).Err(err).
				Msg("skipping malformed capture export row")
			continue
		}
		row, ok := p.parseRow(record, index, rowNo, name)
		if !ok {
			continue
		}
		table.Append(row)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("capture export %q: %w", name, model.ErrEmptyInput)
	}
	p.log.Info().Int("rows", len(table.Rows)).Str("source", name).Msg("parsed capture export")
	return table, nil
}

func (p *Parser) parseRow(record []string, index map[string]int, rowNo int, name string) (metrics.Row, bool) {
	field := func(col string) (string, bool) {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	var row metrics.Row
	if v, ok := field(metrics.ColFrameTime); ok && v != "" {
		ts, err := parseFrameTime(v)
		if err != nil {
			p.log.Warn().Int("row", rowNo).Str("source", name).Str("time", v).
				Msg("skipping row with unparseable frame time")
			return metrics.Row{}, false
		}
		row.Time = ts
	}
	if v, ok := field(metrics.ColFrameLen); ok {
		row.FrameLen = numeric(v)
	}
	if v, ok := field(metrics.ColSrcAddr); ok {
		row.SrcAddr = v
	}
	if v, ok := field(metrics.ColDstAddr); ok {
		row.DstAddr = v
	}
	row.SYN = flagSet(field(metrics.ColSYN))
	row.FIN = flagSet(field(metrics.ColFIN))
	row.RST = flagSet(field(metrics.ColRST))
	row.Retransmission = flagSet(field(metrics.ColRetransmission))
	row.ZeroWindow = flagSet(field(metrics.ColZeroWindow))
	row.WindowFull = flagSet(field(metrics.ColWindowFull))
	row.LostSegment = flagSet(field(metrics.ColLostSegment))
	row.DuplicateACK = flagSet(field(metrics.ColDuplicateACK))

	for _, col := range []string{metrics.ColRTT, metrics.ColRTTLegacy} {
		if v, ok := field(col); ok && v != "" {
			// Multi-occurrence fields are comma-joined; the first
			// sample is taken.
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if rtt, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(rtt) {
				row.RTT = rtt
				row.HasRTT = true
			}
			break
		}
	}

	if v, ok := field(metrics.ColProtoRequest); ok {
		row.ProtoRequest = v
	}
	if v, ok := field(metrics.ColProtoResponse); ok {
		row.ProtoResponse = v
	}
	return row, true
}

// parseFrameTime accepts epoch seconds (the preferred export format) or
// an absolute wall-clock timestamp.
func parseFrameTime(v string) (time.Time, error) {
	if epoch, err := strconv.ParseFloat(v, 64); err == nil {
		sec := int64(epoch)
		nsec := int64((epoch - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), nil
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized frame time %q", v)
}

// numeric parses a possibly-empty numeric cell; empty or junk yields 0.
func numeric(v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

// flagSet interprets a flag cell: any positive numeric value counts.
func flagSet(v string, ok bool) bool {
	if !ok || v == "" {
		return false
	}
	return numeric(v) > 0
}

// ResolveRTTColumn returns the RTT column actually present in the table,
// preferring the modern name. Empty when neither was exported.
func ResolveRTTColumn(t *metrics.Table) string {
	if t.HasColumn(metrics.ColRTT) {
		return metrics.ColRTT
	}
	if t.HasColumn(metrics.ColRTTLegacy) {
		return metrics.ColRTTLegacy
	}
	return ""
}

// ProtocolEvents derives the transfer and connection lifecycle events
// from the table's FTP columns, sorted ascending by timestamp. Rows
// without a frame time cannot be placed on the run's timeline and are
// ignored.
func ProtocolEvents(t *metrics.Table) []model.Event {
	if !t.HasColumn(metrics.ColFrameTime) {
		return nil
	}
	var events []model.Event
	for _, r := range t.Rows {
		if r.Time.IsZero() {
			continue
		}
		kind, label, ok := classify(r)
		if !ok {
			continue
		}
		events = append(events, model.Event{
			Source:    model.SourceProtocol,
			Kind:      kind,
			Timestamp: r.Time,
			Label:     label,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

func classify(r metrics.Row) (model.EventKind, string, bool) {
	req := strings.ToUpper(r.ProtoRequest)
	switch {
	case strings.HasPrefix(req, "STOR"):
		return model.TransferStart, storLabel(r.ProtoRequest), true
	case strings.HasPrefix(r.ProtoResponse, "226"), strings.HasPrefix(r.ProtoResponse, "250"):
		return model.TransferComplete, "", true
	case strings.HasPrefix(r.ProtoResponse, "220"), strings.HasPrefix(r.ProtoResponse, "230"):
		return model.ConnOpen, "", true
	case strings.HasPrefix(req, "QUIT"), strings.HasPrefix(r.ProtoResponse, "221"):
		return model.ConnClose, "", true
	}
	return 0, "", false
}

// storLabel extracts the file name from a store command.
func storLabel(request string) string {
	label := strings.TrimSpace(request[len("STOR"):])
	if label == "" {
		return "unknown_file"
	}
	return label
}
