package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"TransferScope/internal/model"
)

const textTimeLayout = "2006-01-02 15:04:05.000"

// TextWriter renders the report into a human-readable file.
type TextWriter struct {
	path string
}

func NewTextWriter(path string) *TextWriter {
	return &TextWriter{path: path}
}

// Write renders the full report and writes it to the configured path,
// replacing any previous rendition.
func (w *TextWriter) Write(rep *model.Report) error {
	if err := os.WriteFile(w.path, []byte(Render(rep)), 0o644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	return nil
}

// Render produces the text form of a report.
func Render(rep *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "--- Transfer Analysis Report ---\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", rep.GeneratedAt.Format(textTimeLayout))

	b.WriteString("Individual Transfer Details:\n\n")
	for i, tr := range rep.Transfers {
		fmt.Fprintf(&b, "--- Event %d ---\n", i+1)
		fmt.Fprintf(&b, "  Signal ON Sent:              %s\n", tr.SignalOnTime.Format(textTimeLayout))
		fmt.Fprintf(&b, "  Transfer Start:              %s (File: %s)\n",
			tr.TransferStartTime.Format(textTimeLayout), orNA(tr.Label))
		fmt.Fprintf(&b, "  Signal-to-Start Latency:     %.4f seconds\n", tr.Latency.Seconds())
		fmt.Fprintf(&b, "  Transfer Complete:           %s\n", tr.TransferCompleteTime.Format(textTimeLayout))
		fmt.Fprintf(&b, "  Total Transfer Duration:     %.4f seconds\n", tr.Duration.Seconds())
		fmt.Fprintf(&b, "  Next Signal OFF:             %s\n", timeOrNA(tr.NextSignalOffTime))
		fmt.Fprintf(&b, "  Completed After OFF Signal:  %s\n", yesNo(tr.CompletedAfterFalse))
		if tr.CompletedAfterFalse {
			fmt.Fprintf(&b, "  Still Transferring After OFF: %.4f seconds\n", tr.OverlapAfterFalse.Seconds())
		}
		fmt.Fprintf(&b, "  Connection Opened:           %s\n", timeOrNA(tr.ConnOpenTime))
		fmt.Fprintf(&b, "  Connection Closed:           %s\n", timeOrNA(tr.ConnCloseTime))
		fmt.Fprintf(&b, "  Overlapped With Previous:    %s\n\n", yesNo(tr.OverlappedWithPrevious))
	}

	b.WriteString("--- Network Metrics ---\n")
	writeMetrics(&b, OverallAddress, rep.Overall)
	for _, flow := range rep.PerFlow {
		writeMetrics(&b, flow.Address, flow.Metrics)
	}

	b.WriteString("\n--- Summary Statistics ---\n")
	if rep.Summary == nil {
		b.WriteString("No transfer durations to summarize.\n")
		return b.String()
	}
	s := rep.Summary
	fmt.Fprintf(&b, "Total Correlated Transfers: %d\n", s.Count)
	fmt.Fprintf(&b, "\nAverage Signal-to-Start Latency: %.4f seconds\n", s.AvgLatency)
	fmt.Fprintf(&b, "Min Signal-to-Start Latency:     %.4f seconds\n", s.MinLatency)
	fmt.Fprintf(&b, "Max Signal-to-Start Latency:     %.4f seconds\n", s.MaxLatency)
	fmt.Fprintf(&b, "\nAverage Transfer Duration: %.4f seconds\n", s.AvgDuration)
	fmt.Fprintf(&b, "Min Transfer Duration:     %.4f seconds\n", s.MinDuration)
	fmt.Fprintf(&b, "Max Transfer Duration:     %.4f seconds\n", s.MaxDuration)
	fmt.Fprintf(&b, "\nTransfers Completed After OFF Signal: %d of %d (%.2f%%)\n",
		s.CompletedAfterFalseCount, s.Count, s.CompletedAfterFalsePct)
	if s.CompletedAfterFalseCount > 0 {
		fmt.Fprintf(&b, "  Average Overlap After OFF: %.4f seconds\n", s.AvgOverlapAfterFalse)
		fmt.Fprintf(&b, "  Max Overlap After OFF:     %.4f seconds\n", s.MaxOverlapAfterFalse)
	}
	fmt.Fprintf(&b, "\nSignals Sent While Previous Transfer Active: %d of %d (%.2f%%)\n",
		s.OverlappedWithPreviousCount, s.Count, s.OverlappedWithPreviousPct)

	return b.String()
}

func writeMetrics(b *strings.Builder, address string, m model.FlowMetrics) {
	fmt.Fprintf(b, "[%s]\n", address)
	fmt.Fprintf(b, "  Retransmissions: %d  Zero Window: %d  Window Full: %d\n",
		m.Retransmissions, m.ZeroWindowCount, m.WindowFullCount)
	fmt.Fprintf(b, "  Lost Segments: %d  Duplicate ACKs: %d\n", m.LostSegments, m.DuplicateACKs)
	fmt.Fprintf(b, "  Throughput: %.4f Mbps  Avg RTT: %.2f ms\n", m.ThroughputMbps, m.AvgRTTMillis)
	fmt.Fprintf(b, "  Conn Opened: %s  Conn Closed: %s\n",
		timeOrNA(m.ConnOpenedAt), timeOrNA(m.ConnClosedAt))
	fmt.Fprintf(b, "  Flows Detected: %d\n", m.DetectedFlowCount)
}

func timeOrNA(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(textTimeLayout)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
