// Package capture supervises the external tshark process: live capture
// for the duration of a test run, field export of the resulting file, and
// per-run resolution of the RTT column name.
package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/engine/metrics"
)

// exportFields is the field list requested from the capture tool. The
// resolved RTT column is appended when available.
var exportFields = []string{
	"frame.time_epoch",
	metrics.ColFrameLen,
	metrics.ColSrcAddr,
	metrics.ColDstAddr,
	metrics.ColRetransmission,
	metrics.ColZeroWindow,
	metrics.ColWindowFull,
	metrics.ColLostSegment,
	metrics.ColDuplicateACK,
	metrics.ColProtoRequest,
	metrics.ColProtoResponse,
	metrics.ColSYN,
	metrics.ColFIN,
	metrics.ColRST,
}

// Runner wraps tshark invocations.
type Runner struct {
	binary string
	log    zerolog.Logger
}

func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{binary: "tshark", log: log}
}

// ResolveRTTColumn asks the installed capture tool which RTT field it
// supports. Returns the empty string when none is available; RTT metrics
// then fall back to zero.
func (r *Runner) ResolveRTTColumn(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.binary, "-G", "fields").Output()
	if err != nil {
		r.log.Warn().Err(err).Msg("could not enumerate capture tool fields, RTT metrics unavailable")
		return ""
	}
	fields := string(out)
	if strings.Contains(fields, metrics.ColRTT) {
		return metrics.ColRTT
	}
	if strings.Contains(fields, metrics.ColRTTLegacy) {
		return metrics.ColRTTLegacy
	}
	r.log.Warn().Msg("capture tool exposes no RTT field, RTT metrics unavailable")
	return ""
}

// Start launches a live capture on iface into pcapFile, stopping on its
// own after duration. hosts narrows the capture filter to the flow
// addresses of interest. The returned command is already started; the
// caller waits on it or kills it.
func (r *Runner) Start(ctx context.Context, iface, pcapFile string, duration time.Duration, hosts []string) (*exec.Cmd, error) {
	args := []string{
		"-i", iface,
		"-w", pcapFile,
		"-a", fmt.Sprintf("duration:%d", int(duration.Seconds())),
	}
	if len(hosts) > 0 {
		clauses := make([]string, len(hosts))
		for i, h := range hosts {
			clauses[i] = "host " + h
		}
		args = append(args, "-f", strings.Join(clauses, " or "))
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start capture: %w", err)
	}
	r.log.Info().Str("iface", iface).Str("file", pcapFile).
		Float64("duration_s", duration.Seconds()).
		Msg("capture started")
	return cmd, nil
}

// Export converts a capture file into a field CSV at csvPath, requesting
// the standard export fields plus the resolved RTT column.
func (r *Runner) Export(ctx context.Context, pcapFile, csvPath, rttColumn string) error {
	args := []string{"-r", pcapFile, "-T", "fields"}
	fields := exportFields
	if rttColumn != "" {
		fields = append(append([]string{}, exportFields...), rttColumn)
	}
	for _, f := range fields {
		args = append(args, "-e", f)
	}
	args = append(args, "-E", "header=y", "-E", "separator=,", "-E", "quote=d")

	out, err := exec.CommandContext(ctx, r.binary, args...).Output()
	if err != nil {
		return fmt.Errorf("capture export failed: %w", err)
	}
	if err := os.WriteFile(csvPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write capture export: %w", err)
	}
	r.log.Info().Str("pcap", pcapFile).Str("csv", csvPath).Msg("exported capture data")
	return nil
}
