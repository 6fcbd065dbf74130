package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/adapter/capturecsv"
	"TransferScope/internal/adapter/signallog"
	"TransferScope/internal/config"
	"TransferScope/internal/engine/correlator"
	"TransferScope/internal/engine/metrics"
	"TransferScope/internal/engine/summary"
	"TransferScope/internal/model"
	"TransferScope/internal/report"
	"TransferScope/internal/trigger"
	"TransferScope/pkg/logger"
	"TransferScope/pkg/pcap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Signal events from the activity log.
	signals, err := signallog.NewParser(cfg.Broker.OnWord, cfg.Broker.OffWord, log).
		ParseFile(cfg.Analysis.SignalLog)
	if err != nil {
		if errors.Is(err, model.ErrEmptyInput) {
			log.Warn().Str("path", cfg.Analysis.SignalLog).
				Msg("signal log contains no events, nothing to analyze")
			return
		}
		log.Fatal().Err(err).Msg("failed to load signal log")
	}

	// Packet data: the field CSV export when present, the raw capture
	// file otherwise.
	table, err := loadTable(cfg.Analysis, log)
	if err != nil {
		if errors.Is(err, model.ErrEmptyInput) {
			log.Warn().Msg("capture data contains no packets, nothing to analyze")
			return
		}
		log.Fatal().Err(err).Msg("failed to load capture data")
	}

	startWindow := parseDuration(cfg.Analysis.StartTolerance, correlator.DefaultStartWindow, log)
	connWindow := parseDuration(cfg.Analysis.ConnTolerance, correlator.DefaultConnWindow, log)

	protocol := capturecsv.ProtocolEvents(table)
	log.Info().Int("signals", len(signals)).Int("protocol_events", len(protocol)).
		Msg("event streams loaded")

	transfers := correlator.New(startWindow, connWindow, log).Correlate(signals, protocol)

	runInfo := trigger.ReadRunInfo(cfg.Analysis.RunInfoFile, log)
	captureDuration := captureSpan(runInfo, table)
	rttColumn := capturecsv.ResolveRTTColumn(table)

	rep := &model.Report{
		GeneratedAt: time.Now(),
		Run:         runInfo,
		Transfers:   transfers,
		Overall:     metrics.Compute(table, captureDuration, rttColumn, cfg.Analysis.FlowAddresses),
		Summary:     summary.Summarize(transfers),
	}
	for _, addr := range table.DetectedAddresses(cfg.Analysis.FlowAddresses) {
		sub := table.FilterByAddress(addr)
		rep.PerFlow = append(rep.PerFlow, model.FlowReport{
			Address: addr,
			Metrics: metrics.Compute(sub, captureDuration, rttColumn, []string{addr}),
		})
	}

	if err := report.NewTextWriter(cfg.Report.TextFile).Write(rep); err != nil {
		log.Fatal().Err(err).Msg("failed to write text report")
	}
	log.Info().Str("path", cfg.Report.TextFile).Int("transfers", len(transfers)).
		Msg("text report written")

	if cfg.Report.ClickHouse.Enabled {
		w, err := report.NewClickHouseWriter(cfg.Report.ClickHouse, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open result store")
		}
		defer w.Close()
		if err := w.Write(rep); err != nil {
			log.Fatal().Err(err).Msg("failed to persist report")
		}
	}
}

// loadTable reads packet data from the configured CSV export, falling
// back to decoding the raw capture file.
func loadTable(cfg config.AnalysisConfig, log zerolog.Logger) (*metrics.Table, error) {
	if cfg.CaptureCSV != "" {
		if _, err := os.Stat(cfg.CaptureCSV); err == nil {
			return capturecsv.NewParser(log).ParseFile(cfg.CaptureCSV)
		}
	}
	if cfg.PcapFile != "" {
		log.Info().Str("path", cfg.PcapFile).Msg("no field export found, decoding raw capture")
		return pcap.ReadTable(cfg.PcapFile)
	}
	return nil, fmt.Errorf("no capture input configured: %w", model.ErrMissingInput)
}

func parseDuration(s string, fallback time.Duration, log zerolog.Logger) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Str("value", s).Dur("fallback", fallback).Msg("unparseable tolerance, using default")
		return fallback
	}
	return d
}

// captureSpan prefers the capture duration the trigger recorded; when
// absent it falls back to the packet time span.
func captureSpan(info model.RunInfo, t *metrics.Table) time.Duration {
	if info.CaptureDuration > 0 {
		return time.Duration(info.CaptureDuration * float64(time.Second))
	}
	if len(t.Rows) < 2 || !t.HasColumn(metrics.ColFrameTime) {
		return 0
	}
	return t.Rows[len(t.Rows)-1].Time.Sub(t.Rows[0].Time)
}
