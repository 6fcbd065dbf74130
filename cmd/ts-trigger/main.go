package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/capture"
	"TransferScope/internal/config"
	"TransferScope/internal/folder"
	"TransferScope/internal/model"
	"TransferScope/internal/trigger"
	"TransferScope/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	mode := flag.String("mode", "pub", "Operating mode: 'pub' to drive the signal loop, 'sub' to record remote signals.")
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

	switch *mode {
	case "pub":
		runPublisher(cfg, log)
	case "sub":
		runSubscriber(cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runPublisher drives one full test run: optional live capture, the
// signal publish loop, folder cleanup, capture export, and the run info
// handoff to the analyzer.
func runPublisher(cfg *config.Config, log zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := folder.Ensure(cfg.Folders.Root, cfg.Analysis.FlowAddresses); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare transfer folders")
	}

	runner := capture.NewRunner(log)
	loopDuration := trigger.LoopDuration(cfg.Broker)

	var captureCmd *exec.Cmd
	captureDuration := time.Duration(0)
	if cfg.Capture.Enabled {
		extra := parseDuration(cfg.Capture.ExtraDuration, 5*time.Second, log)
		captureDuration = loopDuration + extra
		cmd, err := runner.Start(ctx, cfg.Capture.Interface, cfg.Capture.PcapFile,
			captureDuration, cfg.Analysis.FlowAddresses)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start capture")
		}
		captureCmd = cmd
	}

	pub, err := trigger.NewPublisher(cfg.Broker, cfg.Analysis.SignalLog, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create signal publisher")
	}
	defer pub.Close()

	startedAt := time.Now()
	cycles, err := trigger.Run(ctx, pub, cfg.Broker, log)
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("signal loop failed")
	}
	log.Info().Int("cycles", cycles).Msg("signal loop finished")

	if captureCmd != nil {
		if err := captureCmd.Wait(); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("capture process exited with error")
		}
		rttColumn := runner.ResolveRTTColumn(context.Background())
		if err := runner.Export(context.Background(), cfg.Capture.PcapFile,
			cfg.Analysis.CaptureCSV, rttColumn); err != nil {
			log.Warn().Err(err).Msg("capture export failed, analyzer will decode the raw capture")
		}
	}

	// Let trailing transfers land before accounting and cleanup.
	delay := parseDuration(cfg.Folders.CleanupDelay, 2*time.Second, log)
	time.Sleep(delay)
	folders := folder.NewManager(log).CleanAll(cfg.Folders.Root, cfg.Analysis.FlowAddresses)

	info := model.RunInfo{
		StartedAt:         startedAt,
		IntervalOnMillis:  cfg.Broker.IntervalOnMillis,
		IntervalOffMillis: cfg.Broker.IntervalOffMillis,
		Repeats:           cfg.Broker.Repeats,
		CaptureDuration:   captureDuration.Seconds(),
		Folders:           folders,
	}
	if err := trigger.WriteRunInfo(cfg.Analysis.RunInfoFile, info); err != nil {
		log.Fatal().Err(err).Msg("failed to write run info")
	}
	log.Info().Str("path", cfg.Analysis.RunInfoFile).Msg("run info written")
}

// runSubscriber records remotely published signals into the local
// activity log until interrupted.
func runSubscriber(cfg *config.Config, log zerolog.Logger) {
	sub, err := trigger.NewSubscriber(cfg.Broker, cfg.Analysis.SignalLog, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create signal subscriber")
	}
	defer sub.Close()

	if err := sub.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start signal subscriber")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutdown signal received, cleaning up")
}

func parseDuration(s string, fallback time.Duration, log zerolog.Logger) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Str("value", s).Dur("fallback", fallback).Msg("unparseable duration, using default")
		return fallback
	}
	return d
}
