package trigger

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"TransferScope/internal/adapter/signallog"
	"TransferScope/internal/config"
)

// Subscriber records signals published by a remote trigger into a local
// activity log, so the analyzer can run on a different host than the
// publisher.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	slog    *signallog.Writer
	log     zerolog.Logger
}

// NewSubscriber connects to the broker and opens the activity log.
func NewSubscriber(cfg config.BrokerConfig, logPath string, log zerolog.Logger) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker at %s: %w", cfg.URL, err)
	}
	log.Info().Str("url", cfg.URL).Msg("connected to broker")

	slog, err := signallog.NewWriter(logPath)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &Subscriber{nc: nc, subject: cfg.Subject, slog: slog, log: log}, nil
}

// Start subscribes to the signal subject and records every message as it
// arrives. Reception time stands in for publication time; the channels
// are correlated with tolerance windows, not exact matches.
func (s *Subscriber) Start() error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		word := string(msg.Data)
		if err := s.slog.Record(time.Now(), word, s.subject); err != nil {
			s.log.Error().Err(err).Msg("failed to record received signal")
			return
		}
		s.log.Info().Str("word", word).Msg("recorded signal")
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %q: %w", s.subject, err)
	}
	s.sub = sub
	s.log.Info().Str("subject", s.subject).Msg("subscribed, waiting for signals")
	return nil
}

// Close unsubscribes and closes the connection and activity log.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
	}
	if s.slog != nil {
		s.slog.Close()
	}
}
