// Package trigger drives the control-plane signal channel: publishing
// the on/off words on a broker subject at configured intervals, and
// recording every signal into the activity log the analyzer reads back.
package trigger

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"TransferScope/internal/adapter/signallog"
	"TransferScope/internal/config"
)

// Publisher publishes signal words to the broker and mirrors each
// publication into the activity log.
type Publisher struct {
	nc      *nats.Conn
	subject string
	slog    *signallog.Writer
	log     zerolog.Logger
}

// NewPublisher connects to the broker and opens the activity log.
func NewPublisher(cfg config.BrokerConfig, logPath string, log zerolog.Logger) (*Publisher, error) {
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
	return &Publisher{nc: nc, subject: cfg.Subject, slog: slog, log: log}, nil
}

// Publish sends one signal word and records it. The recorded timestamp is
// taken immediately before the publish call, like the tooling this log
// format originates from.
func (p *Publisher) Publish(word string) error {
	now := time.Now()
	if err := p.nc.Publish(p.subject, []byte(word)); err != nil {
		return fmt.Errorf("failed to publish %q: %w", word, err)
	}
	if err := p.slog.Record(now, word, p.subject); err != nil {
		return err
	}
	p.log.Info().Str("word", word).Str("subject", p.subject).Msg("published signal")
	return nil
}

// Close drains the broker connection and closes the activity log.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
	if p.slog != nil {
		p.slog.Close()
	}
	p.log.Info().Msg("broker connection drained and closed")
}
