package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/config"
	"TransferScope/internal/model"
)

// LoopDuration computes the wall-clock length of the signal loop for the
// given broker settings: repeats cycles of on+off intervals, with a floor
// of five seconds. Unbounded runs (repeats == -1) get a ten minute
// default, matching the capture sizing of the original tooling.
func LoopDuration(cfg config.BrokerConfig) time.Duration {
	if cfg.Repeats == -1 {
		return 10 * time.Minute
	}
	d := time.Duration(cfg.Repeats) *
		(time.Duration(cfg.IntervalOnMillis) + time.Duration(cfg.IntervalOffMillis)) *
		time.Millisecond
	if d < 5*time.Second {
		return 5 * time.Second
	}
	return d
}

// Run executes the publish loop: on word, wait, off word, wait, for the
// configured number of repeats (or until ctx is cancelled for unbounded
// runs). Returns the number of completed cycles.
func Run(ctx context.Context, pub *Publisher, cfg config.BrokerConfig, log zerolog.Logger) (int, error) {
	cycles := 0
	for i := 0; cfg.Repeats == -1 || i < cfg.Repeats; i++ {
		if err := pub.Publish(cfg.OnWord); err != nil {
			return cycles, err
		}
		if !sleep(ctx, time.Duration(cfg.IntervalOnMillis)*time.Millisecond) {
			return cycles, ctx.Err()
		}

		if err := pub.Publish(cfg.OffWord); err != nil {
			return cycles, err
		}
		cycles++
		log.Info().Int("cycle", cycles).Msg("completed signal cycle")

		if !sleep(ctx, time.Duration(cfg.IntervalOffMillis)*time.Millisecond) {
			return cycles, ctx.Err()
		}
	}
	return cycles, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

// WriteRunInfo persists the run parameters and folder accounting for the
// analyzer to merge into its report.
func WriteRunInfo(path string, info model.RunInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create run info file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		return fmt.Errorf("failed to encode run info: %w", err)
	}
	return nil
}

// ReadRunInfo loads a previously written run info file. A missing file
// yields the zero value; the report simply lacks run parameters then.
func ReadRunInfo(path string, log zerolog.Logger) model.RunInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Str("path", path).Msg("no run info file, report will lack run parameters")
		return model.RunInfo{}
	}
	var info model.RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("unreadable run info file, ignoring")
		return model.RunInfo{}
	}
	return info
}
