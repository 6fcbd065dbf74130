// Package signallog reads and writes the control-plane activity log: one
// line per published signal word, timestamped at millisecond resolution.
package signallog

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/model"
)

// timeLayout is the on-disk timestamp format of the activity log.
const timeLayout = "2006-01-02 15:04:05.000"

// linePattern matches one published-signal line. The millisecond
// separator may be a dot or a comma depending on the producing tool.
var linePattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}[.,]\d{3}) - INFO - Published '(.+?)' to subject '(.+?)'`)

// Writer appends published-signal lines to the activity log file.
type Writer struct {
	f *os.File
}

// NewWriter opens (or creates) the activity log for appending.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open signal log: %w", err)
	}
	return &Writer{f: f}, nil
}

// Record appends one published-signal line with the given timestamp.
func (w *Writer) Record(ts time.Time, word, subject string) error {
	line := fmt.Sprintf("%s - INFO - Published '%s' to subject '%s'\n",
		ts.Format(timeLayout), word, subject)
	if _, err := w.f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write signal log line: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Parser extracts SIGNAL_ON/SIGNAL_OFF events from an activity log. Lines
// that do not parse are skipped with a warning and never reach the core.
type Parser struct {
	onWord  string
	offWord string
	log     zerolog.Logger
}

// NewParser creates a parser mapping the configured signal words to
// event kinds.
func NewParser(onWord, offWord string, log zerolog.Logger) *Parser {
	return &Parser{onWord: onWord, offWord: offWord, log: log}
}

// ParseFile reads the activity log at path and returns the signal events
// sorted ascending by timestamp. A missing file is a MissingInput error;
// a readable file with zero signal events is an EmptyInput error.
func (p *Parser) ParseFile(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("signal log %q: %w", path, model.ErrMissingInput)
	}
	defer f.Close()

	var events []model.Event
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		ev, ok := p.parseLine(scanner.Text(), lineNo)
		if ok {
			events = append(events, ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signal log %q: %w", path, err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("signal log %q: %w", path, model.ErrEmptyInput)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	p.log.Info().Int("events", len(events)).Str("path", path).Msg("parsed signal log")
	return events, nil
}

func (p *Parser) parseLine(line string, lineNo int) (model.Event, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return model.Event{}, false
	}

	ts, err := time.Parse(timeLayout, strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		p.log.Warn().Int("line", lineNo).Str("timestamp", m[1]).
			Msg("skipping signal log line with malformed timestamp")
		return model.Event{}, false
	}

	var kind model.EventKind
	switch m[2] {
	case p.onWord, "ON":
		kind = model.SignalOn
	case p.offWord, "OFF":
		kind = model.SignalOff
	default:
		// Unrelated payload on the signal subject.
		return model.Event{}, false
	}

	return model.Event{
		Source:    model.SourceSignal,
		Kind:      kind,
		Timestamp: ts,
	}, true
}
