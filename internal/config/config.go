package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"TransferScope/pkg/logger"
)

// BrokerConfig describes the control-plane signal channel.
type BrokerConfig struct {
	URL     string `yaml:"url" default:"nats://127.0.0.1:4222" validate:"required"`
	Subject string `yaml:"subject" default:"lab.status.power" validate:"required"`

	OnWord  string `yaml:"on_word" default:"true" validate:"required"`
	OffWord string `yaml:"off_word" default:"false" validate:"required"`

	// Time from the on word to the off word, and from the off word to
	// the next on word, in milliseconds.
	IntervalOnMillis  int `yaml:"interval_on_ms" default:"5000" validate:"gt=0"`
	IntervalOffMillis int `yaml:"interval_off_ms" default:"10000" validate:"gt=0"`

	// Repeats is the number of on/off cycles; -1 runs until interrupted.
	Repeats int `yaml:"repeats" default:"1" validate:"eq=-1|gt=0"`
}

// AnalysisConfig describes the correlation inputs and tolerances.
type AnalysisConfig struct {
	SignalLog  string `yaml:"signal_log" default:"signal_activity.log" validate:"required"`
	CaptureCSV string `yaml:"capture_csv" default:"capture_export.csv"`
	// PcapFile is the fallback packet source when no CSV export exists.
	PcapFile string `yaml:"pcap_file"`
	// RunInfoFile carries the trigger's recorded run parameters into
	// the analyzer; optional.
	RunInfoFile string `yaml:"run_info_file" default:"run_info.json"`

	// Tolerance windows, parsed with time.ParseDuration.
	StartTolerance string `yaml:"start_tolerance" default:"10s"`
	ConnTolerance  string `yaml:"conn_tolerance" default:"30s"`

	// FlowAddresses are the network addresses of interest for the
	// per-flow metric breakdown.
	FlowAddresses []string `yaml:"flow_addresses"`
}

// CaptureConfig describes the external capture process.
type CaptureConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Interface string `yaml:"interface"`
	PcapFile  string `yaml:"pcap_file" default:"temp_capture.pcap"`
	// ExtraDuration pads the capture beyond the computed signal-loop
	// length, parsed with time.ParseDuration.
	ExtraDuration string `yaml:"extra_duration" default:"5s"`
}

// FoldersConfig describes the transfer folder tree managed after a run.
type FoldersConfig struct {
	Root string `yaml:"root" default:"./transfer_files"`
	// CleanupDelay is how long to wait before accounting and deletion,
	// parsed with time.ParseDuration.
	CleanupDelay string `yaml:"cleanup_delay" default:"2s"`
}

// ClickHouseConfig holds the report persistence connection settings.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" default:"127.0.0.1"`
	Port     int    `yaml:"port" default:"9000"`
	Database string `yaml:"database" default:"transferscope"`
	Username string `yaml:"username" default:"default"`
	Password string `yaml:"password"`
}

// ReportConfig describes the report outputs.
type ReportConfig struct {
	TextFile   string           `yaml:"text_file" default:"transfer_analysis_report.txt"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr" default:":8080"`
}

// Config is the top-level configuration for all commands.
type Config struct {
	Broker   BrokerConfig   `yaml:"broker"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Capture  CaptureConfig  `yaml:"capture"`
	Folders  FoldersConfig  `yaml:"folders"`
	Report   ReportConfig   `yaml:"report"`
	API      APIConfig      `yaml:"api"`
	Log      logger.Config  `yaml:"log"`
}

// LoadConfig reads the configuration from a YAML file, fills defaults for
// omitted keys, and validates it.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
