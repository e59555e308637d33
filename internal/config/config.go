package config

import (
	"DumpSpectra/internal/engine/filter"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// CaptureConfig controls which lines of the capture survive the filters.
type CaptureConfig struct {
	TimestampPrefix string   `yaml:"timestamp_prefix"`
	HexDumpMarker   string   `yaml:"hexdump_marker"`
	Keywords        []string `yaml:"keywords"`
}

// ExtractorConfig holds the field extractor settings.
type ExtractorConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
	// DedupAddresses drops a dotted-quad match that repeats the token already
	// taken after "IP " at the same offset. Off by default for compatibility
	// with the historical double counting.
	DedupAddresses bool `yaml:"dedup_addresses"`
	// StripBareIPv4 applies the port rule to bare dotted quads too, so
	// "10.0.0.2" is counted as "10.0.0". Off by default.
	StripBareIPv4 bool `yaml:"strip_bare_ipv4"`
}

// AliasDef folds every host starting with Prefix into Canonical.
type AliasDef struct {
	Prefix    string `yaml:"prefix"`
	Canonical string `yaml:"canonical"`
}

// AggregatorConfig holds the host canonicalization rules.
type AggregatorConfig struct {
	Aliases []AliasDef `yaml:"aliases"`
}

// DetectorConfig holds the anomaly detector settings.
type DetectorConfig struct {
	HostThreshold int `yaml:"host_threshold"`
}

// ReportConfig controls the Markdown report.
type ReportConfig struct {
	Title     string   `yaml:"title"`
	Watchlist []string `yaml:"watchlist"`
	ChartFile string   `yaml:"chart_file"`
	TopPairs  int      `yaml:"top_pairs"`
}

// SQLiteConfig holds the settings for the SQLite run store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the settings for publishing run summaries.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef enables one output writer by type.
type WriterDef struct {
	Type    string `yaml:"type"`
	Enabled bool   `yaml:"enabled"`
}

// AlerterRule defines a single rule for the alerter to check.
type AlerterRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"`
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
}

// AlerterConfig holds the configuration for the alerter.
type AlerterConfig struct {
	Enabled bool          `yaml:"enabled"`
	Rules   []AlerterRule `yaml:"rules"`
}

// SMTPConfig holds the configuration for the email notifier.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// LogConfig selects the log level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	OutputDir  string           `yaml:"output_dir"`
	Capture    CaptureConfig    `yaml:"capture"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Detector   DetectorConfig   `yaml:"detector"`
	Report     ReportConfig     `yaml:"report"`
	Writers    []WriterDef      `yaml:"writers"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
	Alerter    AlerterConfig    `yaml:"alerter"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		OutputDir: "out",
		Capture: CaptureConfig{
			TimestampPrefix: "11:42",
			HexDumpMarker:   "0x",
			Keywords:        slices.Clone(filter.DefaultKeywords),
		},
		Extractor: ExtractorConfig{
			Workers:   1,
			BatchSize: 512,
		},
		Aggregator: AggregatorConfig{
			Aliases: []AliasDef{
				{Prefix: "BP-Linux8", Canonical: "BP-Linux8"},
				{Prefix: "par", Canonical: "par.1e100"},
				{Prefix: "190-0-175-100.gba.solunet.com.ar", Canonical: "190-0-175-100.gba.solunet.com.ar"},
			},
		},
		Detector: DetectorConfig{HostThreshold: 100},
		Report: ReportConfig{
			Title:     "Traffic analysis",
			Watchlist: []string{"190-0-175-100.gba.solunet.com.ar", "BP-Linux8"},
			ChartFile: "suspects.png",
			TopPairs:  10,
		},
		Writers: []WriterDef{
			{Type: "text", Enabled: true},
			{Type: "csv", Enabled: true},
			{Type: "report", Enabled: true},
			{Type: "json", Enabled: true},
			{Type: "gob", Enabled: false},
			{Type: "sqlite", Enabled: false},
			{Type: "clickhouse", Enabled: false},
			{Type: "nats", Enabled: false},
		},
		SQLite:     SQLiteConfig{Path: "runs.db"},
		ClickHouse: ClickHouseConfig{Host: "localhost", Port: 9000, Database: "default", Username: "default"},
		NATS:       NATSConfig{URL: "nats://127.0.0.1:4222", Subject: "dumpspectra.summary"},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads the configuration from a YAML file on top of Default.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}
	return cfg, nil
}

// applyEnv lets secrets and the log level come from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("DUMPSPECTRA_SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("DUMPSPECTRA_CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("DUMPSPECTRA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the settings that would otherwise fail deep in the pipeline.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if len(c.Capture.Keywords) == 0 {
		return fmt.Errorf("capture.keywords must list at least one keyword")
	}
	if c.Capture.HexDumpMarker == "" {
		return fmt.Errorf("capture.hexdump_marker must not be empty")
	}
	if c.Extractor.Workers < 1 {
		return fmt.Errorf("extractor.workers must be at least 1, got %d", c.Extractor.Workers)
	}
	if c.Extractor.BatchSize < 1 {
		return fmt.Errorf("extractor.batch_size must be at least 1, got %d", c.Extractor.BatchSize)
	}
	for i, a := range c.Aggregator.Aliases {
		if a.Prefix == "" || a.Canonical == "" {
			return fmt.Errorf("aggregator.aliases[%d]: prefix and canonical are required", i)
		}
	}
	if c.Detector.HostThreshold < 1 {
		return fmt.Errorf("detector.host_threshold must be positive, got %d", c.Detector.HostThreshold)
	}
	for i, w := range c.Writers {
		if strings.TrimSpace(w.Type) == "" {
			return fmt.Errorf("writers[%d]: type is required", i)
		}
	}
	for i, r := range c.Alerter.Rules {
		if r.Metric == "" || r.Operator == "" {
			return fmt.Errorf("alerter.rules[%d]: metric and operator are required", i)
		}
	}
	return nil
}

// WriterEnabled reports whether a writer type is switched on.
func (c *Config) WriterEnabled(writerType string) bool {
	for _, w := range c.Writers {
		if w.Type == writerType {
			return w.Enabled
		}
	}
	return false
}
