package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to match the behavior of the original PhishSniffer
// predictor where applicable.
const (
	// DefaultThreshold is the classification threshold: analyses with a
	// phishing probability at or above this value are flagged as phishing.
	// 0.5 treats the two classes symmetrically; users can raise it to
	// reduce false positives at the cost of misses.
	DefaultThreshold = 0.5

	// DefaultBatchSize of 4 concurrent analyses balances throughput with
	// resource usage when analyzing a directory of .eml files. Analysis is
	// CPU-bound regex work, so there is little to gain beyond a few workers.
	DefaultBatchSize = 4

	// DefaultHistoryLimit is the number of analysis-history entries kept.
	// Older entries are pruned on insert. The small cap mirrors the
	// original tool's quick-review history view.
	DefaultHistoryLimit = 10

	// DefaultServeAddr is the listen address for the REST API.
	DefaultServeAddr = "127.0.0.1:8080"

	// DefaultShutdownTimeout is how long the API server waits for in-flight
	// requests when shutting down.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultMaxUploadSize limits uploaded email files. 10MB is generous
	// for .eml files while preventing memory exhaustion from bad uploads.
	DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB

	// AppName is the application name used for XDG directory paths.
	AppName = "phishsniffer"

	// OverrideProbability is the minimum probability assigned when a special
	// known-phishing pattern matches. The model output is raised to at least
	// this value so pattern hits always cross any reasonable threshold.
	OverrideProbability = 0.95
)

// Config holds all configuration options for PhishSniffer.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., AnalyzeConfig, ServeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Inputs is the list of email files (.eml, .txt, .msg) to analyze.
	Inputs []string

	// Text is raw email text to analyze instead of files.
	// Mutually exclusive with Inputs.
	Text string

	// Threshold is the classification threshold in [0,1].
	Threshold float64

	// ModelDir is the directory containing trained model files.
	// When empty or when no model file is found, the rule-based fallback
	// model is used.
	ModelDir string

	// ModelName selects a specific model file (without extension) in
	// ModelDir. When empty, the most recent model is loaded.
	ModelName string

	// DBDir is the directory path for storing the SQLite database.
	// When empty, defaults to the XDG data directory.
	DBDir string

	// NoSave disables persisting analysis results to the database.
	NoSave bool

	// BatchSize is the number of concurrent analyses when processing
	// multiple input files.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .phishsniffer in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds special patterns and trusted domains loaded from the
	// config file. Populated by LoadConfigFile.
	File *File

	// ServeAddr is the listen address for the REST API server.
	ServeAddr string

	// MaxUploadSize is the maximum accepted upload size in bytes for the
	// file analysis endpoint.
	MaxUploadSize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., threshold, batch size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Threshold:     DefaultThreshold,
		BatchSize:     DefaultBatchSize,
		ModelDir:      filepath.Join(XDGDataDir(), "models"),
		DBDir:         XDGDataDir(),
		ServeAddr:     DefaultServeAddr,
		MaxUploadSize: DefaultMaxUploadSize,
	}
}

// XDGDataDir returns the XDG data directory for PhishSniffer.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/phishsniffer
// On macOS: ~/Library/Application Support/phishsniffer
// On Windows: %LOCALAPPDATA%\phishsniffer
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for PhishSniffer.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 && c.Text == "" {
		return ErrNoInput
	}

	if len(c.Inputs) > 0 && c.Text != "" {
		return ErrConflictingInputs
	}

	if c.Threshold < 0 || c.Threshold > 1 {
		return ErrInvalidThreshold
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxUploadSize < 0 {
		return ErrInvalidMaxUploadSize
	}

	return nil
}

// ValidateServe checks the subset of configuration the API server needs.
// Unlike Validate, it does not require analysis inputs.
func (c *Config) ValidateServe() error {
	if c.ServeAddr == "" {
		return ErrNoListenAddress
	}

	if c.Threshold < 0 || c.Threshold > 1 {
		return ErrInvalidThreshold
	}

	if c.MaxUploadSize < 0 {
		return ErrInvalidMaxUploadSize
	}

	return nil
}
