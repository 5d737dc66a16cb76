// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = 8080
	DefaultLogLevel          = "INFO"
	DefaultMaxSelectionLines = 500
	DefaultDBName            = "linedit.db"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
)

// JournalConfig configures the edit journal.
type JournalConfig struct {
	enabled   bool
	retention time.Duration
}

// NewJournalConfig creates a new JournalConfig with defaults.
func NewJournalConfig() JournalConfig {
	return JournalConfig{enabled: true}
}

// Enabled returns whether confirmed edits are recorded.
func (j JournalConfig) Enabled() bool { return j.enabled }

// Retention returns how long commits are kept. Zero keeps them forever.
func (j JournalConfig) Retention() time.Duration { return j.retention }

// WithEnabled returns a new config with the specified enabled state.
func (j JournalConfig) WithEnabled(enabled bool) JournalConfig {
	j.enabled = enabled
	return j
}

// WithRetention returns a new config with the specified retention.
func (j JournalConfig) WithRetention(d time.Duration) JournalConfig {
	if d < 0 {
		d = 0
	}
	j.retention = d
	return j
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host              string
	port              int
	dataDir           string
	dbURL             string
	logLevel          string
	logFormat         LogFormat
	maxSelectionLines int
	strictSyntax      bool
	validatorsFile    string
	allowedRoot       string
	journal           JournalConfig
	corsOrigins       []string
	apiKeys           []string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linedit"
	}
	return filepath.Join(home, ".linedit")
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:              DefaultHost,
		port:              DefaultPort,
		dataDir:           dataDir,
		dbURL:             "sqlite:///" + filepath.Join(dataDir, DefaultDBName),
		logLevel:          DefaultLogLevel,
		logFormat:         LogFormatPretty,
		maxSelectionLines: DefaultMaxSelectionLines,
		journal:           NewJournalConfig(),
		corsOrigins:       []string{},
		apiKeys:           []string{},
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// MaxSelectionLines returns the largest selection a session accepts.
func (c AppConfig) MaxSelectionLines() int { return c.maxSelectionLines }

// StrictSyntax returns whether every syntax failure discards the change.
func (c AppConfig) StrictSyntax() bool { return c.strictSyntax }

// ValidatorsFile returns the path of the validator registry file, if any.
func (c AppConfig) ValidatorsFile() string { return c.validatorsFile }

// AllowedRoot returns the directory edits are confined to. Empty allows
// any absolute path.
func (c AppConfig) AllowedRoot() string { return c.allowedRoot }

// Journal returns the journal config.
func (c AppConfig) Journal() JournalConfig { return c.journal }

// CORSOrigins returns the origins allowed by the HTTP API.
func (c AppConfig) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

// APIKeys returns the configured API keys.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		// Update default DB URL when data dir changes
		if c.dbURL == "" || strings.Contains(c.dbURL, DefaultDBName) {
			c.dbURL = "sqlite:///" + filepath.Join(dir, DefaultDBName)
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithMaxSelectionLines sets the selection cap. Non-positive values are ignored.
func WithMaxSelectionLines(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.maxSelectionLines = n
		}
	}
}

// WithStrictSyntax sets whether syntax failures discard changes.
func WithStrictSyntax(strict bool) AppConfigOption {
	return func(c *AppConfig) { c.strictSyntax = strict }
}

// WithValidatorsFile sets the validator registry file.
func WithValidatorsFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.validatorsFile = path }
}

// WithAllowedRoot confines edits to root.
func WithAllowedRoot(root string) AppConfigOption {
	return func(c *AppConfig) { c.allowedRoot = root }
}

// WithJournalConfig sets the journal config.
func WithJournalConfig(j JournalConfig) AppConfigOption {
	return func(c *AppConfig) { c.journal = j }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values like API keys are masked or shown as counts.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.Int("max_selection_lines", c.maxSelectionLines),
		slog.Bool("strict_syntax", c.strictSyntax),
		slog.String("validators_file", c.validatorsFile),
		slog.String("allowed_root", c.allowedRoot),
		slog.Bool("journal_enabled", c.journal.Enabled()),
		slog.Duration("journal_retention", c.journal.Retention()),
		slog.Int("api_keys_count", len(c.apiKeys)),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseList parses a comma-separated string, dropping blank entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
