// Package config provides application configuration.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., JOURNAL_ENABLED).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.linedit
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/linedit.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty, text or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// MaxSelectionLines caps the size of a session selection.
	// Env: MAX_SELECTION_LINES (default: 500)
	MaxSelectionLines int `envconfig:"MAX_SELECTION_LINES" default:"500"`

	// StrictSyntax discards any change that fails syntax validation.
	// Env: STRICT_SYNTAX (default: false)
	StrictSyntax bool `envconfig:"STRICT_SYNTAX" default:"false"`

	// ValidatorsFile is a YAML file registering extra syntax validators.
	// Env: VALIDATORS_FILE
	ValidatorsFile string `envconfig:"VALIDATORS_FILE"`

	// AllowedRoot confines every edited path to this directory.
	// Env: ALLOWED_ROOT
	AllowedRoot string `envconfig:"ALLOWED_ROOT"`

	// CORSOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ORIGINS
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// APIKeys is a comma-separated list of valid API keys.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// Journal configures the edit journal.
	Journal JournalEnv `envconfig:"JOURNAL"`
}

// JournalEnv holds environment configuration for the edit journal.
type JournalEnv struct {
	// Enabled controls whether confirmed edits are recorded.
	// Env: JOURNAL_ENABLED (default: true)
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// RetentionDays prunes commits older than this many days at startup.
	// Env: JOURNAL_RETENTION_DAYS (default: 0, keep forever)
	RetentionDays float64 `envconfig:"RETENTION_DAYS" default:"0"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "LINEDIT" would require LINEDIT_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	cfg = applyOption(cfg, WithMaxSelectionLines(e.MaxSelectionLines))
	cfg = applyOption(cfg, WithStrictSyntax(e.StrictSyntax))

	if e.ValidatorsFile != "" {
		cfg = applyOption(cfg, WithValidatorsFile(e.ValidatorsFile))
	}
	if e.AllowedRoot != "" {
		cfg = applyOption(cfg, WithAllowedRoot(e.AllowedRoot))
	}
	if e.CORSOrigins != "" {
		cfg = applyOption(cfg, WithCORSOrigins(ParseList(e.CORSOrigins)))
	}
	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseList(e.APIKeys)))
	}

	cfg = applyOption(cfg, WithJournalConfig(e.Journal.ToJournalConfig()))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToJournalConfig converts JournalEnv to JournalConfig.
func (j JournalEnv) ToJournalConfig() JournalConfig {
	return NewJournalConfig().
		WithEnabled(j.Enabled).
		WithRetention(time.Duration(j.RetentionDays * float64(24*time.Hour)))
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	case "text":
		return LogFormatText
	default:
		return LogFormatPretty
	}
}
