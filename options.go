package linedit

import (
	"log/slog"
	"time"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/symbol"
	"github.com/helixml/linedit/internal/config"
)

// databaseType identifies the journal database.
type databaseType int

const (
	databaseDefault databaseType = iota
	databaseSQLite
	databasePostgres
	databaseURL
	databaseNone
)

type validatorBinding struct {
	entry      edit.ValidatorEntry
	extensions []string
}

type locatorBinding struct {
	chain      symbol.Chain
	extensions []string
}

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	database          databaseType
	dbPath            string
	dbDSN             string
	dataDir           string
	allowedRoot       string
	logger            *slog.Logger
	maxSelectionLines int
	strictSyntax      bool
	validatorsFile    string
	retention         time.Duration
	pruneInterval     time.Duration
	clock             func() time.Time
	validators        []validatorBinding
	locators          []locatorBinding
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:           config.DefaultDataDir(),
		maxSelectionLines: config.DefaultMaxSelectionLines,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite records the edit journal in the SQLite file at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres records the edit journal in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithDatabaseURL records the edit journal in the database at url, using
// the sqlite:/// or postgres:// scheme to pick the driver.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.database = databaseURL
		c.dbDSN = url
	}
}

// WithoutJournal disables the edit journal. History then fails with an
// Invalid error.
func WithoutJournal() Option {
	return func(c *clientConfig) {
		c.database = databaseNone
	}
}

// WithJournalRetention drops journal entries older than d when the client
// starts, and on every sweep of Client.Pruner. Zero keeps everything.
func WithJournalRetention(d time.Duration) Option {
	return func(c *clientConfig) {
		if d >= 0 {
			c.retention = d
		}
	}
}

// WithPruneInterval sets how often a started Client.Pruner sweeps.
func WithPruneInterval(d time.Duration) Option {
	return func(c *clientConfig) {
		c.pruneInterval = d
	}
}

// WithDataDir sets the directory holding the default SQLite journal.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAllowedRoot confines every file operation to paths under root.
func WithAllowedRoot(root string) Option {
	return func(c *clientConfig) {
		c.allowedRoot = root
	}
}

// WithMaxSelectionLines caps how many lines one selection may span.
// Values <= 0 are ignored.
func WithMaxSelectionLines(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxSelectionLines = n
		}
	}
}

// WithStrictSyntax makes every registered validator reject, not just warn.
func WithStrictSyntax(strict bool) Option {
	return func(c *clientConfig) {
		c.strictSyntax = strict
	}
}

// WithValidatorsFile loads extra validators from a YAML file.
func WithValidatorsFile(path string) Option {
	return func(c *clientConfig) {
		c.validatorsFile = path
	}
}

// WithValidator binds a syntax validator to file extensions, replacing
// any built-in validator for them.
func WithValidator(entry edit.ValidatorEntry, extensions ...string) Option {
	return func(c *clientConfig) {
		c.validators = append(c.validators, validatorBinding{entry: entry, extensions: extensions})
	}
}

// WithLocator binds a symbol locator chain to file extensions, replacing
// any built-in chain for them.
func WithLocator(chain symbol.Chain, extensions ...string) Option {
	return func(c *clientConfig) {
		c.locators = append(c.locators, locatorBinding{chain: chain, extensions: extensions})
	}
}

// WithClock overrides the time source used to stamp journal entries.
func WithClock(clock func() time.Time) Option {
	return func(c *clientConfig) {
		c.clock = clock
	}
}

// FromAppConfig translates server configuration into client options.
func FromAppConfig(cfg config.AppConfig) []Option {
	opts := []Option{
		WithDataDir(cfg.DataDir()),
		WithAllowedRoot(cfg.AllowedRoot()),
		WithMaxSelectionLines(cfg.MaxSelectionLines()),
		WithStrictSyntax(cfg.StrictSyntax()),
		WithValidatorsFile(cfg.ValidatorsFile()),
	}
	journal := cfg.Journal()
	if !journal.Enabled() {
		return append(opts, WithoutJournal())
	}
	opts = append(opts, WithDatabaseURL(cfg.DBURL()), WithJournalRetention(journal.Retention()))
	return opts
}
