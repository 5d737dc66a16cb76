// Package linedit provides fingerprint-guarded, line-range editing of text
// files with a two-phase select, propose and confirm workflow.
//
// Basic usage:
//
//	client, err := linedit.New(
//	    linedit.WithSQLite(".linedit/journal.db"),
//	    linedit.WithAllowedRoot("/work"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	id := client.Sessions.Create().ID()
//	client.Sessions.Apply(ctx, id, service.Open{Path: "/work/app.py"})
//	_, r := client.Sessions.Apply(ctx, id, service.Select{Range: edit.NewLineRange(3, 5)})
//	_, r = client.Sessions.Apply(ctx, id, service.Propose{Lines: []string{"x = 1"}, Fingerprint: r.Fingerprint})
//	fmt.Println(r.Diff)
//	_, r = client.Sessions.Apply(ctx, id, service.Confirm{})
package linedit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/infrastructure/locating"
	"github.com/helixml/linedit/infrastructure/persistence"
	"github.com/helixml/linedit/infrastructure/storage"
	"github.com/helixml/linedit/infrastructure/validation"
	"github.com/helixml/linedit/internal/config"
	"github.com/helixml/linedit/internal/database"
)

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = service.ErrClientClosed

// Client is the main entry point for the linedit library.
//
// Access services via struct fields:
//
//	client.Sessions.Apply(ctx, id, service.Confirm{})
//	client.Editor.PatchRanges(ctx, path, fp, patches)
//	client.Symbols.Locate(ctx, path, "handler")
type Client struct {
	Sessions   *service.SessionManager
	Editor     *service.Editor
	Symbols    *service.SymbolService
	History    *service.History
	Validators *edit.ValidatorRegistry

	// Pruner is nil unless the journal is enabled with a retention window.
	Pruner *service.JournalPruner

	coordinator *service.Coordinator
	storage     *storage.FileStore
	db          *database.Database
	journal     *persistence.JournalStore
	logger      *slog.Logger
	closed      atomic.Bool
	mu          sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	validators, err := validation.NewRegistry(cfg.validatorsFile, cfg.strictSyntax)
	if err != nil {
		return nil, fmt.Errorf("validators: %w", err)
	}
	for _, b := range cfg.validators {
		validators.Register(b.entry, b.extensions...)
	}

	files := storage.NewFileStore(storage.NewPathPolicy(cfg.allowedRoot), logger)

	ctx := context.Background()
	client := &Client{
		Validators: validators,
		storage:    files,
		logger:     logger,
	}

	coordinatorOpts := []service.CoordinatorOption{
		service.WithValidators(validators),
		service.WithLogger(logger),
		service.WithMaxSelectionLines(cfg.maxSelectionLines),
		service.WithStrictSyntax(cfg.strictSyntax),
	}
	if cfg.clock != nil {
		coordinatorOpts = append(coordinatorOpts, service.WithClock(cfg.clock))
	}

	if cfg.database != databaseNone {
		db, journal, err := openJournal(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		client.db = &db
		client.journal = &journal
		pruner, err := newPruner(ctx, cfg, journal, logger)
		if err != nil {
			return nil, errors.Join(err, db.Close())
		}
		client.Pruner = pruner
		coordinatorOpts = append(coordinatorOpts, service.WithJournal(journal))
		client.History = service.NewHistory(journal)
	} else {
		client.History = service.NewHistory(nil)
	}

	client.coordinator = service.NewCoordinator(files, coordinatorOpts...)
	client.Sessions = service.NewSessionManager(client.coordinator, logger)
	client.Editor = service.NewEditor(files, coordinatorOpts...)

	client.Symbols = service.NewSymbolService(files, logger)
	for _, b := range locating.DefaultBindings() {
		client.Symbols.Register(b.Chain, b.Extensions...)
	}
	for _, b := range cfg.locators {
		client.Symbols.Register(b.chain, b.extensions...)
	}

	return client, nil
}

// openJournal opens the journal database and migrates it.
func openJournal(ctx context.Context, cfg *clientConfig, logger *slog.Logger) (database.Database, persistence.JournalStore, error) {
	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return database.Database{}, persistence.JournalStore{}, fmt.Errorf("build database url: %w", err)
	}

	db, err := database.NewDatabaseWithLogger(ctx, dbURL, logger)
	if err != nil {
		return database.Database{}, persistence.JournalStore{}, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return database.Database{}, persistence.JournalStore{}, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	journal := persistence.NewJournalStore(db)
	return db, journal, nil
}

// newPruner builds the journal pruner and runs its startup sweep. It
// returns nil when entries are kept forever.
func newPruner(ctx context.Context, cfg *clientConfig, journal edit.JournalPruner, logger *slog.Logger) (*service.JournalPruner, error) {
	if cfg.retention <= 0 {
		return nil, nil
	}
	pruner := service.NewJournalPruner(journal, cfg.retention, cfg.pruneInterval, cfg.clock, logger)
	if _, err := pruner.PruneOnce(ctx); err != nil {
		return nil, fmt.Errorf("prune journal: %w", err)
	}
	return pruner, nil
}


// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres, databaseURL:
		if cfg.dbDSN == "" {
			return "", errors.New("empty database url")
		}
		return cfg.dbDSN, nil
	case databaseDefault:
		dataDir, err := config.PrepareDataDir(cfg.dataDir)
		if err != nil {
			return "", err
		}
		return "sqlite:///" + filepath.Join(dataDir, config.DefaultDBName), nil
	default:
		return "", fmt.Errorf("unknown database type %d", cfg.database)
	}
}

// Coordinator returns the pure session coordinator shared by Sessions.
func (c *Client) Coordinator() *service.Coordinator {
	return c.coordinator
}

// AllowedRoot returns the directory file operations are confined to, or
// "" when unrestricted.
func (c *Client) AllowedRoot() string {
	return c.storage.Policy().Root()
}

// JournalEnabled reports whether committed changes are recorded.
func (c *Client) JournalEnabled() bool {
	return c.journal != nil
}

// Close releases the journal database.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Pruner != nil {
		c.Pruner.Stop()
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	c.logger.Info("linedit client closed")
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
