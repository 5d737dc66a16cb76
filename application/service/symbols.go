package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/symbol"
)

// SymbolLocation is a located definition together with the selection
// token for its range, so callers can patch it directly.
type SymbolLocation struct {
	Path        string
	Name        string
	Range       symbol.Range
	Fingerprint edit.Fingerprint
	Content     string
	Attempts    []symbol.Attempt
}

// SymbolService maps file extensions to locator chains.
type SymbolService struct {
	storage edit.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	chains map[string]symbol.Chain
}

// NewSymbolService creates a SymbolService with no chains registered.
func NewSymbolService(storage edit.Storage, logger *slog.Logger) *SymbolService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SymbolService{
		storage: storage,
		logger:  logger,
		chains:  make(map[string]symbol.Chain),
	}
}

// Register binds chain to each extension, replacing earlier bindings.
func (s *SymbolService) Register(chain symbol.Chain, extensions ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ext := range extensions {
		s.chains[extensionKey(ext)] = chain
	}
}

// Supports reports whether a chain is registered for path's extension.
func (s *SymbolService) Supports(path string) bool {
	_, ok := s.chain(path)
	return ok
}

// Locate reads path and runs the chain for its extension.
func (s *SymbolService) Locate(ctx context.Context, path, name string) (SymbolLocation, error) {
	if strings.TrimSpace(name) == "" {
		return SymbolLocation{}, edit.NewError(edit.KindInvalid, "symbol name is required")
	}
	chain, ok := s.chain(path)
	if !ok {
		return SymbolLocation{}, edit.Errorf(edit.KindInvalid, "%s: %s", symbol.ErrUnsupportedExtension, filepath.Ext(path))
	}

	content, err := s.storage.Read(ctx, path)
	if err != nil {
		return SymbolLocation{}, err
	}
	return s.LocateSource(ctx, chain, path, content, name)
}

// LocateSource runs chain against content already in memory.
func (s *SymbolService) LocateSource(ctx context.Context, chain symbol.Chain, path, content, name string) (SymbolLocation, error) {
	r, attempts, err := chain.Locate(ctx, []byte(content), name)
	for _, a := range attempts {
		s.logger.Debug("locator strategy failed",
			slog.String("path", path),
			slog.String("symbol", name),
			slog.String("strategy", a.Strategy),
			slog.String("error", a.Err.Error()),
		)
	}
	if err != nil {
		return SymbolLocation{Path: path, Name: name, Attempts: attempts}, err
	}

	loc := SymbolLocation{Path: path, Name: name, Range: r, Attempts: attempts}
	lines := edit.SplitLines(content)
	if valid, err := edit.ValidateRange(r.LineRange(), len(lines)); err == nil {
		loc.Fingerprint = edit.FingerprintLines(lines, valid)
		loc.Content = edit.JoinLines(lines[valid.Start()-1 : valid.End()])
	}
	return loc, nil
}

// ChainFor returns the chain registered for path's extension.
func (s *SymbolService) ChainFor(path string) (symbol.Chain, bool) {
	return s.chain(path)
}

func (s *SymbolService) chain(path string) (symbol.Chain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chains[extensionKey(filepath.Ext(path))]
	return c, ok
}

func extensionKey(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}
