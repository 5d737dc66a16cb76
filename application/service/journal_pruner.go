package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/helixml/linedit/domain/edit"
)

// DefaultPruneInterval is how often a running JournalPruner sweeps.
const DefaultPruneInterval = time.Hour

// JournalPruner removes journal entries older than the retention window,
// once on demand and then on a timer.
type JournalPruner struct {
	journal   edit.JournalPruner
	retention time.Duration
	interval  time.Duration
	clock     func() time.Time
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewJournalPruner creates a JournalPruner. A zero interval uses
// DefaultPruneInterval; a nil clock uses time.Now.
func NewJournalPruner(journal edit.JournalPruner, retention, interval time.Duration, clock func() time.Time, logger *slog.Logger) *JournalPruner {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	if clock == nil {
		clock = time.Now
	}
	return &JournalPruner{
		journal:   journal,
		retention: retention,
		interval:  interval,
		clock:     clock,
		logger:    logger,
	}
}

// Retention returns the retention window.
func (p *JournalPruner) Retention() time.Duration { return p.retention }

// PruneOnce deletes entries committed before now minus the retention.
func (p *JournalPruner) PruneOnce(ctx context.Context) (int64, error) {
	removed, err := p.journal.Prune(ctx, p.clock().Add(-p.retention))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		p.logger.Info("pruned edit journal",
			slog.Int64("removed", removed),
			slog.Duration("retention", p.retention),
		)
	}
	return removed, nil
}

// Run prunes on every tick until ctx is cancelled. Failures are logged
// and retried on the next tick.
func (p *JournalPruner) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := p.PruneOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("journal prune failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Start runs the pruner in a background goroutine until Stop.
func (p *JournalPruner) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Go(func() {
		_ = p.Run(ctx)
	})

	p.logger.Info("journal pruning started", slog.Duration("interval", p.interval))
}

// Stop cancels the background goroutine and waits for it to finish.
func (p *JournalPruner) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Info("journal pruning stopped")
}
