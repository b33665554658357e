package scheduler

import (
	"context"
	"time"

	"github.com/seekmark/seekmark/internal/bridge"
	"github.com/seekmark/seekmark/internal/logger"
)

// CommandGC sweeps bridge commands whose answers never arrived, so their
// callers unblock and the pending map cannot grow without bound when the
// extension is gone.
type CommandGC struct {
	bridge   *bridge.Bridge
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCommandGC creates a bridge command garbage collector.
func NewCommandGC(b *bridge.Bridge, log logger.Logger, interval time.Duration) *CommandGC {
	return &CommandGC{
		bridge:   b,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (gc *CommandGC) Start(ctx context.Context) error {
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect()
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector.
func (gc *CommandGC) Stop() {
	close(gc.stopCh)
}

// Collect sweeps expired pending commands once.
func (gc *CommandGC) Collect() {
	swept := gc.bridge.PruneExpired(time.Now())
	if swept > 0 {
		gc.logger.Warn("swept expired bridge commands",
			logger.Int("swept", swept),
			logger.Int("still_pending", gc.bridge.Pending()))
	} else {
		gc.logger.Debug("no expired bridge commands")
	}
}
