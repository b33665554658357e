package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/seekmark/seekmark/internal/logger"
	"github.com/seekmark/seekmark/internal/sources/seed"
	redisstore "github.com/seekmark/seekmark/internal/store/redis"
)

// SeedReloader periodically imports the bookmark seed file into the store.
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	store         *redisstore.Store
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedReloader creates a seed reloader.
func NewSeedReloader(
	seedFile string,
	store *redisstore.Store,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		store:         store,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports once immediately, then keeps reloading on the interval or
// on a manual trigger.
func (sr *SeedReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed reload failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
}

// Reload merges the seed file into the store. Seeded marks are appended
// through the store's load-modify-save cycle; a (video, time) pair that
// already exists is left alone so reruns do not duplicate bookmarks.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	sr.logger.Info("reloading bookmark seed file")

	config, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	collections, err := sr.mapper.Map(config)
	if err != nil {
		return fmt.Errorf("failed to map seed file: %w", err)
	}

	imported := 0
	for videoID, seeded := range collections {
		existing, err := sr.store.Load(ctx, videoID)
		if err != nil {
			return fmt.Errorf("failed to load collection %s: %w", videoID, err)
		}

		have := make(map[int64]bool, len(existing))
		for _, b := range existing {
			have[b.Time] = true
		}

		added := false
		for _, b := range seeded {
			if have[b.Time] {
				continue
			}
			existing = append(existing, b)
			have[b.Time] = true
			imported++
			added = true
		}

		if !added {
			continue
		}
		if err := sr.store.Save(ctx, videoID, existing); err != nil {
			return fmt.Errorf("failed to save collection %s: %w", videoID, err)
		}
	}

	sr.logger.Info("seed reload completed",
		logger.Int("videos", len(collections)),
		logger.Int("imported", imported))

	return nil
}
