package playback

import (
	"context"
	"time"

	"github.com/seekmark/seekmark/internal/agent"
	"github.com/seekmark/seekmark/internal/domain"
	"github.com/seekmark/seekmark/internal/logger"
	"github.com/seekmark/seekmark/internal/retry"
	"github.com/seekmark/seekmark/internal/tabs"
)

// Options tunes the seek retry loop.
type Options struct {
	Host         string        // watch page host, ex: www.youtube.com
	SettleDelay  time.Duration // grace period after navigation before the first attempt
	SeekAttempts int           // attempt ceiling
	SeekBackoff  time.Duration // fixed wait between attempts
	Clock        retry.Clock   // nil => wall clock
}

// Synchronizer drives a watch page to a requested playback position.
//
// The two-phase design is deliberate: the URL timestamp hint covers the
// cold-start case (a fresh tab must load the right content), the retried
// SEEK_TO command covers the warm-reuse case (an already-loaded page does
// not reinterpret a URL hint). Running both makes the jump correct whether
// or not the tab existed.
type Synchronizer struct {
	driver tabs.Driver
	agent  *agent.Client
	opts   Options
	logger logger.Logger
}

// New creates a synchronizer over the given tab driver.
func New(driver tabs.Driver, agentClient *agent.Client, opts Options, log logger.Logger) *Synchronizer {
	if opts.Clock == nil {
		opts.Clock = retry.RealClock()
	}
	return &Synchronizer{
		driver: driver,
		agent:  agentClient,
		opts:   opts,
		logger: log,
	}
}

// OpenOrReuse guarantees one foregrounded tab showing videoID, navigated to
// the canonical URL carrying the timestamp hint. An existing tab for the
// same video is reused (first match wins); otherwise a new tab is created.
func (s *Synchronizer) OpenOrReuse(ctx context.Context, videoID string, t float64) (tabs.Tab, error) {
	url := domain.BuildWatchURL(s.opts.Host, videoID, t)

	existing, err := s.driver.Query(ctx, domain.WatchPattern(s.opts.Host))
	if err != nil {
		return tabs.Tab{}, err
	}

	for _, tab := range existing {
		id, ok := domain.VideoIDFromURL(s.opts.Host, tab.URL)
		if !ok || id != videoID {
			continue
		}
		s.logger.Debug("reusing existing watch tab",
			logger.Int("tab", tab.ID),
			logger.String("video", videoID))
		return s.driver.Update(ctx, tab.ID, url, true)
	}

	s.logger.Debug("creating watch tab",
		logger.String("video", videoID))
	return s.driver.Create(ctx, url)
}

// EnsureSeek drives the tab's media element to t. After the settle delay it
// retries SEEK_TO up to the attempt ceiling with a fixed backoff; transport
// failures count the same as ok:false answers. False means the budget was
// exhausted with no confirmed seek.
func (s *Synchronizer) EnsureSeek(ctx context.Context, tabID int, t float64) bool {
	if err := s.opts.Clock.Sleep(ctx, s.opts.SettleDelay); err != nil {
		return false
	}

	return retry.Do(ctx, s.opts.SeekAttempts, s.opts.SeekBackoff, s.opts.Clock,
		func(ctx context.Context) bool {
			return s.agent.SeekTo(ctx, tabID, t)
		})
}

// Jump is the whole OPEN_AT_TIMESTAMP intent: locate or create the tab,
// then seek. An unconfirmed seek is not an error; the tab is still
// foregrounded at the right video, only the precise offset is unknown.
func (s *Synchronizer) Jump(ctx context.Context, videoID string, t float64) (seeked bool, err error) {
	tab, err := s.OpenOrReuse(ctx, videoID, t)
	if err != nil {
		return false, err
	}

	seeked = s.EnsureSeek(ctx, tab.ID, t)
	if !seeked {
		s.logger.Warn("seek unconfirmed after retry budget",
			logger.String("video", videoID),
			logger.Int("tab", tab.ID),
			logger.Float64("time", t))
	}
	return seeked, nil
}
