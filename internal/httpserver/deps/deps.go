package deps

import (
	"time"

	"github.com/seekmark/seekmark/internal/agent"
	"github.com/seekmark/seekmark/internal/bridge"
	"github.com/seekmark/seekmark/internal/logger"
	"github.com/seekmark/seekmark/internal/playback"
	redisstore "github.com/seekmark/seekmark/internal/store/redis"
	"github.com/seekmark/seekmark/internal/tabs"
)

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time       // for testing, defaults to time.Now
	WatchHost         string                 // watch page host, ex: www.youtube.com
	Store             *redisstore.Store      // keyed bookmark collections
	Bridge            *bridge.Bridge         // extension command channel
	Driver            tabs.Driver            // tab primitives over the bridge
	Agent             *agent.Client          // page-agent protocol client
	Synchronizer      *playback.Synchronizer // openOrReuse + ensureSeek
	PullTimeout       time.Duration          // long-poll hold for /bridge/pull
	AllowedCIDRS      []string               // IPs allowed to reach the daemon
	AllowedOrigins    []string               // extension origins allowed by CORS
	TrustProxy        bool                   // true behind a trusted reverse proxy
	SeedReloadTrigger chan struct{}          // manual seed reload (nil if seeding disabled)
}
