package deps

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaporshelf/edge/internal/feed"
	"github.com/vaporshelf/edge/internal/locale"
	"github.com/vaporshelf/edge/internal/logger"
	"github.com/vaporshelf/edge/internal/sitecfg"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed on guarded routes
	AllowedCIDRS []string         // IPs allowed on guarded routes (reload, infra)
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	DebugSecret string // shared secret for /api/debug-check, empty disables the route

	Resolver *locale.Resolver  // locale decision logic
	Site     *sitecfg.Registry // live site data (locales, roster, targets)

	Releases *feed.ReleaseFeed  // /api/github
	Presence *feed.PresenceFeed // /api/discord
	Health   *feed.HealthFeed   // /api/debug-check

	RedisClient *redis.Client // nil when the shared snapshot store is disabled

	ReloadTrigger chan struct{} // channel to trigger manual site data reload

	APILimiter func(http.Handler) http.Handler // shared rate limiter for public API routes
}
