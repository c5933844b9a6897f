package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SiteFile       string        // path to the site.yaml file (locales, roster, health targets)
	ReloadInterval time.Duration // interval to reload site.yaml (default: 24h)

	// Upstreams
	GithubAPI   string // GitHub API base URL
	GithubRepo  string // "owner/repo" whose latest release is served
	AssetSuffix string // release asset file suffix to pick (ex: ".exe")
	ReleasesURL string // fallback download page when no asset matches
	LanyardURL  string // Lanyard API base URL

	// Cache TTLs and fetch limits
	ReleaseTTL    time.Duration // release info cache TTL (default: 5m)
	PresenceTTL   time.Duration // presence cache TTL (default: 30s)
	HealthTTL     time.Duration // health check cache TTL (default: 10m)
	FetchTimeout  time.Duration // per-request timeout for release/presence fetches
	ProbeTimeout  time.Duration // per-probe timeout for health checks
	SlowThreshold time.Duration // latency above which a probe counts as slow

	DebugSecret string // shared secret for /api/debug-check (optional, empty disables)

	// Rate limiting on public API routes
	RateBurst  int // bucket capacity per client IP
	RateRefill int // tokens refilled per IP per minute

	// Redis (optional, empty addr disables the shared snapshot store)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password when Redis is enabled
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict guarded routes to specific Host headers
	AllowedCIDRS []string // optional, restrict guarded routes to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("EDGE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("EDGE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("EDGE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("EDGE_PRETTY_LOG", true),

		// Site data file
		SiteFile:       getenv("EDGE_SITE_FILE", "/app/site.yaml"),
		ReloadInterval: mustDuration("EDGE_RELOAD_SOURCE_INTERVAL", 24*time.Hour),

		// Upstreams
		GithubAPI:   getenv("EDGE_GITHUB_API", "https://api.github.com"),
		GithubRepo:  requireEnv("EDGE_GITHUB_REPO"),
		AssetSuffix: getenv("EDGE_ASSET_SUFFIX", ".exe"),
		ReleasesURL: requireEnv("EDGE_RELEASES_URL"),
		LanyardURL:  getenv("EDGE_LANYARD_URL", "https://api.lanyard.rest/v1"),

		// Caching
		ReleaseTTL:    mustDuration("EDGE_RELEASE_TTL", 5*time.Minute),
		PresenceTTL:   mustDuration("EDGE_PRESENCE_TTL", 30*time.Second),
		HealthTTL:     mustDuration("EDGE_HEALTH_TTL", 10*time.Minute),
		FetchTimeout:  mustDuration("EDGE_FETCH_TIMEOUT", 10*time.Second),
		ProbeTimeout:  mustDuration("EDGE_PROBE_TIMEOUT", 15*time.Second),
		SlowThreshold: mustDuration("EDGE_SLOW_THRESHOLD", 2*time.Second),

		DebugSecret: getenv("EDGE_DEBUG_SECRET", ""),

		// Rate limiting
		RateBurst:  getenvInt("EDGE_RATE_BURST", 20),
		RateRefill: getenvInt("EDGE_RATE_REFILL_PER_MIN", 60),

		// Redis settings
		RedisAddr:             getenv("EDGE_REDIS_ADDR", ""),
		RedisUser:             getenv("EDGE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("EDGE_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("EDGE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("EDGE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("EDGE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("EDGE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("EDGE_TRUST_PROXY", true),
	}

	// Validate Redis password configuration (only when Redis is enabled)
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: EDGE_REDIS_PASSWORD is required when EDGE_REDIS_ADDR is set and EDGE_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.DebugSecret = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
