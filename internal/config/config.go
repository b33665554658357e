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
	ListenPort      string        // ex: "127.0.0.1:7797"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	WatchHost string // hostname of the watch pages the daemon drives (default: www.youtube.com)

	SeedFile           string        // path to a bookmarks seed YAML file (optional, empty = seeding disabled)
	SeedReloadInterval time.Duration // interval to reload the seed file (default: 24h)

	SettleDelay  time.Duration // grace period after navigation before the first seek attempt
	SeekAttempts int           // max SEEK_TO attempts per jump
	SeekBackoff  time.Duration // fixed wait between seek attempts

	CommandTimeout time.Duration // how long a bridge command waits for the extension's answer
	PullTimeout    time.Duration // long-poll hold time for /bridge/pull
	CommandTTL     time.Duration // pending commands older than this are garbage collected
	GCInterval     time.Duration // interval between bridge GC sweeps

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
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

	AllowedCIDRS   []string // restrict access to specific IPs (default: loopback only)
	AllowedOrigins []string // extension origins allowed by CORS (ex: "chrome-extension://<id>")
	TrustProxy     bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SEEKMARK_LISTEN_PORT", "127.0.0.1:7797"),
		ShutdownTimeout: mustDuration("SEEKMARK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SEEKMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SEEKMARK_PRETTY_LOG", true),

		// Watch pages
		WatchHost: getenv("SEEKMARK_WATCH_HOST", "www.youtube.com"),

		// Seed file
		SeedFile:           getenv("SEEKMARK_SEED_FILE", ""), // Optional, empty = seeding disabled
		SeedReloadInterval: mustDuration("SEEKMARK_SEED_RELOAD_INTERVAL", 24*time.Hour),

		// Playback synchronization
		SettleDelay:  mustDuration("SEEKMARK_SETTLE_DELAY", 800*time.Millisecond),
		SeekAttempts: getenvInt("SEEKMARK_SEEK_ATTEMPTS", 15),
		SeekBackoff:  mustDuration("SEEKMARK_SEEK_BACKOFF", 500*time.Millisecond),

		// Extension bridge
		CommandTimeout: mustDuration("SEEKMARK_COMMAND_TIMEOUT", 10*time.Second),
		PullTimeout:    mustDuration("SEEKMARK_PULL_TIMEOUT", 25*time.Second),
		CommandTTL:     mustDuration("SEEKMARK_COMMAND_TTL", 30*time.Second),
		GCInterval:     mustDuration("SEEKMARK_GC_INTERVAL", time.Minute),

		// Redis settings
		RedisAddr:             getenv("SEEKMARK_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("SEEKMARK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SEEKMARK_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SEEKMARK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SEEKMARK_REDIS_DB", 0),
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
		AllowedCIDRS:   parseAllowedIPs(getenv("SEEKMARK_ALLOWED_CIDRS", "127.0.0.1/32, ::1/128")),
		AllowedOrigins: splitAndTrim(getenv("SEEKMARK_ALLOWED_ORIGINS", "")),
		TrustProxy:     mustBool("SEEKMARK_TRUST_PROXY", false),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SEEKMARK_REDIS_PASSWORD is required when SEEKMARK_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.SeekAttempts < 1 {
		panic(fmt.Sprintf("❌ FATAL: SEEKMARK_SEEK_ATTEMPTS must be >= 1, got %d", cfg.SeekAttempts))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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
