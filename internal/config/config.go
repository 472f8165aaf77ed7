package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	Env             string        // "development" | "production"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DBPath         string        // path to the sqlite database file
	ExecuteTimeout time.Duration // default timeout for proxied outbound calls

	CORSOrigin string // allowed frontend origin, "*" to disable credential mode
	TrustProxy bool   // true => resolve client IPs from proxy headers

	RateLimitBurst  int // token bucket burst per client IP
	RateLimitPerMin int // token refill per client IP per minute
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// Load builds the configuration from an optional YAML file (POSTWAY_CONFIG)
// seeded first, with environment variables taking precedence over it.
func Load() *Config {
	src := newSource(os.Getenv("POSTWAY_CONFIG"))

	cfg := &Config{
		// Server settings
		ListenPort:      src.get("POSTWAY_LISTEN_PORT", ":5000"),
		Env:             src.get("POSTWAY_ENV", EnvDevelopment),
		ShutdownTimeout: src.mustDuration("POSTWAY_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  src.get("POSTWAY_LOG_LEVEL", "info"),
		PrettyLog: src.mustBool("POSTWAY_PRETTY_LOG", true),

		// Storage
		DBPath: src.get("POSTWAY_DB_PATH", "postway.db"),

		// Outbound execution
		ExecuteTimeout: src.mustDuration("POSTWAY_EXECUTE_TIMEOUT", 10*time.Second),

		// HTTP surface
		CORSOrigin: src.get("POSTWAY_CORS_ORIGIN", "http://localhost:5173"),
		TrustProxy: src.mustBool("POSTWAY_TRUST_PROXY", false),

		// Rate limiting on the execute endpoints
		RateLimitBurst:  src.getInt("POSTWAY_RATE_BURST", 20),
		RateLimitPerMin: src.getInt("POSTWAY_RATE_PER_MIN", 60),
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		panic(fmt.Sprintf("❌ FATAL: POSTWAY_ENV must be %q or %q, got %q",
			EnvDevelopment, EnvProduction, cfg.Env))
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", *cfg)
	}

	return cfg
}

// source resolves a key from the environment first, then the optional
// config file, then the default.
type source struct {
	file map[string]string
}

func newSource(path string) *source {
	s := &source{}
	if path == "" {
		return s
	}
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: cannot read config file %s: %v", path, err))
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid YAML in config file %s: %v", path, err))
	}
	s.file = make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		s.file[k] = fmt.Sprint(v)
	}
	return s
}

func (s *source) get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := s.file[key]; ok && v != "" {
		return v
	}
	return def
}

func (s *source) getInt(key string, def int) int {
	if v := s.get(key, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (s *source) mustBool(key string, def bool) bool {
	if v := s.get(key, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func (s *source) mustDuration(key string, def time.Duration) time.Duration {
	if v := s.get(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
