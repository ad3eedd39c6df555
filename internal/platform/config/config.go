// Package config builds process configuration from environment variables so
// main stays lean. Absent variables fall back to development defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Scan bounds the full-scan worker pool and the per-fetch retry policy.
type Scan struct {
	Concurrency  int
	FetchRetries int
	RetryBackoff time.Duration
}

// Audit configures the audit sink chain. PostgresDSN and KafkaBrokers are
// optional; when empty the process runs on the in-memory store alone.
type Audit struct {
	BufferSize   int
	RetryBackoff time.Duration
	PostgresDSN  string
	KafkaBrokers []string
	KafkaTopic   string
}

// Redis configures the optional validation-result cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config aggregates all process configuration. DatasetPath optionally points
// at a JSON fixture loaded into the in-memory stores at startup.
type Config struct {
	Server      Server
	Scan        Scan
	Audit       Audit
	Redis       Redis
	DatasetPath string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envString("CROSSCHECK_ADDR", ":8080"),
		},
		Scan: Scan{
			Concurrency:  envInt("CROSSCHECK_SCAN_CONCURRENCY", 8),
			FetchRetries: envInt("CROSSCHECK_FETCH_RETRIES", 2),
			RetryBackoff: envDuration("CROSSCHECK_RETRY_BACKOFF", 100*time.Millisecond),
		},
		Audit: Audit{
			BufferSize:   envInt("CROSSCHECK_AUDIT_BUFFER", 1024),
			RetryBackoff: envDuration("CROSSCHECK_AUDIT_RETRY_BACKOFF", 250*time.Millisecond),
			PostgresDSN:  os.Getenv("CROSSCHECK_AUDIT_POSTGRES_DSN"),
			KafkaBrokers: envList("CROSSCHECK_AUDIT_KAFKA_BROKERS"),
			KafkaTopic:   envString("CROSSCHECK_AUDIT_KAFKA_TOPIC", "crosscheck.audit"),
		},
		Redis: Redis{
			URL:          os.Getenv("CROSSCHECK_REDIS_URL"),
			PoolSize:     envInt("CROSSCHECK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CROSSCHECK_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CROSSCHECK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CROSSCHECK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CROSSCHECK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		DatasetPath: os.Getenv("CROSSCHECK_DATASET"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
