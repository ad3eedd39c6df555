package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, 2, cfg.Scan.FetchRetries)
	assert.Equal(t, 1024, cfg.Audit.BufferSize)
	assert.Equal(t, "crosscheck.audit", cfg.Audit.KafkaTopic)
	assert.Empty(t, cfg.Audit.PostgresDSN)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.DatasetPath)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CROSSCHECK_ADDR", ":9090")
	t.Setenv("CROSSCHECK_SCAN_CONCURRENCY", "16")
	t.Setenv("CROSSCHECK_RETRY_BACKOFF", "250ms")
	t.Setenv("CROSSCHECK_AUDIT_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("CROSSCHECK_DATASET", "/var/lib/crosscheck/ledger.json")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 16, cfg.Scan.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.RetryBackoff)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, "/var/lib/crosscheck/ledger.json", cfg.DatasetPath)
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("CROSSCHECK_SCAN_CONCURRENCY", "zero")
	t.Setenv("CROSSCHECK_RETRY_BACKOFF", "-5s")

	cfg := FromEnv()
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, 100*time.Millisecond, cfg.Scan.RetryBackoff)
}
