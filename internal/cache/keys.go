package cache

import (
	"strings"
	"time"

	"gpem17-evo/internal/config"
)

// Namespace is the Redis key prefix for run status entries.
const Namespace = "gpem"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	// TTLShort covers transient markers such as the per-generation heartbeat.
	TTLShort TTLClass = "short"
	// TTLMedium covers the status of runs in progress.
	TTLMedium TTLClass = "medium"
	// TTLLong covers the status of finished runs.
	TTLLong TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Minute),
		Medium: durationOrDefault(cfg.Medium, 24*time.Hour),
		Long:   durationOrDefault(cfg.Long, 7*24*time.Hour),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Seconds returns the TTL in whole seconds, as go-zero's redis client expects.
func (t TTLSet) Seconds(class TTLClass) int {
	return int(t.Duration(class) / time.Second)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// RunStatusKey is the hash holding a run's generation, row count and state.
func RunStatusKey(runName string) string {
	return formatKey("run", runName)
}

// RunHeartbeatKey expires shortly after the last recorded generation.
func RunHeartbeatKey(runName string) string {
	return formatKey("run", runName, "heartbeat")
}

// LatestRunKey mirrors the filesystem latest alias.
func LatestRunKey() string {
	return formatKey("run", "latest")
}
