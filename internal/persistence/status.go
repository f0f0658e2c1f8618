package persistence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gpem17-evo/internal/cache"
	"gpem17-evo/pkg/statslog"
)

// statusStore is the subset of go-zero's *redis.Redis used for run status.
type statusStore interface {
	HmsetCtx(ctx context.Context, key string, fieldsAndValues map[string]string) error
	ExpireCtx(ctx context.Context, key string, seconds int) error
	SetexCtx(ctx context.Context, key, value string, seconds int) error
}

const (
	StateRunning  = "running"
	StateFinished = "finished"
)

var _ Sink = (*StatusSink)(nil)

// StatusSink publishes live run progress to Redis for dashboards.
type StatusSink struct {
	store statusStore
	ttl   cache.TTLSet
	nowFn func() time.Time
}

// NewStatusSink accepts a go-zero *redis.Redis or any compatible store.
func NewStatusSink(store statusStore, ttl cache.TTLSet) *StatusSink {
	return &StatusSink{store: store, ttl: ttl, nowFn: time.Now}
}

func (s *StatusSink) RecordRows(ctx context.Context, run RunInfo, generation int, rows []statslog.Record) error {
	gen := strconv.Itoa(generation)
	fields := map[string]string{
		"run_id":     run.ID,
		"dir":        run.Dir,
		"state":      StateRunning,
		"generation": gen,
		"rows":       strconv.Itoa(len(rows)),
		"updated_at": s.nowFn().UTC().Format(time.RFC3339),
	}
	if best, ok := bestCost(rows); ok {
		fields["best_cost"] = strconv.FormatFloat(best, 'f', -1, 64)
	}
	key := cache.RunStatusKey(run.Name)
	if err := s.store.HmsetCtx(ctx, key, fields); err != nil {
		return fmt.Errorf("status %s: %w", key, err)
	}
	if err := s.store.ExpireCtx(ctx, key, s.ttl.Seconds(cache.TTLMedium)); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	if err := s.store.SetexCtx(ctx, cache.RunHeartbeatKey(run.Name), gen, s.ttl.Seconds(cache.TTLShort)); err != nil {
		return fmt.Errorf("heartbeat %s: %w", run.Name, err)
	}
	return s.store.SetexCtx(ctx, cache.LatestRunKey(), run.Name, s.ttl.Seconds(cache.TTLLong))
}

func (s *StatusSink) RecordCompletion(ctx context.Context, run RunInfo, finalGeneration int) error {
	key := cache.RunStatusKey(run.Name)
	fields := map[string]string{
		"state":            StateFinished,
		"final_generation": strconv.Itoa(finalGeneration),
		"updated_at":       s.nowFn().UTC().Format(time.RFC3339),
	}
	if err := s.store.HmsetCtx(ctx, key, fields); err != nil {
		return fmt.Errorf("status %s: %w", key, err)
	}
	return s.store.ExpireCtx(ctx, key, s.ttl.Seconds(cache.TTLLong))
}

// bestCost returns the lowest cost among valid rows.
func bestCost(rows []statslog.Record) (float64, bool) {
	best, found := 0.0, false
	for _, rec := range rows {
		if valid, _ := rec[statslog.FieldIsValid].(bool); !valid {
			continue
		}
		cost, ok := rec[statslog.FieldCost].(float64)
		if !ok {
			continue
		}
		if !found || cost < best {
			best, found = cost, true
		}
	}
	return best, found
}
