// Package persistence mirrors recorded runs into external stores. The CSV in
// the run directory stays the source of truth; mirrors are best effort.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"gpem17-evo/pkg/statslog"
)

// RunInfo identifies a run across mirrors.
type RunInfo struct {
	ID        string
	Name      string
	Dir       string
	Seed      int64
	Tag       string
	StartedAt time.Time
}

// Sink receives every generation's rows and the run completion event.
type Sink interface {
	RecordRows(ctx context.Context, run RunInfo, generation int, rows []statslog.Record) error
	RecordCompletion(ctx context.Context, run RunInfo, finalGeneration int) error
}

type noopSink struct{}

func (noopSink) RecordRows(context.Context, RunInfo, int, []statslog.Record) error { return nil }

func (noopSink) RecordCompletion(context.Context, RunInfo, int) error { return nil }

// NewNoopSink returns a Sink that discards everything.
func NewNoopSink() Sink { return noopSink{} }

// MultiSink fans out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) RecordRows(ctx context.Context, run RunInfo, generation int, rows []statslog.Record) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.RecordRows(ctx, run, generation, rows))
	}
	return errors.Join(errs...)
}

func (m MultiSink) RecordCompletion(ctx context.Context, run RunInfo, finalGeneration int) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.RecordCompletion(ctx, run, finalGeneration))
	}
	return errors.Join(errs...)
}

// LogSinkError reports a mirror failure without failing the run.
func LogSinkError(ctx context.Context, err error, msg string, fields map[string]any) {
	if err == nil {
		return
	}
	logx.WithContext(ctx).Errorf("persistence: %s: %v fields=%v", msg, err, fields)
}
