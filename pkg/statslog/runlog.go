package statslog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LineTerminator ends every header and data line.
const LineTerminator = "\n"

// RunLog is the append-only best-stats file of a single run. It is not safe
// for concurrent use; one controller appends once per generation.
type RunLog struct {
	path          string
	objective     Objective
	headerWritten bool
}

// Option customises a RunLog.
type Option func(*RunLog)

// WithObjective overrides the cost function used to derive row values.
func WithObjective(obj Objective) Option {
	return func(l *RunLog) {
		if obj != nil {
			l.objective = obj
		}
	}
}

// NewRunLog binds a log to path. Nothing is written until Initialize.
func NewRunLog(path string, opts ...Option) *RunLog {
	l := &RunLog{path: path, objective: DefaultObjective{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the log file location.
func (l *RunLog) Path() string { return l.path }

// HeaderWritten reports whether Initialize succeeded on this instance.
func (l *RunLog) HeaderWritten() bool { return l.headerWritten }

// Initialize creates parent directories and appends the header line.
//
// It is not idempotent: a second call appends a second header. Callers invoke
// it once per run, before the first AppendGeneration.
func (l *RunLog) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("statslog: create parent dirs for %s: %w", l.path, err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("statslog: open %s: %w", l.path, err)
	}
	if _, err := f.WriteString(Header() + LineTerminator); err != nil {
		_ = f.Close()
		return fmt.Errorf("statslog: write header %s: %w", l.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("statslog: close %s: %w", l.path, err)
	}
	l.headerWritten = true
	return nil
}

// AppendGeneration writes one row per outcome, in the order supplied, as a
// single append. Every row is serialized before the file is touched, so a
// schema violation leaves the log unchanged. The built records are returned
// for mirroring. It fails with ErrNotInitialized until Initialize succeeded
// on this instance.
func (l *RunLog) AppendGeneration(generation int, outcomes []ScenarioOutcome) ([]Record, error) {
	if !l.headerWritten {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, l.path)
	}
	records := make([]Record, 0, len(outcomes))
	var sb strings.Builder
	for i, o := range outcomes {
		rec := Build(l.objective, generation, o)
		row, err := rec.Row()
		if err != nil {
			return nil, fmt.Errorf("statslog: generation %d outcome %d: %w", generation, i, err)
		}
		sb.WriteString(row)
		sb.WriteString(LineTerminator)
		records = append(records, rec)
	}
	if err := l.appendRaw(sb.String()); err != nil {
		return nil, err
	}
	return records, nil
}

func (l *RunLog) appendRaw(payload string) error {
	// No O_CREATE: a file removed after Initialize must not be recreated
	// without its header.
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotInitialized, l.path)
		}
		return fmt.Errorf("statslog: open %s: %w", l.path, err)
	}
	if payload == "" {
		return f.Close()
	}
	if _, err := f.WriteString(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("statslog: append %s: %w", l.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("statslog: close %s: %w", l.path, err)
	}
	return nil
}
