// Package recorder drives the lifecycle of one evolutionary run's results:
// directory and header at setup, one batch of rows per generation, and a
// completion barrier at the end.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"gpem17-evo/internal/config"
	"gpem17-evo/internal/persistence"
	"gpem17-evo/pkg/barrier"
	"gpem17-evo/pkg/expdir"
	"gpem17-evo/pkg/statslog"
)

var (
	ErrNotSetup     = errors.New("recorder: run not set up")
	ErrAlreadySetup = errors.New("recorder: run already set up")
)

// Archiver uploads a finished run directory.
type Archiver interface {
	Archive(ctx context.Context, run persistence.RunInfo, dir expdir.Dir) (int, error)
}

// Options configures a Recorder. Zero values fall back to defaults.
type Options struct {
	Layout       *expdir.Layout
	Catalog      config.ScenarioCatalog
	ConfigSource string
	Barrier      config.BarrierConf
	// AllowMissingOutput finishes without waiting when no generation0
	// directory exists, for runs whose workers write nothing to disk.
	AllowMissingOutput bool

	Objective statslog.Objective
	Sink      persistence.Sink
	Archiver  Archiver
	Clock     func() time.Time
	NewID     func() string
}

// Recorder records a single run. It is driven by one controller and is not
// safe for concurrent use, except for TrackWrite.
type Recorder struct {
	opts    Options
	tracker *barrier.Tracker

	info     persistence.RunInfo
	identity config.RunIdentity
	dir      expdir.Dir
	log      *statslog.RunLog
	manifest Manifest
	ready    bool
}

// New builds a Recorder from options.
func New(opts Options) *Recorder {
	customClock := opts.Clock != nil
	if !customClock {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Objective == nil {
		opts.Objective = statslog.DefaultObjective{}
	}
	if opts.Sink == nil {
		opts.Sink = persistence.NewNoopSink()
	}
	if opts.Layout == nil {
		opts.Layout = expdir.New("files/results/evo")
	}
	if customClock {
		opts.Layout = opts.Layout.WithClock(opts.Clock)
	}
	if opts.Catalog.Scenarios == nil {
		opts.Catalog = config.DefaultScenarioCatalog()
	}
	return &Recorder{opts: opts, tracker: barrier.NewTracker()}
}

// Dir returns the run directory once Setup succeeded.
func (r *Recorder) Dir() expdir.Dir { return r.dir }

// Info returns the run identity used by mirrors.
func (r *Recorder) Info() persistence.RunInfo { return r.info }

// TrackWrite registers an in-process artifact write that Finish must wait
// for. Call the returned func when the write is durable.
func (r *Recorder) TrackWrite() func() {
	return r.tracker.Begin()
}

// Setup validates the run parameters, then creates the run directory, writes
// the stats header, snapshots the configuration and writes the manifest.
// Invalid parameters fail before anything touches the filesystem.
func (r *Recorder) Setup(ctx context.Context, params config.RunParams) (expdir.Dir, error) {
	if r.ready {
		return expdir.Dir{}, ErrAlreadySetup
	}
	identity, err := r.opts.Catalog.ResolveRun(params)
	if err != nil {
		return expdir.Dir{}, err
	}
	logx.WithContext(ctx).Infof("master seed: %d", identity.Seed)

	startedAt := r.opts.Clock()
	dir, err := r.opts.Layout.Create(identity.Suffix())
	if err != nil {
		return expdir.Dir{}, err
	}

	runLog := statslog.NewRunLog(dir.StatsLog(), statslog.WithObjective(r.opts.Objective))
	if err := runLog.Initialize(); err != nil {
		return expdir.Dir{}, err
	}

	if r.opts.ConfigSource != "" {
		logx.WithContext(ctx).Infof("Snapshotting configuration from: %s", r.opts.ConfigSource)
		if err := dir.SnapshotConfig(r.opts.ConfigSource); err != nil {
			return expdir.Dir{}, err
		}
	}

	info := persistence.RunInfo{
		ID:        r.opts.NewID(),
		Name:      dir.Name(),
		Dir:       dir.Path(),
		Seed:      identity.Seed,
		Tag:       identity.Tag,
		StartedAt: startedAt,
	}
	manifest := Manifest{
		RunID:         info.ID,
		Name:          info.Name,
		Seed:          identity.Seed,
		ScenarioRegex: identity.ScenarioRegex,
		Tag:           identity.Tag,
		ConfigSource:  r.opts.ConfigSource,
		Columns:       schemaColumns(),
		StartedAt:     startedAt,
	}
	if err := WriteManifest(dir.Manifest(), manifest); err != nil {
		return expdir.Dir{}, err
	}

	r.info, r.identity, r.dir, r.log, r.manifest = info, identity, dir, runLog, manifest
	r.ready = true
	logx.WithContext(ctx).Infof("recording run %s into %s", info.Name, dir.Path())
	return dir, nil
}

// RecordGeneration appends one row per outcome of the generation's best
// candidate and dumps its program text. A failure here is fatal to the run.
func (r *Recorder) RecordGeneration(ctx context.Context, generation int, outcomes []statslog.ScenarioOutcome, bestProgram string) error {
	if !r.ready {
		return ErrNotSetup
	}
	records, err := r.log.AppendGeneration(generation, outcomes)
	if err != nil {
		return fmt.Errorf("recorder: generation %d: %w", generation, err)
	}
	if _, err := r.dir.AppendBestProgram(generation, bestProgram); err != nil {
		return fmt.Errorf("recorder: generation %d: %w", generation, err)
	}

	err = r.opts.Sink.RecordRows(ctx, r.info, generation, records)
	persistence.LogSinkError(ctx, err, "record rows", map[string]any{"run": r.info.Name, "generation": generation})

	logx.WithContext(ctx).Infof("generation %d: %d rows appended to %s", generation, len(records), r.log.Path())
	return nil
}

// Finish waits until every artifact of the final generation is on disk,
// then marks the run complete in the manifest and the mirrors.
func (r *Recorder) Finish(ctx context.Context, finalGeneration int) error {
	if !r.ready {
		return ErrNotSetup
	}
	logger := logx.WithContext(ctx)
	logger.Info("End of evolutionary run.")
	logger.Infof("Total runtime: %s", r.opts.Clock().Sub(r.info.StartedAt).Round(time.Millisecond))

	if timeout := r.opts.Barrier.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := r.tracker.Wait(ctx); err != nil {
		return fmt.Errorf("recorder: waiting for tracked writes: %w", err)
	}
	err := barrier.AwaitCompletion(ctx, r.dir.GenerationDir(0), r.dir.GenerationDir(finalGeneration), r.opts.Barrier.PollInterval)
	switch {
	case err == nil:
	case errors.Is(err, barrier.ErrNoReference) && r.opts.AllowMissingOutput:
		logger.Infof("no generation output under %s, skipping the completion wait", r.dir.Path())
	default:
		return fmt.Errorf("recorder: %w", err)
	}
	logger.Info("Done.")

	finishedAt := r.opts.Clock()
	r.manifest.FinishedAt = &finishedAt
	r.manifest.FinalGeneration = &finalGeneration
	if err := WriteManifest(r.dir.Manifest(), r.manifest); err != nil {
		return err
	}

	err = r.opts.Sink.RecordCompletion(ctx, r.info, finalGeneration)
	persistence.LogSinkError(ctx, err, "record completion", map[string]any{"run": r.info.Name})

	if r.opts.Archiver != nil {
		n, err := r.opts.Archiver.Archive(ctx, r.info, r.dir)
		if err != nil {
			persistence.LogSinkError(ctx, err, "archive run", map[string]any{"run": r.info.Name, "uploaded": n})
		} else {
			logger.Infof("archived %d files of %s", n, r.info.Name)
		}
	}
	return nil
}
