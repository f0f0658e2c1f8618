// Package expdir lays out the per-run results directory and maintains the
// "latest" alias next to it.
package expdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// LatestAlias is the symlink in the results root pointing at the newest run.
	LatestAlias = "latest"
	// TimestampLayout has second resolution and no colons.
	TimestampLayout = "2006-01-02T150405"

	statsLogName    = "best-stats.csv"
	configDirName   = "config"
	programsDirName = "programs"
	manifestName    = "run.yaml"
)

// Layout creates run directories under a results root.
type Layout struct {
	root  string
	nowFn func() time.Time
}

// New constructs a Layout rooted at root.
func New(root string) *Layout {
	return &Layout{root: root, nowFn: time.Now}
}

// WithClock returns a copy of l that takes timestamps from now. The receiver
// is left unchanged.
func (l *Layout) WithClock(now func() time.Time) *Layout {
	cp := *l
	if now != nil {
		cp.nowFn = now
	}
	return &cp
}

// Create makes <root>/<timestamp>-<suffix> and repoints the latest alias to it.
// Two calls within the same second with the same suffix resolve to the same
// directory.
func (l *Layout) Create(suffix string) (Dir, error) {
	name := l.nowFn().Format(TimestampLayout)
	if suffix != "" {
		name += "-" + suffix
	}
	path := filepath.Join(l.root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Dir{}, fmt.Errorf("expdir: create %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Dir{}, fmt.Errorf("expdir: resolve %s: %w", path, err)
	}
	if err := repointAlias(filepath.Join(l.root, LatestAlias), abs); err != nil {
		return Dir{}, err
	}
	return Dir{path: path}, nil
}

func repointAlias(alias, target string) error {
	if err := os.Remove(alias); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("expdir: remove alias %s: %w", alias, err)
	}
	if err := os.Symlink(target, alias); err != nil {
		return fmt.Errorf("expdir: link %s -> %s: %w", alias, target, err)
	}
	return nil
}

// Resolve returns the run directory the latest alias under root points to.
func Resolve(root string) (Dir, error) {
	target, err := filepath.EvalSymlinks(filepath.Join(root, LatestAlias))
	if err != nil {
		return Dir{}, fmt.Errorf("expdir: resolve latest under %s: %w", root, err)
	}
	return Dir{path: target}, nil
}

// Dir is a single run's directory. All run files are placed relative to it.
type Dir struct {
	path string
}

// Open wraps an existing run directory path.
func Open(path string) Dir { return Dir{path: path} }

func (d Dir) Path() string      { return d.path }
func (d Dir) Name() string      { return filepath.Base(d.path) }
func (d Dir) StatsLog() string  { return filepath.Join(d.path, statsLogName) }
func (d Dir) ConfigDir() string { return filepath.Join(d.path, configDirName) }
func (d Dir) Manifest() string  { return filepath.Join(d.path, manifestName) }

// GenerationDir is where external workers write a generation's artifacts.
func (d Dir) GenerationDir(gen int) string {
	return filepath.Join(d.path, "generation"+strconv.Itoa(gen))
}

// ProgramFile is the dump location of a generation's best individual.
func (d Dir) ProgramFile(gen int) string {
	return filepath.Join(d.path, programsDirName, fmt.Sprintf("best-individual-%d.txt", gen))
}
