// Package barrier waits for asynchronously written generation output to land
// on disk before a run is declared finished.
package barrier

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// DefaultInterval matches the one-second poll of the evolutionary driver.
const DefaultInterval = time.Second

// ErrNoReference is returned when the first generation's directory is missing,
// leaving nothing to compare the last generation against.
var ErrNoReference = errors.New("barrier: reference generation directory missing")

// AwaitCompletion blocks until lastGenDir holds as many entries as
// firstGenDir. The first generation's count is taken as the number of
// artifacts every generation produces.
//
// The wait is unbounded unless ctx carries a deadline or is cancelled. A
// missing lastGenDir counts as empty since workers may not have created it yet.
func AwaitCompletion(ctx context.Context, firstGenDir, lastGenDir string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		want, err := CountEntries(firstGenDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrNoReference, firstGenDir)
			}
			return err
		}
		got, err := CountEntries(lastGenDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if got == want {
			return nil
		}

		logx.WithContext(ctx).Infof("Waiting for all results to be written to disk (%d/%d in %s).", got, want, lastGenDir)

		if timer == nil {
			timer = time.NewTimer(interval)
		} else {
			timer.Reset(interval)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("barrier: waiting for %s: %w", lastGenDir, ctx.Err())
		case <-timer.C:
		}
	}
}

// CountEntries returns the number of directory entries in dir.
func CountEntries(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, err
		}
		return 0, fmt.Errorf("barrier: read %s: %w", dir, err)
	}
	return len(entries), nil
}
