package expdir

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// AppendBestProgram appends the textual program of a generation's best
// individual to programs/best-individual-<gen>.txt.
func (d Dir) AppendBestProgram(gen int, program string) (string, error) {
	path := d.ProgramFile(gen)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("expdir: create programs dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("expdir: open %s: %w", path, err)
	}
	if _, err := f.WriteString(program); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("expdir: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("expdir: close %s: %w", path, err)
	}
	return path, nil
}

// SnapshotConfig copies the src tree into the run's config directory.
func (d Dir) SnapshotConfig(src string) error {
	return CopyTree(src, d.ConfigDir())
}

// CopyTree recursively copies regular files and directories from src to dst.
// Symlinks and other special files are skipped.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("expdir: stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("expdir: %s is not a directory", src)
	}
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case entry.IsDir():
			return os.MkdirAll(target, 0o755)
		case entry.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("expdir: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("expdir: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("expdir: copy %s: %w", src, err)
	}
	return out.Close()
}

// ListFiles returns every regular file under the run directory, relative to it.
func (d Dir) ListFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(d.path, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expdir: list %s: %w", d.path, err)
	}
	return files, nil
}
