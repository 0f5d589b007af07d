package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inodb/vibe-diff/internal/diff"
	"github.com/inodb/vibe-diff/internal/output"
)

// WriteFile writes d to path in the given format. The diff is written to a
// temporary file next to path and renamed into place, so a failed write
// never leaves a partial diff behind.
func WriteFile(path, format string, d *diff.Diff) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	w, err := output.NewWriter(format, f)
	if err != nil {
		return err
	}
	if err := output.WriteDiff(w, d); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

// ReadFile reads a diff file. Files ending in .arrow are read as Arrow IPC,
// everything else as the tab-delimited diff format.
func ReadFile(path string) (*diff.Diff, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open diff file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, output.Extension(output.FormatArrow)) {
		return output.ReadArrow(f)
	}
	return diff.Read(f)
}
