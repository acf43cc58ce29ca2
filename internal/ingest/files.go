package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stockflow-importer/internal/util"

	"go.uber.org/zap"
)

// ScanDir lists the .xlsx files of the intake directory, skipping
// editor lock files.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read intake dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".xlsx") || strings.HasPrefix(name, "~$") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// EnsureDirs creates the housekeeping directories if needed.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return nil
}

// MoveFile moves a processed file into destDir, suffixing the name with
// a timestamp when a file with the same name already exists. The move
// is retried a few times because the exporting tool can still hold the
// file open right after writing it.
func MoveFile(path, destDir string) error {
	logger := util.GetLogger()

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("source file missing: %w", err)
	}

	name := filepath.Base(path)
	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		stamp := time.Now().Format("20060102_150405")
		dest = filepath.Join(destDir, fmt.Sprintf("%s_%s%s", base, stamp, ext))
	}

	const maxAttempts = 3
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = os.Rename(path, dest); err == nil {
			logger.Info("file moved", zap.String("dest", dest))
			return nil
		}
		if attempt < maxAttempts {
			logger.Warn("file busy, retrying move",
				zap.String("file", path),
				zap.Int("attempt", attempt))
			time.Sleep(time.Second)
		}
	}
	return fmt.Errorf("failed to move %s after %d attempts: %w", path, maxAttempts, err)
}
