package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bft-labs/towership/pkg/log"
)

// CleanupConfig bounds the disk used by processed batch files in the
// sent/ and rejected/ archives of a spool.
type CleanupConfig struct {
	// CheckInterval is how often the archive size is checked.
	CheckInterval time.Duration

	// HighWatermark is the size in bytes above which cleanup begins.
	HighWatermark int64

	// LowWatermark is the target size in bytes after cleanup.
	LowWatermark int64
}

// DefaultCleanupConfig returns a CleanupConfig with sensible defaults.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		CheckInterval: time.Hour,
		HighWatermark: 256 << 20, // 256 MiB
		LowWatermark:  192 << 20, // 192 MiB
	}
}

func (c CleanupConfig) withDefaults() CleanupConfig {
	d := DefaultCleanupConfig()
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.HighWatermark <= 0 {
		c.HighWatermark = d.HighWatermark
	}
	if c.LowWatermark <= 0 || c.LowWatermark > c.HighWatermark {
		c.LowWatermark = c.HighWatermark * 3 / 4
	}
	return c
}

type archivedFile struct {
	path    string
	size    int64
	modTime time.Time
}

// cleanupArchives removes the oldest archived files once the archives grow
// past the high watermark, until they are under the low watermark.
// It returns the number of bytes freed.
func cleanupArchives(ctx context.Context, cfg CleanupConfig, dirs []string, logger log.Logger) (int64, error) {
	var (
		files []archivedFile
		total int64
	)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, fmt.Errorf("list archive: %w", err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			files = append(files, archivedFile{
				path:    filepath.Join(dir, e.Name()),
				size:    info.Size(),
				modTime: info.ModTime(),
			})
			total += info.Size()
		}
	}

	if total <= cfg.HighWatermark {
		return 0, nil
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})

	var freed int64
	for _, f := range files {
		if ctx.Err() != nil || total <= cfg.LowWatermark {
			break
		}
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Error("archive cleanup: remove failed", log.String("file", f.path), log.Err(err))
			continue
		}
		total -= f.size
		freed += f.size
	}

	if freed > 0 {
		logger.Info("archive cleanup completed",
			log.String("freed", formatBytes(freed)),
			log.String("remaining", formatBytes(total)),
		)
	}
	return freed, nil
}

func formatBytes(b int64) string {
	const (
		_          = iota
		KB float64 = 1 << (10 * iota)
		MB
		GB
	)

	fb := float64(b)
	switch {
	case fb >= GB:
		return fmt.Sprintf("%.2fGiB", fb/GB)
	case fb >= MB:
		return fmt.Sprintf("%.2fMiB", fb/MB)
	case fb >= KB:
		return fmt.Sprintf("%.2fKiB", fb/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}
