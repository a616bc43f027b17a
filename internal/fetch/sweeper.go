package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Sweep removes files in dir older than maxAge. Leftovers appear when a
// process dies between download and cleanup.
func Sweep(dir string, maxAge time.Duration) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to read scratch directory")
		}
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to sweep scratch file")
			continue
		}
		log.Debug().Str("path", path).Msg("swept scratch file")
	}
}

// StartSweeper schedules Sweep on dir every interval. Shut the returned
// scheduler down to stop it.
func StartSweeper(dir string, maxAge, interval time.Duration) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { Sweep(dir, maxAge) }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}
