package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hugh/go-portal/internal/metrics"
	"github.com/hugh/go-portal/pkg/util"
)

const tmpSuffix = ".tmp"

// SweepTemp removes temp files older than maxAge. A successful Put always
// removes its own temp file, so anything left behind comes from a write
// that was interrupted.
func (c *Collection[T]) SweepTemp(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("reading %s directory: %w", c.name, err)
	}

	cutoff := c.now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, tmpSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("removing %s: %w", name, err)
		}
		removed++
	}

	if removed > 0 {
		metrics.StoreOperations.WithLabelValues(c.name, "sweep", "ok").Add(float64(removed))
		c.logger.Info("removed stale temp files", "count", removed)
	}
	return removed, nil
}

// SweepTemp sweeps every collection.
func (s *Store) SweepTemp(maxAge time.Duration) (int, error) {
	total := 0
	for _, sweep := range []func(time.Duration) (int, error){s.Users.SweepTemp, s.Organizations.SweepTemp} {
		n, err := sweep(maxAge)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Sweeper runs SweepTemp on a cron schedule.
type Sweeper struct {
	store    *Store
	schedule string
	maxAge   time.Duration
	logger   *slog.Logger
}

func NewSweeper(st *Store, schedule string, maxAge time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if err := util.ValidateCronExpr(schedule); err != nil {
		return nil, err
	}
	return &Sweeper{store: st, schedule: schedule, maxAge: maxAge, logger: logger}, nil
}

// Start schedules the sweep and returns a function that stops it and waits
// for a running sweep to finish.
func (sw *Sweeper) Start() (stop func(), err error) {
	sched := util.NewScheduler()
	if _, err := sched.AddFunc(sw.schedule, sw.run); err != nil {
		return nil, err
	}
	sched.Start()

	next, _ := util.NextCronTime(sw.schedule, time.Now())
	sw.logger.Info("temp file sweeper started", "schedule", sw.schedule, "next_run", next)

	return func() { <-sched.Stop().Done() }, nil
}

func (sw *Sweeper) run() {
	if _, err := sw.store.SweepTemp(sw.maxAge); err != nil {
		sw.logger.Error("sweeping temp files", "error", err)
	}
}
