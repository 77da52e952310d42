package crontab

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"filesend-bot/internal/infrastructure/metrics"
	"filesend-bot/internal/utils/platformerrors"
)

const DefaultSweepInterval = 15 // in minutes

// Purger drops expired entries from an in-process store.
type Purger interface {
	Purge() int
}

// Crontab runs the periodic housekeeping jobs.
type Crontab struct {
	ctab            *crontab.Crontab
	scratchDir      string
	scratchTTL      time.Duration
	intervalMinutes int
	sessions        Purger
	log             zerolog.Logger
}

// NewCrontab schedules the scratch sweep. sessions may be nil when the
// session store expires entries on its own.
func NewCrontab(scratchDir string, scratchTTL time.Duration, intervalMinutes int, sessions Purger, log zerolog.Logger) *Crontab {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultSweepInterval
	}
	return &Crontab{
		ctab:            crontab.New(),
		scratchDir:      scratchDir,
		scratchTTL:      scratchTTL,
		intervalMinutes: intervalMinutes,
		sessions:        sessions,
		log:             log.With().Str("component", "crontab").Logger(),
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	// execute once on server start
	c.Sweep()

	cronExpr := fmt.Sprintf("*/%d * * * *", c.intervalMinutes)
	if err := c.ctab.AddJob(cronExpr, c.Sweep); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add scratch sweep job")
	}
	c.log.Info().Msgf("Scratch sweep scheduled: every %d minute(s)", c.intervalMinutes)

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// Sweep removes scratch files older than the TTL and purges expired
// sessions. It returns the number of files removed.
func (c *Crontab) Sweep() int {
	removed := c.sweepScratch()
	metrics.RecordScratchSwept(removed)

	if c.sessions != nil {
		if n := c.sessions.Purge(); n > 0 {
			c.log.Info().Int("sessions", n).Msg("purged expired sessions")
		}
	}
	return removed
}

func (c *Crontab) sweepScratch() int {
	entries, err := os.ReadDir(c.scratchDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Error().Err(err).Str("dir", c.scratchDir).Msg("failed to list scratch directory")
		}
		return 0
	}

	cutoff := time.Now().Add(-c.scratchTTL)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.scratchDir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.log.Warn().Err(err).Str("path", path).Msg("failed to remove stale scratch file")
			continue
		}
		removed++
	}

	if removed > 0 {
		c.log.Info().Int("files", removed).Msg("removed stale scratch files")
	}
	return removed
}
