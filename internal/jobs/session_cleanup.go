// Package jobs holds periodic maintenance tasks
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/studentportal/webapp/internal/metrics"
	"go.uber.org/zap"
)

// ExpiredSessionPurger is the interface that wraps removal of expired sessions
type ExpiredSessionPurger interface {
	// Method PurgeExpired removes every session expired at the given time.
	//
	// "now" parameter is the reference time for expiry.
	//
	// Returns the number of removed sessions.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// SessionCleaner periodically removes expired sessions from an in-memory store
type SessionCleaner struct {
	purger   ExpiredSessionPurger
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewSessionCleaner creates a cleaner running on the given cron schedule.
//
// "schedule" parameter accepts standard cron expressions and descriptors such as "@every 10m".
func NewSessionCleaner(purger ExpiredSessionPurger, schedule string, logger *zap.Logger) (*SessionCleaner, error) {
	c := &SessionCleaner{
		purger:   purger,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
	}

	if _, err := c.cron.AddFunc(schedule, func() { c.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", schedule, err)
	}
	return c, nil
}

// Start begins running the job in the background
func (c *SessionCleaner) Start() {
	c.cron.Start()
	c.logger.Info("session cleanup started", zap.String("schedule", c.schedule))
}

// Stop stops scheduling new runs and waits for a running one to finish or ctx to end
func (c *SessionCleaner) Stop(ctx context.Context) {
	done := c.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	c.logger.Info("session cleanup stopped")
}

// RunOnce purges expired sessions immediately and returns how many were removed
func (c *SessionCleaner) RunOnce(ctx context.Context) int {
	removed, err := c.purger.PurgeExpired(ctx, c.now())
	if err != nil {
		c.logger.Error("failed to purge expired sessions", zap.Error(err))
		return 0
	}

	metrics.RecordSessionsPurged(removed)
	if removed > 0 {
		c.logger.Debug("purged expired sessions", zap.Int("count", removed))
	}
	return removed
}
