package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"PaperTracker/internal/ports"
)

// CronScheduler runs the daily pipeline on a cron expression.
type CronScheduler struct {
	spec     string
	timezone *time.Location
	cron     *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from a standard 5-field cron
// expression evaluated in the given timezone. A nil timezone means UTC.
func NewCronScheduler(spec string, timezone *time.Location) *CronScheduler {
	if timezone == nil {
		timezone = time.UTC
	}
	return &CronScheduler{spec: spec, timezone: timezone}
}

// Start registers the job and begins the cron loop. Returns an error for an
// invalid expression; calling Start twice without Stop is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return fmt.Errorf("scheduler job is nil")
	}
	if c.cron != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.timezone))
	_, err := runner.AddFunc(c.spec, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		job(time.Now().In(c.timezone))
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", c.spec, err)
	}

	c.cron = runner
	runner.Start()

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()

	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}

	stopped := c.cron.Stop()
	c.cron = nil

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
