package usecase

import (
	"context"
	"time"

	"PaperTracker/internal/ports"
)

// Scheduler wires the cron driver with the pipeline use case. Each trigger
// runs the full pipeline for the previous day, when the catalog for that day
// is complete.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(time.Time) {
		day := s.pipeline.clock.Today(ctx).AddDate(0, 0, -1)
		_ = s.pipeline.Run(ctx, day)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
