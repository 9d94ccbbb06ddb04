package usecase

import (
	"context"
	"log/slog"
	"time"

	"RankingsScanner/internal/ports"
)

// Scheduler wires the interval driver with the build pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring builds.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result, err := s.pipeline.Build(ctx)
		if s.logger == nil {
			return
		}
		if err != nil {
			s.logger.Error("scheduled build failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled build done", "trigger", trigger, "records", result.Dataset.Total)
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
