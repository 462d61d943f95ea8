// Package cron runs the periodic maintenance tasks: the daily queue build
// and the hourly sweep of expired sessions.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/chunkrecall/trainer/internal/logger"
)

// QueueBuilder makes sure every user has a queue for the day.
type QueueBuilder interface {
	BuildQueues(ctx context.Context) (int, error)
}

// SessionSweeper deletes expired login sessions.
type SessionSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	queues    QueueBuilder
	sessions  SessionSweeper
	refreshAt string
	ctx       context.Context
}

// New creates a scheduler that builds queues daily at refreshAt (HH:MM in
// loc). A nil loc means UTC.
func New(queues QueueBuilder, sessions SessionSweeper, refreshAt string, loc *time.Location) (*Scheduler, error) {
	if _, err := time.Parse("15:04", refreshAt); err != nil {
		return nil, fmt.Errorf("invalid queue refresh time %q: %w", refreshAt, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		queues:    queues,
		sessions:  sessions,
		refreshAt: refreshAt,
		ctx:       context.Background(),
	}
	s.scheduler.SingletonModeAll()

	if _, err := s.scheduler.Every(1).Day().At(refreshAt).Tag("build-queues").Do(s.buildQueues); err != nil {
		return nil, fmt.Errorf("scheduling queue build: %w", err)
	}
	if _, err := s.scheduler.Every(1).Hour().Tag("sweep-sessions").Do(s.sweepSessions); err != nil {
		return nil, fmt.Errorf("scheduling session sweep: %w", err)
	}
	return s, nil
}

// Start begins running all scheduled tasks. Jobs log through ctx's logger.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	logger.FromContext(ctx).WithPrefix("cron").Info("starting scheduler, daily queues built at %s", s.refreshAt)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return s.scheduler.Len()
}

func (s *Scheduler) buildQueues() {
	_, _ = s.RunQueueBuild(s.ctx)
}

func (s *Scheduler) sweepSessions() {
	_, _ = s.RunSessionSweep(s.ctx)
}

// RunQueueBuild builds every user's queue now.
func (s *Scheduler) RunQueueBuild(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("cron")
	start := time.Now()

	n, err := s.queues.BuildQueues(ctx)
	if err != nil {
		log.Error("queue build finished with errors after %v (%d built): %v", time.Since(start), n, err)
		return n, err
	}
	log.Info("built %d daily queues in %v", n, time.Since(start))
	return n, nil
}

// RunSessionSweep deletes expired sessions now.
func (s *Scheduler) RunSessionSweep(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("cron")

	n, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		log.Error("session sweep failed: %v", err)
		return 0, err
	}
	log.Debug("session sweep removed %d sessions", n)
	return n, nil
}
