package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	runJobTimeout         = 5 * time.Minute
)

type Job interface {
	Run(ctx context.Context) error
}

type Scheduler struct {
	ctx  context.Context
	cron *cron.Cron
	spec string
	job  Job
	log  *slog.Logger
}

// ValidateSpec reports whether spec is a standard five-field cron
// expression or a descriptor such as "@hourly" or "@every 10m".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("parse cron spec: %w", err)
	}

	return nil
}

func New(ctx context.Context, spec string, job Job, log *slog.Logger) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		ctx:  ctx,
		cron: c,
		spec: spec,
		job:  job,
		log:  log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runJob); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	s.cron.Start()

	return nil
}

// Stop halts the schedule and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(s.ctx, runJobTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	start := time.Now()

	if err := s.job.Run(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to run scheduled export",
			"error", err,
			"spec", s.spec,
			"elapsedSeconds", time.Since(start).Seconds())
		return
	}

	s.log.InfoContext(ctx, "Scheduled export finished",
		"spec", s.spec,
		"elapsedSeconds", time.Since(start).Seconds())
}
