package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a periodic task. Its error is logged, never retried.
type Job func(ctx context.Context) error

// Scheduler runs background jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	names  []string
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under spec, e.g. "@every 1m" or "0 21 * * *".
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			logrus.Errorf("scheduled job %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.names = append(s.names, name)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.Infof("scheduler started with jobs %v", s.names)
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	logrus.Infof("scheduler stopped")
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}
