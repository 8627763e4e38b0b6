package worker

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler owns the process's recurring jobs: follow-up evaluation, draft
// dispatch and housekeeping. It is constructed once at startup by the
// composition root and shut down explicitly. Each registered job guarantees
// at most one concurrent execution of itself: a tick that arrives while the
// previous run is still going is skipped, not queued.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Entry
	jobs []*job
}

type job struct {
	name    string
	fn      func() error
	log     *logrus.Entry
	running sync.Mutex
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  logger.WithField("component", "scheduler"),
	}
}

// Register adds a named single-instance job on a cron spec (e.g.
// "@every 1m", "@daily").
func (s *Scheduler) Register(name, spec string, fn func() error) error {
	j := &job{
		name: name,
		fn:   fn,
		log:  s.log.WithField("job", name),
	}
	if _, err := s.cron.AddFunc(spec, j.run); err != nil {
		return fmt.Errorf("registering job %s: %w", name, err)
	}
	s.jobs = append(s.jobs, j)
	s.log.WithFields(logrus.Fields{"job": name, "spec": spec}).Info("job registered")
	return nil
}

// Start begins ticking. Jobs run on the cron's own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

// Stop halts ticking and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// run executes one tick. The TryLock is the overlap guard: losing it means
// the previous invocation of this job is still running.
func (j *job) run() {
	if !j.running.TryLock() {
		j.log.Warn("previous run still in progress, skipping tick")
		return
	}
	defer j.running.Unlock()

	defer func() {
		if r := recover(); r != nil {
			j.log.WithField("panic", r).Error("job panicked")
			sentry.CurrentHub().Recover(r)
		}
	}()

	start := time.Now()
	if err := j.fn(); err != nil {
		j.log.WithError(err).Error("job failed, waiting for next tick")
		sentry.CaptureException(err)
		return
	}
	j.log.WithField("took", time.Since(start).Round(time.Millisecond)).Debug("job complete")
}
