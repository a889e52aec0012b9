package reconcile

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler fires the reconciliation job on a cron spec, by default once a
// day at 17:00 local time. The timer only calls RunForDay; the job itself
// knows nothing about scheduling.
type Scheduler struct {
	cron *cron.Cron
	job  *Job
}

// NewScheduler registers the job on the given cron spec.
func NewScheduler(job *Job, spec string) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), job: job}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	log.Info().Msg("running scheduled absentee email job")
	count, err := s.job.RunForDay(context.Background(), time.Now())
	if err != nil {
		log.Error().Err(err).Msg("absentee email job failed")
		return
	}
	log.Info().Int("absentees", count).Msg("absentee email job completed")
}

// Start begins firing on schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the timer and returns a context that is done once any running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
