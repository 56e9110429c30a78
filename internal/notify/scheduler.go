package notify

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs the nudge fan-out on an in-process cron schedule, so
// deployments without an external cron caller still deliver nudges.
type Scheduler struct {
	cron   *cron.Cron
	sender *Sender
	log    zerolog.Logger
}

// NewScheduler registers the nudge job under spec (standard 5-field cron
// syntax).
func NewScheduler(spec string, sender *Sender, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), sender: sender, log: log}
	_, err := s.cron.AddFunc(spec, func() {
		res, err := sender.Nudge(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("scheduled nudge failed")
			return
		}
		log.Debug().Int("sent", res.Sent).Bool("skipped", res.Skipped).Str("reason", res.Reason).Msg("scheduled nudge ran")
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
