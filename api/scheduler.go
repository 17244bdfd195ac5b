package api

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler periodically refreshes forecasts on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

// NewScheduler creates a Scheduler that invokes the refresher on the
// given cron spec, for example "0 3 * * *" for a nightly run.
func NewScheduler(spec string, refresher Refresher, logger *logrus.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logrus.New()
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runID, err := refresher.Refresh(context.Background())
		if err != nil {
			logger.WithError(err).Error("Scheduled forecast refresh failed")
			return
		}
		logger.WithField("run_id", runID).Info("Scheduled forecast refresh completed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running scheduled refreshes in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
