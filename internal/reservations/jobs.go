package reservations

import (
	"context"
	"fmt"
	"time"

	"parkly/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper runs the completion sweep on a cron schedule.
type Sweeper struct {
	cron    *cron.Cron
	service Service
	timeout time.Duration
	log     *logger.Logger
}

// NewSweeper schedules service.Sweep. schedule is a standard five-field cron
// expression or a descriptor such as "@every 1m".
func NewSweeper(service Service, schedule string, timeout time.Duration) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		service: service,
		timeout: timeout,
		log:     logger.GetDefault().WithComponent("sweeper"),
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.service.Sweep(ctx); err != nil {
		s.log.Error("scheduled sweep failed", "error", err)
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("sweeper started")
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("sweeper stop timed out")
	}
}
