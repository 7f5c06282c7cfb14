package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultSweepSchedule = "@every 15m"

type sweepable interface {
	Sweep(ctx context.Context)
}

// DocumentSweeper runs document expiry on a cron schedule.
type DocumentSweeper struct {
	cron   *cron.Cron
	target sweepable
	logger *zap.Logger
}

// NewDocumentSweeper registers target under schedule.
func NewDocumentSweeper(target sweepable, schedule string, logger *zap.Logger) (*DocumentSweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = defaultSweepSchedule
	}
	s := &DocumentSweeper{cron: cron.New(), target: target, logger: logger}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule document sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins the schedule in the background.
func (s *DocumentSweeper) Start() {
	s.cron.Start()
	s.logger.Info("document sweeper started", zap.Int("entries", len(s.cron.Entries())))
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *DocumentSweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *DocumentSweeper) run() {
	s.target.Sweep(context.Background())
}
