// Package scheduler runs the periodic job that replaces placeholder match
// percentages with real scores.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Rescorer scores up to limit unscored matches and reports how many changed.
type Rescorer interface {
	RescoreMatches(ctx context.Context, limit int) (int, error)
}

// Scheduler wraps robfig/cron and manages the rescoring loop.
type Scheduler struct {
	cron     *cron.Cron
	rescorer Rescorer
	logger   *zap.Logger
	spec     string // cron spec, e.g. "@every 1h"
	batch    int
}

// New creates a Scheduler firing on spec. Overlapping runs are skipped.
func New(rescorer Rescorer, spec string, batch int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		rescorer: rescorer,
		logger:   logger,
		spec:     spec,
		batch:    batch,
	}
}

// Start registers the job and starts the scheduler. One pass also runs
// immediately so placeholders left by a previous process get scored.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("rescore scheduler started", zap.String("spec", s.spec))

	go s.RunOnce(ctx)

	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("rescore scheduler stopped")
}

// RunOnce performs a single rescoring pass.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	n, err := s.rescorer.RescoreMatches(ctx, s.batch)
	if err != nil {
		s.logger.Error("rescore failed", zap.Int("updated", n), zap.Error(err))
		return n
	}
	if n > 0 {
		s.logger.Info("rescore complete", zap.Int("updated", n))
	} else {
		s.logger.Debug("rescore found nothing to do")
	}
	return n
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
