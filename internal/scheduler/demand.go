// Package scheduler runs the periodic demand job inside the API process.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type DemandIncrementer interface {
	IncrementDemand(ctx context.Context) error
}

// DemandScheduler calls IncrementDemand every Interval. A zero interval keeps
// the scheduler idle until SetInterval gives it a positive one.
type DemandScheduler struct {
	job     DemandIncrementer
	timeout time.Duration

	intervalCh chan time.Duration
	interval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDemandScheduler(job DemandIncrementer, interval, timeout time.Duration) *DemandScheduler {
	return &DemandScheduler{
		job:        job,
		interval:   interval,
		timeout:    timeout,
		intervalCh: make(chan time.Duration, 1),
	}
}

func (s *DemandScheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	zap.L().Info("demand scheduler started", zap.Duration("interval", s.interval))
}

// SetInterval changes the interval of a running scheduler. The next tick is
// one full new interval away.
func (s *DemandScheduler) SetInterval(d time.Duration) {
	// Keep only the latest value if the loop has not caught up.
	select {
	case <-s.intervalCh:
	default:
	}
	s.intervalCh <- d
}

func (s *DemandScheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("demand scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DemandScheduler) run() {
	defer s.wg.Done()

	var ticker *time.Ticker
	var tick <-chan time.Time
	reset := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
	}
	reset(s.interval)
	defer reset(0)

	for {
		select {
		case <-s.ctx.Done():
			return
		case d := <-s.intervalCh:
			if d == s.interval {
				continue
			}
			zap.L().Info("demand interval changed", zap.Duration("from", s.interval), zap.Duration("to", d))
			s.interval = d
			reset(d)
		case <-tick:
			s.runOnce()
		}
	}
}

func (s *DemandScheduler) runOnce() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.job.IncrementDemand(ctx); err != nil {
		zap.L().Error("demand job failed", zap.Error(err))
		return
	}

	zap.L().Debug("demand job done", zap.Duration("took", time.Since(start)))
}
