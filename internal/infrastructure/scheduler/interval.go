package scheduler

import (
	"context"
	"sync"
	"time"

	"RankingsScanner/internal/ports"
)

// IntervalScheduler runs a job immediately and then on a fixed interval.
type IntervalScheduler struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler falls back to a daily interval for non-positive values.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &IntervalScheduler{interval: interval}
}

// Start begins ticking. Jobs never overlap; a run that outlasts the interval
// delays the next tick. Calling Start twice is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	s.stop = stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine and waits for an in-flight job to return.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
