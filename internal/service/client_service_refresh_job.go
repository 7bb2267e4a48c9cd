package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/logger"
)

// DefaultRefreshInterval is used when RefreshJob gets a non-positive interval.
const DefaultRefreshInterval = 5 * time.Minute

// RefreshJob triggers every controller on a ticker. It gives a collection
// that failed to sync its next chance without user action. RefreshJob
// implements workers.Worker.
type RefreshJob struct {
	controllers []VaultSync
	interval    time.Duration
	logger      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefreshJob creates a RefreshJob. The job is idle until Start is called.
func NewRefreshJob(interval time.Duration, logger *logger.Logger, controllers ...VaultSync) *RefreshJob {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshJob{
		controllers: controllers,
		interval:    interval,
		logger:      logger,
	}
}

// Start stops any previously running loop, then launches a goroutine that
// triggers all controllers every interval until ctx is cancelled or Stop is
// called.
func (j *RefreshJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	j.logger.Info().Str("func", "RefreshJob.Start").Dur("interval", j.interval).Msg("refresh job started")

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.TriggerAll()
			}
		}
	}()
}

// TriggerAll triggers every controller once.
func (j *RefreshJob) TriggerAll() {
	for _, c := range j.controllers {
		j.logger.Debug().Str("func", "RefreshJob.TriggerAll").Str("collection", c.Collection()).Msg("refresh")
		c.Trigger()
	}
}

// Stop cancels the loop and blocks until its goroutine has exited. It is a
// no-op when the job is not running.
func (j *RefreshJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
