package syncqueue

import (
	"context"
	"sync"
	"time"

	"github.com/bahar-app/bahar/internal/logger"
)

// Syncer is the push/pull surface of the local store.
type Syncer interface {
	Push(ctx context.Context) error
	Pull(ctx context.Context) error
}

// Runner drives replica synchronization on a single background worker. Sync
// runs on a timer and on demand after mutations; requests arriving while a
// pass is pending coalesce into one.
type Runner struct {
	syncer   Syncer
	interval time.Duration
	requests chan struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	log      *logger.Logger
}

// New creates a Runner syncing every interval.
func New(s Syncer, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Runner{
		syncer:   s,
		interval: interval,
		requests: make(chan struct{}, 1),
		log:      logger.Default().WithPrefix("syncqueue"),
	}
}

// Start launches the worker. It runs until ctx is cancelled or Stop is
// called.
func (r *Runner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.log.Debug("sync worker started, interval=%s", r.interval)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.log.Debug("sync worker shutting down")
				return
			case <-ticker.C:
			case <-r.requests:
			}
			r.runOnce(ctx)
		}
	}()
}

// Request schedules a sync pass. Non-blocking: a request arriving while one
// is already pending is absorbed.
func (r *Runner) Request() {
	select {
	case r.requests <- struct{}{}:
	default:
	}
}

// Stop cancels the worker and waits for it to finish.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// runOnce pushes local changes first so reviews reach the remote, then
// pulls. Failures are logged and dropped: a failed sync degrades to
// offline-local operation and never blocks reviewing.
func (r *Runner) runOnce(ctx context.Context) {
	if err := r.syncer.Push(ctx); err != nil {
		r.log.Warn("push failed, continuing offline: %v", err)
	}
	if err := r.syncer.Pull(ctx); err != nil {
		r.log.Warn("pull failed, continuing offline: %v", err)
	}
}
