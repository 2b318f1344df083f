// Package janitor sweeps expired session rows on a fixed period. It is a
// storage-reclamation optimization only; the session service enforces expiry
// on every read regardless of whether a sweep ever runs.
package janitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes expired rows and reports how many were removed.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Janitor runs one sweep immediately on Start and then one per interval.
// Sweeps run sequentially on a single goroutine, so a slow sweep delays the
// next tick instead of overlapping it. Sweep failures are logged and never
// stop the schedule; a missed sweep self-corrects on the next tick.
type Janitor struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a janitor sweeping via sweeper every interval.
func New(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{sweeper: sweeper, interval: interval, logger: logger}
}

// Start launches the sweep loop. It returns immediately; the first sweep
// runs right away on the background goroutine. Call Stop to shut down.
func (j *Janitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	go j.run(ctx)
}

// Stop cancels the loop and waits for any in-flight sweep to finish.
func (j *Janitor) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	<-j.done
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	n, err := j.sweeper.DeleteExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		j.logger.Warn("session sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("swept expired sessions", zap.Int64("removed", n))
	}
}
