package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/trademax/academy-enrollment/internal/pkg/distlock"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
)

// LockKey names the lock that serializes reminder runs across processes.
const LockKey = "reminders:run"

// ErrRunInProgress means another process holds the run lock.
var ErrRunInProgress = errors.New("a reminder run is already in progress")

// RunRecorder persists run outcomes. runErr is the fatal error, if any.
type RunRecorder interface {
	RecordRun(ctx context.Context, res Result, runErr error) error
}

// Job wraps a Dispatcher with a run lock and run history.
type Job struct {
	dispatcher *Dispatcher
	newLock    distlock.Factory
	recorder   RunRecorder
	log        *logger.Logger
}

// NewJob creates a job. newLock and recorder may be nil. Each run takes its
// own lock from newLock.
func NewJob(d *Dispatcher, newLock distlock.Factory, recorder RunRecorder) *Job {
	if newLock == nil {
		newLock = func() distlock.DistLock { return distlock.Noop{} }
	}
	return &Job{dispatcher: d, newLock: newLock, recorder: recorder, log: logger.New("reminder-job")}
}

// Run executes one locked run.
func (j *Job) Run(ctx context.Context) (Result, error) {
	lock := j.newLock()
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return Result{Errors: []string{}}, err
	}
	if !ok {
		return Result{Errors: []string{}}, ErrRunInProgress
	}
	defer func() {
		// Release even if ctx was cancelled mid-run.
		if err := lock.Release(context.Background()); err != nil {
			j.log.Warn("run lock release failed", "error", err)
		}
	}()

	if ext, ok := lock.(distlock.Extender); ok {
		stop := j.heartbeat(ctx, ext)
		defer stop()
	}

	res, runErr := j.dispatcher.Run(ctx)
	if j.recorder != nil {
		if err := j.recorder.RecordRun(ctx, res, runErr); err != nil {
			j.log.Warn("run history write failed", "run_id", res.RunID, "error", err)
		}
	}
	return res, runErr
}

// heartbeat renews the lock at a third of its TTL until stop is called.
func (j *Job) heartbeat(ctx context.Context, ext distlock.Extender) (stop func()) {
	interval := ext.TTL() / 3
	if interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ext.Extend(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					j.log.Warn("run lock renewal failed", "error", err)
					if errors.Is(err, distlock.ErrLockLost) {
						return
					}
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// Start runs the job immediately and then every interval until ctx is done.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	j.log.Info("reminder scheduler started", "interval", interval.String())
	j.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			j.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *Job) tick(ctx context.Context) {
	if _, err := j.Run(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			j.log.Info("skipping tick, run already in progress")
			return
		}
		j.log.Error("scheduled reminder run failed", "error", err)
	}
}
