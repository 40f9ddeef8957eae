package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademax/academy-enrollment/internal/pkg/distlock"
)

type fakeRecorder struct {
	results []Result
	errs    []error
}

func (r *fakeRecorder) RecordRun(_ context.Context, res Result, runErr error) error {
	r.results = append(r.results, res)
	r.errs = append(r.errs, runErr)
	return nil
}

func TestJob_RecordsRuns(t *testing.T) {
	h := newHarness(t, csvOf("a@example.com,A,TMA1,"+daysAgo(6)+",,,,,,,"))
	rec := &fakeRecorder{}
	job := NewJob(NewDispatcher(h.deps), nil, rec)

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	require.Len(t, rec.results, 1)
	assert.Equal(t, res.RunID, rec.results[0].RunID)
	assert.NoError(t, rec.errs[0])
}

func TestJob_RecordsFatalRuns(t *testing.T) {
	h := newHarness(t, "")
	h.deps.SourceURL = ""
	rec := &fakeRecorder{}

	_, err := NewJob(NewDispatcher(h.deps), nil, rec).Run(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotConfigured)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], ErrSourceNotConfigured)
}

func TestJob_LockPreventsOverlap(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	held := distlock.NewRedisLock(client, LockKey, time.Minute)
	ok, err := held.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	h := newHarness(t, csvOf("a@example.com,A,TMA1,"+daysAgo(6)+",,,,,,,"))
	job := NewJob(NewDispatcher(h.deps), distlock.NewFactory(client, nil, LockKey, time.Minute), nil)

	_, err = job.Run(context.Background())
	assert.True(t, errors.Is(err, ErrRunInProgress))
	assert.Equal(t, int32(0), h.fetcher.calls.Load())

	require.NoError(t, held.Release(context.Background()))
	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	// The job released its own lock.
	assert.False(t, mr.Exists("lock:"+LockKey))
}

type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
	text    string
}

func (f *blockingFetcher) FetchCSV(ctx context.Context, _ string) (string, error) {
	f.started <- struct{}{}
	select {
	case <-f.release:
		return f.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestJob_ExpiredRunDoesNotReleaseSuccessor(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := newHarness(t, "")
	slow := &blockingFetcher{started: make(chan struct{}, 1), release: make(chan struct{}), text: csvOf()}
	h.deps.Fetcher = slow
	job := NewJob(NewDispatcher(h.deps), distlock.NewFactory(client, nil, LockKey, time.Minute), nil)

	done := make(chan error, 1)
	go func() {
		_, err := job.Run(context.Background())
		done <- err
	}()
	<-slow.started

	// The slow run outlives its lock and a second trigger takes over.
	mr.FastForward(2 * time.Minute)
	successor := distlock.NewRedisLock(client, LockKey, time.Minute)
	ok, err := successor.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	close(slow.release)
	require.NoError(t, <-done)

	assert.True(t, mr.Exists("lock:"+LockKey))
	_, err = job.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestJob_StartStopsOnCancel(t *testing.T) {
	h := newHarness(t, csvOf())
	job := NewJob(NewDispatcher(h.deps), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.fetcher.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
