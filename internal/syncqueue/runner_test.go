package syncqueue_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahar-app/bahar/internal/syncqueue"
)

type countingSyncer struct {
	pushes atomic.Int32
	pulls  atomic.Int32
	done   chan struct{}
}

func (c *countingSyncer) Push(ctx context.Context) error {
	c.pushes.Add(1)
	return nil
}

func (c *countingSyncer) Pull(ctx context.Context) error {
	c.pulls.Add(1)
	select {
	case c.done <- struct{}{}:
	default:
	}
	return nil
}

func waitFor(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync pass")
	}
}

func TestRequestTriggersSyncPass(t *testing.T) {
	syncer := &countingSyncer{done: make(chan struct{}, 1)}
	r := syncqueue.New(syncer, time.Hour) // timer never fires during the test
	r.Start(context.Background())
	defer r.Stop()

	r.Request()
	waitFor(t, syncer.done)

	require.GreaterOrEqual(t, syncer.pushes.Load(), int32(1))
	require.GreaterOrEqual(t, syncer.pulls.Load(), int32(1))
}

func TestRequestsCoalesceWhilePending(t *testing.T) {
	syncer := &countingSyncer{done: make(chan struct{}, 1)}
	r := syncqueue.New(syncer, time.Hour)

	// Before the worker starts, every request folds into the single pending
	// slot.
	for i := 0; i < 25; i++ {
		r.Request()
	}

	r.Start(context.Background())
	waitFor(t, syncer.done)
	r.Stop()

	assert.Equal(t, int32(1), syncer.pushes.Load())
}

func TestStopHaltsWorker(t *testing.T) {
	syncer := &countingSyncer{done: make(chan struct{}, 1)}
	r := syncqueue.New(syncer, time.Hour)
	r.Start(context.Background())

	r.Request()
	waitFor(t, syncer.done)
	r.Stop()

	after := syncer.pushes.Load()
	r.Request()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, syncer.pushes.Load())
}
