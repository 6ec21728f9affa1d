package rworker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEveryTaskExactlyOnce(t *testing.T) {
	tasks := []int{1, 2, 3, 4, 5, 6, 7, 8}
	contexts := make([]struct{}, 3)

	var processed atomic.Int64
	var finalized atomic.Bool

	pool := New(tasks, contexts, func(workerID int, ctx *struct{}, task int) {
		processed.Add(1)
	}, func() {
		finalized.Store(true)
	})

	pool.Join()

	assert.Equal(t, int64(len(tasks)), processed.Load())
	assert.True(t, finalized.Load())
}

func TestPoolFinalizerFiresExactlyOnce(t *testing.T) {
	tasks := make([]int, 50)
	contexts := make([]struct{}, 8)

	var finalizeCount atomic.Int32

	pool := New(tasks, contexts, func(workerID int, ctx *struct{}, task int) {}, func() {
		finalizeCount.Add(1)
	})
	pool.Join()

	assert.Equal(t, int32(1), finalizeCount.Load())
}

func TestPoolIsolatesTaskPanics(t *testing.T) {
	tasks := []int{1, 2, 3}
	contexts := make([]struct{}, 1)

	var processed atomic.Int64

	pool := New(tasks, contexts, func(workerID int, ctx *struct{}, task int) {
		processed.Add(1)
		if task == 2 {
			panic("boom")
		}
	}, func() {})
	pool.Join()

	assert.Equal(t, int64(3), processed.Load())
}

func TestPoolAbortDrainsRemainingQueue(t *testing.T) {
	tasks := make([]int, 20)
	contexts := make([]struct{}, 2)

	var started atomic.Int64
	release := make(chan struct{})

	pool := New(tasks, contexts, func(workerID int, ctx *struct{}, task int) {
		started.Add(1)
		<-release
	}, func() {})

	// Both workers have popped one task each and are blocked on release;
	// release them only after Abort has drained the other 18.
	time.Sleep(20 * time.Millisecond)
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	pool.Abort()

	require.Equal(t, int64(2), started.Load())
}

func TestPoolEmptyContextsStillFinalizes(t *testing.T) {
	var finalized atomic.Bool
	pool := New([]int{1, 2, 3}, nil, func(workerID int, ctx *struct{}, task int) {}, func() {
		finalized.Store(true)
	})
	pool.Join()
	assert.True(t, finalized.Load())
}
