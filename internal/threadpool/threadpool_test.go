package threadpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_SubmitRunsTask(t *testing.T) {
	p := New(2)
	defer p.Shutdown()

	var ran int32
	done := make(chan struct{})
	p.Submit(0, func(cancelled CancelCheck) {
		atomic.StoreInt32(&ran, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestPool_RunsLowerPriorityFirst(t *testing.T) {
	p := New(1) // single worker makes ordering deterministic
	defer p.Shutdown()

	var mu sync.Mutex
	var order []int

	block := make(chan struct{})
	started := make(chan struct{})
	p.Submit(0, func(cancelled CancelCheck) {
		close(started)
		<-block // hold the only worker until both other tasks are queued
	})
	<-started

	var wg sync.WaitGroup
	wg.Add(2)
	p.Submit(10, func(cancelled CancelCheck) {
		mu.Lock()
		order = append(order, 10)
		mu.Unlock()
		wg.Done()
	})
	p.Submit(1, func(cancelled CancelCheck) {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		wg.Done()
	})

	close(block)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 10}, order, "lower priority value must run first")
}

func TestPool_CancelSetsFlagBeforeTaskRuns(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	block := make(chan struct{})
	started := make(chan struct{})
	p.Submit(0, func(cancelled CancelCheck) {
		close(started)
		<-block
	})
	<-started

	var sawCancelled bool
	done := make(chan struct{})
	id := p.Submit(1, func(cancelled CancelCheck) {
		sawCancelled = cancelled()
		close(done)
	})
	require.True(t, p.Cancel(id))

	close(block)
	<-done
	require.True(t, sawCancelled, "a task cancelled before it ran must observe cancelled() == true")
}

func TestPool_CancelUnknownIDReturnsFalse(t *testing.T) {
	p := New(1)
	defer p.Shutdown()
	require.False(t, p.Cancel(TaskID{}))
}

func TestPool_QueueLengthReflectsPendingTasks(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	block := make(chan struct{})
	started := make(chan struct{})
	p.Submit(0, func(cancelled CancelCheck) {
		close(started)
		<-block
	})
	<-started

	p.Submit(1, func(cancelled CancelCheck) {})
	p.Submit(2, func(cancelled CancelCheck) {})

	require.Eventually(t, func() bool { return p.QueueLength() == 2 }, time.Second, time.Millisecond)
	close(block)
}

func TestPool_ShutdownDrainsQueueBeforeReturning(t *testing.T) {
	p := New(2)

	var n int32
	for i := 0; i < 5; i++ {
		p.Submit(0, func(cancelled CancelCheck) {
			atomic.AddInt32(&n, 1)
		})
	}
	p.Shutdown()
	require.Equal(t, int32(5), atomic.LoadInt32(&n))
}
