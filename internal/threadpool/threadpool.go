// Package threadpool implements the process-wide Thread Pool (§4.12/§5):
// a single priority work queue consumed by a fixed set of worker
// goroutines, with best-effort task cancellation by TaskId.
package threadpool

import (
	"container/heap"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// TaskID identifies a submitted task for cancellation.
type TaskID = uuid.UUID

// CancelCheck reports whether the running task has been cancelled; a task
// function should check it at entry and between its own phases (§4.12's
// "checks a cancel flag at task entry and between terrain and mesh phases").
type CancelCheck func() bool

// TaskFunc is the unit of work submitted to the pool.
type TaskFunc func(cancelled CancelCheck)

type task struct {
	id        TaskID
	priority  float64 // lower value runs first (squared distance to player chunk)
	fn        TaskFunc
	cancelled bool
	index     int // heap.Interface bookkeeping
}

type taskHeap []*task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *taskHeap) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Pool is the §5 "single process-wide thread pool with a priority queue."
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   taskHeap
	byID    map[TaskID]*task
	closed  bool
	wg      sync.WaitGroup
	workers int
}

// New creates a pool with the given worker count, or half of
// runtime.NumCPU() (minimum 1) when workers <= 0, per §5.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
	}
	p := &Pool{
		byID:    make(map[TaskID]*task),
		workers: workers,
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Submit enqueues fn with the given priority (lower runs sooner) and
// returns a TaskID that Cancel can later reference.
func (p *Pool) Submit(priority float64, fn TaskFunc) TaskID {
	id := uuid.New()
	t := &task{id: id, priority: priority, fn: fn}

	p.mu.Lock()
	p.byID[id] = t
	heap.Push(&p.queue, t)
	p.mu.Unlock()

	p.cond.Signal()
	return id
}

// Cancel marks a task cancelled. Best-effort: a task already running past
// its own cancellation check will run to completion (§4.12).
func (p *Pool) Cancel(id TaskID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.byID[id]
	if !ok {
		return false
	}
	t.cancelled = true
	return true
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed && len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		t := heap.Pop(&p.queue).(*task)
		p.mu.Unlock()

		t.fn(func() bool {
			p.mu.Lock()
			defer p.mu.Unlock()
			return t.cancelled
		})

		p.mu.Lock()
		delete(p.byID, t.id)
		p.mu.Unlock()
	}
}

// QueueLength returns the number of tasks currently waiting.
func (p *Pool) QueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Shutdown stops accepting new progress past already-queued tasks and
// waits for every worker to drain the queue and exit.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}
