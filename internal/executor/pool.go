// Package executor provides a resizable pool of worker goroutines executing
// independent CPU-bound tasks from a single shared FIFO queue.
package executor

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// DefaultIdleWait bounds how long an idle worker blocks before re-checking
// the pool's active flag. Workers never stall indefinitely on an empty
// queue.
const DefaultIdleWait = 30 * time.Second

// DefaultParallelism approximates the number of physical cores: logical
// processors, halved when the count is even (simultaneous multithreading
// assumed), clamped to a minimum of 2 so one long-running computation never
// starves everything else. This is a heuristic, not hardware introspection.
func DefaultParallelism() int {
	n := runtime.NumCPU()
	if n%2 == 0 {
		n /= 2
	}
	if n < 2 {
		n = 2
	}
	return n
}

// workItem is either a compute task or a shutdown sentinel. Sentinels are
// consumed by whichever worker dequeues them first.
type workItem struct {
	task     Task
	shutdown bool
}

// Pool executes an unbounded stream of independent tasks using a bounded,
// resizable set of worker goroutines. Items are dequeued in FIFO submission
// order across the whole pool; completion order is unordered.
type Pool struct {
	mu     sync.Mutex
	items  *queue.Queue // of workItem, guarded by mu
	target int          // desired worker count, guarded by mu

	wake     chan struct{}
	idleWait time.Duration
	fault    FaultHandler

	active atomic.Bool
	live   atomic.Int64
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithParallelism sets the initial worker count. Negative values clamp to
// zero. Without this option the pool starts with DefaultParallelism workers.
func WithParallelism(n int) Option {
	return func(p *Pool) {
		if n < 0 {
			n = 0
		}
		p.target = n
	}
}

// WithIdleWait overrides how long idle workers block between active-flag
// checks. Tests use short waits; production keeps the default.
func WithIdleWait(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.idleWait = d
		}
	}
}

// WithFaultHandler installs a supervisor for task faults. Without a handler
// a fault panics the worker: a silently dropped simulation task would
// corrupt downstream state, so failure stays loud.
func WithFaultHandler(h FaultHandler) Option {
	return func(p *Pool) { p.fault = h }
}

// New constructs a pool and starts its workers.
func New(opts ...Option) *Pool {
	p := &Pool{
		items:    queue.New(),
		wake:     make(chan struct{}, 256),
		idleWait: DefaultIdleWait,
		target:   -1,
	}
	p.active.Store(true)
	for _, opt := range opts {
		opt(p)
	}
	initial := p.target
	if initial < 0 {
		initial = DefaultParallelism()
	}
	p.target = 0
	p.SetParallelism(initial)
	return p
}

// SetParallelism adjusts the live worker count to exactly n (n >= 0).
// Growing spawns workers immediately ready to dequeue; shrinking enqueues
// one shutdown sentinel per worker to remove. The pool guarantees only that
// the live count converges to n, not which workers exit. Calling with the
// current value is a no-op; an inactive pool refuses to grow.
func (p *Pool) SetParallelism(n int) {
	if n < 0 {
		n = 0
	}
	p.mu.Lock()
	diff := n - p.target
	if diff == 0 {
		p.mu.Unlock()
		return
	}
	if diff > 0 && !p.active.Load() {
		p.mu.Unlock()
		return
	}
	p.target = n
	if diff > 0 {
		for i := 0; i < diff; i++ {
			p.live.Add(1)
			go p.worker()
		}
		p.mu.Unlock()
		return
	}
	for i := 0; i < -diff; i++ {
		p.items.Add(workItem{shutdown: true})
	}
	p.mu.Unlock()
	p.notify(-diff)
}

// Submit enqueues a task. It never blocks the caller beyond lock contention
// on the shared queue. A nil task is ignored.
func (p *Pool) Submit(task Task) {
	if task == nil {
		return
	}
	p.mu.Lock()
	p.items.Add(workItem{task: task})
	p.mu.Unlock()
	p.notify(1)
}

// RunAndWait runs the first task synchronously on the calling goroutine and
// submits the remainder to the pool, then blocks until every task in the
// batch has completed. All tasks run to completion independently; the first
// failure in submission order is returned after everything has finished.
// Batch failures are captured here and never reach the pool's fault handler.
func (p *Pool) RunAndWait(tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i := 1; i < len(tasks); i++ {
		if tasks[i] == nil {
			continue
		}
		idx, task := i, tasks[i]
		wg.Add(1)
		p.Submit(TaskFunc(func() error {
			defer wg.Done()
			err, _ := runGuarded(task)
			errs[idx] = err
			return nil
		}))
	}
	if tasks[0] != nil {
		err, _ := runGuarded(tasks[0])
		errs[0] = err
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Shutdown drains the pool to zero workers and marks it inactive. It is
// idempotent. In-progress tasks run to completion; idle workers observe the
// flag on their next wake and exit.
func (p *Pool) Shutdown() {
	if !p.active.CompareAndSwap(true, false) {
		return
	}
	p.mu.Lock()
	diff := p.target
	p.target = 0
	for i := 0; i < diff; i++ {
		p.items.Add(workItem{shutdown: true})
	}
	p.mu.Unlock()
	p.notifyAll()
}

// WorkerCount reports the number of live workers.
func (p *Pool) WorkerCount() int {
	return int(p.live.Load())
}

// QueueLength reports the number of pending items, shutdown sentinels
// included.
func (p *Pool) QueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.Length()
}

func (p *Pool) notify(n int) {
	for i := 0; i < n; i++ {
		select {
		case p.wake <- struct{}{}:
		default:
			return
		}
	}
}

func (p *Pool) notifyAll() {
	p.notify(cap(p.wake))
}

func (p *Pool) dequeue() (workItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items.Length() == 0 {
		return workItem{}, false
	}
	return p.items.Remove().(workItem), true
}

// worker loops dequeueing until it consumes a shutdown sentinel or finds
// the pool inactive while idle.
func (p *Pool) worker() {
	defer p.live.Add(-1)
	for {
		item, ok := p.dequeue()
		if ok {
			if item.shutdown {
				return
			}
			p.runTask(item.task)
			continue
		}
		if !p.active.Load() {
			return
		}
		select {
		case <-p.wake:
		case <-time.After(p.idleWait):
		}
	}
}

func (p *Pool) runTask(task Task) {
	err, fromPanic := runGuarded(task)
	if err == nil {
		return
	}
	fault := Fault{Task: task, Err: err, FromPanic: fromPanic}
	if p.fault != nil {
		p.fault(fault)
		return
	}
	panic(fault.Err)
}

func runGuarded(task Task) (err error, fromPanic bool) {
	defer func() {
		if r := recover(); r != nil {
			fromPanic = true
			if e, ok := r.(error); ok {
				err = fmt.Errorf("task panic: %w", e)
			} else {
				err = fmt.Errorf("task panic: %v", r)
			}
		}
	}()
	return task.Run(), false
}
