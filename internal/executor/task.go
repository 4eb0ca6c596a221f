package executor

// Task is a unit of deferred computation run to completion by the pool.
// Implementations must be safe to execute on any worker goroutine. Tasks
// are consumed exactly once and retain no state after execution.
type Task interface {
	Run() error
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func() error

// Run invokes the function.
func (f TaskFunc) Run() error { return f() }

// Fault carries a failed task together with the error it produced. A fault
// from a recovered panic sets FromPanic; the original panic value is wrapped
// in Err.
type Fault struct {
	Task      Task
	Err       error
	FromPanic bool
}

// FaultHandler receives faults from worker goroutines. Handlers run on the
// worker that executed the task and must not block for long.
type FaultHandler func(Fault)
