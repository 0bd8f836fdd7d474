package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/runtime/options"
)

// ErrTaskPanicked is returned for tasks that panicked while being executed.
var ErrTaskPanicked = ierrors.New("task panicked")

// Task is a unit of work executed by the WorkerPool.
type Task func(ctx context.Context) error

// WorkerPool executes batches of independent tasks on a bounded number of goroutines.
type WorkerPool struct {
	// Name is the name of the WorkerPool.
	Name string

	pool *ants.Pool

	optsWorkerCount int
}

// New creates a new WorkerPool with the given name.
func New(name string, opts ...options.Option[WorkerPool]) (*WorkerPool, error) {
	w := options.Apply(&WorkerPool{
		Name:            name,
		optsWorkerCount: 2 * runtime.NumCPU(),
	}, opts)

	pool, err := ants.NewPool(w.optsWorkerCount)
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to create worker pool %s", name)
	}
	w.pool = pool

	return w, nil
}

// WorkerCount returns the maximum number of goroutines used by the WorkerPool.
func (w *WorkerPool) WorkerCount() int {
	return w.optsWorkerCount
}

// Run executes all tasks and blocks until every submitted task finished.
// Tasks that were not started before the context got canceled are skipped.
// The errors of all failed tasks are joined into the returned error.
func (w *WorkerPool) Run(ctx context.Context, tasks ...Task) error {
	var (
		wg       sync.WaitGroup
		errMutex sync.Mutex
		errs     []error
	)

	collect := func(err error) {
		errMutex.Lock()
		defer errMutex.Unlock()

		errs = append(errs, err)
	}

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			collect(ierrors.Wrapf(err, "task %d was not started", i))

			continue
		}

		wg.Add(1)
		index, currentTask := i, task
		if err := w.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					collect(ierrors.Wrapf(ErrTaskPanicked, "task %d: %s", index, fmt.Sprint(r)))
				}
			}()

			if err := currentTask(ctx); err != nil {
				collect(ierrors.Wrapf(err, "task %d failed", index))
			}
		}); err != nil {
			wg.Done()
			collect(ierrors.Wrapf(err, "failed to submit task %d", index))
		}
	}

	wg.Wait()

	return ierrors.Join(errs...)
}

// Shutdown releases the goroutines of the WorkerPool.
func (w *WorkerPool) Shutdown() {
	w.pool.Release()
}

// WithWorkerCount sets the maximum number of goroutines used by the WorkerPool.
func WithWorkerCount(workerCount int) options.Option[WorkerPool] {
	return func(w *WorkerPool) {
		if workerCount > 0 {
			w.optsWorkerCount = workerCount
		}
	}
}
