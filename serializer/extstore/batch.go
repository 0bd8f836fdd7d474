package extstore

import (
	"context"

	"github.com/roboware/serialkit/runtime/workerpool"
)

// Externalizable is implemented by objects owning one or more payloads that can be spilled.
type Externalizable interface {
	// ConvertToExternalStorage spills every embedded payload to side files named after baseName.
	// Payloads that are already spilled are left as they are.
	ConvertToExternalStorage(c *Controller, baseName string) error
	// Load loads every spilled payload.
	Load(c *Controller) error
	// Unload drops the in-memory copies of every spilled payload.
	Unload()
	// ExternalPaths returns the relative paths of all spilled payloads.
	ExternalPaths() []string
}

// ConvertAll spills the payloads of all objects on the worker pool.
// The side files of the i-th object are named after baseName(i).
func ConvertAll[T Externalizable](ctx context.Context, pool *workerpool.WorkerPool, c *Controller, objects []T, baseName func(i int) string) error {
	tasks := make([]workerpool.Task, 0, len(objects))
	for i, obj := range objects {
		index, current := i, obj
		tasks = append(tasks, func(ctx context.Context) error {
			return current.ConvertToExternalStorage(c, baseName(index))
		})
	}

	return pool.Run(ctx, tasks...)
}

// LoadAll loads the payloads of all objects on the worker pool.
func LoadAll[T Externalizable](ctx context.Context, pool *workerpool.WorkerPool, c *Controller, objects []T) error {
	tasks := make([]workerpool.Task, 0, len(objects))
	for _, obj := range objects {
		current := obj
		tasks = append(tasks, func(ctx context.Context) error {
			return current.Load(c)
		})
	}

	return pool.Run(ctx, tasks...)
}

// UnloadAll drops the in-memory copies of the spilled payloads of all objects.
// Only objects with spilled payloads count towards Stats.Unloaded.
func UnloadAll[T Externalizable](c *Controller, objects []T) {
	for _, obj := range objects {
		obj.Unload()
		if len(obj.ExternalPaths()) > 0 {
			c.stats.Unloaded.Inc()
		}
	}
}
